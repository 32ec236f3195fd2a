package system

import "github.com/l1jgo/simcore/internal/core/ecs"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput     Phase = iota // 0: poll devices, map actions
	PhaseIntent                 // 1: actions -> move/ability/item intents
	PhaseDetect                 // 2: spatial grid + collision detection
	PhaseMove                   // 3: movement resolvers, projectile steering
	PhaseIntegrate              // 4: velocity -> position
	PhaseCombat                 // 5: damage, restoration, effect application
	PhaseEffects                // 6: orbital/charge expiry and placement
	PhaseCleanup                // 7: destroy queued entities
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseIntent:
		return "intent"
	case PhaseDetect:
		return "detect"
	case PhaseMove:
		return "move"
	case PhaseIntegrate:
		return "integrate"
	case PhaseCombat:
		return "combat"
	case PhaseEffects:
		return "effects"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// Kind names a system for logs and metrics.
type Kind string

// System is the interface every simulation system implements. Update is the
// only entry point the engine loop calls; systems never call each other.
type System interface {
	Kind() Kind
	Phase() Phase
	Update(f *ecs.Frame)
}
