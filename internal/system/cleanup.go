package system

import (
	"go.uber.org/zap"

	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/event"
	coresys "github.com/l1jgo/simcore/internal/core/system"
	"github.com/l1jgo/simcore/internal/world"
)

// CleanupSystem flushes the deferred entity destruction queue at frame end
// and announces each destroyed entity. Phase 7 (Cleanup).
type CleanupSystem struct {
	state *world.State
	bus   *event.Bus
	log   *zap.Logger
}

func NewCleanupSystem(state *world.State, bus *event.Bus, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{state: state, bus: bus, log: log}
}

func (s *CleanupSystem) Kind() coresys.Kind   { return "cleanup" }
func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ *ecs.Frame) {
	destroyed := s.state.World.FlushDestroyQueue()
	for _, id := range destroyed {
		s.bus.Lifecycle.Publish(event.Lifecycle{Case: event.LifecycleDespawned, Entity: id})
	}
	if len(destroyed) > 0 {
		s.log.Debug("entities destroyed", zap.Int("count", len(destroyed)))
	}
}
