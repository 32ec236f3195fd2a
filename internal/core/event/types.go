package event

import (
	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/geom"
)

// Kind is the event domain. Each domain has its own Topic on the Bus.
type Kind uint8

const (
	KindStateChange Kind = iota
	KindLifecycle
	KindCollision
	KindInput
	KindComms
)

func (k Kind) String() string {
	switch k {
	case KindStateChange:
		return "state_change"
	case KindLifecycle:
		return "lifecycle"
	case KindCollision:
		return "collision"
	case KindInput:
		return "input"
	case KindComms:
		return "comms"
	default:
		return "unknown"
	}
}

// ---------- state change ----------

type StateCase uint8

const (
	StateVelocity StateCase = iota + 1
	StateMovement
	StateArrived
	StateWaypointReached
	StatePosition
	StateResources
	StateOrbitalApplied
	StateOrbitalRemoved
	StateChargeApplied
	StateChargeRemoved
	StateEquipment
	StateModifierApplied
	StateModifierRemoved
	StateOrbitPoints
)

// StateChange requests or reports a write to one entity's components.
// Only the fields named by Case are meaningful.
type StateChange struct {
	Case     StateCase
	Entity   ecs.EntityID
	Velocity geom.Vec3               // StateVelocity
	Movement component.Movement      // StateMovement
	Path     []geom.Vec3             // StateWaypointReached: remaining waypoints
	Position component.Position      // StatePosition
	Res      component.Resources     // StateResources
	Orbital  component.ActiveOrbital // StateOrbitalApplied
	Charge   component.ActiveCharge  // StateChargeApplied
	Equip    component.Equipment     // StateEquipment
	Modifier component.Modifier      // StateModifierApplied, StateModifierRemoved
	Points   []geom.Vec3             // StateOrbitPoints: world positions of orbital instances
}

// ---------- lifecycle ----------

type LifecycleCase uint8

const (
	LifecycleSpawned LifecycleCase = iota + 1
	LifecycleSpawnProjectile
	LifecycleRemove
	LifecycleDespawned
)

// Lifecycle covers entity creation and removal.
type Lifecycle struct {
	Case       LifecycleCase
	Entity     ecs.EntityID
	Kind       component.Kind
	Position   component.Position
	Projectile component.LiveProjectile // LifecycleSpawnProjectile
}

// ---------- collision ----------

type CollisionCase uint8

const (
	CollisionEntity CollisionCase = iota + 1
	CollisionMapObject
)

// MapObjectRef identifies one polygon of a scene's object groups.
type MapObjectRef struct {
	Group string
	ID    int
}

// Collision is a transient contact record, consumed the same or next frame.
type Collision struct {
	Case     CollisionCase
	Scenario component.ScenarioID
	Entity   ecs.EntityID
	Other    ecs.EntityID // CollisionEntity
	Object   MapObjectRef // CollisionMapObject
	MTV      geom.Vec3    // CollisionMapObject, valid when HasMTV
	HasMTV   bool
}

// ---------- input ----------

type InputCase uint8

const (
	InputRaw InputCase = iota + 1
	InputActions
)

// Input carries polled device state and the mapped actions derived from it.
type Input struct {
	Case    InputCase
	Entity  ecs.EntityID
	Raw     component.RawFrame
	Actions component.ActionStates
}

// ---------- communications ----------

type CommsCase uint8

const (
	CommsMoveIntent CommsCase = iota + 1
	CommsUseAbility
	CommsUseItem
	CommsImpact
	CommsDamaged
	CommsRestored
	CommsDied
	CommsChargeCompleted
	CommsOrbitalCompleted
)

// Comms carries intents and combat outcomes between systems.
type Comms struct {
	Case      CommsCase
	Source    ecs.EntityID // caster / attacker / user
	Target    ecs.EntityID
	Skill     int32
	Item      int32
	Movement  component.Movement // CommsMoveIntent
	Point     geom.Vec3          // impact or aim position
	JumpsLeft int                // CommsImpact
	Amount    int                // CommsDamaged / CommsRestored
	Critical  bool
	Evaded    bool
}
