package system

import (
	"go.uber.org/zap"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/config"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/event"
	coresys "github.com/l1jgo/simcore/internal/core/system"
	"github.com/l1jgo/simcore/internal/geom"
	"github.com/l1jgo/simcore/internal/movement"
	"github.com/l1jgo/simcore/internal/world"
)

// thresholds picks the arrival distances for a scenario's dimensionality,
// falling back to the built-in ones for unset config values.
func thresholds(cfg config.SimulationConfig, d geom.Dim) movement.Thresholds {
	t := movement.DefaultThresholds(d)
	if d == geom.Dim3 {
		t.Arrive = orDefault(cfg.ArriveThreshold3D, t.Arrive)
		t.Waypoint = orDefault(cfg.WaypointThreshold3D, t.Waypoint)
	} else {
		t.Arrive = orDefault(cfg.ArriveThreshold2D, t.Arrive)
		t.Waypoint = orDefault(cfg.WaypointThreshold2D, t.Waypoint)
	}
	return t
}

// MovementSystem resolves movement for every non-controlled entity: it drains
// the collision queue into per-entity MTV sums, then runs one resolver step
// per entity and publishes the outcome. Phase 3 (Move).
type MovementSystem struct {
	state        *world.State
	bus          *event.Bus
	queue        *event.Queue[event.Collision]
	cfg          config.SimulationConfig
	defaultSpeed float64
	log          *zap.Logger

	mtv map[ecs.EntityID]geom.Vec3
}

func NewMovementSystem(state *world.State, bus *event.Bus, queue *event.Queue[event.Collision], cfg config.SimulationConfig, log *zap.Logger) *MovementSystem {
	return &MovementSystem{
		state:        state,
		bus:          bus,
		queue:        queue,
		cfg:          cfg,
		defaultSpeed: orDefault(cfg.DefaultMoveSpeed, 100),
		log:          log,
		mtv:          make(map[ecs.EntityID]geom.Vec3),
	}
}

func (s *MovementSystem) Kind() coresys.Kind   { return "movement" }
func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseMove }

func (s *MovementSystem) Update(f *ecs.Frame) {
	clear(s.mtv)
	s.queue.Drain(func(c event.Collision) {
		if c.Case != event.CollisionMapObject || !c.HasMTV {
			return
		}
		if _, live := s.state.ComputeMovementSnapshot(f, c.Scenario).Position(c.Entity); !live {
			return // stale: despawned or moved to another scenario
		}
		s.mtv[c.Entity] = s.mtv[c.Entity].Add(c.MTV)
	})

	s.state.Movements.Each(func(id ecs.EntityID, m component.Movement) {
		if s.state.IsControlled(id) {
			return
		}
		pos, ok := s.state.Positions.Get(id)
		if !ok {
			return
		}
		if _, live := s.state.ComputeMovementSnapshot(f, pos.Scenario).Position(id); !live {
			return
		}
		dim := s.state.Dim(pos.Scenario)
		out := movement.Step(movement.Input{
			Dim:          dim,
			Thresholds:   thresholds(s.cfg, dim),
			Position:     pos.Point,
			Movement:     m,
			Speed:        s.state.MoveSpeed(f, id, s.defaultSpeed),
			MTV:          s.mtv[id],
			LastVelocity: s.state.Velocity(id),
		})
		publishStep(s.bus, id, out)
	})
}

// publishStep emits the events a resolver step asked for.
func publishStep(bus *event.Bus, id ecs.EntityID, out movement.Output) {
	if out.PublishVelocity {
		bus.StateChange.Publish(event.StateChange{Case: event.StateVelocity, Entity: id, Velocity: out.Velocity})
	}
	switch {
	case out.Arrived:
		bus.StateChange.Publish(event.StateChange{Case: event.StateArrived, Entity: id})
	case out.WaypointReached:
		bus.StateChange.Publish(event.StateChange{Case: event.StateWaypointReached, Entity: id, Path: out.Remaining})
	}
}
