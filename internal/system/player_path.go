package system

import (
	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/config"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/event"
	coresys "github.com/l1jgo/simcore/internal/core/system"
	"github.com/l1jgo/simcore/internal/geom"
	"github.com/l1jgo/simcore/internal/movement"
	"github.com/l1jgo/simcore/internal/world"
)

// PlayerPathSystem drives locally controlled entities toward their move
// intent. It shares the resolver math with MovementSystem but collects MTV
// straight from the collision topic instead of the queue. Phase 3 (Move).
type PlayerPathSystem struct {
	state        *world.State
	bus          *event.Bus
	cfg          config.SimulationConfig
	defaultSpeed float64
	sub          event.Subscription

	mtv map[ecs.EntityID]geom.Vec3
}

func NewPlayerPathSystem(state *world.State, bus *event.Bus, cfg config.SimulationConfig) *PlayerPathSystem {
	s := &PlayerPathSystem{
		state:        state,
		bus:          bus,
		cfg:          cfg,
		defaultSpeed: orDefault(cfg.DefaultMoveSpeed, 100),
		mtv:          make(map[ecs.EntityID]geom.Vec3),
	}
	s.sub = bus.Collision.Subscribe(s.onCollision)
	return s
}

func (s *PlayerPathSystem) Kind() coresys.Kind   { return "player_path" }
func (s *PlayerPathSystem) Phase() coresys.Phase { return coresys.PhaseMove }

// Close detaches the collision subscription.
func (s *PlayerPathSystem) Close() { s.sub.Unsubscribe() }

func (s *PlayerPathSystem) onCollision(c event.Collision) {
	if c.Case != event.CollisionMapObject || !c.HasMTV || !s.state.IsControlled(c.Entity) {
		return
	}
	s.mtv[c.Entity] = s.mtv[c.Entity].Add(c.MTV)
}

func (s *PlayerPathSystem) Update(f *ecs.Frame) {
	defer clear(s.mtv)
	s.state.Controlled.Each(func(id ecs.EntityID, _ component.Controlled) {
		pos, ok := s.state.Positions.Get(id)
		if !ok || !s.state.World.Live(id) {
			return
		}
		dim := s.state.Dim(pos.Scenario)
		out := movement.Step(movement.Input{
			Dim:          dim,
			Thresholds:   thresholds(s.cfg, dim),
			Position:     pos.Point,
			Movement:     s.state.Movement(id),
			Speed:        s.state.MoveSpeed(f, id, s.defaultSpeed),
			MTV:          s.mtv[id],
			LastVelocity: s.state.Velocity(id),
		})
		publishStep(s.bus, id, out)
	})
}
