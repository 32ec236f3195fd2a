package system

import (
	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/event"
	coresys "github.com/l1jgo/simcore/internal/core/system"
	"github.com/l1jgo/simcore/internal/geom"
	"github.com/l1jgo/simcore/internal/world"
)

// IntegrateSystem advances positions by velocity × dt. Phase 4 (Integrate).
type IntegrateSystem struct {
	state *world.State
	bus   *event.Bus
}

func NewIntegrateSystem(state *world.State, bus *event.Bus) *IntegrateSystem {
	return &IntegrateSystem{state: state, bus: bus}
}

func (s *IntegrateSystem) Kind() coresys.Kind   { return "integrate" }
func (s *IntegrateSystem) Phase() coresys.Phase { return coresys.PhaseIntegrate }

func (s *IntegrateSystem) Update(f *ecs.Frame) {
	dt := f.Seconds()
	if dt <= 0 {
		return
	}
	ecs.Each2(s.state.Velocities, s.state.Positions, func(id ecs.EntityID, v geom.Vec3, p component.Position) {
		if geom.IsZero3(v) || !s.state.World.Live(id) {
			return
		}
		p.Point = p.Point.Add(v.Mul(dt))
		s.bus.StateChange.Publish(event.StateChange{Case: event.StatePosition, Entity: id, Position: p})
	})
}
