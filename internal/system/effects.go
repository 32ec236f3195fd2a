package system

import (
	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/event"
	coresys "github.com/l1jgo/simcore/internal/core/system"
	"github.com/l1jgo/simcore/internal/effect"
	"github.com/l1jgo/simcore/internal/world"
)

// EffectsSystem expires charges, orbitals and timed modifiers against world
// time and places the instances of active orbitals. Phase 6 (Effects).
type EffectsSystem struct {
	state *world.State
	bus   *event.Bus
}

func NewEffectsSystem(state *world.State, bus *event.Bus) *EffectsSystem {
	return &EffectsSystem{state: state, bus: bus}
}

func (s *EffectsSystem) Kind() coresys.Kind   { return "effects" }
func (s *EffectsSystem) Phase() coresys.Phase { return coresys.PhaseEffects }

func (s *EffectsSystem) Update(_ *ecs.Frame) {
	now := s.state.TotalElapsedTime()

	s.state.Charges.Each(func(id ecs.EntityID, c component.ActiveCharge) {
		if !effect.Expired(c.Start, c.Duration, now) {
			return
		}
		s.bus.Comms.Publish(event.Comms{Case: event.CommsChargeCompleted, Source: id, Target: c.Target, Skill: c.Skill})
		s.bus.StateChange.Publish(event.StateChange{Case: event.StateChargeRemoved, Entity: id})
		if o, ok := s.state.Orbitals.Get(id); ok && o.Skill == c.Skill {
			s.endOrbital(id, o)
		}
	})

	s.state.Orbitals.Each(func(id ecs.EntityID, o component.ActiveOrbital) {
		if effect.Expired(o.Start, o.Duration, now) {
			s.endOrbital(id, o)
			return
		}
		center, ok := s.state.Positions.Get(id)
		if !ok {
			return
		}
		s.bus.StateChange.Publish(event.StateChange{
			Case:   event.StateOrbitPoints,
			Entity: id,
			Points: effect.Positions(o, center.Point, now),
		})
	})

	s.state.Modifiers.Each(func(id ecs.EntityID, mods []component.Modifier) {
		for _, m := range mods {
			if m.Until > 0 && now >= m.Until {
				s.bus.StateChange.Publish(event.StateChange{Case: event.StateModifierRemoved, Entity: id, Modifier: m})
			}
		}
	})
}

func (s *EffectsSystem) endOrbital(id ecs.EntityID, o component.ActiveOrbital) {
	s.bus.Comms.Publish(event.Comms{Case: event.CommsOrbitalCompleted, Source: id, Skill: o.Skill})
	s.bus.StateChange.Publish(event.StateChange{Case: event.StateOrbitalRemoved, Entity: id})
}
