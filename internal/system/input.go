package system

import (
	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/event"
	coresys "github.com/l1jgo/simcore/internal/core/system"
	"github.com/l1jgo/simcore/internal/input"
	"github.com/l1jgo/simcore/internal/world"
)

// InputSystem polls the device once per frame and publishes the raw frame
// and the mapped action states for every locally controlled entity.
// Phase 0 (Input).
type InputSystem struct {
	state  *world.State
	bus    *event.Bus
	poller input.Poller
	mapper *input.Mapper
}

func NewInputSystem(state *world.State, bus *event.Bus, poller input.Poller, mapper *input.Mapper) *InputSystem {
	return &InputSystem{state: state, bus: bus, poller: poller, mapper: mapper}
}

func (s *InputSystem) Kind() coresys.Kind   { return "input" }
func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(f *ecs.Frame) {
	if s.state.Controlled.Len() == 0 {
		return
	}
	cur := s.poller.Poll()
	s.state.Controlled.Each(func(id ecs.EntityID, _ component.Controlled) {
		prev, _ := s.state.RawInput.Get(id)
		raw := component.RawFrame{Current: cur, Previous: prev.Current}
		s.bus.Input.Publish(event.Input{Case: event.InputRaw, Entity: id, Raw: raw})
		s.bus.Input.Publish(event.Input{
			Case:    event.InputActions,
			Entity:  id,
			Actions: s.mapper.Map(f.Number, raw),
		})
	})
}
