package system

import (
	"sort"

	"go.uber.org/zap"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/config"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/event"
	coresys "github.com/l1jgo/simcore/internal/core/system"
	"github.com/l1jgo/simcore/internal/geom"
	"github.com/l1jgo/simcore/internal/world"
)

// ActionMove is the action that sends the controlled entity to the cursor.
const ActionMove component.Action = "move"

// IntentSystem turns this frame's action states into move, ability and item
// intents on the comms channel. Phase 1 (Intent).
type IntentSystem struct {
	state      *world.State
	bus        *event.Bus
	abilities  []binding
	items      []binding
	pickRadius float64
	log        *zap.Logger
}

func NewIntentSystem(state *world.State, bus *event.Bus, cfg config.InputConfig, log *zap.Logger) *IntentSystem {
	return &IntentSystem{
		state:      state,
		bus:        bus,
		abilities:  sortedBindings(cfg.Abilities),
		items:      sortedBindings(cfg.Items),
		pickRadius: cfg.PickRadius,
		log:        log,
	}
}

// binding ties a hotbar action to a skill or item id.
type binding struct {
	action component.Action
	id     int32
}

func sortedBindings(m map[string]int32) []binding {
	out := make([]binding, 0, len(m))
	for act, id := range m {
		out = append(out, binding{action: component.Action(act), id: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].action < out[j].action })
	return out
}

func (s *IntentSystem) Kind() coresys.Kind   { return "intent" }
func (s *IntentSystem) Phase() coresys.Phase { return coresys.PhaseIntent }

func (s *IntentSystem) Update(f *ecs.Frame) {
	ecs.Each2(s.state.Controlled, s.state.Actions, func(id ecs.EntityID, _ component.Controlled, acts component.ActionStates) {
		if acts.Frame != f.Number {
			return // stale record from an earlier frame
		}
		pos, ok := s.state.Positions.Get(id)
		if !ok {
			return
		}
		dim := s.state.Dim(pos.Scenario)
		cursor := geom.Lift(geom.Vec2(acts.Pointer), dim)

		if acts.Get(ActionMove).Active() {
			s.bus.Comms.Publish(event.Comms{
				Case:     event.CommsMoveIntent,
				Source:   id,
				Movement: component.MoveTo(cursor),
				Point:    cursor,
			})
		}
		for _, b := range s.abilities {
			if acts.Get(b.action) != component.ActionPressed {
				continue
			}
			s.bus.Comms.Publish(event.Comms{
				Case:   event.CommsUseAbility,
				Source: id,
				Target: s.pick(f, id, pos.Scenario, cursor),
				Skill:  b.id,
				Point:  cursor,
			})
		}
		for _, b := range s.items {
			if acts.Get(b.action) == component.ActionPressed {
				s.bus.Comms.Publish(event.Comms{Case: event.CommsUseItem, Source: id, Target: id, Item: b.id})
			}
		}
	})
}

// pick returns the non-projectile entity closest to cursor within the pick
// radius, excluding self. Zero when nothing qualifies.
func (s *IntentSystem) pick(f *ecs.Frame, self ecs.EntityID, scenario component.ScenarioID, cursor geom.Vec3) ecs.EntityID {
	snap := s.state.ComputeMovementSnapshot(f, scenario)
	dim := s.state.Dim(scenario)
	var best ecs.EntityID
	bestDist := s.pickRadius
	for _, id := range snap.IDs() {
		if id == self {
			continue
		}
		if k, _ := s.state.Kinds.Get(id); k == component.KindProjectile || k == component.KindVisual {
			continue
		}
		d := geom.PlaneDistance(snap.Positions[id].Point, cursor, dim)
		if d < bestDist {
			best, bestDist = id, d
		}
	}
	if best == 0 {
		s.log.Debug("no target under cursor", zap.Stringer("entity", self))
	}
	return best
}
