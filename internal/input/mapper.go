// Package input maps polled device state onto logical game actions.
package input

import (
	"sort"

	"github.com/l1jgo/simcore/internal/component"
)

// Poller is the device collaborator: it returns an immutable snapshot of the
// controls held down this frame.
type Poller interface {
	Poll() component.RawInput
}

// Bindings maps a logical action to the device controls that trigger it,
// e.g. "move" -> ["mouse:right", "pad:a"].
type Bindings map[component.Action][]string

// Mapper derives edge-aware action states from consecutive raw polls.
type Mapper struct {
	bindings Bindings
	actions  []component.Action // sorted, for stable output
}

func NewMapper(b Bindings) *Mapper {
	m := &Mapper{bindings: b}
	for act := range b {
		m.actions = append(m.actions, act)
	}
	sort.Slice(m.actions, func(i, j int) bool { return m.actions[i] < m.actions[j] })
	return m
}

// Actions lists the bound actions.
func (m *Mapper) Actions() []component.Action { return m.actions }

// down reports whether any control bound to act is held in raw.
func (m *Mapper) down(act component.Action, raw component.RawInput) bool {
	for _, ctrl := range m.bindings[act] {
		if raw.Down[ctrl] {
			return true
		}
	}
	return false
}

// Map computes every action's state for one frame. Actions that are neither
// down now nor were down before are omitted.
func (m *Mapper) Map(frame uint64, raw component.RawFrame) component.ActionStates {
	out := component.ActionStates{
		Frame:   frame,
		States:  make(map[component.Action]component.ActionState, len(m.actions)),
		Pointer: raw.Current.Pointer,
	}
	for _, act := range m.actions {
		if s := Edge(m.down(act, raw.Previous), m.down(act, raw.Current)); s != component.ActionNone {
			out.States[act] = s
		}
	}
	return out
}

// Edge classifies a control from its previous and current level.
func Edge(wasDown, isDown bool) component.ActionState {
	switch {
	case isDown && !wasDown:
		return component.ActionPressed
	case isDown && wasDown:
		return component.ActionHeld
	case !isDown && wasDown:
		return component.ActionReleased
	default:
		return component.ActionNone
	}
}
