package input

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/l1jgo/simcore/internal/component"
)

func down(ctrls ...string) component.RawInput {
	m := make(map[string]bool, len(ctrls))
	for _, c := range ctrls {
		m[c] = true
	}
	return component.RawInput{Down: m}
}

func TestEdge(t *testing.T) {
	assert.Equal(t, component.ActionPressed, Edge(false, true))
	assert.Equal(t, component.ActionHeld, Edge(true, true))
	assert.Equal(t, component.ActionReleased, Edge(true, false))
	assert.Equal(t, component.ActionNone, Edge(false, false))
}

func TestMapper_HeldPersistsUntilRelease(t *testing.T) {
	m := NewMapper(Bindings{"move": {"mouse:right", "pad:a"}, "ability_1": {"key:1"}})
	script := NewScript(down(), down("mouse:right"), down("mouse:right"), down("pad:a"), down())

	var states []component.ActionState
	prev := script.Poll()
	for f := uint64(1); f <= 4; f++ {
		cur := script.Poll()
		out := m.Map(f, component.RawFrame{Current: cur, Previous: prev})
		states = append(states, out.Get("move"))
		assert.Equal(t, component.ActionNone, out.Get("ability_1"))
		prev = cur
	}
	assert.Equal(t, []component.ActionState{
		component.ActionPressed,
		component.ActionHeld,
		component.ActionHeld, // switched controls without a gap
		component.ActionReleased,
	}, states)
}

func TestMapper_OmitsIdleActions(t *testing.T) {
	m := NewMapper(Bindings{"b": {"key:b"}, "a": {"key:a"}})
	assert.Equal(t, []component.Action{"a", "b"}, m.Actions())
	out := m.Map(1, component.RawFrame{Current: down("key:a")})
	assert.Len(t, out.States, 1)
	assert.True(t, out.Get("a").Active())
}

func TestScript_RepeatsLast(t *testing.T) {
	s := NewScript(down("x"))
	s.Poll()
	assert.True(t, s.Poll().Down["x"])
	assert.Empty(t, NewScript().Poll().Down)
}
