package movement

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/looplab/fsm"

	"github.com/l1jgo/simcore/internal/component"
)

// Transition events of the movement state machine.
const (
	EventMove     = "move"     // -> MovingTo
	EventFollow   = "follow"   // -> MovingAlongPath
	EventWaypoint = "waypoint" // MovingAlongPath -> MovingAlongPath (shorter)
	EventArrive   = "arrive"   // moving -> Idle
	EventStop     = "stop"     // any -> Idle
)

var (
	idle      = component.Idle.String()
	movingTo  = component.MovingTo.String()
	following = component.MovingAlongPath.String()
	anyPhase  = []string{idle, movingTo, following}
)

var transitions = fsm.Events{
	{Name: EventMove, Src: anyPhase, Dst: movingTo},
	{Name: EventFollow, Src: anyPhase, Dst: following},
	{Name: EventWaypoint, Src: []string{following}, Dst: following},
	{Name: EventArrive, Src: []string{movingTo, following}, Dst: idle},
	{Name: EventStop, Src: anyPhase, Dst: idle},
}

func parsePhase(s string) component.MovementPhase {
	switch s {
	case movingTo:
		return component.MovingTo
	case following:
		return component.MovingAlongPath
	default:
		return component.Idle
	}
}

// machine is the one FSM shared by every caller; it is reset to the
// source phase before each query.
var machine = struct {
	sync.Mutex
	f *fsm.FSM
}{f: fsm.NewFSM(idle, transitions, fsm.Callbacks{})}

// Transition applies ev to from. Self-transitions are allowed and return
// from unchanged; an event not valid in from returns an error.
func Transition(from component.MovementPhase, ev string) (component.MovementPhase, error) {
	machine.Lock()
	defer machine.Unlock()
	machine.f.SetState(from.String())
	err := machine.f.Event(context.Background(), ev)
	var same fsm.NoTransitionError
	if err != nil && !errors.As(err, &same) {
		return from, fmt.Errorf("movement %s on %s: %w", ev, from, err)
	}
	return parsePhase(machine.f.Current()), nil
}

// Can reports whether ev is valid in phase from.
func Can(from component.MovementPhase, ev string) bool {
	machine.Lock()
	defer machine.Unlock()
	machine.f.SetState(from.String())
	return machine.f.Can(ev)
}

// EventFor names the event that moves an entity into m's phase.
func EventFor(m component.Movement) string {
	switch m.Phase {
	case component.MovingTo:
		return EventMove
	case component.MovingAlongPath:
		return EventFollow
	default:
		return EventStop
	}
}
