package component

// Action is a logical game action, e.g. "move" or "ability_1".
type Action string

// ActionState is the edge-aware state of an Action this frame.
type ActionState uint8

const (
	ActionNone ActionState = iota
	ActionPressed
	ActionHeld
	ActionReleased
)

func (s ActionState) String() string {
	switch s {
	case ActionPressed:
		return "pressed"
	case ActionHeld:
		return "held"
	case ActionReleased:
		return "released"
	default:
		return "none"
	}
}

// Active reports Pressed or Held.
func (s ActionState) Active() bool { return s == ActionPressed || s == ActionHeld }

// ActionStates is the mapped action record for one entity for one frame.
type ActionStates struct {
	Frame   uint64
	States  map[Action]ActionState
	Pointer [2]float64 // cursor position in world plane coordinates
}

func (a ActionStates) Get(act Action) ActionState { return a.States[act] }

// RawInput is an immutable poll of device state: the set of controls held
// down ("key:w", "mouse:left", "pad:a", "touch:0") and the cursor position.
type RawInput struct {
	Down    map[string]bool
	Pointer [2]float64
}

// RawFrame pairs this frame's poll with the previous one so edges can be
// derived.
type RawFrame struct {
	Current  RawInput
	Previous RawInput
}
