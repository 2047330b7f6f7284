package core

// Action is a semantic viewer action, abstracted from physical key presses.
type Action int

const (
	ActionNone         Action = iota
	ActionRotateLeft          // h, Left - orbit camera left
	ActionRotateRight         // l, Right - orbit camera right
	ActionRotateUp            // k, Up - orbit camera up
	ActionRotateDown          // j, Down - orbit camera down
	ActionZoomIn              // +, = - dolly toward target
	ActionZoomOut             // - - dolly away from target
	ActionNextBody            // Tab - select next body
	ActionPrevBody            // Shift+Tab - select previous body
	ActionFocus               // Enter, f - focus selected body
	ActionResetView           // r - canned reset transition
	ActionToggleOrbits        // o - toggle orbit lines
	ActionTogglePause         // Space, p - pause animation
	ActionSpeedUp             // ] - faster time
	ActionSlowDown            // [ - slower time
	ActionQuit                // q, Ctrl+C
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionRotateLeft:
		return "RotateLeft"
	case ActionRotateRight:
		return "RotateRight"
	case ActionRotateUp:
		return "RotateUp"
	case ActionRotateDown:
		return "RotateDown"
	case ActionZoomIn:
		return "ZoomIn"
	case ActionZoomOut:
		return "ZoomOut"
	case ActionNextBody:
		return "NextBody"
	case ActionPrevBody:
		return "PrevBody"
	case ActionFocus:
		return "Focus"
	case ActionResetView:
		return "ResetView"
	case ActionToggleOrbits:
		return "ToggleOrbits"
	case ActionTogglePause:
		return "TogglePause"
	case ActionSpeedUp:
		return "SpeedUp"
	case ActionSlowDown:
		return "SlowDown"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// InputFrame collects the actions triggered between two frames.
type InputFrame struct {
	// Actions maps action types to how many times they fired this frame.
	Actions map[Action]int
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]int),
	}
}

// Set records one occurrence of an action for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]int)
	}
	f.Actions[a]++
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	return f.Count(a) > 0
}

// Count returns how many times the action fired this frame.
func (f InputFrame) Count(a Action) int {
	if f.Actions == nil {
		return 0
	}
	return f.Actions[a]
}

// Empty reports whether no action fired.
func (f InputFrame) Empty() bool {
	return len(f.Actions) == 0
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
}
