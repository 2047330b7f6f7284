package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/orrery/internal/core"
)

// ViewerKeyMap defines the key bindings of the system viewer.
type ViewerKeyMap struct {
	RotateLeft   key.Binding
	RotateRight  key.Binding
	RotateUp     key.Binding
	RotateDown   key.Binding
	ZoomIn       key.Binding
	ZoomOut      key.Binding
	NextBody     key.Binding
	PrevBody     key.Binding
	Focus        key.Binding
	ResetView    key.Binding
	ToggleOrbits key.Binding
	Pause        key.Binding
	SpeedUp      key.Binding
	SlowDown     key.Binding
	Screenshot   key.Binding
	Help         key.Binding
	Back         key.Binding
	Quit         key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ViewerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextBody, k.Focus, k.ZoomIn, k.ZoomOut, k.Pause, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ViewerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.RotateLeft, k.RotateRight, k.RotateUp, k.RotateDown},
		{k.ZoomIn, k.ZoomOut, k.ResetView},
		{k.NextBody, k.PrevBody, k.Focus, k.ToggleOrbits},
		{k.Pause, k.SpeedUp, k.SlowDown},
		{k.Screenshot, k.Help, k.Back, k.Quit},
	}
}

// DefaultViewerKeyMap returns default key bindings.
func DefaultViewerKeyMap() ViewerKeyMap {
	return ViewerKeyMap{
		RotateLeft: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left/h", "orbit left"),
		),
		RotateRight: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right/l", "orbit right"),
		),
		RotateUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "orbit up"),
		),
		RotateDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "orbit down"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "zoom out"),
		),
		NextBody: key.NewBinding(
			key.WithKeys("tab", "n"),
			key.WithHelp("tab", "next body"),
		),
		PrevBody: key.NewBinding(
			key.WithKeys("shift+tab", "N"),
			key.WithHelp("S-tab", "prev body"),
		),
		Focus: key.NewBinding(
			key.WithKeys("enter", "f"),
			key.WithHelp("enter", "focus"),
		),
		ResetView: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset view"),
		),
		ToggleOrbits: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "orbits"),
		),
		Pause: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "pause"),
		),
		SpeedUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "faster"),
		),
		SlowDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "slower"),
		),
		Screenshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "screenshot"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Action translates a key message to a viewer action. Keys that are not
// camera or scene actions (help, screenshot, back) map to ActionNone.
func (k ViewerKeyMap) Action(msg tea.KeyMsg) core.Action {
	switch {
	case key.Matches(msg, k.Quit):
		return core.ActionQuit
	case key.Matches(msg, k.RotateLeft):
		return core.ActionRotateLeft
	case key.Matches(msg, k.RotateRight):
		return core.ActionRotateRight
	case key.Matches(msg, k.RotateUp):
		return core.ActionRotateUp
	case key.Matches(msg, k.RotateDown):
		return core.ActionRotateDown
	case key.Matches(msg, k.ZoomIn):
		return core.ActionZoomIn
	case key.Matches(msg, k.ZoomOut):
		return core.ActionZoomOut
	case key.Matches(msg, k.NextBody):
		return core.ActionNextBody
	case key.Matches(msg, k.PrevBody):
		return core.ActionPrevBody
	case key.Matches(msg, k.Focus):
		return core.ActionFocus
	case key.Matches(msg, k.ResetView):
		return core.ActionResetView
	case key.Matches(msg, k.ToggleOrbits):
		return core.ActionToggleOrbits
	case key.Matches(msg, k.Pause):
		return core.ActionTogglePause
	case key.Matches(msg, k.SpeedUp):
		return core.ActionSpeedUp
	case key.Matches(msg, k.SlowDown):
		return core.ActionSlowDown
	}
	return core.ActionNone
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionRuns
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionRuns
	}
	return MenuActionNone
}
