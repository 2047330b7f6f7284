// Package tui provides the Bubble Tea front end for the orrery: the system
// viewer, the system picker, the perf run table and the SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameMsg asks the viewer to draw one frame. Handle ties the message to
// the renderer frame loop that scheduled it; messages from a stopped loop
// are dropped.
type FrameMsg struct {
	Handle uint64
	Time   time.Time
}

// frameCmd returns a Bubble Tea command that sends one FrameMsg after interval.
func frameCmd(interval time.Duration, handle uint64) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg{Handle: handle, Time: t}
	})
}
