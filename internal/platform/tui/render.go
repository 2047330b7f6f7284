package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/orrery/internal/core"
)

// Painter converts Screen buffers to styled strings. Styles are cached per
// color; a Painter is safe for concurrent use.
type Painter struct {
	lg *lipgloss.Renderer

	mu     sync.Mutex
	styles map[core.Color]lipgloss.Style
}

// NewPainter creates a painter for the given lipgloss renderer. Nil uses
// the default renderer.
func NewPainter(lg *lipgloss.Renderer) *Painter {
	if lg == nil {
		lg = lipgloss.DefaultRenderer()
	}
	return &Painter{
		lg:     lg,
		styles: make(map[core.Color]lipgloss.Style),
	}
}

// NewStyle returns a style bound to the painter's renderer.
func (p *Painter) NewStyle() lipgloss.Style {
	return p.lg.NewStyle()
}

func (p *Painter) style(c core.Color) lipgloss.Style {
	p.mu.Lock()
	defer p.mu.Unlock()

	if st, ok := p.styles[c]; ok {
		return st
	}
	st := p.lg.NewStyle()
	if !c.IsDefault() {
		st = st.Foreground(lipgloss.Color(c.Hex()))
	}
	p.styles[c] = st
	return st
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func (p *Painter) RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*4 + s.Height())

	var run strings.Builder
	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			start := s.GetCell(x, y).Color

			run.Reset()
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != start {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			if start.IsDefault() {
				sb.WriteString(run.String())
				continue
			}
			sb.WriteString(p.style(start).Render(run.String()))
		}
	}
	return sb.String()
}
