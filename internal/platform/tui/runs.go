package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vovakirdan/orrery/internal/registry"
	"github.com/vovakirdan/orrery/internal/renderer"
	"github.com/vovakirdan/orrery/internal/storage"
)

// Run table layout constants
const (
	minWidthForSidebar = 90  // Minimum width to show system list sidebar
	sidebarWidth       = 22  // Width of system list sidebar
	maxRuns            = 100 // Max runs to load
)

// RunsKeyMap defines the key bindings for the run table.
type RunsKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	NextSystem key.Binding
	PrevSystem key.Binding
	Back       key.Binding
	Quit       key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k RunsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextSystem, k.PrevSystem, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k RunsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextSystem, k.PrevSystem},
		{k.Back, k.Quit},
	}
}

// DefaultRunsKeyMap returns default key bindings.
func DefaultRunsKeyMap() RunsKeyMap {
	return RunsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextSystem: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next system"),
		),
		PrevSystem: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev system"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// RunsModel is the Bubble Tea model for the performance run table.
type RunsModel struct {
	systems     []registry.Info
	cursor      int
	store       *storage.Store
	runs        []storage.Run
	table       table.Model
	help        help.Model
	keys        RunsKeyMap
	painter     *Painter
	now         func() time.Time
	width       int
	height      int
	quitting    bool
	goingBack   bool
	showSidebar bool
}

// NewRunsModel creates a new run table model. The first entry is "all
// systems".
func NewRunsModel(store *storage.Store, reg *registry.Registry, width, height int) RunsModel {
	systems := []registry.Info{{Title: "All systems"}}
	if reg != nil {
		systems = append(systems, reg.List()...)
	}

	h := help.New()
	m := RunsModel{
		systems:     systems,
		store:       store,
		keys:        DefaultRunsKeyMap(),
		help:        h,
		painter:     NewPainter(nil),
		now:         time.Now,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()
	m.loadRuns()
	return m
}

// createTable creates a new table with appropriate columns.
func (m *RunsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "When", Width: 14},
		{Title: "System", Width: 14},
		{Title: "Mode", Width: 7},
		{Title: "Frames", Width: 7},
		{Title: "Avg FPS", Width: 8},
		{Title: "Min FPS", Width: 8},
		{Title: "Frame", Width: 9},
		{Title: "Memory", Width: 9},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadRuns loads runs for the system under the cursor.
func (m *RunsModel) loadRuns() {
	m.runs = nil
	if m.store != nil {
		runs, err := m.store.RecentRuns(context.Background(), m.systems[m.cursor].ID, maxRuns)
		if err == nil {
			m.runs = runs
		}
	}
	m.table.SetRows(runRows(m.runs, m.now()))
	m.table.GotoTop()
}

// runRows formats runs as table rows.
func runRows(runs []storage.Run, now time.Time) []table.Row {
	rows := make([]table.Row, len(runs))
	for i, r := range runs {
		rows[i] = table.Row{
			humanize.RelTime(r.CreatedAt, now, "ago", "from now"),
			r.SystemID,
			r.Mode,
			humanize.Comma(int64(r.Frames)),
			fmt.Sprintf("%.1f", r.AvgFPS),
			fmt.Sprintf("%.1f", r.MinFPS),
			r.AvgFrameTime.Round(100 * time.Microsecond).String(),
			humanize.IBytes(uint64(r.PeakMemoryMB * 1024 * 1024)),
		}
	}
	return rows
}

// Init initializes the run table model.
func (m RunsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the run table.
func (m RunsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextSystem):
			m.cursor = (m.cursor + 1) % len(m.systems)
			m.loadRuns()
			return m, nil

		case key.Matches(msg, m.keys.PrevSystem):
			m.cursor = (m.cursor - 1 + len(m.systems)) % len(m.systems)
			m.loadRuns()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.table.SetRows(runRows(m.runs, m.now()))
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table for scrolling
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the run table.
func (m RunsModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	titleStyle := m.painter.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))

	title := fmt.Sprintf("PERFORMANCE RUNS - %s", m.systems[m.cursor].Title)
	b.WriteString(centerText(titleStyle.Render(title), m.width))
	b.WriteString("\n\n")

	tableStyle := m.painter.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	tableRendered := tableStyle.Render(m.renderTableContent())

	if m.showSidebar {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), "  ", tableRendered))
	} else {
		b.WriteString(centerText(fmt.Sprintf("< %s >", m.systems[m.cursor].Title), m.width))
		b.WriteString("\n\n")
		b.WriteString(tableRendered)
	}

	b.WriteString("\n")
	helpStyle := m.painter.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderSidebar renders the system list.
func (m RunsModel) renderSidebar() string {
	sidebarStyle := m.painter.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Systems\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, s := range m.systems {
		cursor := "  "
		style := m.painter.NewStyle()
		if i == m.cursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		sidebar.WriteString(style.Render(cursor + truncate(s.Title, sidebarWidth-6)))
		sidebar.WriteString("\n")
	}

	return sidebarStyle.Render(sidebar.String())
}

// renderTableContent renders the table or empty message.
func (m RunsModel) renderTableContent() string {
	if len(m.runs) == 0 {
		emptyStyle := m.painter.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No runs recorded yet.\nView a system or run `orrery bench` to record one.")
	}
	return m.table.View()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m RunsModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m RunsModel) IsQuitting() bool {
	return m.quitting
}

// RunRuns runs the run table screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunRuns(store *storage.Store, reg *registry.Registry, width, height int) (goBack bool, err error) {
	model := NewRunsModel(store, reg, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(RunsModel)
	if !ok {
		return false, nil
	}

	return m.IsGoingBack(), nil
}

// NewRun builds a storage run from a renderer's performance summary.
func NewRun(systemID string, r *renderer.Renderer, suggestions int) storage.Run {
	sum := r.Summary()
	return storage.Run{
		SystemID:     systemID,
		Mode:         r.Config().PerformanceMode.String(),
		Frames:       sum.Frames,
		AvgFPS:       sum.AvgFPS,
		MinFPS:       sum.MinFPS,
		AvgFrameTime: sum.AvgFrameTime,
		MaxFrameTime: sum.MaxFrameTime,
		PeakMemoryMB: sum.PeakMemoryMB,
		MaxDrawCalls: sum.MaxDrawCalls,
		MaxTriangles: sum.MaxTriangles,
		Suggestions:  suggestions,
	}
}

// RecordRun saves the viewer's run. Runs without frames are skipped.
func RecordRun(ctx context.Context, store *storage.Store, vm ViewerModel) (string, error) {
	if store == nil || vm.Renderer() == nil {
		return "", nil
	}
	run := NewRun(vm.SystemID(), vm.Renderer(), vm.Suggestions())
	if run.Frames == 0 {
		return "", nil
	}
	return store.SaveRun(ctx, run)
}
