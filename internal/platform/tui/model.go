package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/vovakirdan/orrery/internal/assets"
	"github.com/vovakirdan/orrery/internal/config"
	"github.com/vovakirdan/orrery/internal/core"
	"github.com/vovakirdan/orrery/internal/logging"
	"github.com/vovakirdan/orrery/internal/raster"
	"github.com/vovakirdan/orrery/internal/registry"
	"github.com/vovakirdan/orrery/internal/renderer"
)

const (
	minSpeed = 1.0 / 16
	maxSpeed = 64.0
	// dragScale converts dragged cells into orbit radians per rotate step.
	dragScale = 0.5
)

// ViewerOptions configures a ViewerModel.
type ViewerOptions struct {
	SystemID string
	Config   config.ViewerConfig
	Registry *registry.Registry
	Loader   assets.Loader
	Logger   *log.Logger
	Painter  *Painter
	Seed     int64
	Width    int
	Height   int
	// Embedded makes the back key leave the viewer instead of doing nothing.
	Embedded bool
}

// hudState collects what renderer events report between frames. It is
// shared by copies of the model.
type hudState struct {
	system      string
	selected    string
	stats       renderer.RenderStatsEvent
	status      string
	statusUntil time.Time
	err         error
	suggestions []renderer.SuggestionEvent
	seen        int
}

func (h *hudState) observe(e renderer.Event) {
	switch e := e.(type) {
	case renderer.SystemLoadedEvent:
		h.setStatus(fmt.Sprintf("loaded %s: %d bodies, %d skipped", e.ID, e.Bodies, e.Skipped), 3*time.Second)
	case renderer.BodySelectedEvent:
		h.selected = e.Descriptor.DisplayName()
		if e.ID == "" {
			h.selected = ""
		}
	case renderer.RenderStatsEvent:
		h.stats = e
	case renderer.SuggestionEvent:
		h.suggestions = append(h.suggestions, e)
		h.seen++
	case renderer.ErrorEvent:
		h.err = e.Err
	}
}

func (h *hudState) setStatus(s string, d time.Duration) {
	h.status = s
	h.statusUntil = time.Now().Add(d)
}

type dragState struct {
	button tea.MouseButton
	x, y   int
	moved  bool
}

// ViewerModel is the Bubble Tea model that shows one planetary system.
type ViewerModel struct {
	r        *renderer.Renderer
	cfg      config.ViewerConfig
	painter  *Painter
	log      *log.Logger
	quality  *config.QualityManager
	keys     ViewerKeyMap
	help     help.Model
	hud      *hudState
	input    core.InputFrame
	drag     *dragState
	systemID string
	embedded bool
	paused   bool
	width    int
	height   int

	quitting   bool
	backToMenu bool
}

// NewViewerModel creates the renderer, loads the system and starts the
// frame loop. Load problems for individual bodies or textures are shown in
// the HUD; only a missing system or surface fails.
func NewViewerModel(ctx context.Context, opts ViewerOptions) (ViewerModel, error) {
	if opts.Painter == nil {
		opts.Painter = NewPainter(nil)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		rc := core.DefaultConfig()
		opts.Width, opts.Height = rc.ScreenW, rc.ScreenH
	}

	hud := &hudState{}
	h := help.New()
	m := ViewerModel{
		cfg:      opts.Config,
		painter:  opts.Painter,
		log:      logging.OrDiscard(opts.Logger),
		quality:  config.NewQualityManager(opts.Config.Quality, opts.Config.Render.AutoQuality),
		keys:     DefaultViewerKeyMap(),
		help:     h,
		hud:      hud,
		input:    core.NewInputFrame(),
		systemID: opts.SystemID,
		embedded: opts.Embedded,
		width:    opts.Width,
		height:   opts.Height,
	}

	rcfg := opts.Config.RendererConfig(opts.Width, m.sceneHeight(), opts.Seed)
	r, err := renderer.New(rcfg,
		renderer.WithLogger(m.log),
		renderer.WithRegistry(opts.Registry),
		renderer.WithLoader(opts.Loader),
		renderer.WithObserver(hud.observe),
	)
	if err != nil {
		return m, err
	}
	if err := r.InitializeID(ctx, opts.SystemID); err != nil {
		r.Dispose()
		return m, err
	}
	r.ToggleOrbitLines(opts.Config.Render.ShowOrbits)
	hud.system = r.System().Title()
	r.Start()
	m.r = r
	return m, nil
}

// Init starts the frame loop.
func (m ViewerModel) Init() tea.Cmd {
	return frameCmd(m.cfg.FrameInterval(), m.r.Handle())
}

// Update handles messages and updates the model state.
func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.r.Resize(m.width, m.sceneHeight())
		return m, nil

	case FrameMsg:
		return m.handleFrame(msg)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m ViewerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Screenshot):
		m.saveScreenshot()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.r.Resize(m.width, m.sceneHeight())
		return m, nil
	case key.Matches(msg, m.keys.Back):
		if m.embedded {
			m.r.Stop()
			m.backToMenu = true
			return m, tea.Quit
		}
		return m, nil
	}

	action := m.keys.Action(msg)
	if action == core.ActionQuit {
		m.r.Stop()
		m.quitting = true
		return m, tea.Quit
	}
	if action != core.ActionNone {
		m.input.Set(action)
	}
	return m, nil
}

// handleMouse maps the wheel to zoom, left drags to orbit, right drags to
// pan and a left click without movement to picking.
func (m ViewerModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.input.Set(core.ActionZoomIn)
		case tea.MouseButtonWheelDown:
			m.input.Set(core.ActionZoomOut)
		case tea.MouseButtonLeft, tea.MouseButtonRight:
			m.drag = &dragState{button: msg.Button, x: msg.X, y: msg.Y}
		}

	case tea.MouseActionMotion:
		if m.drag == nil {
			return m, nil
		}
		dx, dy := msg.X-m.drag.x, msg.Y-m.drag.y
		if dx == 0 && dy == 0 {
			return m, nil
		}
		m.drag.moved = true
		m.drag.x, m.drag.y = msg.X, msg.Y
		step := m.cfg.Camera.RotateStep * dragScale
		if m.drag.button == tea.MouseButtonRight {
			m.r.Pan(-float64(dx)*step, float64(dy)*step*raster.CellAspect)
		} else {
			m.r.Rotate(-float64(dx)*step, -float64(dy)*step*raster.CellAspect)
		}

	case tea.MouseActionRelease:
		if m.drag != nil && !m.drag.moved && m.drag.button == tea.MouseButtonLeft && msg.Y < m.sceneHeight() {
			if id, ok := m.r.PickAt(msg.X, msg.Y); ok {
				m.log.Debug("picked body", "id", id)
			}
		}
		m.drag = nil
	}
	return m, nil
}

// handleFrame applies queued input, draws one frame and reacts to the
// suggestions it produced.
func (m ViewerModel) handleFrame(msg FrameMsg) (tea.Model, tea.Cmd) {
	if msg.Handle != m.r.Handle() || !m.r.Running() {
		return m, nil
	}

	for a, n := range m.input.Actions {
		for range n {
			m.apply(a)
		}
	}
	m.input.Clear()

	if !m.r.Frame(msg.Time) {
		return m, nil
	}
	m.adjustQuality(msg.Time)
	if m.hud.err != nil {
		m.log.Warn("renderer error", "err", m.hud.err)
		m.hud.setStatus(m.hud.err.Error(), 5*time.Second)
		m.hud.err = nil
	}
	return m, frameCmd(m.cfg.FrameInterval(), msg.Handle)
}

func (m *ViewerModel) apply(a core.Action) {
	step := m.cfg.Camera.RotateStep
	switch a {
	case core.ActionRotateLeft:
		m.r.Rotate(-step, 0)
	case core.ActionRotateRight:
		m.r.Rotate(step, 0)
	case core.ActionRotateUp:
		m.r.Rotate(0, -step)
	case core.ActionRotateDown:
		m.r.Rotate(0, step)
	case core.ActionZoomIn:
		m.r.ZoomIn()
	case core.ActionZoomOut:
		m.r.ZoomOut()
	case core.ActionNextBody:
		m.cycleSelection(1)
	case core.ActionPrevBody:
		m.cycleSelection(-1)
	case core.ActionFocus:
		if id := m.r.Selected(); id != "" {
			if err := m.r.FocusOnBody(id); err != nil {
				m.hud.setStatus(err.Error(), 3*time.Second)
			}
		}
	case core.ActionResetView:
		m.r.ResetView()
	case core.ActionToggleOrbits:
		m.r.ToggleOrbitLines(!m.r.OrbitLinesVisible())
	case core.ActionTogglePause:
		m.paused = !m.paused
		m.r.SetAnimations(!m.paused)
	case core.ActionSpeedUp:
		m.r.SetSpeed(math.Min(m.r.Speed()*2, maxSpeed))
	case core.ActionSlowDown:
		m.r.SetSpeed(math.Max(m.r.Speed()/2, minSpeed))
	}
}

// cycleSelection selects the body dir steps away from the current one in
// catalogue order.
func (m *ViewerModel) cycleSelection(dir int) {
	bodies := m.r.Bodies()
	if len(bodies) == 0 {
		return
	}
	next := 0
	if dir < 0 {
		next = len(bodies) - 1
	}
	for i, d := range bodies {
		if d.ID == m.r.Selected() {
			next = (i + dir + len(bodies)) % len(bodies)
			break
		}
	}
	//nolint:errcheck // ids come from the loaded system
	m.r.SelectBody(bodies[next].ID)
}

// adjustQuality lowers the quality preset when auto quality is on and the
// monitor reported severe problems.
func (m *ViewerModel) adjustQuality(now time.Time) {
	pending := m.hud.suggestions
	m.hud.suggestions = nil
	for _, s := range pending {
		preset, changed := m.quality.Observe(s.Suggestion, now)
		if !changed {
			continue
		}
		config.ApplyQualityPreset(&m.cfg, preset)
		mode, err := renderer.ParsePerformanceMode(m.cfg.Render.PerformanceMode)
		if err != nil {
			continue
		}
		m.r.UpdateConfig(renderer.Patch{
			PerformanceMode: renderer.Mode(mode),
			ParticleCount:   renderer.Int(m.cfg.Render.ParticleCount),
			Antialiasing:    renderer.Bool(m.cfg.Render.Antialiasing),
		})
		m.log.Info("quality lowered", "preset", preset, "metric", s.Suggestion.Metric)
		m.hud.setStatus(fmt.Sprintf("quality lowered to %s (%s)", preset, s.Suggestion.Metric), 5*time.Second)
	}
}

// saveScreenshot writes the last frame as plain text to ~/.orrery/screenshots.
func (m *ViewerModel) saveScreenshot() {
	dir := config.UserPath("screenshots")
	if dir == "" {
		m.hud.setStatus("screenshot failed: no home directory", 3*time.Second)
		return
	}
	path, err := writeScreenshot(dir, m.systemID, m.r.Screen(), time.Now())
	if err != nil {
		m.log.Warn("screenshot failed", "err", err)
		m.hud.setStatus("screenshot failed: "+err.Error(), 3*time.Second)
		return
	}
	m.hud.setStatus("saved "+path, 3*time.Second)
}

func writeScreenshot(dir, systemID string, s *core.Screen, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s_%s.txt", systemID, now.Format("20060102_150405"))
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(s.String()), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// sceneHeight is the number of rows left for the scene below the HUD.
func (m ViewerModel) sceneHeight() int {
	return max(m.height-m.footerHeight(), 1)
}

func (m ViewerModel) footerHeight() int {
	if m.help.ShowAll {
		return 1 + lipgloss.Height(m.help.View(m.keys))
	}
	return 2
}

// View renders the current state to a string for display.
func (m ViewerModel) View() string {
	if m.quitting || m.r == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.painter.RenderScreen(m.r.Screen()))
	b.WriteString("\n")
	b.WriteString(m.statusBar())
	b.WriteString("\n")
	helpStyle := m.painter.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// statusBar renders system, selection and live stats in one line.
func (m ViewerModel) statusBar() string {
	barStyle := m.painter.NewStyle().
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	dimStyle := m.painter.NewStyle().
		Foreground(lipgloss.Color("252")).
		Background(lipgloss.Color("237"))

	left := " " + m.hud.system
	if m.hud.selected != "" {
		left += " > " + m.hud.selected
		if m.r.Focused() != "" {
			left += " [focus]"
		}
	}
	if m.hud.status != "" && time.Now().Before(m.hud.statusUntil) {
		left += "  " + m.hud.status
	}

	metrics := m.r.Metrics()
	right := fmt.Sprintf(" %.0f fps  %s tris  %d calls  %s  x%s ",
		m.hud.stats.FPS,
		humanize.Comma(int64(m.hud.stats.Triangles)),
		m.hud.stats.DrawCalls,
		humanize.IBytes(uint64(metrics.MemoryMB*1024*1024)),
		humanize.Ftoa(m.r.Speed()),
	)
	if m.paused {
		right = " PAUSED" + right
	}
	if m.quality.IsEnabled() {
		right += string(m.quality.Level()) + " "
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		// Drop the left side's tail before the stats.
		left = truncate(left, max(m.width-lipgloss.Width(right), 0))
		gap = max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	}
	return barStyle.Render(left+strings.Repeat(" ", gap)) + dimStyle.Render(right)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "~"
}

// Renderer returns the underlying renderer.
func (m ViewerModel) Renderer() *renderer.Renderer {
	return m.r
}

// SystemID returns the id of the shown system.
func (m ViewerModel) SystemID() string {
	return m.systemID
}

// Suggestions returns how many performance suggestions were reported.
func (m ViewerModel) Suggestions() int {
	return m.hud.seen
}

// IsQuitting returns true if user requested to quit entirely.
func (m ViewerModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to the menu.
func (m ViewerModel) BackToMenu() bool {
	return m.backToMenu
}

// Close disposes the renderer.
func (m ViewerModel) Close() {
	if m.r != nil {
		m.r.Dispose()
	}
}

// ErrNoTerminal is returned by Run when the program ends without a viewer.
var ErrNoTerminal = errors.New("tui: viewer did not start")

// Run shows one system until the user quits and returns the final model.
// The renderer is disposed before Run returns.
func Run(ctx context.Context, opts ViewerOptions) (ViewerModel, error) {
	model, err := NewViewerModel(ctx, opts)
	if err != nil {
		return model, err
	}
	defer model.Close()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Drag to orbit, wheel to zoom
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return model, err
	}
	vm, ok := final.(ViewerModel)
	if !ok {
		return model, ErrNoTerminal
	}
	return vm, nil
}
