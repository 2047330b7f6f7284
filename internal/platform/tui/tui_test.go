package tui

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/orrery/internal/catalog"
	"github.com/vovakirdan/orrery/internal/config"
	"github.com/vovakirdan/orrery/internal/core"
	"github.com/vovakirdan/orrery/internal/registry"
	"github.com/vovakirdan/orrery/internal/storage"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func plainPainter() *Painter {
	return NewPainter(lipgloss.NewRenderer(io.Discard))
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New(nil)
	if err := reg.InitializeAll(context.Background(), catalog.EmbeddedSource{}); err != nil {
		t.Fatalf("InitializeAll: %v", err)
	}
	return reg
}

func testViewer(t *testing.T, embedded bool) ViewerModel {
	t.Helper()
	cfg := config.DefaultViewerConfig()
	cfg.Performance.SampleMemory = false
	m, err := NewViewerModel(context.Background(), ViewerOptions{
		SystemID: "sol",
		Config:   cfg,
		Registry: testRegistry(t),
		Painter:  plainPainter(),
		Width:    100,
		Height:   32,
		Embedded: embedded,
	})
	if err != nil {
		t.Fatalf("NewViewerModel: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

// step feeds msg and returns the updated viewer.
func step(t *testing.T, m ViewerModel, msg tea.Msg) (ViewerModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	vm, ok := next.(ViewerModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return vm, cmd
}

func frames(t *testing.T, m ViewerModel, start time.Time, n int) ViewerModel {
	t.Helper()
	for i := range n {
		m, _ = step(t, m, FrameMsg{Handle: m.Renderer().Handle(), Time: start.Add(time.Duration(i) * time.Second / 30)})
	}
	return m
}

func TestViewerKeyMapActions(t *testing.T) {
	keys := DefaultViewerKeyMap()
	tests := []struct {
		msg  tea.KeyMsg
		want core.Action
	}{
		{tea.KeyMsg{Type: tea.KeyLeft}, core.ActionRotateLeft},
		{runes("l"), core.ActionRotateRight},
		{tea.KeyMsg{Type: tea.KeyUp}, core.ActionRotateUp},
		{runes("j"), core.ActionRotateDown},
		{runes("+"), core.ActionZoomIn},
		{runes("-"), core.ActionZoomOut},
		{tea.KeyMsg{Type: tea.KeyTab}, core.ActionNextBody},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, core.ActionPrevBody},
		{tea.KeyMsg{Type: tea.KeyEnter}, core.ActionFocus},
		{runes("r"), core.ActionResetView},
		{runes("o"), core.ActionToggleOrbits},
		{tea.KeyMsg{Type: tea.KeySpace}, core.ActionTogglePause},
		{runes("]"), core.ActionSpeedUp},
		{runes("["), core.ActionSlowDown},
		{runes("q"), core.ActionQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit},
		{runes("?"), core.ActionNone},
		{runes("x"), core.ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			if got := keys.Action(tt.msg); got != tt.want {
				t.Errorf("Action(%q) = %v, want %v", tt.msg.String(), got, tt.want)
			}
		})
	}
}

func TestMapKeyToMenuAction(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		want MenuAction
	}{
		{runes("k"), MenuActionUp},
		{tea.KeyMsg{Type: tea.KeyDown}, MenuActionDown},
		{tea.KeyMsg{Type: tea.KeyEnter}, MenuActionSelect},
		{tea.KeyMsg{Type: tea.KeyEscape}, MenuActionBack},
		{tea.KeyMsg{Type: tea.KeyTab}, MenuActionRuns},
		{runes("q"), MenuActionQuit},
		{runes("z"), MenuActionNone},
	}
	for _, tt := range tests {
		if got := MapKeyToMenuAction(tt.msg); got != tt.want {
			t.Errorf("MapKeyToMenuAction(%q) = %v, want %v", tt.msg.String(), got, tt.want)
		}
	}
}

func TestPainterMatchesPlainText(t *testing.T) {
	s := core.NewScreen(6, 2)
	s.SetCell(0, 0, '@', core.ColorYellow)
	s.SetCell(1, 0, '#', core.ColorYellow)
	s.SetCell(2, 0, '.', core.ColorCyan)
	s.Set(4, 1, 'o')

	p := plainPainter()
	if got, want := p.RenderScreen(s), s.String(); got != want {
		t.Errorf("RenderScreen = %q, want %q", got, want)
	}
	if len(p.styles) != 2 {
		t.Errorf("cached %d styles, want 2", len(p.styles))
	}
}

func TestViewerDrawsAndSchedules(t *testing.T) {
	m := testViewer(t, false)
	if m.Init() == nil {
		t.Fatal("Init returned no frame command")
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m, cmd := step(t, m, FrameMsg{Handle: m.Renderer().Handle(), Time: start})
	if cmd == nil {
		t.Error("frame did not schedule the next one")
	}
	m = frames(t, m, start.Add(time.Second/30), 10)

	view := m.View()
	if !strings.Contains(view, "Solar System") {
		t.Errorf("status bar lacks system title:\n%s", view)
	}
	if strings.TrimSpace(m.Renderer().Screen().String()) == "" {
		t.Error("scene is empty")
	}
	if got := m.Renderer().Screen().Height(); got != 30 {
		t.Errorf("scene height = %d, want 30 (32 minus HUD)", got)
	}
}

func TestViewerIgnoresStaleFrames(t *testing.T) {
	m := testViewer(t, false)
	_, cmd := step(t, m, FrameMsg{Handle: m.Renderer().Handle() + 1, Time: time.Now()})
	if cmd != nil {
		t.Error("stale frame scheduled another")
	}
}

func TestViewerKeysDriveRenderer(t *testing.T) {
	m := testViewer(t, false)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = frames(t, m, start, 1)
	first := m.Renderer().Selected()
	if first == "" {
		t.Fatal("tab selected nothing")
	}
	if !strings.Contains(m.View(), m.hud.selected) {
		t.Error("selection missing from status bar")
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m = frames(t, m, start.Add(time.Second), 1)
	if got := m.Renderer().Selected(); got != first {
		t.Errorf("tab then shift+tab selected %q, want %q", got, first)
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = frames(t, m, start.Add(2*time.Second), 1)
	if m.Renderer().Focused() != first {
		t.Errorf("focused %q, want %q", m.Renderer().Focused(), first)
	}

	speed := m.Renderer().Speed()
	m, _ = step(t, m, runes("]"))
	m = frames(t, m, start.Add(3*time.Second), 1)
	if got := m.Renderer().Speed(); got != speed*2 {
		t.Errorf("speed = %v, want %v", got, speed*2)
	}

	orbits := m.Renderer().OrbitLinesVisible()
	m, _ = step(t, m, runes("o"))
	m = frames(t, m, start.Add(4*time.Second), 1)
	if m.Renderer().OrbitLinesVisible() == orbits {
		t.Error("o did not toggle orbit lines")
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = frames(t, m, start.Add(5*time.Second), 1)
	if !m.paused || !strings.Contains(m.View(), "PAUSED") {
		t.Error("space did not pause")
	}
}

func TestViewerQuitAndBack(t *testing.T) {
	m := testViewer(t, false)
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	if m.BackToMenu() {
		t.Error("standalone viewer went back to menu")
	}
	m, cmd := step(t, m, runes("q"))
	if !m.IsQuitting() || cmd == nil {
		t.Error("q did not quit")
	}
	if m.Renderer().Running() {
		t.Error("frame loop still running after quit")
	}

	e := testViewer(t, true)
	e, _ = step(t, e, tea.KeyMsg{Type: tea.KeyEscape})
	if !e.BackToMenu() {
		t.Error("embedded viewer ignored back")
	}
}

func TestViewerHelpShrinksScene(t *testing.T) {
	m := testViewer(t, false)
	before := m.Renderer().Screen().Height()
	m, _ = step(t, m, runes("?"))
	if got := m.Renderer().Screen().Height(); got >= before {
		t.Errorf("scene height %d, want less than %d with full help", got, before)
	}
}

func TestViewerResize(t *testing.T) {
	m := testViewer(t, false)
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})
	s := m.Renderer().Screen()
	if s.Width() != 60 || s.Height() != 18 {
		t.Errorf("scene = %dx%d, want 60x18", s.Width(), s.Height())
	}
}

func TestViewerMouseWheelZooms(t *testing.T) {
	m := testViewer(t, false)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	before := m.Renderer().Zoom()
	m, _ = step(t, m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	m = frames(t, m, start, 1)
	if got := m.Renderer().Zoom(); got >= before {
		t.Errorf("zoom %v after wheel up, want below %v", got, before)
	}
}

func TestViewerClickPicks(t *testing.T) {
	m := testViewer(t, false)
	m = frames(t, m, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1)

	// Find a drawn cell the renderer can resolve to a body.
	s := m.Renderer().Screen()
	var x, y int
	found := false
	for yy := 0; yy < s.Height() && !found; yy++ {
		for xx := 0; xx < s.Width(); xx++ {
			if r := s.Get(xx, yy); r != ' ' && r != '.' && r != '*' {
				x, y, found = xx, yy, true
				break
			}
		}
	}
	if !found {
		t.Skip("no body drawn")
	}
	m, _ = step(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = step(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if m.drag != nil {
		t.Error("drag state kept after release")
	}
}

func TestWriteScreenshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	s := core.NewScreen(3, 1)
	s.DrawText(0, 0, "abc")
	path, err := writeScreenshot(dir, "sol", s, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))
	if err != nil {
		t.Fatalf("writeScreenshot: %v", err)
	}
	if filepath.Base(path) != "sol_20240506_070809.txt" {
		t.Errorf("path = %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "abc" {
		t.Errorf("content = %q", data)
	}
}

func TestMenuSelectsSystem(t *testing.T) {
	reg := testRegistry(t)
	m := NewMenuModel(reg, plainPainter(), core.DefaultConfig())
	if !strings.Contains(m.View(), "Solar System") {
		t.Errorf("menu lacks systems:\n%s", m.View())
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(MenuModel)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(MenuModel)
	if cmd == nil || m.Selected() == nil {
		t.Fatal("enter did not select")
	}
	if want := reg.List()[1].ID; m.Selected().ID != want {
		t.Errorf("selected %s, want %s", m.Selected().ID, want)
	}
}

func TestRunsTable(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	for _, r := range []storage.Run{
		{SystemID: "sol", Mode: "high", Frames: 1200, AvgFPS: 29.5, AvgFrameTime: 33 * time.Millisecond, PeakMemoryMB: 12},
		{SystemID: "kepler-16", Mode: "low", Frames: 600, AvgFPS: 60},
	} {
		if _, err := store.SaveRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	m := NewRunsModel(store, testRegistry(t), 120, 30)
	if len(m.runs) != 2 {
		t.Fatalf("all systems shows %d runs, want 2", len(m.runs))
	}

	// Cursor moves from "All systems" to the first registered system.
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(RunsModel)
	for _, r := range m.runs {
		if r.SystemID != m.systems[m.cursor].ID {
			t.Errorf("run for %s listed under %s", r.SystemID, m.systems[m.cursor].ID)
		}
	}

	rows := runRows([]storage.Run{{SystemID: "sol", Frames: 1200, PeakMemoryMB: 1}}, time.Now())
	if rows[0][3] != "1,200" || rows[0][7] != "1.0 MiB" {
		t.Errorf("row = %v", rows[0])
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	m = next.(RunsModel)
	if !m.IsGoingBack() || cmd == nil {
		t.Error("esc did not go back")
	}
}

func TestRecordRun(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	m := testViewer(t, false)
	if id, err := RecordRun(ctx, store, m); err != nil || id != "" {
		t.Errorf("run without frames saved: %q, %v", id, err)
	}
	m = frames(t, m, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 45)
	id, err := RecordRun(ctx, store, m)
	if err != nil || id == "" {
		t.Fatalf("RecordRun = %q, %v", id, err)
	}
	runs, err := store.RecentRuns(ctx, "sol", 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("runs = %v, %v", runs, err)
	}
	if runs[0].Frames != 45 || runs[0].Mode != "high" {
		t.Errorf("run = %+v", runs[0])
	}
}

func TestSessionFlow(t *testing.T) {
	cfg := config.DefaultViewerConfig()
	cfg.Performance.SampleMemory = false
	deps := Deps{Registry: testRegistry(t), Viewer: cfg}
	rc := core.RuntimeConfig{ScreenW: 100, ScreenH: 32, TickRate: 30}
	var m tea.Model = NewSessionModel(context.Background(), deps, plainPainter(), rc, nil)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	s := m.(SessionModel)
	if s.viewer == nil {
		t.Fatal("enter did not open the viewer")
	}
	r := s.viewer.Renderer()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	s = m.(SessionModel)
	if s.viewer != nil {
		t.Fatal("esc did not return to the menu")
	}
	if !r.Disposed() {
		t.Error("renderer not disposed after leaving the viewer")
	}

	m, cmd := m.Update(runes("q"))
	if !m.(SessionModel).quitting || cmd == nil {
		t.Error("q in menu did not quit")
	}
}
