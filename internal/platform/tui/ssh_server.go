package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/orrery/internal/assets"
	"github.com/vovakirdan/orrery/internal/config"
	"github.com/vovakirdan/orrery/internal/core"
	"github.com/vovakirdan/orrery/internal/logging"
	"github.com/vovakirdan/orrery/internal/registry"
	"github.com/vovakirdan/orrery/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., "localhost:2222").
	Address string

	// HostKeyPath is the path to the host key file. Relative paths are
	// resolved against ~/.orrery; the key is generated when missing.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration
}

// DefaultSSHServerConfig returns a config built from the viewer defaults.
func DefaultSSHServerConfig(cfg config.ServerConfig) SSHServerConfig {
	return SSHServerConfig{
		Address:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		HostKeyPath: cfg.HostKeyPath,
		IdleTimeout: 30 * time.Minute,
	}
}

// Deps are the shared services every SSH session uses.
type Deps struct {
	Registry *registry.Registry
	Store    *storage.Store
	Loader   assets.Loader
	Viewer   config.ViewerConfig
	Seed     int64
	Logger   *log.Logger
}

// SSHServer wraps a Wish SSH server serving one viewer per session.
type SSHServer struct {
	config SSHServerConfig
	deps   Deps
	server *ssh.Server
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig, deps Deps) (*SSHServer, error) {
	logger := deps.Logger
	if logger == nil {
		logger = logging.New(os.Stderr, "orrery-ssh", log.InfoLevel)
	}

	srv := &SSHServer{
		config: cfg,
		deps:   deps,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		hostKeyPath = "host_key"
	}
	if !filepath.IsAbs(hostKeyPath) {
		dir := config.UserDir()
		if dir == "" {
			return nil, fmt.Errorf("cannot resolve host key %s: no home directory", hostKeyPath)
		}
		hostKeyPath = filepath.Join(dir, hostKeyPath)
	}

	hostKeyDir := filepath.Dir(hostKeyPath)
	if err := os.MkdirAll(hostKeyDir, 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.deps.Viewer.Render.FPS,
		Seed:     s.deps.Seed,
	}

	painter := NewPainter(bubbletea.MakeRenderer(sshSession))
	model := NewSessionModel(sshSession.Context(), s.deps, painter, cfg,
		s.logger.With("user", sshSession.User()))

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until an interrupt.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case err := <-errCh:
		s.logger.Error("server error", "error", err)
		return err
	}
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SessionModel manages the full session flow: menu -> viewer -> menu, with
// the run table reachable from the menu. Each session owns its renderer.
type SessionModel struct {
	ctx      context.Context
	deps     Deps
	painter  *Painter
	config   core.RuntimeConfig
	logger   *log.Logger
	menu     MenuModel
	runs     *RunsModel
	viewer   *ViewerModel
	notice   string
	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(ctx context.Context, deps Deps, painter *Painter, cfg core.RuntimeConfig, logger *log.Logger) SessionModel {
	return SessionModel{
		ctx:     ctx,
		deps:    deps,
		painter: painter,
		config:  cfg,
		logger:  logging.OrDiscard(logger),
		menu:    NewMenuModel(deps.Registry, painter, cfg),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch {
	case m.viewer != nil:
		return m.updateViewer(msg)
	case m.runs != nil:
		return m.updateRuns(msg)
	}
	return m.updateMenu(msg)
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.menu.WantsRuns() {
		runs := NewRunsModel(m.deps.Store, m.deps.Registry, m.config.ScreenW, m.config.ScreenH)
		runs.painter = m.painter
		m.runs = &runs
		return m, runs.Init()
	}

	if selected := m.menu.Selected(); selected != nil {
		m.config = m.menu.Config()
		viewer, err := NewViewerModel(m.ctx, ViewerOptions{
			SystemID: selected.ID,
			Config:   m.deps.Viewer,
			Registry: m.deps.Registry,
			Loader:   m.deps.Loader,
			Logger:   m.logger,
			Painter:  m.painter,
			Seed:     m.config.Seed,
			Width:    m.config.ScreenW,
			Height:   m.config.ScreenH,
			Embedded: true,
		})
		if err != nil {
			m.logger.Warn("cannot open system", "id", selected.ID, "err", err)
			m.notice = err.Error()
			m.menu = NewMenuModel(m.deps.Registry, m.painter, m.config)
			return m, nil
		}
		m.viewer = &viewer
		return m, viewer.Init()
	}

	return m, cmd
}

// updateRuns handles updates when the run table is shown.
func (m SessionModel) updateRuns(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.runs.Update(msg)
	if runs, ok := newModel.(RunsModel); ok {
		m.runs = &runs
	}

	if m.runs.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.runs.IsGoingBack() {
		m.runs = nil
		m.menu = NewMenuModel(m.deps.Registry, m.painter, m.config)
		return m, nil
	}
	return m, cmd
}

// updateViewer handles updates when a system is shown.
func (m SessionModel) updateViewer(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.viewer.Update(msg)
	if viewer, ok := newModel.(ViewerModel); ok {
		m.viewer = &viewer
	}

	if m.viewer.IsQuitting() {
		m.closeViewer()
		m.quitting = true
		return m, tea.Quit
	}
	if m.viewer.BackToMenu() {
		m.closeViewer()
		m.viewer = nil
		m.menu = NewMenuModel(m.deps.Registry, m.painter, m.config)
		return m, m.menu.Init()
	}

	return m, cmd
}

// closeViewer records the run and disposes the viewer's renderer.
func (m *SessionModel) closeViewer() {
	if id, err := RecordRun(m.ctx, m.deps.Store, *m.viewer); err != nil {
		m.logger.Warn("cannot save run", "err", err)
	} else if id != "" {
		m.logger.Debug("run saved", "id", id)
	}
	m.viewer.Close()
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch {
	case m.viewer != nil:
		return m.viewer.View()
	case m.runs != nil:
		return m.runs.View()
	}
	view := m.menu.View()
	if m.notice != "" {
		view += "\n" + centerText(m.notice, m.config.ScreenW)
	}
	return view
}
