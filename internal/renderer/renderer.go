// Package renderer wires the scene, bodies, environment, camera and
// performance monitor into a frame loop and exposes the control surface a
// host application drives.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/orrery/internal/assets"
	"github.com/vovakirdan/orrery/internal/bodies"
	"github.com/vovakirdan/orrery/internal/camera"
	"github.com/vovakirdan/orrery/internal/catalog"
	"github.com/vovakirdan/orrery/internal/core"
	"github.com/vovakirdan/orrery/internal/environment"
	"github.com/vovakirdan/orrery/internal/logging"
	"github.com/vovakirdan/orrery/internal/perf"
	"github.com/vovakirdan/orrery/internal/raster"
	"github.com/vovakirdan/orrery/internal/registry"
	"github.com/vovakirdan/orrery/internal/scene"
)

var (
	// ErrContextUnavailable means there is no surface to draw on.
	ErrContextUnavailable = errors.New("renderer: rendering surface unavailable")
	// ErrDisposed is returned by operations on a disposed renderer.
	ErrDisposed = errors.New("renderer: disposed")
	// ErrUnknownBody is returned for ids that are not in the loaded system.
	ErrUnknownBody = errors.New("renderer: unknown body")
	// ErrNoRegistry is returned by InitializeID without a registry.
	ErrNoRegistry = errors.New("renderer: no registry configured")
)

// maxFrameStep bounds the simulated time of one frame so a stalled loop
// does not fling bodies around their orbits.
const maxFrameStep = 0.1

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

// WithRegistry sets the registry InitializeID resolves systems from.
func WithRegistry(reg *registry.Registry) Option {
	return func(r *Renderer) { r.registry = reg }
}

// WithLoader sets the texture loader used during Initialize.
func WithLoader(l assets.Loader) Option {
	return func(r *Renderer) { r.loader = l }
}

// WithClock replaces time.Now for the camera and performance monitor.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// WithObserver adds an event observer.
func WithObserver(obs Observer) Option {
	return func(r *Renderer) {
		if obs != nil {
			r.observers = append(r.observers, obs)
		}
	}
}

// WithCallbacks adds per-kind callbacks.
func WithCallbacks(c Callbacks) Option {
	return WithObserver(c.Observer())
}

// Renderer owns one scene and everything that draws and animates it. It is
// driven from a single goroutine.
type Renderer struct {
	cfg       Config
	log       *log.Logger
	registry  *registry.Registry
	loader    assets.Loader
	now       func() time.Time
	observers []Observer

	screen *core.Screen
	raster *raster.Rasterizer
	scene  *scene.Scene
	res    *scene.Resources
	cam    *camera.Camera
	ctrl   *camera.Controller
	perf   *perf.Monitor

	system   catalog.System
	group    *scene.Node
	env      *environment.Manager
	bodies   *bodies.Manager
	textures map[string]*scene.Texture
	loaded   bool
	skipped  int

	selected string
	focused  string

	handle     uint64
	lastHandle uint64
	lastFrame  time.Time
	lastStats  time.Time
	lastZoom   float64
	disposed   bool
}

// New creates a renderer. A surface without area fails with
// ErrContextUnavailable, which is also reported once as a fatal ErrorEvent.
func New(cfg Config, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		cfg: cfg.normalized(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = logging.OrDiscard(r.log)

	if cfg.Width <= 0 || cfg.Height <= 0 {
		err := fmt.Errorf("%w: %dx%d", ErrContextUnavailable, cfg.Width, cfg.Height)
		r.log.Error("renderer init failed", "err", err)
		r.emit(ErrorEvent{Err: err, Fatal: true})
		return nil, err
	}

	r.screen = core.NewScreen(cfg.Width, cfg.Height)
	r.raster = raster.New(r.screen)
	r.raster.Antialias = r.cfg.Antialiasing
	r.scene = scene.New()
	r.res = scene.NewResources()

	r.cam = camera.New(raster.Aspect(cfg.Width, cfg.Height))
	r.ctrl = camera.NewController(r.cam, camera.WithClock(r.now))
	r.ctrl.Controls().Enabled = r.cfg.EnableControls
	if r.cfg.ZoomStep > 0 {
		r.ctrl.ZoomStep = r.cfg.ZoomStep
	}

	r.perf = perf.New(perf.Config{
		HistorySize:        r.cfg.HistorySize,
		SampleMemory:       r.cfg.SampleMemory,
		Thresholds:         r.cfg.Thresholds,
		SuggestionInterval: 5 * time.Second,
	},
		perf.WithClock(r.now),
		perf.WithCounters(perf.CounterFunc(r.counters)),
		perf.OnSuggestion(func(s perf.Suggestion) {
			r.log.Debug("performance suggestion", "metric", s.Metric, "severity", s.Severity, "msg", s.Message)
			r.emit(SuggestionEvent{Suggestion: s})
		}),
	)
	r.lastZoom = r.ctrl.GetZoom()
	return r, nil
}

func (r *Renderer) counters() perf.Counters {
	info := r.res.Info()
	return perf.Counters{
		DrawCalls:  info.Render.Calls,
		Triangles:  info.Render.Triangles,
		Geometries: info.Geometries,
		Textures:   info.Textures,
	}
}

// InitializeID loads a system from the registry.
func (r *Renderer) InitializeID(ctx context.Context, id string) error {
	if r.registry == nil {
		return ErrNoRegistry
	}
	sys, err := r.registry.Get(id)
	if err != nil {
		r.emit(ErrorEvent{Err: err})
		return err
	}
	return r.Initialize(ctx, sys)
}

// Initialize builds the scene for sys, replacing any loaded system. Texture
// preloading finishes before any body is created. A malformed descriptor is
// reported as a non-fatal ErrorEvent and skipped.
func (r *Renderer) Initialize(ctx context.Context, sys catalog.System) error {
	if r.disposed {
		return ErrDisposed
	}
	if err := sys.Validate(); err != nil {
		err = fmt.Errorf("renderer: %w", err)
		r.emit(ErrorEvent{Err: err})
		return err
	}

	refs := make([]string, 0, len(sys.Bodies))
	for _, d := range sys.Bodies {
		if d.Material.Texture != "" {
			refs = append(refs, d.Material.Texture)
		}
	}
	textures, failures := assets.Preload(ctx, r.loader, refs, r.log)
	for _, f := range failures {
		r.emit(ErrorEvent{Err: f})
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.unload()
	r.system = sys
	r.textures = textures
	for ref, tex := range textures {
		if tex == nil {
			delete(textures, ref)
			continue
		}
		r.res.Track(tex)
	}

	r.group = scene.NewNode(sys.ID)
	r.group.Position = sys.Center.V()
	if sys.Scale > 0 {
		r.group.SetUniformScale(sys.Scale)
	}
	r.scene.Add(r.group)

	r.env = environment.New(r.scene, r.res, r.starfield(), r.log)
	r.env.SetStarfieldVisible(r.cfg.BackgroundStars)
	r.buildBodies()

	r.frameSystem()
	r.perf.Reset()
	r.loaded = true

	r.log.Info("system loaded", "id", sys.ID, "bodies", r.bodies.Count(), "skipped", r.skipped)
	r.emit(SystemLoadedEvent{ID: sys.ID, Bodies: r.bodies.Count(), Skipped: r.skipped})
	return nil
}

func (r *Renderer) starfield() *environment.StarfieldConfig {
	sf := environment.DefaultStarfield()
	if spec := r.system.Starfield; spec != nil {
		sf.Count = spec.Count
		if spec.Seed != 0 {
			sf.Seed = spec.Seed
		}
		if spec.MinRadius > 0 {
			sf.MinRadius = spec.MinRadius
		}
		if spec.MaxRadius > 0 {
			sf.MaxRadius = spec.MaxRadius
		}
		sf.ColorVariation = spec.ColorVariation
	}
	if r.cfg.Seed != 0 {
		sf.Seed ^= r.cfg.Seed
	}
	sf.Count = int(math.Round(float64(sf.Count) * r.cfg.PerformanceMode.StarScale()))
	return &sf
}

func (r *Renderer) buildBodies() {
	r.bodies = bodies.NewManager(r.group, r.res, r.log,
		bodies.WithTextures(r.textures),
		bodies.WithParticleScale(r.cfg.PerformanceMode.ParticleScale()),
		bodies.WithMaxParticles(r.cfg.ParticleCount),
		bodies.WithSeed(r.cfg.Seed),
	)
	r.skipped = 0
	for _, d := range r.system.Bodies {
		if _, err := r.bodies.CreateBody(d); err != nil {
			r.skipped++
			r.log.Warn("skipping body", "id", d.ID, "err", err)
			r.emit(ErrorEvent{Err: err, BodyID: d.ID})
		}
	}
	if r.selected != "" && !r.bodies.Highlight(r.selected, true) {
		r.selected = ""
	}
	if _, ok := r.bodies.Body(r.focused); !ok {
		r.focused = ""
	}
}

// frameSystem points the camera at the whole system and makes that the
// home view.
func (r *Renderer) frameSystem() {
	center := r.group.WorldPosition()
	extent := 1.0
	for _, id := range r.bodies.IDs() {
		p, _ := r.bodies.WorldPosition(id)
		reach := p.Sub(center).Len() + r.worldRadius(id)
		if b, ok := r.bodies.Body(id); ok && b.Descriptor.Orbits() {
			reach = math.Max(reach, b.Descriptor.OrbitRadius*r.systemScale())
		}
		extent = math.Max(extent, reach)
	}
	dist := math.Max(extent/math.Tan(r.cam.FOV/2)*1.1, 10)

	if c := r.ctrl.Controls(); c != nil {
		c.MaxDistance = math.Max(c.MaxDistance, dist*3)
		c.MinDistance = math.Min(c.MinDistance, dist/50)
	}
	r.cam.Far = math.Max(r.cam.Far, dist*6)

	home := center.Add(mgl64.Vec3{0, 0.45, 1}.Normalize().Mul(dist))
	r.ctrl.HomePosition = home
	r.ctrl.HomeTarget = center
	r.ctrl.SetTarget(center)
	r.ctrl.SetCameraPosition(home)
	r.lastZoom = r.ctrl.GetZoom()
}

func (r *Renderer) systemScale() float64 {
	if r.group == nil {
		return 1
	}
	return r.group.Scale[0]
}

func (r *Renderer) worldRadius(id string) float64 {
	return r.bodies.Radius(id) * r.systemScale()
}

// drawLabel names the selected body just above its top edge on screen.
func (r *Renderer) drawLabel() {
	if r.selected == "" {
		return
	}
	d, ok := r.descriptor(r.selected)
	if !ok {
		return
	}
	pos, ok := r.bodies.WorldPosition(r.selected)
	if !ok {
		return
	}
	up := r.cam.Up.Normalize()
	r.raster.Label(r.cam, pos.Add(up.Mul(r.worldRadius(r.selected))), d.DisplayName(), core.ColorYellow)
}

func (r *Renderer) unload() {
	if r.bodies != nil {
		r.bodies.Dispose()
		r.bodies = nil
	}
	if r.env != nil {
		r.env.Dispose()
		r.env = nil
	}
	if r.group != nil {
		r.scene.Remove(r.group)
		r.group = nil
	}
	// Bodies share textures by ref, so the renderer releases them.
	for _, tex := range r.textures {
		tex.Dispose()
	}
	r.textures = nil
	r.loaded = false
}

// Loaded reports whether a system is loaded.
func (r *Renderer) Loaded() bool { return r.loaded && !r.disposed }

// System returns the loaded system.
func (r *Renderer) System() catalog.System { return r.system }

// Start begins the frame loop and returns its handle. Each call returns a
// new, larger handle.
func (r *Renderer) Start() uint64 {
	if r.disposed {
		return 0
	}
	r.lastHandle++
	r.handle = r.lastHandle
	r.lastFrame = time.Time{}
	return r.handle
}

// Stop ends the frame loop.
func (r *Renderer) Stop() {
	r.handle = 0
}

// Running reports whether frames should keep being scheduled.
func (r *Renderer) Running() bool {
	return r.handle != 0 && !r.disposed
}

// Handle returns the active frame handle, or 0.
func (r *Renderer) Handle() uint64 { return r.handle }

// Frame runs one frame at now and reports whether the loop should continue.
func (r *Renderer) Frame(now time.Time) bool {
	if !r.Running() {
		return false
	}
	var dt float64
	if !r.lastFrame.IsZero() {
		dt = math.Min(now.Sub(r.lastFrame).Seconds(), maxFrameStep)
		if dt < 0 {
			dt = 0
		}
	}
	r.lastFrame = now

	r.perf.FrameStart()
	r.Update(dt)

	r.perf.RenderStart()
	r.res.BeginFrame()
	stats := r.raster.Render(r.scene, r.cam)
	if r.cfg.Labels {
		r.drawLabel()
	}
	r.res.RecordDraw(stats.RenderInfo())
	snap := r.perf.FrameEnd()

	if r.lastStats.IsZero() || now.Sub(r.lastStats) >= r.cfg.StatsInterval {
		r.lastStats = now
		info := r.res.Info()
		r.emit(RenderStatsEvent{
			FPS:        snap.FPS,
			Triangles:  info.Render.Triangles,
			Geometries: info.Geometries,
			Textures:   info.Textures,
			DrawCalls:  info.Render.Calls,
		})
	}
	return true
}

// Update advances the camera, animations and focus tracking by dt seconds
// without drawing. It is a no-op after Dispose.
func (r *Renderer) Update(dt float64) {
	if r.disposed {
		return
	}
	r.ctrl.Update()
	if r.loaded && r.cfg.EnableAnimations {
		r.bodies.UpdateAnimations(dt, r.cfg.Speed)
		r.env.Update(dt)
	}
	if r.focused != "" && r.loaded {
		if p, ok := r.bodies.WorldPosition(r.focused); ok {
			r.ctrl.Follow(p)
		}
	}
	if z := r.ctrl.GetZoom(); math.Abs(z-r.lastZoom) > 1e-6 {
		r.lastZoom = z
		r.emit(CameraChangedEvent{Zoom: z})
	}
}

// Run drives frames every interval until ctx is done or the loop is
// stopped. It blocks the calling goroutine.
func (r *Renderer) Run(ctx context.Context, interval time.Duration) error {
	if r.disposed {
		return ErrDisposed
	}
	if interval <= 0 {
		interval = time.Second / 30
	}
	if !r.Running() {
		r.Start()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Stop()
			return ctx.Err()
		case <-ticker.C:
			if !r.Frame(r.now()) {
				return nil
			}
		}
	}
}

// Dispose releases everything. It is safe from any state and idempotent;
// afterwards Frame and Update do nothing.
func (r *Renderer) Dispose() {
	if r.disposed {
		return
	}
	r.Stop()
	r.unload()
	r.ctrl.Dispose()
	r.selected, r.focused = "", ""
	r.disposed = true
	r.log.Debug("renderer disposed")
}

// Disposed reports whether Dispose has been called.
func (r *Renderer) Disposed() bool { return r.disposed }
