package renderer

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/orrery/internal/camera"
	"github.com/vovakirdan/orrery/internal/catalog"
	"github.com/vovakirdan/orrery/internal/core"
	"github.com/vovakirdan/orrery/internal/perf"
	"github.com/vovakirdan/orrery/internal/raster"
	"github.com/vovakirdan/orrery/internal/scene"
)

// Config returns the active configuration.
func (r *Renderer) Config() Config { return r.cfg }

// UpdateConfig applies a partial configuration. Particle settings rebuild
// the loaded bodies; everything else applies from the next frame.
func (r *Renderer) UpdateConfig(p Patch) {
	if r.disposed {
		return
	}
	prev := r.cfg
	next := prev.Apply(p)
	r.cfg = next

	r.raster.Antialias = next.Antialiasing
	r.ctrl.Controls().Enabled = next.EnableControls
	r.perf.SetThresholds(next.Thresholds)
	if r.env != nil {
		r.env.SetStarfieldVisible(next.BackgroundStars)
	}
	if prev.PerformanceMode != next.PerformanceMode && r.env != nil {
		r.env.SetStarfield(*r.starfield())
		r.env.SetStarfieldVisible(next.BackgroundStars)
	}
	if r.loaded && prev.rebuildsBodies(next) {
		r.log.Debug("rebuilding bodies", "mode", next.PerformanceMode, "particles", next.ParticleCount)
		r.rebuildBodies()
	}
}

// rebuildBodies recreates every body, keeping their orbit angles.
func (r *Renderer) rebuildBodies() {
	angles := make(map[string]float64)
	for _, id := range r.bodies.IDs() {
		if a, ok := r.bodies.OrbitAngle(id); ok {
			angles[id] = a
		}
	}
	orbits := r.bodies.OrbitLinesVisible()
	r.bodies.Dispose()
	r.buildBodies()
	r.bodies.SetOrbitLinesVisible(orbits)
	r.bodies.RestoreAngles(angles)
}

// SelectBody highlights id and reports it to observers. An empty id clears
// the selection.
func (r *Renderer) SelectBody(id string) error {
	if r.disposed {
		return ErrDisposed
	}
	if id == "" {
		if r.selected != "" {
			r.bodies.Highlight(r.selected, false)
			r.selected = ""
			r.emit(BodySelectedEvent{})
		}
		return nil
	}
	d, ok := r.descriptor(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBody, id)
	}
	if r.selected != "" && r.selected != id {
		r.bodies.Highlight(r.selected, false)
	}
	r.bodies.Highlight(id, true)
	r.selected = id
	r.emit(BodySelectedEvent{ID: id, Descriptor: d})
	return nil
}

func (r *Renderer) descriptor(id string) (catalog.Descriptor, bool) {
	if !r.loaded {
		return catalog.Descriptor{}, false
	}
	return r.bodies.Descriptor(id)
}

// Selected returns the selected body id, or "".
func (r *Renderer) Selected() string { return r.selected }

// FocusOnBody animates the camera to frame id and keeps it centred on the
// body as it moves. The current viewing direction is kept.
func (r *Renderer) FocusOnBody(id string) error {
	if r.disposed {
		return ErrDisposed
	}
	if _, ok := r.descriptor(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBody, id)
	}
	target, _ := r.bodies.WorldPosition(id)
	dir := r.cam.Position.Sub(r.cam.Target)
	if dir.Len() < 1e-9 {
		dir = mgl64.Vec3{0, 0.45, 1}
	}
	dist := math.Max(r.worldRadius(id)*6, 3)
	if c := r.ctrl.Controls(); c != nil {
		dist = mgl64.Clamp(dist, c.MinDistance, c.MaxDistance)
	}
	pos := target.Add(dir.Normalize().Mul(dist))
	r.ctrl.AnimateToPosition(pos, target, float64(r.cfg.FocusDuration.Milliseconds()))
	r.focused = id
	r.log.Debug("focus", "id", id, "distance", dist)
	return nil
}

// ClearFocus stops following the focused body.
func (r *Renderer) ClearFocus() { r.focused = "" }

// Focused returns the followed body id, or "".
func (r *Renderer) Focused() string { return r.focused }

// ToggleOrbitLines shows or hides every orbit path.
func (r *Renderer) ToggleOrbitLines(visible bool) {
	if r.loaded && !r.disposed {
		r.bodies.SetOrbitLinesVisible(visible)
	}
}

// OrbitLinesVisible reports the global orbit path visibility.
func (r *Renderer) OrbitLinesVisible() bool {
	return r.loaded && r.bodies.OrbitLinesVisible()
}

// SetOrbitLineVisibility shows or hides one body's orbit path.
func (r *Renderer) SetOrbitLineVisibility(id string, visible bool) error {
	if r.disposed {
		return ErrDisposed
	}
	if !r.loaded || !r.bodies.SetOrbitLineVisible(id, visible) {
		return fmt.Errorf("%w: %q has no orbit", ErrUnknownBody, id)
	}
	return nil
}

// ZoomIn moves the camera one step toward its target.
func (r *Renderer) ZoomIn() {
	if !r.disposed {
		r.ctrl.ZoomIn()
	}
}

// ZoomOut moves the camera one step away from its target.
func (r *Renderer) ZoomOut() {
	if !r.disposed {
		r.ctrl.ZoomOut()
	}
}

// Zoom returns the camera-to-target distance.
func (r *Renderer) Zoom() float64 {
	if r.disposed {
		return 0
	}
	return r.ctrl.GetZoom()
}

// ResetView drops focus and animates back to the system overview.
func (r *Renderer) ResetView() {
	if r.disposed {
		return
	}
	r.focused = ""
	r.ctrl.ResetView()
}

// Rotate orbits the camera around its target.
func (r *Renderer) Rotate(azimuth, polar float64) {
	if !r.disposed {
		r.ctrl.Rotate(azimuth, polar)
	}
}

// Pan slides the camera and its target; it drops focus.
func (r *Renderer) Pan(dx, dy float64) {
	if r.disposed {
		return
	}
	r.focused = ""
	r.ctrl.Pan(dx, dy)
}

// SetSpeed sets the animation speed multiplier. Zero freezes motion.
func (r *Renderer) SetSpeed(speed float64) {
	r.cfg.Speed = speed
}

// Speed returns the animation speed multiplier.
func (r *Renderer) Speed() float64 { return r.cfg.Speed }

// SetAnimations pauses or resumes body and starfield motion.
func (r *Renderer) SetAnimations(on bool) {
	r.cfg.EnableAnimations = on
}

// PickAt selects the body drawn at cell (x, y) in the last frame.
func (r *Renderer) PickAt(x, y int) (string, bool) {
	if r.disposed || !r.loaded {
		return "", false
	}
	id, ok := r.bodies.Find(r.raster.Pick(x, y))
	if !ok {
		return "", false
	}
	if err := r.SelectBody(id); err != nil {
		return "", false
	}
	return id, true
}

// Resize changes the surface size. Camera transitions carry on.
func (r *Renderer) Resize(w, h int) {
	if r.disposed || w <= 0 || h <= 0 {
		return
	}
	r.screen.Resize(w, h)
	r.ctrl.SetAspect(raster.Aspect(w, h))
	r.cfg.Width, r.cfg.Height = w, h
}

// Screen returns the frame buffer of the last frame.
func (r *Renderer) Screen() *core.Screen { return r.screen }

// Bodies returns the descriptors of the created bodies in catalogue order.
func (r *Renderer) Bodies() []catalog.Descriptor {
	if !r.loaded || r.disposed {
		return nil
	}
	out := make([]catalog.Descriptor, 0, r.bodies.Count())
	for _, id := range r.bodies.IDs() {
		if d, ok := r.bodies.Descriptor(id); ok {
			out = append(out, d)
		}
	}
	return out
}

// BodyPosition returns the world position of a body.
func (r *Renderer) BodyPosition(id string) (mgl64.Vec3, bool) {
	if !r.loaded || r.disposed {
		return mgl64.Vec3{}, false
	}
	return r.bodies.WorldPosition(id)
}

// Transitioning reports whether a camera transition is in flight.
func (r *Renderer) Transitioning() bool {
	return !r.disposed && r.ctrl.Transitioning()
}

// Summary aggregates the performance history.
func (r *Renderer) Summary() perf.Summary { return r.perf.Summary() }

// Metrics returns the latest performance snapshot.
func (r *Renderer) Metrics() perf.Snapshot { return r.perf.Metrics() }

// Resources returns the live resource counters.
func (r *Renderer) Resources() scene.Info { return r.res.Info() }

// Camera returns the viewer camera.
func (r *Renderer) Camera() *camera.Camera { return r.cam }
