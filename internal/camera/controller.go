package camera

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// FallbackZoom is reported by GetZoom when no controls are attached.
const FallbackZoom = 100

// Transition is an in-flight animated camera move.
type Transition struct {
	StartPosition  mgl64.Vec3
	TargetPosition mgl64.Vec3
	StartLookAt    mgl64.Vec3
	TargetLookAt   mgl64.Vec3
	Start          time.Time
	Duration       time.Duration
}

// Progress returns the linear progress in [0, 1] at now.
func (t Transition) Progress(now time.Time) float64 {
	if t.Duration <= 0 {
		return 1
	}
	p := float64(now.Sub(t.Start)) / float64(t.Duration)
	return mgl64.Clamp(p, 0, 1)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.now = now
	}
}

// WithoutControls leaves the controller without an orbit rig.
func WithoutControls() ControllerOption {
	return func(c *Controller) {
		c.controls = nil
	}
}

// WithHome sets the position and target ResetView returns to.
func WithHome(position, target mgl64.Vec3) ControllerOption {
	return func(c *Controller) {
		c.HomePosition = position
		c.HomeTarget = target
	}
}

// Controller drives a camera: zoom steps, immediate moves and eased
// transitions, with an orbit rig for free interaction.
type Controller struct {
	// ZoomStep is the distance ZoomIn and ZoomOut move along the view axis.
	ZoomStep      float64
	HomePosition  mgl64.Vec3
	HomeTarget    mgl64.Vec3
	ResetDuration time.Duration

	cam        *Camera
	controls   *Controls
	transition *Transition
	now        func() time.Time
	disposed   bool
}

// NewController wraps cam. The camera's current pose becomes the home view
// unless WithHome is given.
func NewController(cam *Camera, opts ...ControllerOption) *Controller {
	c := &Controller{
		ZoomStep:      5,
		HomePosition:  cam.Position,
		HomeTarget:    cam.Target,
		ResetDuration: 1500 * time.Millisecond,
		cam:           cam,
		controls:      NewControls(cam),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Camera returns the driven camera.
func (c *Controller) Camera() *Camera {
	return c.cam
}

// Controls returns the orbit rig, or nil.
func (c *Controller) Controls() *Controls {
	return c.controls
}

// ZoomIn moves the camera ZoomStep closer to the target.
func (c *Controller) ZoomIn() {
	c.zoomBy(-c.ZoomStep)
}

// ZoomOut moves the camera ZoomStep away from the target.
func (c *Controller) ZoomOut() {
	c.zoomBy(c.ZoomStep)
}

func (c *Controller) zoomBy(delta float64) {
	if c.disposed {
		return
	}
	offset := c.cam.Position.Sub(c.cam.Target)
	dist := offset.Len()
	if dist == 0 {
		return
	}
	next := dist + delta
	if c.controls != nil {
		next = mgl64.Clamp(next, c.controls.MinDistance, c.controls.MaxDistance)
	} else if next < 0.1 {
		next = 0.1
	}
	c.cam.Position = c.cam.Target.Add(offset.Mul(next / dist))
}

// AnimateToPosition starts an eased move to position while looking at
// lookAt. It replaces any transition in flight. A non-positive duration
// moves immediately.
func (c *Controller) AnimateToPosition(position, lookAt mgl64.Vec3, durationMs float64) {
	if c.disposed {
		return
	}
	if durationMs <= 0 {
		c.transition = nil
		c.cam.Position = position
		c.cam.Target = lookAt
		return
	}
	c.transition = &Transition{
		StartPosition:  c.cam.Position,
		TargetPosition: position,
		StartLookAt:    c.cam.Target,
		TargetLookAt:   lookAt,
		Start:          c.now(),
		Duration:       time.Duration(durationMs * float64(time.Millisecond)),
	}
}

// Update advances the active transition, or the orbit rig when idle. It
// reports whether the camera moved. Call once per frame.
func (c *Controller) Update() bool {
	if c.disposed {
		return false
	}
	if t := c.transition; t != nil {
		p := t.Progress(c.now())
		e := EaseInOutCubic(p)
		c.cam.Position = lerpVec(t.StartPosition, t.TargetPosition, e)
		c.cam.Target = lerpVec(t.StartLookAt, t.TargetLookAt, e)
		if p >= 1 {
			c.cam.Position = t.TargetPosition
			c.cam.Target = t.TargetLookAt
			c.transition = nil
		}
		return true
	}
	if c.controls != nil {
		return c.controls.Update()
	}
	return false
}

// ResetView animates back to the home view.
func (c *Controller) ResetView() {
	c.AnimateToPosition(c.HomePosition, c.HomeTarget, float64(c.ResetDuration/time.Millisecond))
}

// SetCameraPosition moves the camera immediately. The orbit rig clamps
// distance and polar angle on the next idle Update, so a position outside
// those bounds is pulled back in.
func (c *Controller) SetCameraPosition(p mgl64.Vec3) {
	if c.disposed {
		return
	}
	c.cam.Position = p
}

// SetTarget changes the look-at point immediately.
func (c *Controller) SetTarget(t mgl64.Vec3) {
	if c.disposed {
		return
	}
	c.cam.Target = t
}

// Follow shifts camera and target together so the target lands on t,
// preserving the viewing offset. During a transition it moves the
// transition's destination instead, so the move ends on t.
func (c *Controller) Follow(t mgl64.Vec3) {
	if c.disposed {
		return
	}
	if tr := c.transition; tr != nil {
		delta := t.Sub(tr.TargetLookAt)
		tr.TargetLookAt = t
		tr.TargetPosition = tr.TargetPosition.Add(delta)
		return
	}
	delta := t.Sub(c.cam.Target)
	c.cam.Target = t
	c.cam.Position = c.cam.Position.Add(delta)
}

// Rotate forwards to the orbit rig.
func (c *Controller) Rotate(azimuth, polar float64) {
	if c.controls != nil {
		c.controls.Rotate(azimuth, polar)
	}
}

// Pan forwards to the orbit rig.
func (c *Controller) Pan(dx, dy float64) {
	if c.controls != nil {
		c.controls.Pan(dx, dy)
	}
}

// GetZoom returns the camera-to-target distance, or FallbackZoom when no
// controls are attached.
func (c *Controller) GetZoom() float64 {
	if c.controls == nil {
		return FallbackZoom
	}
	return c.controls.Distance()
}

// Transitioning reports whether a transition is active.
func (c *Controller) Transitioning() bool {
	return c.transition != nil
}

// ActiveTransition returns a copy of the active transition.
func (c *Controller) ActiveTransition() (Transition, bool) {
	if c.transition == nil {
		return Transition{}, false
	}
	return *c.transition, true
}

// SetAspect updates the projection aspect. Transitions are unaffected.
func (c *Controller) SetAspect(aspect float64) {
	if aspect > 0 {
		c.cam.Aspect = aspect
	}
}

// Dispose releases the rig and drops any transition.
func (c *Controller) Dispose() {
	if c.disposed {
		return
	}
	if c.controls != nil {
		c.controls.Dispose()
		c.controls = nil
	}
	c.transition = nil
	c.disposed = true
}

func lerpVec(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
