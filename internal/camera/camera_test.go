package camera

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newController(opts ...ControllerOption) (*Controller, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	cam := New(2)
	cam.Position = mgl64.Vec3{0, 0, 50}
	opts = append([]ControllerOption{WithClock(clock.Now)}, opts...)
	return NewController(cam, opts...), clock
}

func TestEaseInOutCubic(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.0625},
		{0.5, 0.5},
		{0.75, 0.9375},
		{1, 1},
		{2, 1},
	}
	for _, tt := range tests {
		if got := EaseInOutCubic(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("EaseInOutCubic(%v) = %v, expected %v", tt.in, got, tt.want)
		}
	}
}

func TestTransitionCompletesAtDuration(t *testing.T) {
	c, clock := newController()
	target := mgl64.Vec3{10, 20, 30}
	look := mgl64.Vec3{1, 2, 3}

	c.AnimateToPosition(target, look, 1000)
	if !c.Transitioning() {
		t.Fatal("transition should be active")
	}

	clock.Advance(500 * time.Millisecond)
	c.Update()
	mid := c.Camera().Position
	want := mgl64.Vec3{0, 0, 50}.Add(target.Sub(mgl64.Vec3{0, 0, 50}).Mul(0.5))
	if !mid.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("midpoint = %v, expected %v", mid, want)
	}

	clock.Advance(500 * time.Millisecond)
	c.Update()
	if !c.Camera().Position.ApproxEqualThreshold(target, 1e-9) {
		t.Errorf("position = %v, expected %v", c.Camera().Position, target)
	}
	if !c.Camera().Target.ApproxEqualThreshold(look, 1e-9) {
		t.Errorf("target = %v, expected %v", c.Camera().Target, look)
	}
	if c.Transitioning() {
		t.Error("transition should be cleared at progress 1")
	}
}

func TestTransitionSuperseded(t *testing.T) {
	c, clock := newController()
	c.AnimateToPosition(mgl64.Vec3{100, 0, 0}, mgl64.Vec3{}, 1000)
	clock.Advance(300 * time.Millisecond)
	c.Update()
	from := c.Camera().Position

	second := mgl64.Vec3{0, 40, 0}
	c.AnimateToPosition(second, mgl64.Vec3{}, 200)
	tr, ok := c.ActiveTransition()
	if !ok || tr.StartPosition != from || tr.TargetPosition != second {
		t.Fatalf("second transition = %+v", tr)
	}

	clock.Advance(200 * time.Millisecond)
	c.Update()
	if !c.Camera().Position.ApproxEqualThreshold(second, 1e-9) || c.Transitioning() {
		t.Errorf("superseding transition did not finish at %v", second)
	}
}

func TestTransitionSurvivesResize(t *testing.T) {
	c, clock := newController()
	c.AnimateToPosition(mgl64.Vec3{5, 5, 5}, mgl64.Vec3{}, 1000)
	clock.Advance(100 * time.Millisecond)
	c.Update()
	c.SetAspect(3)
	if !c.Transitioning() {
		t.Error("resize cancelled the transition")
	}
}

func TestFollowDuringTransitionRetargets(t *testing.T) {
	c, clock := newController()
	c.Camera().Position = mgl64.Vec3{0, 0, 10}
	c.AnimateToPosition(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{}, 500)

	body := func(i int) mgl64.Vec3 { return mgl64.Vec3{0.1 * float64(i), 0, 0} }
	prev := c.Camera().Target
	maxStep := 0.0
	for i := 1; i <= 20; i++ {
		clock.Advance(time.Second / 30)
		c.Update()
		c.Follow(body(i))
		step := c.Camera().Target.Sub(prev).Len()
		maxStep = math.Max(maxStep, step)
		prev = c.Camera().Target
	}
	if c.Transitioning() {
		t.Fatal("transition still active")
	}
	if maxStep > 0.5 {
		t.Errorf("largest per-frame target step = %f, expected a smooth approach", maxStep)
	}
	if got := c.Camera().Target; got.Sub(body(20)).Len() > 1e-9 {
		t.Errorf("target = %v, expected %v", got, body(20))
	}
	offset := c.Camera().Position.Sub(c.Camera().Target)
	if math.Abs(offset.Len()-5) > 1e-9 {
		t.Errorf("viewing distance = %f, expected 5", offset.Len())
	}
}

func TestSetCameraPositionClampedOnUpdate(t *testing.T) {
	c, _ := newController()
	c.SetCameraPosition(mgl64.Vec3{0, 0, 1000})
	if got := c.GetZoom(); got != 1000 {
		t.Fatalf("distance before Update = %f, expected 1000", got)
	}
	c.Update()
	if got := c.GetZoom(); math.Abs(got-c.Controls().MaxDistance) > 1e-9 {
		t.Errorf("distance after Update = %f, expected %f", got, c.Controls().MaxDistance)
	}
}

func TestZeroDurationIsImmediate(t *testing.T) {
	c, _ := newController()
	c.AnimateToPosition(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{4, 5, 6}, 0)
	if c.Transitioning() {
		t.Error("zero duration should not start a transition")
	}
	if c.Camera().Position != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("position = %v", c.Camera().Position)
	}
}

func TestZoomSteps(t *testing.T) {
	c, _ := newController()
	c.ZoomIn()
	if got := c.GetZoom(); math.Abs(got-45) > 1e-9 {
		t.Errorf("after ZoomIn distance = %f, expected 45", got)
	}
	c.ZoomOut()
	c.ZoomOut()
	if got := c.GetZoom(); math.Abs(got-55) > 1e-9 {
		t.Errorf("after ZoomOut distance = %f, expected 55", got)
	}
	if dir := c.Camera().Position.Normalize(); !dir.ApproxEqualThreshold(mgl64.Vec3{0, 0, 1}, 1e-9) {
		t.Errorf("zoom changed the view axis: %v", dir)
	}

	for i := 0; i < 100; i++ {
		c.ZoomIn()
	}
	if got := c.GetZoom(); math.Abs(got-c.Controls().MinDistance) > 1e-9 {
		t.Errorf("distance = %f, expected clamp at %f", got, c.Controls().MinDistance)
	}
}

func TestGetZoomFallback(t *testing.T) {
	c, _ := newController(WithoutControls())
	if got := c.GetZoom(); got != FallbackZoom {
		t.Errorf("GetZoom() = %f, expected %d", got, FallbackZoom)
	}

	d, _ := newController()
	d.Dispose()
	if got := d.GetZoom(); got != FallbackZoom {
		t.Errorf("GetZoom() after Dispose = %f, expected %d", got, FallbackZoom)
	}
}

func TestResetView(t *testing.T) {
	c, clock := newController(WithHome(mgl64.Vec3{0, 10, 10}, mgl64.Vec3{}))
	c.SetCameraPosition(mgl64.Vec3{40, 0, 0})
	c.SetTarget(mgl64.Vec3{1, 1, 1})

	c.ResetView()
	clock.Advance(c.ResetDuration)
	c.Update()
	if !c.Camera().Position.ApproxEqualThreshold(mgl64.Vec3{0, 10, 10}, 1e-9) {
		t.Errorf("position = %v, expected home", c.Camera().Position)
	}
	if !c.Camera().Target.ApproxEqualThreshold(mgl64.Vec3{}, 1e-9) {
		t.Errorf("target = %v, expected origin", c.Camera().Target)
	}
}

func TestDisposeClearsTransition(t *testing.T) {
	c, _ := newController()
	c.AnimateToPosition(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{}, 1000)
	c.Dispose()
	c.Dispose()
	if c.Transitioning() || c.Controls() != nil {
		t.Error("Dispose left state behind")
	}
	if c.Update() {
		t.Error("Update after Dispose should do nothing")
	}
}

func TestControlsRotateKeepsDistance(t *testing.T) {
	c, _ := newController()
	ctl := c.Controls()
	ctl.Damping = 0

	ctl.Rotate(math.Pi/2, 0)
	if !c.Update() {
		t.Fatal("Update should report movement")
	}
	pos := c.Camera().Position
	if math.Abs(pos.Len()-50) > 1e-9 {
		t.Errorf("distance = %f, expected 50", pos.Len())
	}
	if !pos.ApproxEqualThreshold(mgl64.Vec3{50, 0, 0}, 1e-6) {
		t.Errorf("position = %v, expected (50, 0, 0)", pos)
	}
	if c.Update() {
		t.Error("no pending input, camera should not move")
	}
}

func TestControlsPolarClamp(t *testing.T) {
	c, _ := newController()
	ctl := c.Controls()
	ctl.Damping = 0
	ctl.Rotate(0, -10)
	c.Update()

	pos := c.Camera().Position
	phi := math.Acos(pos.Y() / pos.Len())
	if math.Abs(phi-ctl.MinPolar) > 1e-9 {
		t.Errorf("polar angle = %f, expected clamp at %f", phi, ctl.MinPolar)
	}
}

func TestControlsDampingConverges(t *testing.T) {
	c, _ := newController()
	ctl := c.Controls()
	ctl.Dolly(2)
	for i := 0; i < 200 && ctl.Pending(); i++ {
		c.Update()
	}
	if ctl.Pending() {
		t.Fatal("damped motion never settled")
	}
	if got := c.GetZoom(); math.Abs(got-100) > 1e-3 {
		t.Errorf("distance = %f, expected about 100", got)
	}
}

func TestControlsPanMovesTarget(t *testing.T) {
	c, _ := newController()
	ctl := c.Controls()
	ctl.Damping = 0
	ctl.Pan(0.1, 0)
	c.Update()

	if tgt := c.Camera().Target; !tgt.ApproxEqualThreshold(mgl64.Vec3{5, 0, 0}, 1e-9) {
		t.Errorf("target = %v, expected (5, 0, 0)", tgt)
	}
	if got := c.GetZoom(); math.Abs(got-50) > 1e-9 {
		t.Errorf("pan changed distance to %f", got)
	}
}

func TestProjectAndRay(t *testing.T) {
	cam := New(1)
	cam.Position = mgl64.Vec3{0, 0, 10}

	ndc, ok := cam.Project(mgl64.Vec3{})
	if !ok || math.Abs(ndc.X()) > 1e-9 || math.Abs(ndc.Y()) > 1e-9 {
		t.Errorf("Project(target) = %v, %v; expected screen center", ndc, ok)
	}
	if _, ok := cam.Project(mgl64.Vec3{0, 0, 20}); ok {
		t.Error("point behind the camera should not project")
	}

	_, dir := cam.Ray(0, 0)
	if !dir.ApproxEqualThreshold(mgl64.Vec3{0, 0, -1}, 1e-6) {
		t.Errorf("center ray = %v, expected (0, 0, -1)", dir)
	}

	right, ok := cam.Project(mgl64.Vec3{1, 0, 0})
	if !ok || right.X() <= 0 {
		t.Errorf("+X should project right of center, got %v", right)
	}
	up, ok := cam.Project(mgl64.Vec3{0, 1, 0})
	if !ok || up.Y() <= 0 {
		t.Errorf("+Y should project above center, got %v", up)
	}
}
