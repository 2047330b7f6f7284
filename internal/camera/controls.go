package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Controls orbits the camera around its target. Input accumulates into
// pending deltas that Update applies, optionally with damping.
type Controls struct {
	Enabled     bool
	MinDistance float64
	MaxDistance float64
	// MinPolar and MaxPolar bound the angle from the up axis.
	MinPolar float64
	MaxPolar float64
	// Damping is the fraction of pending motion left for the next update;
	// zero applies input immediately.
	Damping float64

	cam      *Camera
	dTheta   float64
	dPhi     float64
	dScale   float64
	pan      mgl64.Vec3
	disposed bool
}

// NewControls attaches an orbit rig to cam.
func NewControls(cam *Camera) *Controls {
	return &Controls{
		Enabled:     true,
		MinDistance: 2,
		MaxDistance: 400,
		MinPolar:    0.05,
		MaxPolar:    math.Pi - 0.05,
		Damping:     0.25,
		cam:         cam,
		dScale:      1,
	}
}

// Rotate queues an azimuth (about Y) and polar rotation, in radians.
func (c *Controls) Rotate(azimuth, polar float64) {
	if !c.Enabled {
		return
	}
	c.dTheta += azimuth
	c.dPhi += polar
}

// Dolly queues a distance scale; factors above 1 move away from the target.
func (c *Controls) Dolly(factor float64) {
	if !c.Enabled || factor <= 0 {
		return
	}
	c.dScale *= factor
}

// Pan queues a move of camera and target along the view plane. dx and dy
// are fractions of the current distance.
func (c *Controls) Pan(dx, dy float64) {
	if !c.Enabled {
		return
	}
	offset := c.cam.Position.Sub(c.cam.Target)
	dist := offset.Len()
	if dist == 0 {
		return
	}
	forward := offset.Mul(-1 / dist)
	right := forward.Cross(c.cam.Up)
	if right.Len() < 1e-9 {
		right = mgl64.Vec3{1, 0, 0}
	}
	right = right.Normalize()
	up := right.Cross(forward).Normalize()
	c.pan = c.pan.Add(right.Mul(dx * dist)).Add(up.Mul(dy * dist))
}

// Pending reports whether queued motion remains.
func (c *Controls) Pending() bool {
	return math.Abs(c.dTheta) > 1e-6 || math.Abs(c.dPhi) > 1e-6 ||
		math.Abs(c.dScale-1) > 1e-6 || c.pan.Len() > 1e-6
}

// Update applies queued motion to the camera and clamps its distance. It
// reports whether the camera moved.
func (c *Controls) Update() bool {
	if c.disposed {
		return false
	}
	before := c.cam.Position

	f := 1.0
	if c.Damping > 0 && c.Damping < 1 {
		f = 1 - c.Damping
	}

	offset := c.cam.Position.Sub(c.cam.Target)
	r := offset.Len()
	theta := math.Atan2(offset.X(), offset.Z())
	phi := 0.0
	if r > 0 {
		phi = math.Acos(mgl64.Clamp(offset.Y()/r, -1, 1))
	}

	theta += c.dTheta * f
	phi = mgl64.Clamp(phi+c.dPhi*f, c.MinPolar, c.MaxPolar)
	r *= math.Pow(c.dScale, f)
	r = mgl64.Clamp(r, c.MinDistance, c.MaxDistance)

	step := c.pan.Mul(f)
	c.cam.Target = c.cam.Target.Add(step)
	c.cam.Position = c.cam.Target.Add(mgl64.Vec3{
		r * math.Sin(phi) * math.Sin(theta),
		r * math.Cos(phi),
		r * math.Sin(phi) * math.Cos(theta),
	})

	if f == 1 {
		c.dTheta, c.dPhi, c.dScale, c.pan = 0, 0, 1, mgl64.Vec3{}
	} else {
		c.dTheta *= 1 - f
		c.dPhi *= 1 - f
		c.dScale = math.Pow(c.dScale, 1-f)
		c.pan = c.pan.Mul(1 - f)
		if !c.Pending() {
			c.dTheta, c.dPhi, c.dScale, c.pan = 0, 0, 1, mgl64.Vec3{}
		}
	}

	return !c.cam.Position.ApproxEqualThreshold(before, 1e-9)
}

// Distance returns the camera-to-target distance.
func (c *Controls) Distance() float64 {
	return c.cam.Distance()
}

// Dispose detaches the rig; further input and updates are ignored.
func (c *Controls) Dispose() {
	c.disposed = true
	c.Enabled = false
	c.dTheta, c.dPhi, c.dScale, c.pan = 0, 0, 1, mgl64.Vec3{}
}
