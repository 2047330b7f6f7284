// Package camera provides the viewer camera, an orbit-controls rig and a
// controller that runs eased camera transitions.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a perspective camera looking from Position at Target.
type Camera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3
	FOV      float64 // vertical field of view, radians
	Aspect   float64
	Near     float64
	Far      float64
}

// New creates a camera with a 45° field of view.
func New(aspect float64) *Camera {
	if aspect <= 0 {
		aspect = 1
	}
	return &Camera{
		Position: mgl64.Vec3{0, 30, 60},
		Up:       mgl64.Vec3{0, 1, 0},
		FOV:      mgl64.DegToRad(45),
		Aspect:   aspect,
		Near:     0.1,
		Far:      2000,
	}
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl64.Mat4 {
	up := c.Up
	dir := c.Target.Sub(c.Position)
	// LookAt degenerates when looking straight along Up.
	if dir.Len() > 0 && math.Abs(dir.Normalize().Dot(up.Normalize())) > 0.9999 {
		up = mgl64.Vec3{0, 0, -1}
	}
	return mgl64.LookAtV(c.Position, c.Target, up)
}

// Projection returns the perspective matrix.
func (c *Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// ViewProjection returns Projection·View.
func (c *Camera) ViewProjection() mgl64.Mat4 {
	return c.Projection().Mul4(c.View())
}

// Distance returns the camera-to-target distance.
func (c *Camera) Distance() float64 {
	return c.Position.Sub(c.Target).Len()
}

// Project maps a world point to normalized device coordinates. ok is false
// for points behind the camera or outside the depth range.
func (c *Camera) Project(world mgl64.Vec3) (ndc mgl64.Vec3, ok bool) {
	return ProjectWith(c.ViewProjection(), world)
}

// ProjectWith is Project with a precomputed view-projection matrix.
func ProjectWith(vp mgl64.Mat4, world mgl64.Vec3) (mgl64.Vec3, bool) {
	clip := vp.Mul4x1(world.Vec4(1))
	w := clip.W()
	if w <= 1e-9 {
		return mgl64.Vec3{}, false
	}
	ndc := clip.Vec3().Mul(1 / w)
	if ndc.Z() < -1 || ndc.Z() > 1 {
		return ndc, false
	}
	return ndc, true
}

// Ray returns the world-space ray through normalized device coordinates.
func (c *Camera) Ray(ndcX, ndcY float64) (origin, dir mgl64.Vec3) {
	inv := c.ViewProjection().Inv()
	near := mgl64.TransformCoordinate(mgl64.Vec3{ndcX, ndcY, -1}, inv)
	far := mgl64.TransformCoordinate(mgl64.Vec3{ndcX, ndcY, 1}, inv)
	return c.Position, far.Sub(near).Normalize()
}
