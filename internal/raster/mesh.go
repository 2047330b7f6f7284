package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/vovakirdan/orrery/internal/camera"
	"github.com/vovakirdan/orrery/internal/scene"
)

// aaOffsets are the sub-cell sample positions used when antialiasing.
var aaOffsets = [4][2]float64{{0.25, 0.25}, {0.75, 0.25}, {0.25, 0.75}, {0.75, 0.75}}

func (r *Rasterizer) drawMesh(n *scene.Node, m *scene.Mesh, f *frame) {
	g, mat := m.Geometry, m.Material
	if g == nil || mat == nil || len(g.Positions) == 0 {
		return
	}
	world := n.WorldMatrix()

	if handled, drawn := r.drawDot(n, g, mat, world, f); handled {
		if drawn {
			r.stats.DrawCalls++
		}
		return
	}

	count := len(g.Positions)
	r.wpos = grow(r.wpos, count)
	r.wnorm = grow(r.wnorm, count)
	r.spos = grow(r.spos, count)
	if cap(r.vis) < count {
		r.vis = make([]bool, count)
	}
	r.vis = r.vis[:count]

	normalMat := world.Mat3()
	for i, p := range g.Positions {
		wp := mgl64.TransformCoordinate(p, world)
		r.wpos[i] = wp
		if i < len(g.Normals) {
			wn := normalMat.Mul3x1(g.Normals[i])
			if l := wn.Len(); l > 0 {
				wn = wn.Mul(1 / l)
			}
			r.wnorm[i] = wn
		} else {
			r.wnorm[i] = mgl64.Vec3{0, 1, 0}
		}
		ndc, ok := camera.ProjectWith(f.vp, wp)
		r.vis[i] = ok
		if ok {
			r.spos[i] = r.toScreen(ndc)
		}
	}

	sh := surface{
		node:    n,
		geo:     g,
		mat:     mat,
		lights:  f.lights,
		eye:     f.eye,
		wpos:    r.wpos,
		wnorm:   r.wnorm,
		opaque:  !translucent(mat),
		opacity: mat.Opacity,
	}
	if sh.opacity <= 0 && !sh.opaque {
		return
	}

	tris := 0
	idx := g.Indices
	for i := 0; i+2 < len(idx); i += 3 {
		a, b, c := idx[i], idx[i+1], idx[i+2]
		if !r.vis[a] || !r.vis[b] || !r.vis[c] {
			continue
		}
		pa := r.wpos[a]
		face := r.wpos[b].Sub(pa).Cross(r.wpos[c].Sub(pa))
		front := face.Dot(f.eye.Sub(pa)) > 0
		if !front && mat.Side == scene.FrontSide {
			continue
		}
		sh.flip = !front
		if r.fillTriangle(&sh, a, b, c) {
			tris++
		}
	}
	if tris > 0 {
		r.stats.DrawCalls++
		r.stats.Triangles += tris
	}
}

func grow(s []mgl64.Vec3, n int) []mgl64.Vec3 {
	if cap(s) < n {
		return make([]mgl64.Vec3, n)
	}
	return s[:n]
}

func edge(a, b mgl64.Vec3, px, py float64) float64 {
	return (b.X()-a.X())*(py-a.Y()) - (b.Y()-a.Y())*(px-a.X())
}

// fillTriangle scan-converts one triangle and reports whether any cell was
// covered.
func (r *Rasterizer) fillTriangle(sh *surface, a, b, c uint32) bool {
	s0, s1, s2 := r.spos[a], r.spos[b], r.spos[c]
	area := edge(s0, s1, s2.X(), s2.Y())
	if math.Abs(area) < 1e-12 {
		return false
	}
	minX := max(0, int(math.Floor(min(s0.X(), s1.X(), s2.X()))))
	maxX := min(r.w-1, int(math.Ceil(max(s0.X(), s1.X(), s2.X()))))
	minY := max(0, int(math.Floor(min(s0.Y(), s1.Y(), s2.Y()))))
	maxY := min(r.h-1, int(math.Ceil(max(s0.Y(), s1.Y(), s2.Y()))))

	const eps = -1e-9
	covered := false
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			coverage := 1.0
			if r.Antialias {
				inside := 0
				for _, o := range aaOffsets {
					ox, oy := float64(x)+o[0], float64(y)+o[1]
					if edge(s1, s2, ox, oy)/area >= eps && edge(s2, s0, ox, oy)/area >= eps && edge(s0, s1, ox, oy)/area >= eps {
						if inside == 0 {
							px, py = ox, oy
						}
						inside++
					}
				}
				if inside == 0 {
					continue
				}
				if edge(s1, s2, float64(x)+0.5, float64(y)+0.5)/area >= eps &&
					edge(s2, s0, float64(x)+0.5, float64(y)+0.5)/area >= eps &&
					edge(s0, s1, float64(x)+0.5, float64(y)+0.5)/area >= eps {
					px, py = float64(x)+0.5, float64(y)+0.5
				}
				coverage = float64(inside) / float64(len(aaOffsets))
			}

			w0 := edge(s1, s2, px, py) / area
			w1 := edge(s2, s0, px, py) / area
			w2 := 1 - w0 - w1
			if w0 < eps || w1 < eps || w2 < eps {
				continue
			}
			z := w0*s0.Z() + w1*s1.Z() + w2*s2.Z()
			s := &r.buf[y*r.w+x]
			if z >= s.depth {
				continue
			}

			col := sh.shade(a, b, c, w0, w1, w2)
			if sh.opaque {
				if coverage < 1 && s.set {
					col = s.color.BlendRgb(col, coverage)
				} else if coverage < 1 {
					col = scale(col, coverage)
				}
				s.depth = z
				s.color = col
				s.glyph = sh.glyph(col)
				s.node = sh.node
				s.set = true
			} else {
				r.plot(x, y, z, col, sh.opacity*coverage, sh.glyph(col))
			}
			covered = true
		}
	}
	return covered
}

// drawDot draws meshes that project smaller than a cell as a single shaded
// cell. handled is true when the mesh needs no further drawing.
func (r *Rasterizer) drawDot(n *scene.Node, g *scene.Geometry, mat *scene.Material, world mgl64.Mat4, f *frame) (handled, drawn bool) {
	if g.Shape != scene.ShapeSphere {
		return false, false
	}
	center := mgl64.TransformCoordinate(mgl64.Vec3{}, world)
	radius := g.BoundingRadius() * maxScale(world)
	cndc, ok := camera.ProjectWith(f.vp, center)
	if !ok {
		return true, false
	}
	endc, ok := camera.ProjectWith(f.vp, center.Add(f.right.Mul(radius)))
	if !ok {
		return false, false
	}
	sc, se := r.toScreen(cndc), r.toScreen(endc)
	if math.Hypot(se.X()-sc.X(), se.Y()-sc.Y()) >= 1 {
		return false, false
	}

	x, y := int(math.Floor(sc.X())), int(math.Floor(sc.Y()))
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return true, false
	}
	s := &r.buf[y*r.w+x]
	if cndc.Z() >= s.depth {
		return true, false
	}

	toEye := f.eye.Sub(center)
	if toEye.Len() == 0 {
		return true, false
	}
	normal := toEye.Normalize()
	local := normal
	if inv := world.Mat3().Inv(); inv != (mgl64.Mat3{}) {
		if l := inv.Mul3x1(normal); l.Len() > 0 {
			local = l.Normalize()
		}
	}
	sh := surface{mat: mat, lights: f.lights}
	col := sh.lit(sh.base(local), center, normal)

	glyph := rune(glyphDot)
	if mat.Shader == scene.ShaderBasic {
		glyph = glyphStar
	}
	if translucent(mat) {
		r.plot(x, y, cndc.Z(), col, mat.Opacity, glyph)
		return true, true
	}
	s.depth = cndc.Z()
	s.color = col
	s.glyph = glyph
	s.node = n
	s.set = true
	return true, true
}

// surface shades one mesh.
type surface struct {
	node    *scene.Node
	geo     *scene.Geometry
	mat     *scene.Material
	lights  []*scene.Light
	eye     mgl64.Vec3
	wpos    []mgl64.Vec3
	wnorm   []mgl64.Vec3
	opaque  bool
	opacity float64
	flip    bool
}

func (sh *surface) shade(a, b, c uint32, w0, w1, w2 float64) colorful.Color {
	p := sh.wpos[a].Mul(w0).Add(sh.wpos[b].Mul(w1)).Add(sh.wpos[c].Mul(w2))
	n := sh.wnorm[a].Mul(w0).Add(sh.wnorm[b].Mul(w1)).Add(sh.wnorm[c].Mul(w2))
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	if sh.flip {
		n = n.Mul(-1)
	}
	g := sh.geo
	local := g.Positions[a].Mul(w0).Add(g.Positions[b].Mul(w1)).Add(g.Positions[c].Mul(w2))
	if l := local.Len(); l > 0 {
		local = local.Mul(1 / l)
	}
	return sh.lit(sh.base(local), p, n)
}

// base returns the unlit surface color for a unit direction in mesh space.
func (sh *surface) base(dir mgl64.Vec3) colorful.Color {
	mat := sh.mat
	col := mat.Color
	if mat.Shader == scene.ShaderElevationRamp && mat.Elevation != nil {
		col = mat.RampColor(mat.Elevation(dir))
	}
	if mat.Map != nil {
		u, v := sphereUV(dir)
		t := mat.Map.Sample(u, v)
		col = colorful.Color{R: t.R * col.R, G: t.G * col.G, B: t.B * col.B}
	}
	return col
}

// lit applies the lights to base at world point p with normal n, then adds
// emission.
func (sh *surface) lit(base colorful.Color, p, n mgl64.Vec3) colorful.Color {
	mat := sh.mat
	if mat.Shader == scene.ShaderBasic {
		e := mat.EmissiveColor()
		return colorful.Color{R: base.R + e.R, G: base.G + e.G, B: base.B + e.B}
	}
	var irr float64
	for _, l := range sh.lights {
		irr += l.Irradiance(p, n)
	}
	// Metals reflect little diffuse light.
	irr *= 1 - 0.5*mat.Metalness
	e := mat.EmissiveColor()
	return colorful.Color{
		R: base.R*irr + e.R,
		G: base.G*irr + e.G,
		B: base.B*irr + e.B,
	}
}

func (sh *surface) glyph(c colorful.Color) rune {
	if sh.geo != nil && sh.geo.Shape == scene.ShapeRing {
		return ringGlyph(sh.opacity)
	}
	g := shadeGlyph(c)
	if g == ' ' {
		return shadeRamp[0]
	}
	return g
}

// sphereUV maps a unit direction to the UVs NewSphereGeometry lays out:
// u follows the azimuth from +X toward +Z, v runs from the north pole.
func sphereUV(dir mgl64.Vec3) (u, v float64) {
	u = math.Atan2(dir.Z(), dir.X()) / (2 * math.Pi)
	if u < 0 {
		u++
	}
	v = math.Acos(math.Max(-1, math.Min(1, dir.Y()))) / math.Pi
	return u, v
}
