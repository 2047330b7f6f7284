package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/orrery/internal/camera"
	"github.com/vovakirdan/orrery/internal/core"
	"github.com/vovakirdan/orrery/internal/scene"
)

// Label writes text centered one row above the projection of top, the
// highest point of whatever it names. It reports whether anything was
// written; labels behind the camera or fully off screen are skipped.
func (r *Rasterizer) Label(cam *camera.Camera, top mgl64.Vec3, text string, c core.Color) bool {
	ndc, ok := cam.Project(top)
	if !ok || text == "" {
		return false
	}
	p := r.toScreen(ndc)
	n := len([]rune(text))
	x := int(math.Floor(p.X())) - n/2
	y := int(math.Floor(p.Y())) - 1
	if y < 0 || y >= r.h || x+n <= 0 || x >= r.w {
		return false
	}
	r.screen.DrawTextColored(x, y, text, c)
	return true
}

func (r *Rasterizer) drawLine(n *scene.Node, l *scene.Line, f *frame) {
	g, mat := l.Geometry, l.Material
	if g == nil || mat == nil || len(g.Positions) < 2 || mat.Opacity <= 0 {
		return
	}
	world := n.WorldMatrix()
	segments := 0

	prev, prevOK := mgl64.Vec3{}, false
	for i, p := range g.Positions {
		ndc, ok := camera.ProjectWith(f.vp, mgl64.TransformCoordinate(p, world))
		cur := r.toScreen(ndc)
		if i > 0 && ok && prevOK {
			if r.segment(prev, cur, mat) {
				segments++
			}
		}
		prev, prevOK = cur, ok
	}
	if segments > 0 {
		r.stats.DrawCalls++
		r.stats.Lines += segments
	}
}

// segment draws a depth-tested Bresenham line between two screen points.
func (r *Rasterizer) segment(a, b mgl64.Vec3, mat *scene.LineMaterial) bool {
	a, b, ok := clipSegment(a, b, float64(r.w), float64(r.h))
	if !ok {
		return false
	}
	x0, y0 := int(math.Floor(a.X())), int(math.Floor(a.Y()))
	x1, y1 := int(math.Floor(b.X())), int(math.Floor(b.Y()))

	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	steps := max(dx, -dy)
	errv := dx + dy
	drawn := false
	for i := 0; ; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		z := a.Z() + (b.Z()-a.Z())*t
		if r.plot(x0, y0, z, mat.Color, mat.Opacity, glyphLine) {
			drawn = true
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * errv
		if e2 >= dy {
			errv += dy
			x0 += sx
		}
		if e2 <= dx {
			errv += dx
			y0 += sy
		}
	}
	return drawn
}

// clipSegment clips a-b to [0,w]×[0,h] (Liang-Barsky), interpolating depth.
func clipSegment(a, b mgl64.Vec3, w, h float64) (mgl64.Vec3, mgl64.Vec3, bool) {
	t0, t1 := 0.0, 1.0
	d := b.Sub(a)
	for _, c := range [4][2]float64{
		{-d.X(), a.X()},
		{d.X(), w - a.X()},
		{-d.Y(), a.Y()},
		{d.Y(), h - a.Y()},
	} {
		p, q := c[0], c[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = math.Max(t0, t)
		} else {
			t1 = math.Min(t1, t)
		}
		if t0 > t1 {
			return a, b, false
		}
	}
	return a.Add(d.Mul(t0)), a.Add(d.Mul(t1)), true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// pointGlyph picks a glyph by point size.
func pointGlyph(size float64) rune {
	switch {
	case size >= 1.3:
		return '*'
	case size >= 0.9:
		return '+'
	default:
		return '.'
	}
}

func (r *Rasterizer) drawPoints(n *scene.Node, p *scene.Points, f *frame) {
	g, mat := p.Geometry, p.Material
	if g == nil || mat == nil || len(g.Positions) == 0 || mat.Opacity <= 0 {
		return
	}
	world := n.WorldMatrix()
	plotted := 0
	for i, pos := range g.Positions {
		ndc, ok := camera.ProjectWith(f.vp, mgl64.TransformCoordinate(pos, world))
		if !ok {
			continue
		}
		s := r.toScreen(ndc)
		col := mat.Color
		if mat.VertexColors && i < len(g.Colors) {
			col = g.Colors[i]
		}
		size := mat.Size
		if i < len(g.Sizes) {
			size = g.Sizes[i]
		}
		if r.plot(int(math.Floor(s.X())), int(math.Floor(s.Y())), ndc.Z(), col, mat.Opacity, pointGlyph(size)) {
			plotted++
		}
	}
	if plotted > 0 {
		r.stats.DrawCalls++
		r.stats.Points += plotted
	}
}
