// Package raster draws a scene graph into a terminal cell buffer.
//
// Meshes are scan-converted per cell with a depth buffer and Lambert shading;
// lines use Bresenham and point clouds plot one cell per point. Terminal cells
// are roughly twice as tall as they are wide, so cameras should be given
// Aspect(w, h) rather than w/h.
package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/vovakirdan/orrery/internal/camera"
	"github.com/vovakirdan/orrery/internal/core"
	"github.com/vovakirdan/orrery/internal/scene"
)

// CellAspect is the height/width ratio of a terminal cell.
const CellAspect = 2.0

// Aspect returns the camera aspect ratio for a w×h cell surface.
func Aspect(w, h int) float64 {
	if w <= 0 || h <= 0 {
		return 1
	}
	return float64(w) / (float64(h) * CellAspect)
}

// Glyph ramps.
var (
	shadeRamp = []rune(".:-=+*#%@")
	ringRamp  = []rune("░▒▓")
)

const (
	glyphLine = '.'
	glyphDot  = 'o'
	glyphStar = '*'
)

// Stats counts what the last Render drew.
type Stats struct {
	DrawCalls int
	Triangles int
	Points    int
	Lines     int
}

// RenderInfo converts the stats into resource-tracker draw info.
func (s Stats) RenderInfo() scene.RenderInfo {
	return scene.RenderInfo{Calls: s.DrawCalls, Triangles: s.Triangles, Points: s.Points, Lines: s.Lines}
}

type sample struct {
	depth float64
	color colorful.Color
	glyph rune
	node  *scene.Node
	set   bool
}

// Rasterizer renders into a core.Screen. It keeps per-cell depth and owner
// buffers between frames so Pick can answer for the last frame.
type Rasterizer struct {
	// Antialias blends partially covered edge cells into what is behind them.
	Antialias bool

	screen *core.Screen
	w, h   int
	buf    []sample
	stats  Stats

	// per-mesh scratch
	wpos  []mgl64.Vec3
	wnorm []mgl64.Vec3
	spos  []mgl64.Vec3
	vis   []bool
}

// New creates a rasterizer drawing into screen.
func New(screen *core.Screen) *Rasterizer {
	r := &Rasterizer{screen: screen}
	r.resize()
	return r
}

// Screen returns the target screen.
func (r *Rasterizer) Screen() *core.Screen { return r.screen }

// Stats returns the counters of the last Render.
func (r *Rasterizer) Stats() Stats { return r.stats }

func (r *Rasterizer) resize() {
	w, h := r.screen.Width(), r.screen.Height()
	if w == r.w && h == r.h && r.buf != nil {
		return
	}
	r.w, r.h = w, h
	r.buf = make([]sample, w*h)
}

func (r *Rasterizer) clear() {
	for i := range r.buf {
		r.buf[i] = sample{depth: math.Inf(1)}
	}
}

// frame holds per-render constants.
type frame struct {
	vp     mgl64.Mat4
	eye    mgl64.Vec3
	right  mgl64.Vec3
	lights []*scene.Light
}

// Render draws sc as seen by cam and copies the result to the screen.
// Opaque meshes are drawn first with depth writes; lines, points and
// transparent meshes follow, depth tested but not written.
func (r *Rasterizer) Render(sc *scene.Scene, cam *camera.Camera) Stats {
	r.resize()
	r.clear()
	r.stats = Stats{}

	if r.w > 0 && r.h > 0 && sc != nil && cam != nil {
		forward := cam.Target.Sub(cam.Position)
		right := forward.Cross(cam.Up)
		if right.Len() < 1e-12 {
			right = mgl64.Vec3{1, 0, 0}
		}
		f := &frame{
			vp:     cam.ViewProjection(),
			eye:    cam.Position,
			right:  right.Normalize(),
			lights: sc.Lights(),
		}

		var deferred []*scene.Node
		sc.Root.TraverseVisible(func(n *scene.Node) {
			if n.Object == nil {
				return
			}
			if m, ok := n.Object.(*scene.Mesh); ok && !translucent(m.Material) {
				r.drawMesh(n, m, f)
				return
			}
			deferred = append(deferred, n)
		})
		for _, n := range deferred {
			switch o := n.Object.(type) {
			case *scene.Mesh:
				r.drawMesh(n, o, f)
			case *scene.Line:
				r.drawLine(n, o, f)
			case *scene.Points:
				r.drawPoints(n, o, f)
			}
		}
	}

	r.flush()
	return r.stats
}

func translucent(m *scene.Material) bool {
	return m != nil && (m.Transparent || m.Opacity < 1)
}

func (r *Rasterizer) flush() {
	r.screen.Clear()
	for y := 0; y < r.h; y++ {
		for x := 0; x < r.w; x++ {
			s := &r.buf[y*r.w+x]
			if !s.set {
				continue
			}
			c := s.color.Clamped()
			r.screen.SetCell(x, y, s.glyph, core.RGBf(c.R, c.G, c.B))
		}
	}
}

// Pick returns the mesh node drawn frontmost at cell (x, y) in the last
// frame, or nil.
func (r *Rasterizer) Pick(x, y int) *scene.Node {
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return nil
	}
	return r.buf[y*r.w+x].node
}

// toScreen maps NDC to cell coordinates; the cell (x, y) covers
// [x, x+1)×[y, y+1).
func (r *Rasterizer) toScreen(ndc mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		(ndc.X() + 1) / 2 * float64(r.w),
		(1 - ndc.Y()) / 2 * float64(r.h),
		ndc.Z(),
	}
}

// plot blends a translucent sample into the cell at (x, y).
func (r *Rasterizer) plot(x, y int, z float64, c colorful.Color, opacity float64, glyph rune) bool {
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return false
	}
	s := &r.buf[y*r.w+x]
	if z >= s.depth {
		return false
	}
	if !s.set {
		s.color = scale(c, opacity)
		s.glyph = glyph
		s.set = true
		return true
	}
	s.color = s.color.BlendRgb(c, opacity)
	if opacity >= 0.5 && s.node == nil {
		s.glyph = glyph
	}
	return true
}

func scale(c colorful.Color, k float64) colorful.Color {
	return colorful.Color{R: c.R * k, G: c.G * k, B: c.B * k}
}

func shadeGlyph(c colorful.Color) rune {
	l, _, _ := c.Clamped().Lab()
	i := int(l*float64(len(shadeRamp)-1) + 0.5)
	return shadeRamp[max(0, min(i, len(shadeRamp)-1))]
}

func ringGlyph(opacity float64) rune {
	i := int(opacity * float64(len(ringRamp)))
	return ringRamp[max(0, min(i, len(ringRamp)-1))]
}

// maxScale returns the largest axis scale of a world matrix.
func maxScale(m mgl64.Mat4) float64 {
	return math.Max(m.Col(0).Vec3().Len(), math.Max(m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()))
}
