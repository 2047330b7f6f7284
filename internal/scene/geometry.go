package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// Shape tells the rasterizer which analytic form a geometry approximates.
type Shape int

const (
	ShapeGeneric Shape = iota
	ShapeSphere        // UV sphere around the local origin, possibly displaced
	ShapeRing          // flat annulus in the local XZ plane
	ShapeLoop          // closed polyline
	ShapeCloud         // unconnected points
)

// Geometry is vertex data plus the analytic parameters of its shape.
type Geometry struct {
	resource

	Shape     Shape
	Positions []mgl64.Vec3
	Normals   []mgl64.Vec3
	Colors    []colorful.Color // optional per-vertex colors
	Sizes     []float64        // optional per-vertex point sizes
	Indices   []uint32

	// Radius is the sphere radius or the ring's outer radius.
	Radius float64
	// InnerRadius is the ring's inner radius.
	InnerRadius float64
	// Segments records the tessellation used to build the geometry.
	WidthSegments, HeightSegments int
}

func (g *Geometry) resourceKind() ResourceKind { return ResourceGeometry }

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions)
}

// TriangleCount returns the number of indexed triangles.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// BoundingRadius returns the largest vertex distance from the local origin.
func (g *Geometry) BoundingRadius() float64 {
	var r float64
	for _, p := range g.Positions {
		if l := p.Len(); l > r {
			r = l
		}
	}
	return r
}

// ComputeVertexNormals rebuilds smooth normals from indexed faces.
// Vertices on the UV seam share a position but not an index, so their normals
// are averaged by position afterwards to avoid a visible crease.
func (g *Geometry) ComputeVertexNormals() {
	normals := make([]mgl64.Vec3, len(g.Positions))
	for i := 0; i+2 < len(g.Indices); i += 3 {
		a, b, c := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		pa, pb, pc := g.Positions[a], g.Positions[b], g.Positions[c]
		face := pb.Sub(pa).Cross(pc.Sub(pa))
		normals[a] = normals[a].Add(face)
		normals[b] = normals[b].Add(face)
		normals[c] = normals[c].Add(face)
	}

	byPos := make(map[[3]int64]mgl64.Vec3, len(g.Positions))
	for i, p := range g.Positions {
		key := seamKey(p)
		byPos[key] = byPos[key].Add(normals[i])
	}
	for i, p := range g.Positions {
		n := byPos[seamKey(p)]
		if n.Len() == 0 {
			n = p
		}
		if n.Len() == 0 {
			n = mgl64.Vec3{0, 1, 0}
		}
		normals[i] = n.Normalize()
	}
	g.Normals = normals
}

func seamKey(p mgl64.Vec3) [3]int64 {
	const q = 1e9
	return [3]int64{int64(math.Round(p[0] * q)), int64(math.Round(p[1] * q)), int64(math.Round(p[2] * q))}
}

// NewSphereGeometry builds a UV sphere. Segment counts below 3 and 2 are raised.
func NewSphereGeometry(radius float64, widthSegments, heightSegments int) *Geometry {
	if widthSegments < 3 {
		widthSegments = 3
	}
	if heightSegments < 2 {
		heightSegments = 2
	}

	count := (widthSegments + 1) * (heightSegments + 1)
	g := &Geometry{
		Shape:          ShapeSphere,
		Positions:      make([]mgl64.Vec3, 0, count),
		Normals:        make([]mgl64.Vec3, 0, count),
		Indices:        make([]uint32, 0, widthSegments*heightSegments*6),
		Radius:         radius,
		WidthSegments:  widthSegments,
		HeightSegments: heightSegments,
	}

	for ring := 0; ring <= heightSegments; ring++ {
		theta := float64(ring) * math.Pi / float64(heightSegments)
		sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)

		for seg := 0; seg <= widthSegments; seg++ {
			phi := float64(seg) * 2 * math.Pi / float64(widthSegments)
			dir := mgl64.Vec3{math.Cos(phi) * sinTheta, cosTheta, math.Sin(phi) * sinTheta}
			g.Positions = append(g.Positions, dir.Mul(radius))
			g.Normals = append(g.Normals, dir)
		}
	}

	for ring := 0; ring < heightSegments; ring++ {
		for seg := 0; seg < widthSegments; seg++ {
			current := uint32(ring*(widthSegments+1) + seg)
			next := current + uint32(widthSegments) + 1

			if ring != 0 {
				g.Indices = append(g.Indices, current, current+1, next)
			}
			if ring != heightSegments-1 {
				g.Indices = append(g.Indices, current+1, next+1, next)
			}
		}
	}

	return g
}

// NewRingGeometry builds a flat annulus in the XZ plane.
func NewRingGeometry(inner, outer float64, segments int) *Geometry {
	if segments < 3 {
		segments = 3
	}
	g := &Geometry{
		Shape:         ShapeRing,
		Radius:        outer,
		InnerRadius:   inner,
		WidthSegments: segments,
	}

	up := mgl64.Vec3{0, 1, 0}
	for i := 0; i <= segments; i++ {
		a := float64(i) * 2 * math.Pi / float64(segments)
		c, s := math.Cos(a), math.Sin(a)
		g.Positions = append(g.Positions,
			mgl64.Vec3{c * inner, 0, s * inner},
			mgl64.Vec3{c * outer, 0, s * outer},
		)
		g.Normals = append(g.Normals, up, up)
	}
	for i := 0; i < segments; i++ {
		base := uint32(i * 2)
		g.Indices = append(g.Indices, base, base+1, base+3, base, base+3, base+2)
	}
	return g
}

// NewCircleGeometry builds a closed loop of the given radius in the XZ plane.
// The loop has segments+1 points; the last repeats the first.
func NewCircleGeometry(radius float64, segments int) *Geometry {
	if segments < 3 {
		segments = 3
	}
	g := &Geometry{
		Shape:         ShapeLoop,
		Radius:        radius,
		WidthSegments: segments,
		Positions:     make([]mgl64.Vec3, 0, segments+1),
	}
	for i := 0; i <= segments; i++ {
		a := float64(i) * 2 * math.Pi / float64(segments)
		g.Positions = append(g.Positions, mgl64.Vec3{math.Cos(a) * radius, 0, math.Sin(a) * radius})
	}
	return g
}

// NewPointsGeometry wraps point positions with optional colors and sizes.
func NewPointsGeometry(positions []mgl64.Vec3, colors []colorful.Color, sizes []float64) *Geometry {
	return &Geometry{
		Shape:     ShapeCloud,
		Positions: positions,
		Colors:    colors,
		Sizes:     sizes,
	}
}
