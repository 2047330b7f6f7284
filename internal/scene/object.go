package scene

// ObjectKind is the closed set of drawable object variants.
type ObjectKind int

const (
	KindMesh ObjectKind = iota
	KindLine
	KindPoints
)

// String returns a human-readable name for the kind.
func (k ObjectKind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindLine:
		return "line"
	case KindPoints:
		return "points"
	default:
		return "unknown"
	}
}

// Object is something a node can draw. Implementations are Mesh, Line and
// Points; the rasterizer switches on Kind.
type Object interface {
	Kind() ObjectKind
	Dispose()
}

// Mesh is a triangle surface with a lit material.
type Mesh struct {
	Geometry *Geometry
	Material *Material
}

// Kind implements Object.
func (m *Mesh) Kind() ObjectKind { return KindMesh }

// Dispose releases the geometry and material.
func (m *Mesh) Dispose() {
	if m.Geometry != nil {
		m.Geometry.Dispose()
	}
	if m.Material != nil {
		m.Material.Dispose()
	}
}

// Line is a connected polyline.
type Line struct {
	Geometry *Geometry
	Material *LineMaterial
}

// Kind implements Object.
func (l *Line) Kind() ObjectKind { return KindLine }

// Dispose releases the geometry and material.
func (l *Line) Dispose() {
	if l.Geometry != nil {
		l.Geometry.Dispose()
	}
	if l.Material != nil {
		l.Material.Dispose()
	}
}

// Points is an unconnected point cloud (stars, ring particles).
type Points struct {
	Geometry *Geometry
	Material *PointsMaterial
}

// Kind implements Object.
func (p *Points) Kind() ObjectKind { return KindPoints }

// Dispose releases the geometry and material.
func (p *Points) Dispose() {
	if p.Geometry != nil {
		p.Geometry.Dispose()
	}
	if p.Material != nil {
		p.Material.Dispose()
	}
}
