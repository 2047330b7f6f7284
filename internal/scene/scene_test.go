package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

const eps = 1e-9

func vecNear(a, b mgl64.Vec3, tol float64) bool {
	return a.Sub(b).Len() <= tol
}

func TestNodeAddReparents(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	child := NewNode("child")

	a.Add(child)
	b.Add(child)

	if child.Parent() != b {
		t.Fatalf("child parent = %v, expected b", child.Parent())
	}
	if len(a.Children()) != 0 {
		t.Errorf("a should have no children after reparent, got %d", len(a.Children()))
	}
	if len(b.Children()) != 1 {
		t.Errorf("b should have one child, got %d", len(b.Children()))
	}

	child.RemoveFromParent()
	if child.Parent() != nil || len(b.Children()) != 0 {
		t.Error("RemoveFromParent did not detach")
	}
}

func TestNodeWorldPosition(t *testing.T) {
	root := NewNode("root")
	planet := NewNode("planet")
	planet.Position = mgl64.Vec3{10, 0, 0}
	moon := NewNode("moon")
	moon.Position = mgl64.Vec3{0, 0, 2}

	root.Add(planet)
	planet.Add(moon)

	if got := moon.WorldPosition(); !vecNear(got, mgl64.Vec3{10, 0, 2}, eps) {
		t.Errorf("moon world position = %v, expected (10, 0, 2)", got)
	}

	planet.Rotation = mgl64.Vec3{0, math.Pi / 2, 0}
	// Rotating the parent about Y by 90° maps local +Z to world +X.
	if got := moon.WorldPosition(); !vecNear(got, mgl64.Vec3{12, 0, 0}, 1e-9) {
		t.Errorf("moon world position after parent rotation = %v, expected (12, 0, 0)", got)
	}

	planet.SetUniformScale(3)
	if got := moon.WorldPosition(); !vecNear(got, mgl64.Vec3{16, 0, 0}, 1e-9) {
		t.Errorf("moon world position after parent scale = %v, expected (16, 0, 0)", got)
	}
}

func TestNodeWorldVisible(t *testing.T) {
	root := NewNode("root")
	mid := NewNode("mid")
	leaf := NewNode("leaf")
	root.Add(mid)
	mid.Add(leaf)

	if !leaf.WorldVisible() {
		t.Fatal("leaf should be visible")
	}
	mid.Visible = false
	if leaf.WorldVisible() {
		t.Error("leaf should be hidden when an ancestor is hidden")
	}

	visited := 0
	root.TraverseVisible(func(*Node) { visited++ })
	if visited != 1 {
		t.Errorf("TraverseVisible visited %d nodes, expected 1", visited)
	}
}

func TestSphereGeometry(t *testing.T) {
	g := NewSphereGeometry(2, 16, 8)

	if got, want := g.VertexCount(), 17*9; got != want {
		t.Errorf("VertexCount() = %d, expected %d", got, want)
	}
	// Pole rows contribute one triangle per segment, the rest two.
	if got, want := g.TriangleCount(), 16*8*2-2*16; got != want {
		t.Errorf("TriangleCount() = %d, expected %d", got, want)
	}
	for i, p := range g.Positions {
		if math.Abs(p.Len()-2) > 1e-9 {
			t.Fatalf("vertex %d at radius %f, expected 2", i, p.Len())
		}
	}
	if math.Abs(g.BoundingRadius()-2) > 1e-9 {
		t.Errorf("BoundingRadius() = %f, expected 2", g.BoundingRadius())
	}
}

func TestComputeVertexNormalsPointOutward(t *testing.T) {
	g := NewSphereGeometry(1, 24, 12)
	g.Normals = nil
	g.ComputeVertexNormals()

	if len(g.Normals) != g.VertexCount() {
		t.Fatalf("got %d normals for %d vertices", len(g.Normals), g.VertexCount())
	}
	for i, n := range g.Normals {
		if n.Dot(g.Positions[i].Normalize()) < 0.95 {
			t.Fatalf("normal %d = %v not aligned with position %v", i, n, g.Positions[i])
		}
	}
}

func TestCircleGeometryClosed(t *testing.T) {
	g := NewCircleGeometry(5, 128)
	if g.VertexCount() != 129 {
		t.Fatalf("VertexCount() = %d, expected 129", g.VertexCount())
	}
	if !vecNear(g.Positions[0], g.Positions[128], 1e-9) {
		t.Error("loop should end where it starts")
	}
	for _, p := range g.Positions {
		if math.Abs(p.Len()-5) > 1e-9 || p.Y() != 0 {
			t.Fatalf("point %v not on the radius-5 circle in XZ", p)
		}
	}
}

func TestResourcesTrackAndDispose(t *testing.T) {
	res := NewResources()
	mesh := &Mesh{
		Geometry: NewSphereGeometry(1, 8, 4),
		Material: NewStandardMaterial(colorful.Color{R: 1}),
	}
	res.TrackObject(mesh)
	res.TrackObject(mesh) // second registration is ignored

	tex := NewTexture("t", 1, 1, []colorful.Color{{R: 1}})
	res.Track(tex)

	info := res.Info()
	if info.Geometries != 1 || info.Materials != 1 || info.Textures != 1 {
		t.Fatalf("Info() = %+v, expected one of each", info)
	}

	mesh.Dispose()
	mesh.Dispose()
	info = res.Info()
	if info.Geometries != 0 || info.Materials != 0 {
		t.Errorf("after dispose Info() = %+v, expected no geometries or materials", info)
	}
	if !mesh.Geometry.Disposed() {
		t.Error("geometry should report disposed")
	}

	// A disposed resource cannot be tracked again.
	res.Track(mesh.Geometry)
	if res.Live(ResourceGeometry) != 0 {
		t.Error("disposed geometry should not be re-tracked")
	}
}

func TestResourcesRenderInfo(t *testing.T) {
	res := NewResources()
	res.RecordDraw(RenderInfo{Calls: 1, Triangles: 10})
	res.RecordDraw(RenderInfo{Calls: 1, Points: 5})
	if got := res.Info().Render; got.Calls != 2 || got.Triangles != 10 || got.Points != 5 {
		t.Errorf("Render = %+v", got)
	}
	res.BeginFrame()
	if got := res.Info().Render; got != (RenderInfo{}) {
		t.Errorf("BeginFrame should reset render info, got %+v", got)
	}
}

func TestLightIrradiance(t *testing.T) {
	dir := NewLight(LightDirectional, colorful.Color{R: 1, G: 1, B: 1}, 1)
	dir.Position = mgl64.Vec3{0, 10, 0}

	up := mgl64.Vec3{0, 1, 0}
	if got := dir.Irradiance(mgl64.Vec3{}, up); math.Abs(got-1) > eps {
		t.Errorf("facing directional light = %f, expected 1", got)
	}
	if got := dir.Irradiance(mgl64.Vec3{}, up.Mul(-1)); got != 0 {
		t.Errorf("back-facing directional light = %f, expected 0", got)
	}

	point := NewLight(LightPoint, colorful.Color{R: 1}, 2)
	point.Range = 10
	if got := point.Irradiance(mgl64.Vec3{0, 20, 0}, mgl64.Vec3{0, -1, 0}); got != 0 {
		t.Errorf("point light beyond range = %f, expected 0", got)
	}
	if got := point.Irradiance(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{0, -1, 0}); math.Abs(got-0.5) > eps {
		t.Errorf("point light at half range = %f, expected 0.5", got)
	}

	amb := NewLight(LightAmbient, colorful.Color{}, 0.3)
	amb.Visible = false
	if amb.Irradiance(mgl64.Vec3{}, up) != 0 {
		t.Error("hidden light should contribute nothing")
	}
}

func TestMaterialRampColor(t *testing.T) {
	m := NewStandardMaterial(colorful.Color{R: 0.5})
	if m.RampColor(0.3) != m.Color {
		t.Error("empty ramp should return base color")
	}

	black := colorful.Color{}
	white := colorful.Color{R: 1, G: 1, B: 1}
	m.Ramp = []colorful.Color{black, white}
	if m.RampColor(-1) != black || m.RampColor(2) != white {
		t.Error("ramp should clamp at the ends")
	}
	mid := m.RampColor(0.5)
	if mid.R <= 0.05 || mid.R >= 0.95 {
		t.Errorf("ramp midpoint = %v, expected a grey", mid)
	}

	clone := m.Clone()
	clone.Ramp[0] = white
	if m.Ramp[0] != black {
		t.Error("Clone should not share the ramp slice")
	}
}

func TestTextureSample(t *testing.T) {
	red := colorful.Color{R: 1}
	blue := colorful.Color{B: 1}
	tex := NewTexture("t", 2, 1, []colorful.Color{red, blue})

	if tex.Sample(0.1, 0.5) != red {
		t.Error("left half should be red")
	}
	if tex.Sample(0.9, 0.5) != blue {
		t.Error("right half should be blue")
	}
	if tex.Sample(1.1, 0.5) != red {
		t.Error("u should wrap")
	}
	if avg := tex.Average(); math.Abs(avg.R-0.5) > eps || math.Abs(avg.B-0.5) > eps {
		t.Errorf("Average() = %v", avg)
	}
	if NewTexture("bad", 2, 2, []colorful.Color{red}) != nil {
		t.Error("mismatched pixel count should return nil")
	}
}

func TestSceneLightsAndNodes(t *testing.T) {
	s := New()
	l := NewLight(LightAmbient, colorful.Color{}, 1)
	s.AddLight(l)
	s.AddLight(nil)
	if len(s.Lights()) != 1 {
		t.Fatalf("Lights() = %d, expected 1", len(s.Lights()))
	}
	if !s.RemoveLight(l) || s.RemoveLight(l) {
		t.Error("RemoveLight should succeed once")
	}

	n := NewNode("n")
	n.Add(NewNode("child"))
	s.Add(n)
	if s.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, expected 2", s.NodeCount())
	}
	s.Remove(n)
	if s.NodeCount() != 0 {
		t.Errorf("NodeCount() = %d after remove, expected 0", s.NodeCount())
	}
}
