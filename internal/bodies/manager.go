// Package bodies owns the scene nodes of every star, planet and moon in a
// system: their meshes, rings, orbit paths and orbital state.
package bodies

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/vovakirdan/orrery/internal/catalog"
	"github.com/vovakirdan/orrery/internal/logging"
	"github.com/vovakirdan/orrery/internal/scene"
	"github.com/vovakirdan/orrery/internal/terrain"
)

// OrbitSegments is the number of segments in every orbit path.
const OrbitSegments = 128

var (
	// ErrEmptyID is returned for a descriptor without an id.
	ErrEmptyID = catalog.ErrEmptyID
	// ErrInvalidScale is returned for a non-positive scale.
	ErrInvalidScale = catalog.ErrInvalidScale
	// ErrDisposed is returned by CreateBody after Dispose.
	ErrDisposed = errors.New("bodies: manager disposed")
)

var orbitLineColor = colorful.Color{R: 0.45, G: 0.5, B: 0.6}

// Body is the live state of one created body.
type Body struct {
	Descriptor catalog.Descriptor
	// Group carries the body position. Mesh and Ring hang off it, as do the
	// orbit paths of the body's moons.
	Group *scene.Node
	Mesh  *scene.Node
	Ring  *scene.Node
	// Orbit is the orbit path, attached to the parent's group or the root.
	Orbit    *scene.Node
	RingMode RingMode
	Terrain  *terrain.Generator

	material     *scene.Material
	baseEmissive colorful.Color
	baseGlow     float64
	angle        float64
	highlighted  bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithTextures supplies preloaded textures keyed by reference.
func WithTextures(textures map[string]*scene.Texture) Option {
	return func(m *Manager) {
		m.textures = textures
	}
}

// WithParticleScale multiplies every ring particle count.
func WithParticleScale(f float64) Option {
	return func(m *Manager) {
		if f > 0 {
			m.particleScale = f
		}
	}
}

// WithMaxParticles caps the particle count of any one ring. Zero disables
// the cap.
func WithMaxParticles(n int) Option {
	return func(m *Manager) {
		if n >= 0 {
			m.maxParticles = n
		}
	}
}

// WithSeed mixes seed into ring particle placement.
func WithSeed(seed int64) Option {
	return func(m *Manager) {
		m.seed = seed
	}
}

// Manager is the sole owner and mutator of body nodes. All lookups go through
// its id-keyed arena; nodes never hold references to other bodies.
type Manager struct {
	root *scene.Node
	res  *scene.Resources
	log  *log.Logger

	bodies map[string]*Body
	order  []string
	// update holds ids with parents before children; nil when stale.
	update []string
	warned map[string]bool

	textures          map[string]*scene.Texture
	particleScale     float64
	maxParticles      int
	seed              int64
	orbitLinesVisible bool
	disposed          bool
}

// NewManager creates a manager that attaches bodies under root.
func NewManager(root *scene.Node, res *scene.Resources, logger *log.Logger, opts ...Option) *Manager {
	if res == nil {
		res = scene.NewResources()
	}
	m := &Manager{
		root:              root,
		res:               res,
		log:               logging.OrDiscard(logger),
		bodies:            make(map[string]*Body),
		warned:            make(map[string]bool),
		particleScale:     1,
		orbitLinesVisible: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Segments returns the sphere tessellation used for a body type.
func Segments(t catalog.BodyType) (width, height int) {
	switch t {
	case catalog.BodyStar:
		return 64, 48
	case catalog.BodyMoon:
		return 24, 16
	default:
		return 48, 32
	}
}

// CreateBody builds and registers the nodes for d and returns its group.
// An existing body with the same id is disposed and replaced.
func (m *Manager) CreateBody(d catalog.Descriptor) (*scene.Node, error) {
	if m.disposed {
		return nil, ErrDisposed
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("bodies: %w", err)
	}
	if _, exists := m.bodies[d.ID]; exists {
		m.log.Debug("replacing body", "id", d.ID)
		m.RemoveBody(d.ID)
	}

	b := &Body{Descriptor: d}
	b.Group = scene.NewNode(d.ID)
	b.Group.Position = d.Position.V()

	m.buildMesh(b)

	if d.HasRings() {
		b.Ring, b.RingMode = m.buildRing(d)
		if b.Ring != nil {
			b.Group.Add(b.Ring)
		}
	}

	if d.Orbits() {
		// An orphan keeps its declared position until its parent exists.
		var center mgl64.Vec3
		parent, known := m.bodies[d.ParentID]
		if known {
			center = parent.Group.Position
		}
		rel := b.Group.Position.Sub(center)
		b.angle = math.Atan2(rel.Z(), rel.X())
		if known || d.ParentID == "" {
			b.Group.Position = orbitPosition(center, d.OrbitRadius, b.angle)
		}
		m.buildOrbitLine(b)
	}

	m.root.Add(b.Group)
	m.bodies[d.ID] = b
	m.order = append(m.order, d.ID)
	m.update = nil

	m.log.Debug("body created", "id", d.ID, "type", d.Type, "rings", b.RingMode, "terrain", d.HasTerrain())
	return b.Group, nil
}

func (m *Manager) buildMesh(b *Body) {
	d := b.Descriptor
	var geo *scene.Geometry
	var mat *scene.Material

	if d.HasTerrain() {
		b.Terrain = terrain.New(*d.Terrain)
		w, h := d.Terrain.Resolution.Segments()
		geo = b.Terrain.Apply(scene.NewSphereGeometry(1, w, h))
		if d.Terrain.Colors.IsZero() {
			mat = terrain.MaterialFor(*d.Terrain, d.Material.BaseColor())
		} else {
			mat = terrain.ElevationMaterial(*d.Terrain, b.Terrain)
		}
	} else {
		w, h := Segments(d.Type)
		geo = scene.NewSphereGeometry(1, w, h)
		mat = scene.NewStandardMaterial(d.Material.BaseColor())
		mat.Roughness = d.Material.Roughness
		mat.Metalness = d.Material.Metalness
	}
	mat.Name = d.ID

	if d.Material.Emissive != "" {
		mat.Emissive = d.Material.EmissiveColor()
		mat.EmissiveIntensity = d.Material.EmissiveIntensity
	}
	if d.Type == catalog.BodyStar {
		mat.Shader = scene.ShaderBasic
	}
	if ref := d.Material.Texture; ref != "" {
		if tex, ok := m.textures[ref]; ok && tex != nil {
			mat.Map = tex
		} else {
			m.log.Warn("texture unavailable, using procedural material", "id", d.ID, "texture", ref)
		}
	}

	b.material = mat
	b.baseEmissive = mat.Emissive
	b.baseGlow = mat.EmissiveIntensity

	mesh := &scene.Mesh{Geometry: geo, Material: mat}
	b.Mesh = scene.NewObjectNode(d.ID+"/mesh", mesh)
	b.Mesh.SetUniformScale(d.Scale)
	b.Group.Add(b.Mesh)
	m.res.TrackObject(mesh)
}

func (m *Manager) buildOrbitLine(b *Body) {
	line := &scene.Line{
		Geometry: scene.NewCircleGeometry(b.Descriptor.OrbitRadius, OrbitSegments),
		Material: scene.NewLineMaterial(orbitLineColor, 0.35),
	}
	b.Orbit = scene.NewObjectNode(b.Descriptor.ID+"/orbit", line)
	b.Orbit.Visible = m.orbitLinesVisible
	m.orbitHost(b).Add(b.Orbit)
	m.res.TrackObject(line)
}

// orbitHost is the node an orbit path belongs under: the parent's group so
// the path follows a moving parent, or the root.
func (m *Manager) orbitHost(b *Body) *scene.Node {
	if parent, ok := m.bodies[b.Descriptor.ParentID]; ok {
		return parent.Group
	}
	return m.root
}

func orbitPosition(center mgl64.Vec3, radius, angle float64) mgl64.Vec3 {
	return center.Add(mgl64.Vec3{radius * math.Cos(angle), 0, radius * math.Sin(angle)})
}

// RemoveBody disposes a body and detaches its nodes. Moons of the removed
// body stay registered and pause until a body with that id exists again.
func (m *Manager) RemoveBody(id string) bool {
	b, ok := m.bodies[id]
	if !ok {
		return false
	}
	release(b.Mesh)
	release(b.Ring)
	release(b.Orbit)
	b.Group.RemoveFromParent()

	delete(m.bodies, id)
	delete(m.warned, id)
	for i, x := range m.order {
		if x == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.update = nil
	return true
}

func release(n *scene.Node) {
	if n == nil {
		return
	}
	n.RemoveFromParent()
	if n.Object != nil {
		n.Object.Dispose()
	}
}

// Dispose releases every body. Later calls are no-ops.
func (m *Manager) Dispose() {
	if m.disposed {
		return
	}
	for _, id := range append([]string(nil), m.order...) {
		m.RemoveBody(id)
	}
	clear(m.bodies)
	clear(m.warned)
	m.order, m.update = nil, nil
	m.disposed = true
}

// Disposed reports whether Dispose has been called.
func (m *Manager) Disposed() bool {
	return m.disposed
}
