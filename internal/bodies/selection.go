package bodies

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/vovakirdan/orrery/internal/catalog"
	"github.com/vovakirdan/orrery/internal/scene"
)

var highlightTint = colorful.Color{R: 0.35, G: 0.45, B: 0.6}

// Highlight toggles the emissive tint on one body's material. Other bodies
// are untouched. It reports whether the body exists.
func (m *Manager) Highlight(id string, on bool) bool {
	b, ok := m.bodies[id]
	if !ok {
		return false
	}
	if on == b.highlighted {
		return true
	}
	b.highlighted = on
	if on {
		b.material.Emissive = highlightTint
		b.material.EmissiveIntensity = 0.6
	} else {
		b.material.Emissive = b.baseEmissive
		b.material.EmissiveIntensity = b.baseGlow
	}
	return true
}

// Highlighted reports whether a body is highlighted.
func (m *Manager) Highlighted(id string) bool {
	b, ok := m.bodies[id]
	return ok && b.highlighted
}

// SetOrbitLinesVisible shows or hides every orbit path, including paths of
// bodies created later.
func (m *Manager) SetOrbitLinesVisible(visible bool) {
	m.orbitLinesVisible = visible
	for _, b := range m.bodies {
		if b.Orbit != nil {
			b.Orbit.Visible = visible
		}
	}
}

// OrbitLinesVisible returns the global orbit path visibility.
func (m *Manager) OrbitLinesVisible() bool {
	return m.orbitLinesVisible
}

// SetOrbitLineVisible toggles one body's orbit path. It reports whether the
// body has an orbit path.
func (m *Manager) SetOrbitLineVisible(id string, visible bool) bool {
	b, ok := m.bodies[id]
	if !ok || b.Orbit == nil {
		return false
	}
	b.Orbit.Visible = visible
	return true
}

// SetRingVisible toggles one body's ring. It reports whether the body has a
// ring.
func (m *Manager) SetRingVisible(id string, visible bool) bool {
	b, ok := m.bodies[id]
	if !ok || b.Ring == nil {
		return false
	}
	b.Ring.Visible = visible
	return true
}

// Body returns the live state of a body. Callers must not mutate it.
func (m *Manager) Body(id string) (*Body, bool) {
	b, ok := m.bodies[id]
	return b, ok
}

// Node returns a body's group node.
func (m *Manager) Node(id string) *scene.Node {
	if b, ok := m.bodies[id]; ok {
		return b.Group
	}
	return nil
}

// Descriptor returns the descriptor a body was created from.
func (m *Manager) Descriptor(id string) (catalog.Descriptor, bool) {
	b, ok := m.bodies[id]
	if !ok {
		return catalog.Descriptor{}, false
	}
	return b.Descriptor, true
}

// Position returns a body's position relative to the manager root.
func (m *Manager) Position(id string) (mgl64.Vec3, bool) {
	b, ok := m.bodies[id]
	if !ok {
		return mgl64.Vec3{}, false
	}
	return b.Group.Position, true
}

// WorldPosition returns a body's position in world space.
func (m *Manager) WorldPosition(id string) (mgl64.Vec3, bool) {
	b, ok := m.bodies[id]
	if !ok {
		return mgl64.Vec3{}, false
	}
	return b.Group.WorldPosition(), true
}

// OrbitAngle returns the accumulated orbit angle of a body.
func (m *Manager) OrbitAngle(id string) (float64, bool) {
	b, ok := m.bodies[id]
	if !ok {
		return 0, false
	}
	return b.angle, true
}

// Radius returns the body's largest surface radius, terrain included.
func (m *Manager) Radius(id string) float64 {
	b, ok := m.bodies[id]
	if !ok {
		return 0
	}
	mesh, _ := b.Mesh.Object.(*scene.Mesh)
	if mesh == nil {
		return b.Descriptor.Scale
	}
	return mesh.Geometry.BoundingRadius() * b.Descriptor.Scale
}

// IDs returns body ids in creation order.
func (m *Manager) IDs() []string {
	return append([]string(nil), m.order...)
}

// Count returns the number of bodies.
func (m *Manager) Count() int {
	return len(m.bodies)
}

// Find returns the id of the body that owns n, walking up from n.
func (m *Manager) Find(n *scene.Node) (string, bool) {
	for ; n != nil; n = n.Parent() {
		if b, ok := m.bodies[n.Name]; ok && b.Group == n {
			return n.Name, true
		}
	}
	return "", false
}
