package bodies

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/orrery/internal/catalog"
)

// Spin rates about the local Y axis, in rad/s at speed multiplier 1.
const (
	StarSpin   = 0.05
	PlanetSpin = 0.5
	MoonSpin   = 0.3
)

// SpinRate returns the spin rate for a body type.
func SpinRate(t catalog.BodyType) float64 {
	switch t {
	case catalog.BodyStar:
		return StarSpin
	case catalog.BodyMoon:
		return MoonSpin
	default:
		return PlanetSpin
	}
}

// UpdateAnimations spins every body and advances every orbit by
// dt·orbitSpeed·speed. Positions are recomputed from the accumulated angle
// and the parent's current position, so they never drift. Bodies whose
// parent is missing keep their place; a warning is logged once.
func (m *Manager) UpdateAnimations(dt, speed float64) {
	if m.disposed {
		return
	}
	for _, id := range m.updateOrder() {
		b := m.bodies[id]
		d := b.Descriptor

		b.Mesh.Rotation[1] += SpinRate(d.Type) * dt * speed

		if !d.Orbits() {
			continue
		}

		var center mgl64.Vec3
		if d.ParentID != "" {
			parent, ok := m.bodies[d.ParentID]
			if !ok {
				if !m.warned[id] {
					m.warned[id] = true
					m.log.Warn("parent not found, skipping orbit", "id", id, "parent", d.ParentID)
				}
				continue
			}
			if m.warned[id] {
				delete(m.warned, id)
				m.log.Info("parent found, resuming orbit", "id", id, "parent", d.ParentID)
			}
			if b.Orbit != nil && b.Orbit.Parent() != parent.Group {
				parent.Group.Add(b.Orbit)
			}
			center = parent.Group.Position
		}

		b.angle += dt * d.OrbitSpeed * speed
		b.Group.Position = orbitPosition(center, d.OrbitRadius, b.angle)
	}
}

// updateOrder returns body ids with every parent before its children,
// otherwise in creation order. Parent cycles are broken at the first
// revisited body.
func (m *Manager) updateOrder() []string {
	if m.update != nil {
		return m.update
	}
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(m.order))
	order := make([]string, 0, len(m.order))

	var visit func(id string)
	visit = func(id string) {
		if state[id] != unvisited {
			return
		}
		state[id] = visiting
		if p := m.bodies[id].Descriptor.ParentID; p != "" {
			if _, ok := m.bodies[p]; ok {
				visit(p)
			}
		}
		state[id] = done
		order = append(order, id)
	}
	for _, id := range m.order {
		visit(id)
	}
	m.update = order
	return order
}

// RestoreAngles sets the orbit angles of the given bodies and recomputes
// positions, parents first. Unknown ids are ignored.
func (m *Manager) RestoreAngles(angles map[string]float64) {
	if m.disposed {
		return
	}
	for id, a := range angles {
		if b, ok := m.bodies[id]; ok && b.Descriptor.Orbits() {
			b.angle = a
		}
	}
	m.UpdateAnimations(0, 0)
}
