package bodies

import (
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/orrery/internal/catalog"
	"github.com/vovakirdan/orrery/internal/scene"
)

// RingMode selects how a ring is drawn.
type RingMode int

const (
	// RingNone means the body has no ring.
	RingNone RingMode = iota
	// RingSolid is a translucent disc.
	RingSolid
	// RingParticles is a cloud of discrete rocks.
	RingParticles
)

func (m RingMode) String() string {
	switch m {
	case RingSolid:
		return "solid"
	case RingParticles:
		return "particles"
	default:
		return "none"
	}
}

// ModeOf returns the ring mode a spec selects.
func ModeOf(spec *catalog.RingSpec) RingMode {
	switch {
	case spec == nil || !spec.Enabled:
		return RingNone
	case spec.Particles != nil && spec.Particles.Count > 0:
		return RingParticles
	default:
		return RingSolid
	}
}

const (
	ringSegments = 64
	// ringThickness is the vertical scatter of particles, in body radii.
	ringThickness = 0.04
)

// SampleRingParticles places up to count particles in the annulus
// [inner, outer]. Once at least half the target is placed, each candidate is
// dropped with probability densityVariation/2, which opens gaps without
// under-filling. Attempts are capped at twice the target.
func SampleRingParticles(rng *rand.Rand, inner, outer float64, count int, p catalog.RingParticles) (positions []mgl64.Vec3, sizes []float64) {
	if count <= 0 {
		return nil, nil
	}
	positions = make([]mgl64.Vec3, 0, count)
	sizes = make([]float64, 0, count)

	skip := p.DensityVariation * 0.5
	maxAttempts := 2 * count
	for attempts := 0; len(positions) < count && attempts < maxAttempts; attempts++ {
		angle := rng.Float64() * 2 * math.Pi
		radius := inner + rng.Float64()*(outer-inner)

		if 2*len(positions) >= count && rng.Float64() < skip {
			continue
		}

		y := (rng.Float64() - 0.5) * ringThickness
		positions = append(positions, mgl64.Vec3{math.Cos(angle) * radius, y, math.Sin(angle) * radius})
		size := p.Size * (1 + (rng.Float64()-0.5)*p.SizeVariation)
		sizes = append(sizes, math.Max(size, 0))
	}
	return positions, sizes
}

// ringSeed derives a stable per-body seed so rings look the same on reload.
func ringSeed(id string, seed int64) int64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return int64(h.Sum64()) ^ seed
}

// buildRing creates the ring object for a body. The node is scaled by the
// body radius by the caller.
func (m *Manager) buildRing(d catalog.Descriptor) (*scene.Node, RingMode) {
	spec := d.Rings
	mode := ModeOf(spec)
	color := spec.BaseColor()
	opacity := spec.Opacity
	if opacity <= 0 {
		opacity = 1
	}

	var obj scene.Object
	switch mode {
	case RingParticles:
		count := int(math.Round(float64(spec.Particles.Count) * m.particleScale))
		if m.maxParticles > 0 && count > m.maxParticles {
			count = m.maxParticles
		}
		if count < 1 {
			count = 1
		}
		rng := rand.New(rand.NewSource(ringSeed(d.ID, m.seed)))
		pos, sizes := SampleRingParticles(rng, spec.InnerRadius, spec.OuterRadius, count, *spec.Particles)
		mat := scene.NewPointsMaterial(color, spec.Particles.Size)
		mat.Opacity = opacity
		mat.Transparent = opacity < 1
		obj = &scene.Points{Geometry: scene.NewPointsGeometry(pos, nil, sizes), Material: mat}
	case RingSolid:
		mat := scene.NewStandardMaterial(color)
		mat.Name = d.ID + "-ring"
		mat.Opacity = opacity
		mat.Transparent = opacity < 1
		mat.Side = scene.DoubleSide
		mat.Roughness = 0.8
		obj = &scene.Mesh{Geometry: scene.NewRingGeometry(spec.InnerRadius, spec.OuterRadius, ringSegments), Material: mat}
	default:
		return nil, RingNone
	}

	node := scene.NewObjectNode(d.ID+"/ring", obj)
	node.Rotation = spec.Rotation.V()
	node.SetUniformScale(d.Scale)
	m.res.TrackObject(obj)
	return node, mode
}
