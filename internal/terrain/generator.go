package terrain

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/orrery/internal/scene"
)

// rangeSamples is the number of directions probed to find the displacement
// range used by Elevation.
const rangeSamples = 1024

// Generator evaluates a terrain configuration at arbitrary directions.
// It is immutable once built.
type Generator struct {
	cfg      Config
	noise    *Perlin
	features []feature
	minD     float64
	maxD     float64
}

// New builds a generator. Feature placement and the noise permutation are
// both derived from cfg.Noise.Seed.
func New(cfg Config) *Generator {
	cfg = cfg.withDefaults()
	g := &Generator{
		cfg:   cfg,
		noise: NewPerlin(cfg.Noise.Seed),
	}
	g.features = placeFeatures(cfg, rand.New(rand.NewSource(cfg.Noise.Seed+1)))
	g.measure()
	return g
}

// Config returns the configuration with defaults applied.
func (g *Generator) Config() Config {
	return g.cfg
}

// FeatureCount returns the number of placed features.
func (g *Generator) FeatureCount() int {
	return len(g.features)
}

// Displacement returns the radial offset at a unit direction as a fraction
// of the base radius. It is zero when terrain is disabled.
func (g *Generator) Displacement(dir mgl64.Vec3) float64 {
	if !g.cfg.Enabled {
		return 0
	}
	n := g.cfg.Noise
	d := 0.0
	if n.Amplitude != 0 {
		d += n.Amplitude * g.cfg.HeightScale *
			g.noise.FBM(dir[0], dir[1], dir[2], n.Octaves, n.Frequency, n.Persistence, n.Lacunarity)
	}
	for _, f := range g.features {
		d += f.displacement(dir)
	}
	return d
}

// Elevation maps a direction's displacement into [0, 1] across the
// generator's displacement range.
func (g *Generator) Elevation(dir mgl64.Vec3) float64 {
	if g.maxD-g.minD < 1e-12 {
		return 0.5
	}
	l := dir.Len()
	if l == 0 {
		return 0.5
	}
	e := (g.Displacement(dir.Mul(1/l)) - g.minD) / (g.maxD - g.minD)
	return mgl64.Clamp(e, 0, 1)
}

// measure samples a Fibonacci sphere plus every feature center.
func (g *Generator) measure() {
	g.minD, g.maxD = math.Inf(1), math.Inf(-1)
	probe := func(dir mgl64.Vec3) {
		d := g.Displacement(dir)
		g.minD = math.Min(g.minD, d)
		g.maxD = math.Max(g.maxD, d)
	}

	golden := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < rangeSamples; i++ {
		y := 1 - 2*(float64(i)+0.5)/rangeSamples
		r := math.Sqrt(1 - y*y)
		a := golden * float64(i)
		probe(mgl64.Vec3{r * math.Cos(a), y, r * math.Sin(a)})
	}
	for _, f := range g.features {
		probe(f.center)
	}
}

// Generate builds a sphere of baseRadius at the configured resolution and,
// when enabled, displaces each vertex along its direction. Normals are
// recomputed after displacement.
func Generate(cfg Config, baseRadius float64) *scene.Geometry {
	w, h := cfg.Resolution.Segments()
	geo := scene.NewSphereGeometry(baseRadius, w, h)
	if !cfg.Enabled {
		return geo
	}
	return New(cfg).Apply(geo)
}

// Apply displaces an existing sphere geometry in place and returns it.
func (g *Generator) Apply(geo *scene.Geometry) *scene.Geometry {
	if !g.cfg.Enabled || geo == nil {
		return geo
	}
	base := geo.Radius
	for i, p := range geo.Positions {
		l := p.Len()
		if l == 0 {
			continue
		}
		dir := p.Mul(1 / l)
		geo.Positions[i] = dir.Mul(base * (1 + g.Displacement(dir)))
	}
	geo.ComputeVertexNormals()
	return geo
}
