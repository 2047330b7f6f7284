package terrain

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

type featureKind int

const (
	featureCrater featureKind = iota
	featureMountain
	featureValley
	featureContinent
)

// feature is one placed surface feature. Radius is angular; Magnitude is a
// fraction of the body radius, already scaled by the height scale.
type feature struct {
	kind       featureKind
	center     mgl64.Vec3
	radius     float64
	magnitude  float64
	smoothness float64
}

// falloff is the shared influence profile: 1 at the center, 0 at t >= 1.
func falloff(t float64) float64 {
	if t >= 1 {
		return 0
	}
	if t <= 0 {
		return 1
	}
	return (1 + math.Cos(math.Pi*t)) / 2
}

// displacement returns the feature's contribution for a unit direction.
func (f feature) displacement(dir mgl64.Vec3) float64 {
	if f.radius <= 0 {
		return 0
	}
	t := angleBetween(dir, f.center) / f.radius
	if t >= 1 {
		return 0
	}
	fo := falloff(t)

	switch f.kind {
	case featureCrater:
		d := -f.magnitude * falloff(t/0.85)
		if t >= 0.7 {
			d += f.magnitude * 0.35 * math.Sin(math.Pi*(t-0.7)/0.3)
		}
		return d
	case featureMountain:
		return f.magnitude * math.Pow(fo, f.smoothness)
	case featureValley:
		return -f.magnitude * math.Sqrt(fo)
	case featureContinent:
		return f.magnitude * math.Pow(fo, 1.5)
	default:
		return 0
	}
}

func angleBetween(a, b mgl64.Vec3) float64 {
	return math.Acos(mgl64.Clamp(a.Dot(b), -1, 1))
}

// randomDirection samples a uniformly distributed unit vector.
func randomDirection(rng *rand.Rand) mgl64.Vec3 {
	theta := 2 * math.Pi * rng.Float64()
	z := 2*rng.Float64() - 1
	r := math.Sqrt(1 - z*z)
	return mgl64.Vec3{r * math.Cos(theta), z, r * math.Sin(theta)}
}

// placeFeatures scatters every configured group. Groups are placed in a
// fixed order from one rng so a seed always reproduces the same surface.
func placeFeatures(cfg Config, rng *rand.Rand) []feature {
	var out []feature
	scale := cfg.HeightScale

	add := func(kind featureKind, count int, radius, mag Range, smooth float64) {
		for i := 0; i < count; i++ {
			out = append(out, feature{
				kind:       kind,
				center:     randomDirection(rng),
				radius:     radius.sample(rng.Float64()),
				magnitude:  mag.sample(rng.Float64()) * scale,
				smoothness: smooth,
			})
		}
	}

	if c := cfg.Craters; c != nil {
		add(featureCrater, c.Count, c.Radius, c.Depth, 0)
	}
	if m := cfg.Mountains; m != nil {
		add(featureMountain, m.Count, m.Radius, m.Height, m.Smoothness)
	}
	if v := cfg.Valleys; v != nil {
		add(featureValley, v.Count, v.Radius, v.Depth, 0)
	}
	if c := cfg.Continents; c != nil {
		add(featureContinent, c.Count, c.Radius, c.Elevation, 0)
	}
	return out
}
