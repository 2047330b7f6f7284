package environment

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

const lcgModulus = 233280

// LCG is the linear congruential generator behind the starfield. The same
// seed always reproduces the same sequence.
type LCG struct {
	state int64
}

// NewLCG seeds a generator.
func NewLCG(seed int64) *LCG {
	s := seed % lcgModulus
	if s < 0 {
		s += lcgModulus
	}
	return &LCG{state: s}
}

// Next returns the next value in [0, 1).
func (g *LCG) Next() float64 {
	g.state = (g.state*9301 + 49297) % lcgModulus
	return float64(g.state) / lcgModulus
}

// Star color classes.
var (
	StarWhite       = colorful.Color{R: 1, G: 1, B: 1}
	StarBlueWhite   = colorful.Color{R: 0.8, G: 0.88, B: 1}
	StarYellowWhite = colorful.Color{R: 1, G: 0.95, B: 0.8}
)

// StarfieldConfig configures the background stars.
type StarfieldConfig struct {
	Count          int
	Seed           int64
	MinRadius      float64
	MaxRadius      float64
	ColorVariation bool
	RotationSpeed  float64 // rad/s about Y
	TwinkleSpeed   float64 // rad/s of the twinkle sinusoid
}

// DefaultStarfield returns the starfield used when a system sets none.
func DefaultStarfield() StarfieldConfig {
	return StarfieldConfig{
		Count:          500,
		Seed:           12345,
		MinRadius:      100,
		MaxRadius:      180,
		ColorVariation: true,
		RotationSpeed:  0.005,
		TwinkleSpeed:   2,
	}
}

// Stars is a generated starfield.
type Stars struct {
	Positions []mgl64.Vec3
	Colors    []colorful.Color
	Sizes     []float64
}

// GenerateStarfield places cfg.Count stars on a shell between MinRadius and
// MaxRadius, uniformly over the sphere. It is a pure function of cfg.
func GenerateStarfield(cfg StarfieldConfig) Stars {
	if cfg.Count <= 0 {
		return Stars{}
	}
	minR, maxR := cfg.MinRadius, cfg.MaxRadius
	if maxR < minR {
		minR, maxR = maxR, minR
	}

	rng := NewLCG(cfg.Seed)
	out := Stars{
		Positions: make([]mgl64.Vec3, cfg.Count),
		Colors:    make([]colorful.Color, cfg.Count),
		Sizes:     make([]float64, cfg.Count),
	}
	for i := 0; i < cfg.Count; i++ {
		r := minR + rng.Next()*(maxR-minR)
		theta := 2 * math.Pi * rng.Next()
		phi := math.Acos(2*rng.Next() - 1)

		out.Positions[i] = mgl64.Vec3{
			r * math.Sin(phi) * math.Cos(theta),
			r * math.Cos(phi),
			r * math.Sin(phi) * math.Sin(theta),
		}

		out.Colors[i] = StarWhite
		if cfg.ColorVariation {
			switch u := rng.Next(); {
			case u < 0.7:
				out.Colors[i] = StarWhite
			case u < 0.85:
				out.Colors[i] = StarBlueWhite
			default:
				out.Colors[i] = StarYellowWhite
			}
		}
		out.Sizes[i] = 0.5 + rng.Next()
	}
	return out
}

// Twinkle returns the brightness of star i after elapsed seconds.
func Twinkle(elapsed, speed float64, i int) float64 {
	return 0.7 + 0.3*math.Sin(elapsed*speed+float64(i)*0.37)
}
