// Package terrain deforms sphere geometry into procedural planetary
// surfaces: fBm noise plus crater, mountain, valley and continent features.
package terrain

import (
	"fmt"
	"strings"
)

// Family is the terrain family of a body.
type Family int

const (
	FamilyRocky Family = iota
	FamilyGas
	FamilyIce
	FamilyVolcanic
	FamilyEarthLike
	FamilyDesert
)

var familyNames = map[Family]string{
	FamilyRocky:     "rocky",
	FamilyGas:       "gas",
	FamilyIce:       "ice",
	FamilyVolcanic:  "volcanic",
	FamilyEarthLike: "earth_like",
	FamilyDesert:    "desert",
}

func (f Family) String() string {
	if s, ok := familyNames[f]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (f Family) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText accepts the family names, case-insensitively, with either
// "earth_like" or "earth-like".
func (f *Family) UnmarshalText(text []byte) error {
	s := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(string(text))), "-", "_")
	for k, name := range familyNames {
		if name == s {
			*f = k
			return nil
		}
	}
	return fmt.Errorf("terrain: unknown family %q", string(text))
}

// Resolution is the tessellation tier of a terrain sphere.
type Resolution int

const (
	ResolutionLow Resolution = iota + 1
	ResolutionMedium
	ResolutionHigh
	ResolutionUltra
)

func (r Resolution) String() string {
	switch r {
	case ResolutionLow:
		return "low"
	case ResolutionMedium:
		return "medium"
	case ResolutionHigh:
		return "high"
	case ResolutionUltra:
		return "ultra"
	default:
		return "medium"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Resolution) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Resolution) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "low":
		*r = ResolutionLow
	case "medium", "":
		*r = ResolutionMedium
	case "high":
		*r = ResolutionHigh
	case "ultra":
		*r = ResolutionUltra
	default:
		return fmt.Errorf("terrain: unknown resolution %q", string(text))
	}
	return nil
}

// Segments returns the sphere width and height segments for the tier.
// An unset tier is treated as medium.
func (r Resolution) Segments() (width, height int) {
	switch r {
	case ResolutionLow:
		return 24, 16
	case ResolutionHigh:
		return 64, 48
	case ResolutionUltra:
		return 96, 64
	default:
		return 48, 32
	}
}

// Range is an inclusive [Min, Max] interval sampled uniformly.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// or returns def when r is unset.
func (r Range) or(def Range) Range {
	if r.Min == 0 && r.Max == 0 {
		return def
	}
	return r
}

func (r Range) sample(u float64) float64 {
	return r.Min + (r.Max-r.Min)*u
}

// CraterConfig places impact craters: a bowl with a raised rim.
// Radius is angular (radians); Depth is a fraction of the body radius.
type CraterConfig struct {
	Count  int   `yaml:"count"`
	Radius Range `yaml:"radius"`
	Depth  Range `yaml:"depth"`
}

// MountainConfig places positive bumps shaped by falloff^Smoothness.
type MountainConfig struct {
	Count      int     `yaml:"count"`
	Radius     Range   `yaml:"radius"`
	Height     Range   `yaml:"height"`
	Smoothness float64 `yaml:"smoothness"`
}

// ValleyConfig places negative depressions shaped by sqrt(falloff).
type ValleyConfig struct {
	Count  int   `yaml:"count"`
	Radius Range `yaml:"radius"`
	Depth  Range `yaml:"depth"`
}

// ContinentConfig places broad swells shaped by falloff^1.5.
type ContinentConfig struct {
	Count     int   `yaml:"count"`
	Radius    Range `yaml:"radius"`
	Elevation Range `yaml:"elevation"`
}

// ColorRamp holds the four elevation stops as hex strings.
type ColorRamp struct {
	Low  string `yaml:"low"`
	Mid  string `yaml:"mid"`
	High string `yaml:"high"`
	Peak string `yaml:"peak"`
}

// IsZero reports whether no stop is set.
func (c ColorRamp) IsZero() bool {
	return c.Low == "" && c.Mid == "" && c.High == "" && c.Peak == ""
}

// NoiseConfig parameterizes fractal Brownian motion over Perlin noise.
type NoiseConfig struct {
	Seed        int64   `yaml:"seed"`
	Octaves     int     `yaml:"octaves"`
	Frequency   float64 `yaml:"frequency"`
	Amplitude   float64 `yaml:"amplitude"`
	Persistence float64 `yaml:"persistence"`
	Lacunarity  float64 `yaml:"lacunarity"`
}

// Config describes one body's terrain. It is read once at body creation.
type Config struct {
	Enabled     bool             `yaml:"enabled"`
	Family      Family           `yaml:"type"`
	HeightScale float64          `yaml:"height_scale"`
	Resolution  Resolution       `yaml:"resolution"`
	Craters     *CraterConfig    `yaml:"craters,omitempty"`
	Mountains   *MountainConfig  `yaml:"mountains,omitempty"`
	Valleys     *ValleyConfig    `yaml:"valleys,omitempty"`
	Continents  *ContinentConfig `yaml:"continents,omitempty"`
	Colors      ColorRamp        `yaml:"colors"`
	Noise       NoiseConfig      `yaml:"noise"`
}

// withDefaults fills zero-valued tuning parameters.
func (c Config) withDefaults() Config {
	if c.HeightScale == 0 {
		c.HeightScale = 1
	}
	n := &c.Noise
	// Shaping fields without an amplitude still ask for noise.
	if n.Amplitude == 0 && (n.Octaves > 0 || n.Frequency != 0) {
		n.Amplitude = 0.015
	}
	if n.Octaves <= 0 {
		n.Octaves = 4
	}
	if n.Frequency == 0 {
		n.Frequency = 1.5
	}
	if n.Persistence == 0 {
		n.Persistence = 0.5
	}
	if n.Lacunarity == 0 {
		n.Lacunarity = 2
	}
	if c.Craters != nil {
		cr := *c.Craters
		cr.Radius = cr.Radius.or(Range{0.1, 0.3})
		cr.Depth = cr.Depth.or(Range{0.02, 0.05})
		c.Craters = &cr
	}
	if c.Mountains != nil {
		m := *c.Mountains
		m.Radius = m.Radius.or(Range{0.1, 0.25})
		m.Height = m.Height.or(Range{0.02, 0.05})
		if m.Smoothness == 0 {
			m.Smoothness = 1
		}
		c.Mountains = &m
	}
	if c.Valleys != nil {
		v := *c.Valleys
		v.Radius = v.Radius.or(Range{0.2, 0.35})
		v.Depth = v.Depth.or(Range{0.02, 0.04})
		c.Valleys = &v
	}
	if c.Continents != nil {
		co := *c.Continents
		co.Radius = co.Radius.or(Range{0.5, 0.8})
		co.Elevation = co.Elevation.or(Range{0.03, 0.05})
		c.Continents = &co
	}
	return c
}
