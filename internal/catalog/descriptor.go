// Package catalog defines the declarative description of a planetary system
// and loads it from YAML.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/orrery/internal/terrain"
)

var (
	// ErrEmptyID is returned for a descriptor or system without an id.
	ErrEmptyID = errors.New("catalog: empty id")
	// ErrInvalidScale is returned for a non-positive body scale.
	ErrInvalidScale = errors.New("catalog: scale must be positive")
	// ErrInvalidRings is returned when ring radii are inverted or negative.
	ErrInvalidRings = errors.New("catalog: ring inner radius must be below outer radius")
)

// BodyType is the display type of a celestial body.
type BodyType int

const (
	BodyPlanet BodyType = iota
	BodyStar
	BodyMoon
)

func (t BodyType) String() string {
	switch t {
	case BodyStar:
		return "star"
	case BodyMoon:
		return "moon"
	default:
		return "planet"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t BodyType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *BodyType) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "star", "sun":
		*t = BodyStar
	case "planet", "":
		*t = BodyPlanet
	case "moon", "satellite":
		*t = BodyMoon
	default:
		return fmt.Errorf("catalog: unknown body type %q", string(text))
	}
	return nil
}

// Vec3 is a position in YAML, written either as [x, y, z] or {x, y, z}.
type Vec3 [3]float64

// V converts to a mathgl vector.
func (v Vec3) V() mgl64.Vec3 {
	return mgl64.Vec3(v)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Vec3) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		var xs []float64
		if err := n.Decode(&xs); err != nil {
			return err
		}
		if len(xs) != 3 {
			return fmt.Errorf("catalog: line %d: vector needs 3 components, got %d", n.Line, len(xs))
		}
		copy(v[:], xs)
	case yaml.MappingNode:
		var m struct {
			X float64 `yaml:"x"`
			Y float64 `yaml:"y"`
			Z float64 `yaml:"z"`
		}
		if err := n.Decode(&m); err != nil {
			return err
		}
		*v = Vec3{m.X, m.Y, m.Z}
	default:
		return fmt.Errorf("catalog: line %d: vector must be a sequence or mapping", n.Line)
	}
	return nil
}

// MarshalYAML writes the flow sequence form.
func (v Vec3) MarshalYAML() (interface{}, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, c := range v {
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprint(c)})
	}
	return n, nil
}

// MaterialSpec describes a body's surface.
type MaterialSpec struct {
	Color             string  `yaml:"color"`
	Roughness         float64 `yaml:"roughness"`
	Metalness         float64 `yaml:"metalness"`
	Emissive          string  `yaml:"emissive,omitempty"`
	EmissiveIntensity float64 `yaml:"emissive_intensity,omitempty"`
	Texture           string  `yaml:"texture,omitempty"`
}

// BaseColor parses Color, falling back to mid grey.
func (m MaterialSpec) BaseColor() colorful.Color {
	return parseHex(m.Color, colorful.Color{R: 0.5, G: 0.5, B: 0.5})
}

// EmissiveColor parses Emissive, falling back to black.
func (m MaterialSpec) EmissiveColor() colorful.Color {
	return parseHex(m.Emissive, colorful.Color{})
}

// RingParticles switches a ring from a solid disc to a rock cloud.
type RingParticles struct {
	Count            int     `yaml:"count"`
	Size             float64 `yaml:"size"`
	SizeVariation    float64 `yaml:"size_variation"`
	DensityVariation float64 `yaml:"density_variation"`
}

// RingSpec describes a planetary ring in the body's local frame.
// Radii are in units of the body radius.
type RingSpec struct {
	Enabled     bool           `yaml:"enabled"`
	InnerRadius float64        `yaml:"inner_radius"`
	OuterRadius float64        `yaml:"outer_radius"`
	Color       string         `yaml:"color"`
	Opacity     float64        `yaml:"opacity"`
	Rotation    Vec3           `yaml:"rotation"`
	Particles   *RingParticles `yaml:"particles,omitempty"`
}

// BaseColor parses Color, falling back to a pale tan.
func (r RingSpec) BaseColor() colorful.Color {
	return parseHex(r.Color, colorful.Color{R: 0.8, G: 0.75, B: 0.6})
}

// Descriptor is the immutable description of one star, planet or moon.
type Descriptor struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Type        BodyType        `yaml:"type"`
	Position    Vec3            `yaml:"position"`
	Scale       float64         `yaml:"scale"`
	Material    MaterialSpec    `yaml:"material"`
	OrbitRadius float64         `yaml:"orbit_radius,omitempty"`
	OrbitSpeed  float64         `yaml:"orbit_speed,omitempty"`
	ParentID    string          `yaml:"parent_id,omitempty"`
	Rings       *RingSpec       `yaml:"rings,omitempty"`
	Terrain     *terrain.Config `yaml:"terrain,omitempty"`
	Description string          `yaml:"description,omitempty"`
}

// DisplayName returns Name, or ID when no name is set.
func (d Descriptor) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// Orbits reports whether the body follows a circular orbit.
func (d Descriptor) Orbits() bool {
	return d.OrbitRadius > 0
}

// HasRings reports whether an enabled ring is configured.
func (d Descriptor) HasRings() bool {
	return d.Rings != nil && d.Rings.Enabled
}

// HasTerrain reports whether procedural terrain is enabled.
func (d Descriptor) HasTerrain() bool {
	return d.Terrain != nil && d.Terrain.Enabled
}

// Validate checks the invariants a body must satisfy to be created.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return ErrEmptyID
	}
	if d.Scale <= 0 {
		return fmt.Errorf("%w: body %q has scale %v", ErrInvalidScale, d.ID, d.Scale)
	}
	if d.HasRings() && (d.Rings.InnerRadius < 0 || d.Rings.InnerRadius >= d.Rings.OuterRadius) {
		return fmt.Errorf("%w: body %q", ErrInvalidRings, d.ID)
	}
	return nil
}

// StarfieldSpec configures the background stars of a system.
type StarfieldSpec struct {
	Count          int     `yaml:"count"`
	Seed           int64   `yaml:"seed"`
	MinRadius      float64 `yaml:"min_radius"`
	MaxRadius      float64 `yaml:"max_radius"`
	ColorVariation bool    `yaml:"color_variation"`
}

// System is a complete catalogue entry.
type System struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Scale       float64        `yaml:"scale,omitempty"`
	Center      Vec3           `yaml:"center,omitempty"`
	Starfield   *StarfieldSpec `yaml:"starfield,omitempty"`
	Bodies      []Descriptor   `yaml:"bodies"`
}

// Title returns Name, or ID when no name is set.
func (s System) Title() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// Body returns the descriptor with the given id.
func (s System) Body(id string) (Descriptor, bool) {
	for _, b := range s.Bodies {
		if b.ID == id {
			return b, true
		}
	}
	return Descriptor{}, false
}

// Validate checks system-level fields only. Malformed bodies are reported
// at creation time so the rest of the system can still load.
func (s System) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrEmptyID
	}
	if s.Scale < 0 {
		return fmt.Errorf("%w: system %q has scale %v", ErrInvalidScale, s.ID, s.Scale)
	}
	return nil
}

func parseHex(s string, fallback colorful.Color) colorful.Color {
	if s == "" {
		return fallback
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback
	}
	return c
}
