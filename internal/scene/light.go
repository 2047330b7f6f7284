package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// LightKind identifies the kind of light source.
type LightKind int

const (
	// LightAmbient lights every surface uniformly.
	LightAmbient LightKind = iota
	// LightDirectional has no falloff; it shines from Position toward Target.
	LightDirectional
	// LightPoint emits in all directions from Position, fading out by Range.
	LightPoint
)

// String returns a human-readable name for the kind.
func (k LightKind) String() string {
	switch k {
	case LightAmbient:
		return "ambient"
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Light is a scene light. Shadows are never rendered; CastShadow only
// records the configured flag.
type Light struct {
	Name       string
	Kind       LightKind
	Color      colorful.Color
	Intensity  float64
	Position   mgl64.Vec3
	Target     mgl64.Vec3
	Range      float64 // 0 means no distance cutoff
	CastShadow bool
	Visible    bool
}

// NewLight creates a visible light.
func NewLight(kind LightKind, color colorful.Color, intensity float64) *Light {
	return &Light{Kind: kind, Color: color, Intensity: intensity, Visible: true}
}

// Irradiance returns the light's scalar contribution at point p with surface
// normal n (both world space). Ambient lights ignore the normal.
func (l *Light) Irradiance(p, n mgl64.Vec3) float64 {
	if !l.Visible {
		return 0
	}
	switch l.Kind {
	case LightAmbient:
		return l.Intensity
	case LightDirectional:
		dir := l.Position.Sub(l.Target)
		if dir.Len() == 0 {
			return 0
		}
		return l.Intensity * math.Max(0, n.Dot(dir.Normalize()))
	case LightPoint:
		toLight := l.Position.Sub(p)
		d := toLight.Len()
		if d == 0 {
			return l.Intensity
		}
		atten := 1.0
		if l.Range > 0 {
			if d >= l.Range {
				return 0
			}
			f := 1 - d/l.Range
			atten = f * f
		}
		return l.Intensity * atten * math.Max(0, n.Dot(toLight.Mul(1/d)))
	default:
		return 0
	}
}
