package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// ShaderKind selects how a mesh surface is colored.
type ShaderKind int

const (
	// ShaderStandard is lit by scene lights using roughness/metalness.
	ShaderStandard ShaderKind = iota
	// ShaderBasic ignores lights (stars, glowing bodies).
	ShaderBasic
	// ShaderElevationRamp colors by radial elevation against a color ramp.
	ShaderElevationRamp
)

// Side controls which faces are drawn.
type Side int

const (
	FrontSide Side = iota
	DoubleSide
)

// ElevationFunc maps a unit direction in the mesh's local frame to a
// normalized elevation in [0, 1].
type ElevationFunc func(dir mgl64.Vec3) float64

// Material describes a mesh surface.
type Material struct {
	resource

	Name              string
	Shader            ShaderKind
	Color             colorful.Color
	Roughness         float64
	Metalness         float64
	Emissive          colorful.Color
	EmissiveIntensity float64
	Opacity           float64
	Transparent       bool
	Side              Side
	Map               *Texture

	// Ramp and Elevation drive ShaderElevationRamp.
	Ramp      []colorful.Color
	Elevation ElevationFunc
}

func (m *Material) resourceKind() ResourceKind { return ResourceMaterial }

// NewStandardMaterial creates an opaque lit material.
func NewStandardMaterial(color colorful.Color) *Material {
	return &Material{
		Shader:    ShaderStandard,
		Color:     color,
		Roughness: 0.5,
		Opacity:   1,
	}
}

// Clone copies the material parameters; the clone is untracked.
func (m *Material) Clone() *Material {
	c := *m
	c.resource = resource{}
	c.Ramp = append([]colorful.Color(nil), m.Ramp...)
	return &c
}

// EmissiveColor returns the emissive contribution after intensity.
func (m *Material) EmissiveColor() colorful.Color {
	return colorful.Color{
		R: m.Emissive.R * m.EmissiveIntensity,
		G: m.Emissive.G * m.EmissiveIntensity,
		B: m.Emissive.B * m.EmissiveIntensity,
	}
}

// RampColor samples the ramp at t in [0, 1], blending evenly spaced stops in
// Lab space. Without a ramp it returns the base color.
func (m *Material) RampColor(t float64) colorful.Color {
	n := len(m.Ramp)
	switch {
	case n == 0:
		return m.Color
	case n == 1:
		return m.Ramp[0]
	}
	if t <= 0 {
		return m.Ramp[0]
	}
	if t >= 1 {
		return m.Ramp[n-1]
	}
	pos := t * float64(n-1)
	i := int(pos)
	return m.Ramp[i].BlendLab(m.Ramp[i+1], pos-float64(i)).Clamped()
}

// LineMaterial colors a Line.
type LineMaterial struct {
	resource

	Color       colorful.Color
	Opacity     float64
	Transparent bool
}

func (m *LineMaterial) resourceKind() ResourceKind { return ResourceMaterial }

// NewLineMaterial creates a line material.
func NewLineMaterial(color colorful.Color, opacity float64) *LineMaterial {
	return &LineMaterial{Color: color, Opacity: opacity, Transparent: opacity < 1}
}

// PointsMaterial colors a Points cloud.
type PointsMaterial struct {
	resource

	Color        colorful.Color
	Size         float64
	Opacity      float64
	VertexColors bool
	Transparent  bool
}

func (m *PointsMaterial) resourceKind() ResourceKind { return ResourceMaterial }

// NewPointsMaterial creates a points material.
func NewPointsMaterial(color colorful.Color, size float64) *PointsMaterial {
	return &PointsMaterial{Color: color, Size: size, Opacity: 1}
}
