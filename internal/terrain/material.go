package terrain

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/vovakirdan/orrery/internal/scene"
)

type preset struct {
	roughness, metalness float64
	ramp                 ColorRamp
}

var presets = map[Family]preset{
	FamilyRocky:     {0.9, 0.1, ColorRamp{"#3b3530", "#6b625a", "#958b80", "#cfc8bf"}},
	FamilyGas:       {0.4, 0.0, ColorRamp{"#8a5a3c", "#c49a6c", "#e3c79f", "#f5ead6"}},
	FamilyIce:       {0.1, 0.0, ColorRamp{"#5d7fa3", "#9fc2dd", "#d6ebf5", "#ffffff"}},
	FamilyVolcanic:  {0.8, 0.2, ColorRamp{"#1a1210", "#3d2a22", "#7a2e12", "#ff5a1f"}},
	FamilyEarthLike: {0.7, 0.05, ColorRamp{"#1d4e89", "#3f7f3a", "#8b6b42", "#f2f2f2"}},
	FamilyDesert:    {0.95, 0.0, ColorRamp{"#8c5a2b", "#c28a4a", "#deb577", "#f3dfb5"}},
}

// volcanicGlow is the dim emissive tint of volcanic surfaces.
var volcanicGlow = colorful.Color{R: 0.35, G: 0.06, B: 0.02}

// MaterialFor returns a lit material with the family's roughness and
// metalness presets applied to the given base color.
func MaterialFor(cfg Config, base colorful.Color) *scene.Material {
	p, ok := presets[cfg.Family]
	if !ok {
		p = presets[FamilyRocky]
	}
	m := scene.NewStandardMaterial(base)
	m.Name = cfg.Family.String()
	m.Roughness = p.roughness
	m.Metalness = p.metalness
	if cfg.Family == FamilyVolcanic {
		m.Emissive = volcanicGlow
		m.EmissiveIntensity = 0.3
	}
	return m
}

// ElevationMaterial returns a material that colors the surface by the
// generator's normalized elevation against the four-stop ramp. Stops left
// empty or unparsable fall back to the family preset.
func ElevationMaterial(cfg Config, gen *Generator) *scene.Material {
	m := MaterialFor(cfg, colorful.Color{R: 0.5, G: 0.5, B: 0.5})
	m.Shader = scene.ShaderElevationRamp
	m.Ramp = RampColors(cfg)
	if gen != nil {
		m.Elevation = gen.Elevation
	}
	return m
}

// RampColors resolves the four ramp stops, low to peak.
func RampColors(cfg Config) []colorful.Color {
	def := presets[FamilyRocky].ramp
	if p, ok := presets[cfg.Family]; ok {
		def = p.ramp
	}
	pick := func(s, fallback string) colorful.Color {
		if c, err := colorful.Hex(s); err == nil {
			return c
		}
		c, _ := colorful.Hex(fallback)
		return c
	}
	return []colorful.Color{
		pick(cfg.Colors.Low, def.Low),
		pick(cfg.Colors.Mid, def.Mid),
		pick(cfg.Colors.High, def.High),
		pick(cfg.Colors.Peak, def.Peak),
	}
}
