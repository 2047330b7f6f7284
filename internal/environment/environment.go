// Package environment owns the scene lighting and the background starfield.
package environment

import (
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/vovakirdan/orrery/internal/logging"
	"github.com/vovakirdan/orrery/internal/scene"
)

// Manager builds and animates the environment of a scene.
type Manager struct {
	scene *scene.Scene
	res   *scene.Resources
	log   *log.Logger

	ambient     *scene.Light
	directional *scene.Light
	point       *scene.Light

	cfg        StarfieldConfig
	stars      *scene.Node
	points     *scene.Points
	baseColors []colorful.Color
	brightness []float64
	elapsed    float64
	disposed   bool
}

// New adds lights to sc and, when starfield is non-nil, a starfield.
func New(sc *scene.Scene, res *scene.Resources, starfield *StarfieldConfig, logger *log.Logger) *Manager {
	m := &Manager{
		scene: sc,
		res:   res,
		log:   logging.OrDiscard(logger),
	}
	m.setupLighting()
	if starfield != nil {
		m.SetStarfield(*starfield)
	}
	return m
}

func (m *Manager) setupLighting() {
	m.ambient = scene.NewLight(scene.LightAmbient, hexColor(0x404040), 0.4)
	m.ambient.Name = "ambient"

	m.directional = scene.NewLight(scene.LightDirectional, colorful.Color{R: 1, G: 1, B: 1}, 0.8)
	m.directional.Name = "directional"
	m.directional.Position = mgl64.Vec3{50, 50, 50}

	m.point = scene.NewLight(scene.LightPoint, colorful.Color{R: 1, G: 0.85, B: 0.6}, 1.2)
	m.point.Name = "star-glow"
	m.point.Range = 200

	for _, l := range []*scene.Light{m.ambient, m.directional, m.point} {
		l.CastShadow = false
		m.scene.AddLight(l)
	}
}

// SetStarfield replaces the starfield with a freshly generated one.
// A zero count removes it.
func (m *Manager) SetStarfield(cfg StarfieldConfig) {
	if m.disposed {
		return
	}
	m.removeStars()
	m.cfg = cfg
	if cfg.Count <= 0 {
		return
	}

	gen := GenerateStarfield(cfg)
	m.baseColors = gen.Colors
	m.brightness = make([]float64, len(gen.Positions))
	colors := make([]colorful.Color, len(gen.Colors))
	copy(colors, gen.Colors)

	mat := scene.NewPointsMaterial(StarWhite, 1)
	mat.VertexColors = true
	m.points = &scene.Points{
		Geometry: scene.NewPointsGeometry(gen.Positions, colors, gen.Sizes),
		Material: mat,
	}
	m.stars = scene.NewObjectNode("starfield", m.points)
	m.scene.Add(m.stars)
	m.res.TrackObject(m.points)
	m.applyTwinkle()

	m.log.Debug("starfield generated", "count", cfg.Count, "seed", cfg.Seed)
}

// Update advances the starfield animation by dt seconds. Rotation and
// twinkle are functions of accumulated time only.
func (m *Manager) Update(dt float64) {
	if m.disposed || m.stars == nil {
		return
	}
	m.elapsed += dt
	m.stars.Rotation[1] = m.elapsed * m.cfg.RotationSpeed
	m.applyTwinkle()
}

func (m *Manager) applyTwinkle() {
	colors := m.points.Geometry.Colors
	for i, base := range m.baseColors {
		b := Twinkle(m.elapsed, m.cfg.TwinkleSpeed, i)
		m.brightness[i] = b
		colors[i] = colorful.Color{R: base.R * b, G: base.G * b, B: base.B * b}
	}
}

// SetStarfieldVisible shows or hides the starfield.
func (m *Manager) SetStarfieldVisible(visible bool) {
	if m.stars != nil {
		m.stars.Visible = visible
	}
}

// StarfieldVisible reports whether a visible starfield exists.
func (m *Manager) StarfieldVisible() bool {
	return m.stars != nil && m.stars.Visible
}

// Positions returns the star positions in the starfield's local frame.
func (m *Manager) Positions() []mgl64.Vec3 {
	if m.points == nil {
		return nil
	}
	return append([]mgl64.Vec3(nil), m.points.Geometry.Positions...)
}

// Colors returns the untwinkled star colors.
func (m *Manager) Colors() []colorful.Color {
	return append([]colorful.Color(nil), m.baseColors...)
}

// Brightness returns the current per-star twinkle factors.
func (m *Manager) Brightness() []float64 {
	return append([]float64(nil), m.brightness...)
}

// Elapsed returns the accumulated animation time in seconds.
func (m *Manager) Elapsed() float64 {
	return m.elapsed
}

// Lights returns the ambient, directional and point lights.
func (m *Manager) Lights() []*scene.Light {
	if m.disposed {
		return nil
	}
	return []*scene.Light{m.ambient, m.directional, m.point}
}

func (m *Manager) removeStars() {
	if m.stars == nil {
		return
	}
	m.stars.RemoveFromParent()
	m.points.Dispose()
	m.stars, m.points = nil, nil
	m.baseColors, m.brightness = nil, nil
}

// Dispose removes lights and stars from the scene. It is safe to call more
// than once.
func (m *Manager) Dispose() {
	if m.disposed {
		return
	}
	m.removeStars()
	for _, l := range []*scene.Light{m.ambient, m.directional, m.point} {
		m.scene.RemoveLight(l)
	}
	m.disposed = true
}

func hexColor(v uint32) colorful.Color {
	return colorful.Color{
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
	}
}
