package terrain

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/orrery/internal/scene"
)

func cratered() Config {
	return Config{
		Enabled:    true,
		Family:     FamilyRocky,
		Resolution: ResolutionLow,
		Craters: &CraterConfig{
			Count:  6,
			Radius: Range{Min: 0.2, Max: 0.5},
			Depth:  Range{Min: 0.05, Max: 0.1},
		},
		Noise: NoiseConfig{Seed: 42},
	}
}

func TestGenerateDisabledIsUndeformed(t *testing.T) {
	cfg := cratered()
	cfg.Enabled = false

	geo := Generate(cfg, 3)
	w, h := ResolutionLow.Segments()
	want := scene.NewSphereGeometry(3, w, h)

	if geo.VertexCount() != want.VertexCount() {
		t.Fatalf("VertexCount() = %d, expected %d", geo.VertexCount(), want.VertexCount())
	}
	for i, p := range geo.Positions {
		if math.Abs(p.Len()-3) > 1e-9 {
			t.Fatalf("vertex %d at radius %f, expected 3", i, p.Len())
		}
	}
}

func TestGenerateEnabledDeforms(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"craters", cratered()},
		{"mountains", Config{
			Enabled:   true,
			Mountains: &MountainConfig{Count: 3, Radius: Range{0.3, 0.6}, Height: Range{0.05, 0.08}, Smoothness: 2},
			Noise:     NoiseConfig{Seed: 1},
		}},
		{"valleys", Config{
			Enabled: true,
			Valleys: &ValleyConfig{Count: 3, Radius: Range{0.3, 0.6}, Depth: Range{0.02, 0.04}},
			Noise:   NoiseConfig{Seed: 2},
		}},
		{"continents", Config{
			Enabled:    true,
			Continents: &ContinentConfig{Count: 2, Radius: Range{0.8, 1.2}, Elevation: Range{0.02, 0.03}},
			Noise:      NoiseConfig{Seed: 3},
		}},
		{"noise only", Config{
			Enabled: true,
			Noise:   NoiseConfig{Seed: 4, Amplitude: 0.05},
		}},
		{"crater count only", Config{
			Enabled: true,
			Craters: &CraterConfig{Count: 8},
		}},
		{"mountain count only", Config{
			Enabled:   true,
			Mountains: &MountainConfig{Count: 8},
		}},
		{"valley count only", Config{
			Enabled: true,
			Valleys: &ValleyConfig{Count: 8},
		}},
		{"continent count only", Config{
			Enabled:    true,
			Continents: &ContinentConfig{Count: 3},
		}},
		{"noise without amplitude", Config{
			Enabled: true,
			Noise:   NoiseConfig{Seed: 5, Octaves: 3},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geo := Generate(tt.cfg, 1)
			w, h := tt.cfg.Resolution.Segments()
			base := scene.NewSphereGeometry(1, w, h)
			if geo.VertexCount() != base.VertexCount() {
				t.Fatalf("VertexCount() = %d, expected %d", geo.VertexCount(), base.VertexCount())
			}
			moved := 0
			for i := range geo.Positions {
				if geo.Positions[i].Sub(base.Positions[i]).Len() > 1e-6 {
					moved++
				}
			}
			if moved == 0 {
				t.Error("no vertex was displaced")
			}
		})
	}
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Craters:   &CraterConfig{Count: 2, Radius: Range{0.4, 0.5}},
		Mountains: &MountainConfig{Count: 1},
		Noise:     NoiseConfig{Seed: 7},
	}.withDefaults()

	if cfg.Craters.Radius != (Range{0.4, 0.5}) {
		t.Errorf("crater radius = %+v, expected the configured range", cfg.Craters.Radius)
	}
	if cfg.Craters.Depth.Max <= 0 {
		t.Errorf("crater depth = %+v, expected a default", cfg.Craters.Depth)
	}
	if cfg.Mountains.Height.Max <= 0 || cfg.Mountains.Radius.Max <= 0 || cfg.Mountains.Smoothness != 1 {
		t.Errorf("mountains = %+v, expected defaults", cfg.Mountains)
	}
	if cfg.Noise.Amplitude != 0 {
		t.Errorf("Amplitude = %f, a bare seed should leave noise off", cfg.Noise.Amplitude)
	}

	in := &ValleyConfig{Count: 1}
	_ = Config{Valleys: in}.withDefaults()
	if in.Radius != (Range{}) {
		t.Error("withDefaults mutated the caller's feature config")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(cratered(), 2)
	b := Generate(cratered(), 2)
	for i := range a.Positions {
		if a.Positions[i] != b.Positions[i] {
			t.Fatalf("vertex %d differs between runs: %v vs %v", i, a.Positions[i], b.Positions[i])
		}
	}

	other := cratered()
	other.Noise.Seed = 43
	c := Generate(other, 2)
	same := true
	for i := range a.Positions {
		if a.Positions[i] != c.Positions[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical terrain")
	}
}

func TestFalloff(t *testing.T) {
	tests := []struct {
		t    float64
		want float64
	}{
		{0, 1},
		{0.5, 0.5},
		{1, 0},
		{1.5, 0},
		{-0.1, 1},
	}
	for _, tt := range tests {
		if got := falloff(tt.t); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("falloff(%v) = %v, expected %v", tt.t, got, tt.want)
		}
	}
}

func TestFeatureProfiles(t *testing.T) {
	center := mgl64.Vec3{0, 1, 0}
	at := func(angle float64) mgl64.Vec3 {
		return mgl64.Vec3{math.Sin(angle), math.Cos(angle), 0}
	}

	crater := feature{kind: featureCrater, center: center, radius: 1, magnitude: 0.1}
	if d := crater.displacement(center); d >= 0 {
		t.Errorf("crater center displacement = %f, expected negative", d)
	}
	if d := crater.displacement(at(0.9)); d <= 0 {
		t.Errorf("crater rim displacement = %f, expected positive", d)
	}
	if d := crater.displacement(at(1.2)); d != 0 {
		t.Errorf("displacement outside radius = %f, expected 0", d)
	}

	mountain := feature{kind: featureMountain, center: center, radius: 1, magnitude: 0.1, smoothness: 2}
	if d := mountain.displacement(center); math.Abs(d-0.1) > 1e-9 {
		t.Errorf("mountain peak = %f, expected 0.1", d)
	}
	if d := mountain.displacement(at(0.5)); math.Abs(d-0.1*0.25) > 1e-9 {
		t.Errorf("mountain at half radius = %f, expected 0.025", d)
	}

	valley := feature{kind: featureValley, center: center, radius: 1, magnitude: 0.1}
	if d := valley.displacement(at(0.5)); math.Abs(d+0.1*math.Sqrt(0.5)) > 1e-9 {
		t.Errorf("valley at half radius = %f", d)
	}

	continent := feature{kind: featureContinent, center: center, radius: 1, magnitude: 0.1}
	if d := continent.displacement(at(0.5)); math.Abs(d-0.1*math.Pow(0.5, 1.5)) > 1e-9 {
		t.Errorf("continent at half radius = %f", d)
	}
}

func TestElevationRange(t *testing.T) {
	gen := New(cratered())
	if gen.FeatureCount() != 6 {
		t.Fatalf("FeatureCount() = %d, expected 6", gen.FeatureCount())
	}
	for _, dir := range []mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, -1}, {0.3, 0.4, 0.5}} {
		e := gen.Elevation(dir)
		if e < 0 || e > 1 {
			t.Errorf("Elevation(%v) = %f, outside [0, 1]", dir, e)
		}
	}

	flat := New(Config{})
	if e := flat.Elevation(mgl64.Vec3{1, 0, 0}); e != 0.5 {
		t.Errorf("disabled Elevation = %f, expected 0.5", e)
	}
}

func TestPerlinSeeded(t *testing.T) {
	a := NewPerlin(7)
	b := NewPerlin(7)
	for _, p := range [][3]float64{{0.1, 0.2, 0.3}, {1.5, -2.25, 3.75}, {10.1, 0, -4}} {
		va := a.Noise3(p[0], p[1], p[2])
		if va != b.Noise3(p[0], p[1], p[2]) {
			t.Fatalf("same seed differs at %v", p)
		}
		if va < -1.5 || va > 1.5 {
			t.Errorf("Noise3(%v) = %f out of range", p, va)
		}
	}
	if v := a.Noise3(1, 2, 3); v != 0 {
		t.Errorf("noise at integer lattice = %f, expected 0", v)
	}
}

func TestMaterialPresets(t *testing.T) {
	tests := []struct {
		family    Family
		roughness float64
		metalness float64
		emissive  bool
	}{
		{FamilyRocky, 0.9, 0.1, false},
		{FamilyGas, 0.4, 0, false},
		{FamilyIce, 0.1, 0, false},
		{FamilyVolcanic, 0.8, 0.2, true},
		{FamilyEarthLike, 0.7, 0.05, false},
		{FamilyDesert, 0.95, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.family.String(), func(t *testing.T) {
			m := MaterialFor(Config{Family: tt.family}, colorful.Color{R: 0.5, G: 0.5, B: 0.5})
			if m.Roughness != tt.roughness || m.Metalness != tt.metalness {
				t.Errorf("roughness/metalness = %v/%v, expected %v/%v", m.Roughness, m.Metalness, tt.roughness, tt.metalness)
			}
			if got := m.EmissiveIntensity > 0; got != tt.emissive {
				t.Errorf("emissive = %v, expected %v", got, tt.emissive)
			}
		})
	}
}

func TestElevationMaterialRamp(t *testing.T) {
	cfg := cratered()
	cfg.Colors = ColorRamp{Low: "#000000", Peak: "not-a-color"}
	m := ElevationMaterial(cfg, New(cfg))

	if m.Shader != scene.ShaderElevationRamp {
		t.Errorf("Shader = %v, expected elevation ramp", m.Shader)
	}
	if len(m.Ramp) != 4 {
		t.Fatalf("ramp has %d stops, expected 4", len(m.Ramp))
	}
	if m.Ramp[0].Hex() != "#000000" {
		t.Errorf("low stop = %s, expected #000000", m.Ramp[0].Hex())
	}
	if m.Ramp[3].Hex() != presets[FamilyRocky].ramp.Peak {
		t.Errorf("peak stop = %s, expected preset fallback", m.Ramp[3].Hex())
	}
	if m.Elevation == nil {
		t.Error("Elevation func not set")
	}
}

func TestConfigYAML(t *testing.T) {
	src := `
enabled: true
type: earth-like
height_scale: 2
resolution: high
mountains:
  count: 4
  radius: {min: 0.1, max: 0.2}
  height: {min: 0.01, max: 0.02}
colors:
  low: "#112233"
noise:
  seed: 9
  octaves: 5
`
	var cfg Config
	if err := yaml.Unmarshal([]byte(src), &cfg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if cfg.Family != FamilyEarthLike {
		t.Errorf("Family = %v, expected earth_like", cfg.Family)
	}
	if cfg.Resolution != ResolutionHigh {
		t.Errorf("Resolution = %v, expected high", cfg.Resolution)
	}
	if cfg.Mountains == nil || cfg.Mountains.Count != 4 || cfg.Mountains.Radius.Max != 0.2 {
		t.Errorf("Mountains = %+v", cfg.Mountains)
	}
	if cfg.Noise.Seed != 9 || cfg.Noise.Octaves != 5 {
		t.Errorf("Noise = %+v", cfg.Noise)
	}

	var bad Config
	if err := yaml.Unmarshal([]byte("type: lava"), &bad); err == nil {
		t.Error("expected error for unknown family")
	}
}
