package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/vovakirdan/orrery/internal/perf"
)

// PerformanceMode trades detail for frame rate.
type PerformanceMode int

const (
	PerformanceHigh PerformanceMode = iota
	PerformanceMedium
	PerformanceLow
)

func (m PerformanceMode) String() string {
	switch m {
	case PerformanceLow:
		return "low"
	case PerformanceMedium:
		return "medium"
	case PerformanceHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParsePerformanceMode parses "low", "medium" or "high".
func ParsePerformanceMode(s string) (PerformanceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PerformanceLow, nil
	case "medium":
		return PerformanceMedium, nil
	case "high", "":
		return PerformanceHigh, nil
	}
	return PerformanceHigh, fmt.Errorf("renderer: unknown performance mode %q", s)
}

func (m PerformanceMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *PerformanceMode) UnmarshalText(text []byte) error {
	v, err := ParsePerformanceMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParticleScale returns the ring particle multiplier for the mode.
func (m PerformanceMode) ParticleScale() float64 {
	switch m {
	case PerformanceLow:
		return 0.3
	case PerformanceMedium:
		return 0.6
	default:
		return 1
	}
}

// StarScale returns the starfield density multiplier for the mode.
func (m PerformanceMode) StarScale() float64 {
	switch m {
	case PerformanceLow:
		return 0.4
	case PerformanceMedium:
		return 0.7
	default:
		return 1
	}
}

// Config configures a Renderer.
type Config struct {
	// Width and Height are the drawing surface in terminal cells.
	Width  int
	Height int

	EnableControls   bool
	EnableAnimations bool
	Antialiasing     bool
	// Shadows is accepted for compatibility and always forced off.
	Shadows bool
	// ParticleCount caps the particles of any one ring; zero keeps the
	// catalogue counts.
	ParticleCount   int
	PerformanceMode PerformanceMode
	BackgroundStars bool
	// Speed multiplies orbital and spin rates.
	Speed float64
	// Seed is mixed into procedural placement; zero keeps catalogue seeds.
	Seed int64

	Thresholds    perf.Thresholds
	HistorySize   int
	SampleMemory  bool
	StatsInterval time.Duration
	// FocusDuration is the length of FocusOnBody transitions.
	FocusDuration time.Duration
	// ZoomStep is the distance ZoomIn and ZoomOut move; zero keeps the
	// camera default.
	ZoomStep float64
	// Labels names the selected body on screen.
	Labels bool
}

// DefaultConfig returns the renderer defaults.
func DefaultConfig() Config {
	return Config{
		Width:            80,
		Height:           24,
		EnableControls:   true,
		EnableAnimations: true,
		Antialiasing:     true,
		BackgroundStars:  true,
		Labels:           true,
		PerformanceMode:  PerformanceHigh,
		Speed:            1,
		Thresholds:       perf.DefaultThresholds(),
		HistorySize:      300,
		SampleMemory:     true,
		StatsInterval:    time.Second,
		FocusDuration:    1200 * time.Millisecond,
	}
}

func (c Config) normalized() Config {
	c.Shadows = false
	if c.HistorySize <= 0 {
		c.HistorySize = DefaultConfig().HistorySize
	}
	if c.StatsInterval <= 0 {
		c.StatsInterval = DefaultConfig().StatsInterval
	}
	if c.FocusDuration < 0 {
		c.FocusDuration = 0
	}
	if c.ParticleCount < 0 {
		c.ParticleCount = 0
	}
	return c
}

// Patch is a partial Config for UpdateConfig; nil fields are left alone.
type Patch struct {
	EnableControls   *bool
	EnableAnimations *bool
	Antialiasing     *bool
	Shadows          *bool
	ParticleCount    *int
	PerformanceMode  *PerformanceMode
	BackgroundStars  *bool
	Speed            *float64
	Labels           *bool
	Thresholds       *perf.Thresholds
}

// Apply returns c with the patch applied.
func (c Config) Apply(p Patch) Config {
	if p.EnableControls != nil {
		c.EnableControls = *p.EnableControls
	}
	if p.EnableAnimations != nil {
		c.EnableAnimations = *p.EnableAnimations
	}
	if p.Antialiasing != nil {
		c.Antialiasing = *p.Antialiasing
	}
	if p.Shadows != nil {
		c.Shadows = *p.Shadows
	}
	if p.ParticleCount != nil {
		c.ParticleCount = *p.ParticleCount
	}
	if p.PerformanceMode != nil {
		c.PerformanceMode = *p.PerformanceMode
	}
	if p.BackgroundStars != nil {
		c.BackgroundStars = *p.BackgroundStars
	}
	if p.Speed != nil {
		c.Speed = *p.Speed
	}
	if p.Labels != nil {
		c.Labels = *p.Labels
	}
	if p.Thresholds != nil {
		c.Thresholds = *p.Thresholds
	}
	return c.normalized()
}

// rebuildsBodies reports whether moving from c to next changes geometry
// that is only built at load time.
func (c Config) rebuildsBodies(next Config) bool {
	return c.ParticleCount != next.ParticleCount || c.PerformanceMode != next.PerformanceMode
}

// Bool returns a pointer to v, for building patches.
func Bool(v bool) *bool { return &v }

// Float returns a pointer to v, for building patches.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for building patches.
func Int(v int) *int { return &v }

// Mode returns a pointer to v, for building patches.
func Mode(v PerformanceMode) *PerformanceMode { return &v }
