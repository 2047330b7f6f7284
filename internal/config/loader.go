package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/orrery/internal/perf"
	"github.com/vovakirdan/orrery/internal/renderer"
)

// Load loads the viewer configuration.
// Search order: customPath -> ~/.orrery/config.yaml -> ./configs/orrery.yaml -> embedded default
func Load(customPath string) (ViewerConfig, error) {
	// Start from defaults so partial files keep the remaining settings.
	cfg := DefaultViewerConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return finish(cfg)
	}

	// Try user config directory
	if userCfgPath := UserPath("config.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return finish(cfg)
			}
			cfg = DefaultViewerConfig()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "orrery.yaml")); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return finish(cfg)
		}
		cfg = DefaultViewerConfig()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultViewerYAML, &cfg); err != nil {
		return DefaultViewerConfig(), nil // Fallback to hardcoded if embed fails
	}
	return finish(cfg)
}

func finish(cfg ViewerConfig) (ViewerConfig, error) {
	if cfg.Quality != "" && !cfg.Quality.Valid() {
		return cfg, fmt.Errorf("unknown quality preset %q", cfg.Quality)
	}
	if _, err := renderer.ParsePerformanceMode(cfg.Render.PerformanceMode); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// UserDir returns ~/.orrery, or empty if home is unavailable.
func UserDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".orrery")
}

// UserPath returns a path inside ~/.orrery, or empty if home is unavailable.
func UserPath(elem ...string) string {
	dir := UserDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(append([]string{dir}, elem...)...)
}

// Thresholds converts the performance section into monitor thresholds.
func (c ViewerConfig) Thresholds() perf.Thresholds {
	p := c.Performance
	return perf.Thresholds{
		MinFPS:       p.MinFPS,
		MaxFrameTime: time.Duration(p.MaxFrameTimeMs * float64(time.Millisecond)),
		MaxMemoryMB:  p.MaxMemoryMB,
		MaxDrawCalls: p.MaxDrawCalls,
		MaxTextures:  p.MaxTextures,
	}
}

// RendererConfig converts the configuration for a w×h cell surface.
func (c ViewerConfig) RendererConfig(w, h int, seed int64) renderer.Config {
	mode, err := renderer.ParsePerformanceMode(c.Render.PerformanceMode)
	if err != nil {
		mode = renderer.PerformanceHigh
	}
	rc := renderer.DefaultConfig()
	rc.Width, rc.Height = w, h
	rc.EnableControls = c.Camera.EnableControls
	rc.EnableAnimations = true
	rc.Antialiasing = c.Render.Antialiasing
	rc.Shadows = c.Render.Shadows
	rc.ParticleCount = c.Render.ParticleCount
	rc.PerformanceMode = mode
	rc.BackgroundStars = c.Render.BackgroundStars
	rc.Labels = c.Render.ShowLabels
	rc.Speed = c.Render.Speed
	rc.Seed = seed
	rc.Thresholds = c.Thresholds()
	rc.ZoomStep = c.Camera.ZoomStep
	rc.HistorySize = c.Performance.HistorySize
	rc.SampleMemory = c.Performance.SampleMemory
	if c.Camera.FocusDurationMs > 0 {
		rc.FocusDuration = time.Duration(c.Camera.FocusDurationMs) * time.Millisecond
	}
	return rc
}

// FrameInterval returns the time between frames for the configured FPS.
func (c ViewerConfig) FrameInterval() time.Duration {
	fps := c.Render.FPS
	if fps <= 0 {
		fps = 30
	}
	return time.Second / time.Duration(fps)
}
