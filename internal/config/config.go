// Package config provides YAML-based viewer configuration loading and
// quality presets.
package config

// ViewerConfig contains all configuration for the viewer.
type ViewerConfig struct {
	Quality     QualityPreset     `yaml:"quality"`
	Render      RenderConfig      `yaml:"render"`
	Camera      CameraConfig      `yaml:"camera"`
	Performance PerformanceConfig `yaml:"performance"`
	Assets      AssetsConfig      `yaml:"assets"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Server      ServerConfig      `yaml:"server"`
}

// RenderConfig defines what is drawn and how often.
type RenderConfig struct {
	FPS             int     `yaml:"fps"`
	Antialiasing    bool    `yaml:"antialiasing"`
	Shadows         bool    `yaml:"shadows"` // accepted, always off
	BackgroundStars bool    `yaml:"background_stars"`
	ShowOrbits      bool    `yaml:"show_orbits"`
	ShowLabels      bool    `yaml:"show_labels"`
	ParticleCount   int     `yaml:"particle_count"` // per-ring cap, 0 = catalogue count
	PerformanceMode string  `yaml:"performance_mode"`
	Speed           float64 `yaml:"speed"`
	AutoQuality     bool    `yaml:"auto_quality"` // step quality down on severe suggestions
}

// CameraConfig defines camera interaction.
type CameraConfig struct {
	EnableControls  bool    `yaml:"enable_controls"`
	ZoomStep        float64 `yaml:"zoom_step"`
	RotateStep      float64 `yaml:"rotate_step"` // radians per key press
	FocusDurationMs int     `yaml:"focus_duration_ms"`
}

// PerformanceConfig defines monitor history and suggestion thresholds.
type PerformanceConfig struct {
	HistorySize    int     `yaml:"history_size"`
	SampleMemory   bool    `yaml:"sample_memory"`
	MinFPS         float64 `yaml:"min_fps"`
	MaxFrameTimeMs float64 `yaml:"max_frame_time_ms"`
	MaxMemoryMB    float64 `yaml:"max_memory_mb"`
	MaxDrawCalls   int     `yaml:"max_draw_calls"`
	MaxTextures    int     `yaml:"max_textures"`
}

// AssetsConfig locates body textures.
type AssetsConfig struct {
	TextureDir     string `yaml:"texture_dir"`
	MaxTextureSize int    `yaml:"max_texture_size"`
}

// CatalogConfig locates extra system catalogues.
type CatalogConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig defines the SSH server.
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	HostKeyPath string `yaml:"host_key_path"`
}

// QualityPreset represents a named quality level.
type QualityPreset string

const (
	QualityLow    QualityPreset = "low"
	QualityMedium QualityPreset = "medium"
	QualityHigh   QualityPreset = "high"
)

// Valid reports whether p names a known preset.
func (p QualityPreset) Valid() bool {
	switch p {
	case QualityLow, QualityMedium, QualityHigh:
		return true
	}
	return false
}
