package config

import (
	_ "embed"
)

//go:embed defaults/orrery.yaml
var defaultViewerYAML []byte

// DefaultViewerConfig returns the hard-coded viewer configuration. It
// matches the embedded default YAML.
func DefaultViewerConfig() ViewerConfig {
	return ViewerConfig{
		Quality: QualityHigh,
		Render: RenderConfig{
			FPS:             30,
			Antialiasing:    true,
			BackgroundStars: true,
			ShowOrbits:      true,
			ShowLabels:      true,
			PerformanceMode: "high",
			Speed:           1.0,
		},
		Camera: CameraConfig{
			EnableControls:  true,
			ZoomStep:        5,
			RotateStep:      0.08,
			FocusDurationMs: 1200,
		},
		Performance: PerformanceConfig{
			HistorySize:    300,
			SampleMemory:   true,
			MinFPS:         24,
			MaxFrameTimeMs: 40,
			MaxMemoryMB:    512,
			MaxDrawCalls:   200,
			MaxTextures:    32,
		},
		Assets: AssetsConfig{
			MaxTextureSize: 256,
		},
		Server: ServerConfig{
			Host:        "localhost",
			Port:        2222,
			HostKeyPath: ".ssh/orrery_ed25519",
		},
	}
}

// DefaultYAML returns the embedded default configuration.
func DefaultYAML() []byte {
	return defaultViewerYAML
}
