package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/orrery/internal/perf"
	"github.com/vovakirdan/orrery/internal/renderer"
)

func TestEmbeddedMatchesDefaults(t *testing.T) {
	var cfg ViewerConfig
	if err := yaml.Unmarshal(DefaultYAML(), &cfg); err != nil {
		t.Fatalf("embedded yaml: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultViewerConfig()) {
		t.Errorf("embedded config\n%+v\ndiffers from defaults\n%+v", cfg, DefaultViewerConfig())
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orrery.yaml")
	data := []byte("render:\n  fps: 12\n  performance_mode: low\ncamera:\n  zoom_step: 2\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Render.FPS != 12 || cfg.Render.PerformanceMode != "low" || cfg.Camera.ZoomStep != 2 {
		t.Errorf("custom values not applied: %+v", cfg)
	}
	// Unset keys keep their defaults.
	if cfg.Performance.HistorySize != 300 || cfg.Server.Port != 2222 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("render: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	mode := filepath.Join(dir, "mode.yaml")
	if err := os.WriteFile(mode, []byte("render:\n  performance_mode: ludicrous\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	quality := filepath.Join(dir, "quality.yaml")
	if err := os.WriteFile(quality, []byte("quality: ultra\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "nope.yaml")},
		{"malformed", bad},
		{"unknown mode", mode},
		{"unknown quality", quality},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadFallsBackToEmbedded(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	wd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(wd) })
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultViewerConfig()) {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoadUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.MkdirAll(filepath.Join(home, ".orrery"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(home, ".orrery", "config.yaml"), []byte("render:\n  speed: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Render.Speed != 4 {
		t.Errorf("speed = %v", cfg.Render.Speed)
	}
}

func TestApplyQualityPreset(t *testing.T) {
	tests := []struct {
		preset    QualityPreset
		mode      string
		aa        bool
		particles int
	}{
		{QualityLow, "low", false, 150},
		{QualityMedium, "medium", true, 600},
		{QualityHigh, "high", true, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			cfg := DefaultViewerConfig()
			ApplyQualityPreset(&cfg, tt.preset)
			if cfg.Quality != tt.preset || cfg.Render.PerformanceMode != tt.mode ||
				cfg.Render.Antialiasing != tt.aa || cfg.Render.ParticleCount != tt.particles {
				t.Errorf("got %+v", cfg.Render)
			}
		})
	}

	cfg := DefaultViewerConfig()
	ApplyQualityPreset(&cfg, "bogus")
	if !reflect.DeepEqual(cfg, DefaultViewerConfig()) {
		t.Error("unknown preset changed the config")
	}
}

func TestRendererConfig(t *testing.T) {
	cfg := DefaultViewerConfig()
	cfg.Render.PerformanceMode = "medium"
	cfg.Render.Shadows = true
	cfg.Performance.MaxFrameTimeMs = 25
	rc := cfg.RendererConfig(120, 40, 7)
	if rc.Width != 120 || rc.Height != 40 || rc.Seed != 7 {
		t.Errorf("surface %dx%d seed %d", rc.Width, rc.Height, rc.Seed)
	}
	if rc.PerformanceMode != renderer.PerformanceMedium {
		t.Errorf("mode = %v", rc.PerformanceMode)
	}
	if rc.Thresholds.MaxFrameTime != 25*time.Millisecond {
		t.Errorf("max frame time = %v", rc.Thresholds.MaxFrameTime)
	}
	if rc.FocusDuration != 1200*time.Millisecond {
		t.Errorf("focus duration = %v", rc.FocusDuration)
	}
	if got := cfg.FrameInterval(); got != time.Second/30 {
		t.Errorf("frame interval = %v", got)
	}
}

func TestQualityManagerSteps(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := NewQualityManager(QualityHigh, true)
	severe := perf.Suggestion{Severity: perf.SeverityHigh}

	if _, changed := q.Observe(perf.Suggestion{Severity: perf.SeverityMedium}, start); changed {
		t.Error("medium suggestion lowered quality")
	}
	if p, changed := q.Observe(severe, start); !changed || p != QualityMedium {
		t.Fatalf("first drop = %v, %v", p, changed)
	}
	if _, changed := q.Observe(severe, start.Add(time.Second)); changed {
		t.Error("dropped again inside cooldown")
	}
	if p, changed := q.Observe(severe, start.Add(11*time.Second)); !changed || p != QualityLow {
		t.Errorf("second drop = %v, %v", p, changed)
	}
	if _, changed := q.Observe(severe, start.Add(30*time.Second)); changed {
		t.Error("dropped below low")
	}

	off := NewQualityManager(QualityHigh, false)
	if _, changed := off.Observe(severe, start); changed {
		t.Error("disabled manager changed quality")
	}
}
