package config

import (
	"time"

	"github.com/vovakirdan/orrery/internal/perf"
)

// ApplyQualityPreset modifies the config based on a quality preset.
// Unknown presets leave cfg unchanged.
func ApplyQualityPreset(cfg *ViewerConfig, preset QualityPreset) {
	switch preset {
	case QualityLow:
		cfg.Render.PerformanceMode = "low"
		cfg.Render.Antialiasing = false
		cfg.Render.ParticleCount = 150
		cfg.Render.FPS = 20
	case QualityMedium:
		cfg.Render.PerformanceMode = "medium"
		cfg.Render.Antialiasing = true
		cfg.Render.ParticleCount = 600
		cfg.Render.FPS = 30
	case QualityHigh:
		cfg.Render.PerformanceMode = "high"
		cfg.Render.Antialiasing = true
		cfg.Render.ParticleCount = 0
		cfg.Render.FPS = 30
	default:
		return
	}
	cfg.Quality = preset
}

// Lower returns the next preset down, or p when already lowest.
func Lower(p QualityPreset) QualityPreset {
	switch p {
	case QualityHigh:
		return QualityMedium
	default:
		return QualityLow
	}
}

// QualityManager steps quality down when the performance monitor reports
// severe problems. It never raises quality on its own.
type QualityManager struct {
	enabled  bool
	level    QualityPreset
	cooldown time.Duration
	last     time.Time
}

// NewQualityManager creates a manager starting at level.
func NewQualityManager(level QualityPreset, enabled bool) *QualityManager {
	if !level.Valid() {
		level = QualityHigh
	}
	return &QualityManager{
		enabled:  enabled,
		level:    level,
		cooldown: 10 * time.Second,
	}
}

// SetEnabled enables or disables automatic stepping.
func (q *QualityManager) SetEnabled(enabled bool) {
	q.enabled = enabled
}

// IsEnabled returns whether automatic stepping is active.
func (q *QualityManager) IsEnabled() bool {
	return q.enabled
}

// Level returns the current preset.
func (q *QualityManager) Level() QualityPreset {
	return q.level
}

// Observe feeds one suggestion. It returns the new preset and true when
// quality should drop. Drops are at least the cooldown apart.
func (q *QualityManager) Observe(s perf.Suggestion, now time.Time) (QualityPreset, bool) {
	if !q.enabled || s.Severity < perf.SeverityHigh || q.level == QualityLow {
		return q.level, false
	}
	if !q.last.IsZero() && now.Sub(q.last) < q.cooldown {
		return q.level, false
	}
	q.last = now
	q.level = Lower(q.level)
	return q.level, true
}
