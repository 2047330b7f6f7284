package perf

import (
	"fmt"
	"time"
)

// Severity grades a suggestion.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Metric names used in suggestions.
const (
	MetricFPS       = "fps"
	MetricFrameTime = "frame_time"
	MetricMemory    = "memory"
	MetricDrawCalls = "draw_calls"
	MetricTextures  = "textures"
)

// Suggestion is an optimization hint. The monitor never acts on it.
type Suggestion struct {
	Metric    string
	Severity  Severity
	Value     float64
	Threshold float64
	Message   string
}

func (s Suggestion) String() string {
	return fmt.Sprintf("[%s] %s", s.Severity, s.Message)
}

// Thresholds configures when suggestions fire. Zero fields are disabled.
type Thresholds struct {
	MinFPS       float64       `yaml:"min_fps"`
	MaxFrameTime time.Duration `yaml:"max_frame_time"`
	MaxMemoryMB  float64       `yaml:"max_memory_mb"`
	MaxDrawCalls int           `yaml:"max_draw_calls"`
	MaxTextures  int           `yaml:"max_textures"`
}

// DefaultThresholds returns thresholds suited to a 30 fps terminal.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinFPS:       24,
		MaxFrameTime: 40 * time.Millisecond,
		MaxMemoryMB:  512,
		MaxDrawCalls: 200,
		MaxTextures:  32,
	}
}

// lowSeverity grades a value that should stay above min.
func lowSeverity(value, min float64) Severity {
	r := value / min
	switch {
	case r < 0.25:
		return SeverityCritical
	case r < 0.5:
		return SeverityHigh
	case r < 0.75:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// highSeverity grades a value that should stay below max.
func highSeverity(value, max float64) Severity {
	r := value / max
	switch {
	case r > 4:
		return SeverityCritical
	case r > 2:
		return SeverityHigh
	case r > 1.5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Evaluate returns a suggestion for every threshold s violates. FPS is only
// checked once a rate has been measured.
func (t Thresholds) Evaluate(s Snapshot) []Suggestion {
	var out []Suggestion

	if t.MinFPS > 0 && s.FPS > 0 && s.FPS < t.MinFPS {
		out = append(out, Suggestion{
			Metric: MetricFPS, Severity: lowSeverity(s.FPS, t.MinFPS),
			Value: s.FPS, Threshold: t.MinFPS,
			Message: fmt.Sprintf("fps %.1f below %.0f: reduce ring particles or switch to low performance mode", s.FPS, t.MinFPS),
		})
	}
	if t.MaxFrameTime > 0 && s.FrameTime > t.MaxFrameTime {
		v, lim := s.FrameTime.Seconds()*1000, t.MaxFrameTime.Seconds()*1000
		out = append(out, Suggestion{
			Metric: MetricFrameTime, Severity: highSeverity(v, lim),
			Value: v, Threshold: lim,
			Message: fmt.Sprintf("frame time %.1fms over %.0fms: lower terrain resolution", v, lim),
		})
	}
	if t.MaxMemoryMB > 0 && s.MemoryMB > t.MaxMemoryMB {
		out = append(out, Suggestion{
			Metric: MetricMemory, Severity: highSeverity(s.MemoryMB, t.MaxMemoryMB),
			Value: s.MemoryMB, Threshold: t.MaxMemoryMB,
			Message: fmt.Sprintf("heap %.0fMB over %.0fMB: reload the system to release resources", s.MemoryMB, t.MaxMemoryMB),
		})
	}
	if t.MaxDrawCalls > 0 && s.DrawCalls > t.MaxDrawCalls {
		out = append(out, Suggestion{
			Metric: MetricDrawCalls, Severity: highSeverity(float64(s.DrawCalls), float64(t.MaxDrawCalls)),
			Value: float64(s.DrawCalls), Threshold: float64(t.MaxDrawCalls),
			Message: fmt.Sprintf("%d draw calls over %d: hide orbit lines", s.DrawCalls, t.MaxDrawCalls),
		})
	}
	if t.MaxTextures > 0 && s.Textures > t.MaxTextures {
		out = append(out, Suggestion{
			Metric: MetricTextures, Severity: highSeverity(float64(s.Textures), float64(t.MaxTextures)),
			Value: float64(s.Textures), Threshold: float64(t.MaxTextures),
			Message: fmt.Sprintf("%d textures over %d: use procedural materials", s.Textures, t.MaxTextures),
		})
	}
	return out
}
