// Package perf measures frame timing, memory and renderer counters, and
// grades threshold violations into optimization suggestions.
package perf

import (
	"runtime"
	"time"
)

// Counters are renderer-side resource counts.
type Counters struct {
	DrawCalls  int
	Triangles  int
	Geometries int
	Textures   int
}

// CounterSource reports renderer counters for the frame just finished.
type CounterSource interface {
	Counters() Counters
}

// CounterFunc adapts a function to CounterSource.
type CounterFunc func() Counters

func (f CounterFunc) Counters() Counters { return f() }

// Config configures a Monitor.
type Config struct {
	HistorySize  int
	SampleMemory bool
	Thresholds   Thresholds
	// SuggestionInterval limits how often one metric may raise a suggestion.
	SuggestionInterval time.Duration
}

// DefaultConfig returns the monitor defaults.
func DefaultConfig() Config {
	return Config{
		HistorySize:        300,
		SampleMemory:       true,
		Thresholds:         DefaultThresholds(),
		SuggestionInterval: 5 * time.Second,
	}
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithCounters sets the renderer counter source.
func WithCounters(src CounterSource) Option {
	return func(m *Monitor) { m.counters = src }
}

// WithMemoryReader replaces runtime.ReadMemStats as the heap size source.
func WithMemoryReader(read func() uint64) Option {
	return func(m *Monitor) { m.readMem = read }
}

// OnSuggestion registers fn to receive suggestions.
func OnSuggestion(fn func(Suggestion)) Option {
	return func(m *Monitor) { m.onSuggestion = fn }
}

// Monitor tracks per-frame metrics. It is driven from the frame loop and is
// not safe for concurrent use.
type Monitor struct {
	cfg          Config
	now          func() time.Time
	counters     CounterSource
	readMem      func() uint64
	onSuggestion func(Suggestion)

	history *History

	frameStart  time.Time
	renderStart time.Time
	inFrame     bool

	windowStart  time.Time
	windowFrames int
	fps          float64
	memoryMB     float64
	memSampled   bool

	lastSuggested map[string]time.Time
	frames        int
}

// New creates a monitor.
func New(cfg Config, opts ...Option) *Monitor {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultConfig().HistorySize
	}
	m := &Monitor{
		cfg:           cfg,
		now:           time.Now,
		readMem:       heapAlloc,
		history:       NewHistory(cfg.HistorySize),
		lastSuggested: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func heapAlloc() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}

// FrameStart marks the beginning of a frame.
func (m *Monitor) FrameStart() {
	t := m.now()
	m.frameStart = t
	m.renderStart = t
	m.inFrame = true
	if m.windowStart.IsZero() {
		m.windowStart = t
	}
}

// RenderStart marks the point where drawing begins within the frame.
func (m *Monitor) RenderStart() {
	if !m.inFrame {
		return
	}
	m.renderStart = m.now()
}

// FrameEnd closes the frame, records a snapshot and evaluates thresholds.
// Without a matching FrameStart it returns the latest snapshot unchanged.
func (m *Monitor) FrameEnd() Snapshot {
	if !m.inFrame {
		s, _ := m.history.Latest()
		return s
	}
	m.inFrame = false
	t := m.now()
	m.frames++
	m.windowFrames++

	if elapsed := t.Sub(m.windowStart); elapsed >= time.Second {
		m.fps = float64(m.windowFrames) / elapsed.Seconds()
		m.windowFrames = 0
		m.windowStart = t
		m.sampleMemory()
	} else if !m.memSampled {
		m.sampleMemory()
	}

	s := Snapshot{
		Time:       t,
		FPS:        m.fps,
		FrameTime:  t.Sub(m.frameStart),
		RenderTime: t.Sub(m.renderStart),
		MemoryMB:   m.memoryMB,
	}
	if m.counters != nil {
		c := m.counters.Counters()
		s.DrawCalls = c.DrawCalls
		s.Triangles = c.Triangles
		s.Geometries = c.Geometries
		s.Textures = c.Textures
	}
	m.history.Push(s)
	m.suggest(s)
	return s
}

func (m *Monitor) sampleMemory() {
	if !m.cfg.SampleMemory || m.readMem == nil {
		return
	}
	m.memoryMB = float64(m.readMem()) / (1 << 20)
	m.memSampled = true
}

func (m *Monitor) suggest(s Snapshot) {
	if m.onSuggestion == nil {
		return
	}
	for _, sg := range m.cfg.Thresholds.Evaluate(s) {
		if last, ok := m.lastSuggested[sg.Metric]; ok && s.Time.Sub(last) < m.cfg.SuggestionInterval {
			continue
		}
		m.lastSuggested[sg.Metric] = s.Time
		m.onSuggestion(sg)
	}
}

// Metrics returns the latest snapshot.
func (m *Monitor) Metrics() Snapshot {
	s, _ := m.history.Latest()
	return s
}

// FPS returns the rate measured over the last completed one-second window.
func (m *Monitor) FPS() float64 { return m.fps }

// Frames returns the number of completed frames since the last Reset.
func (m *Monitor) Frames() int { return m.frames }

// History returns the retained snapshots, oldest first.
func (m *Monitor) History() []Snapshot { return m.history.All() }

// SetThresholds replaces the thresholds.
func (m *Monitor) SetThresholds(t Thresholds) { m.cfg.Thresholds = t }

// Thresholds returns the active thresholds.
func (m *Monitor) Thresholds() Thresholds { return m.cfg.Thresholds }

// SetSampleMemory toggles heap sampling.
func (m *Monitor) SetSampleMemory(on bool) { m.cfg.SampleMemory = on }

// Reset drops history and counters.
func (m *Monitor) Reset() {
	m.history.Clear()
	m.inFrame = false
	m.windowStart = time.Time{}
	m.windowFrames = 0
	m.fps = 0
	m.frames = 0
	m.memSampled = false
	clear(m.lastSuggested)
}

// Summary aggregates the retained history.
type Summary struct {
	Frames        int
	AvgFPS        float64
	MinFPS        float64
	MaxFrameTime  time.Duration
	AvgFrameTime  time.Duration
	AvgRenderTime time.Duration
	PeakMemoryMB  float64
	MaxDrawCalls  int
	MaxTriangles  int
}

// Summary aggregates the retained history. Frames is the total since the
// last Reset; FPS figures only count retained frames with a measured rate.
func (m *Monitor) Summary() Summary {
	var (
		sum       Summary
		fpsTotal  float64
		fpsFrames int
		frameSum  time.Duration
		renderSum time.Duration
	)
	n := m.history.Len()
	sum.Frames = m.frames
	for i := 0; i < n; i++ {
		s := m.history.At(i)
		if s.FPS > 0 {
			fpsTotal += s.FPS
			fpsFrames++
			if sum.MinFPS == 0 || s.FPS < sum.MinFPS {
				sum.MinFPS = s.FPS
			}
		}
		frameSum += s.FrameTime
		renderSum += s.RenderTime
		sum.MaxFrameTime = max(sum.MaxFrameTime, s.FrameTime)
		sum.PeakMemoryMB = max(sum.PeakMemoryMB, s.MemoryMB)
		sum.MaxDrawCalls = max(sum.MaxDrawCalls, s.DrawCalls)
		sum.MaxTriangles = max(sum.MaxTriangles, s.Triangles)
	}
	if fpsFrames > 0 {
		sum.AvgFPS = fpsTotal / float64(fpsFrames)
	}
	if n > 0 {
		sum.AvgFrameTime = frameSum / time.Duration(n)
		sum.AvgRenderTime = renderSum / time.Duration(n)
	}
	return sum
}
