package perf

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// frame runs one frame of total length d, with drawing taking the last r.
func frame(m *Monitor, c *fakeClock, d, r time.Duration) Snapshot {
	m.FrameStart()
	c.Advance(d - r)
	m.RenderStart()
	c.Advance(r)
	return m.FrameEnd()
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Push(Snapshot{DrawCalls: i})
	}
	if h.Len() != 3 || h.Cap() != 3 {
		t.Fatalf("len=%d cap=%d", h.Len(), h.Cap())
	}
	all := h.All()
	for i, want := range []int{3, 4, 5} {
		if all[i].DrawCalls != want {
			t.Errorf("all[%d]=%d, want %d", i, all[i].DrawCalls, want)
		}
	}
	latest, ok := h.Latest()
	if !ok || latest.DrawCalls != 5 {
		t.Errorf("latest=%v ok=%v", latest, ok)
	}
	h.Clear()
	if _, ok := h.Latest(); ok {
		t.Error("latest after clear")
	}
}

func TestFrameTimes(t *testing.T) {
	c := newClock()
	m := New(Config{HistorySize: 10}, WithClock(c.Now))
	s := frame(m, c, 20*time.Millisecond, 15*time.Millisecond)
	if s.FrameTime != 20*time.Millisecond {
		t.Errorf("frame time %v", s.FrameTime)
	}
	if s.RenderTime != 15*time.Millisecond {
		t.Errorf("render time %v", s.RenderTime)
	}
	if m.Frames() != 1 {
		t.Errorf("frames %d", m.Frames())
	}
}

func TestFPSRecomputedPerSecond(t *testing.T) {
	c := newClock()
	m := New(Config{HistorySize: 100}, WithClock(c.Now))
	for i := 0; i < 49; i++ {
		frame(m, c, 20*time.Millisecond, 0)
	}
	if m.FPS() != 0 {
		t.Fatalf("fps before first window = %v", m.FPS())
	}
	s := frame(m, c, 20*time.Millisecond, 0)
	if s.FPS < 49.9 || s.FPS > 50.1 {
		t.Fatalf("fps = %v, want 50", s.FPS)
	}
	for i := 0; i < 10; i++ {
		frame(m, c, 20*time.Millisecond, 0)
	}
	if m.FPS() != s.FPS {
		t.Errorf("fps changed mid-window: %v", m.FPS())
	}
}

func TestFrameEndWithoutStart(t *testing.T) {
	m := New(Config{})
	if s := m.FrameEnd(); s.FrameTime != 0 {
		t.Errorf("unexpected snapshot %+v", s)
	}
	if m.Frames() != 0 {
		t.Errorf("frames %d", m.Frames())
	}
}

func TestCountersAndMemory(t *testing.T) {
	c := newClock()
	src := CounterFunc(func() Counters { return Counters{DrawCalls: 7, Triangles: 900, Textures: 2} })
	m := New(Config{SampleMemory: true},
		WithClock(c.Now),
		WithCounters(src),
		WithMemoryReader(func() uint64 { return 64 << 20 }))
	s := frame(m, c, time.Millisecond, 0)
	if s.DrawCalls != 7 || s.Triangles != 900 || s.Textures != 2 {
		t.Errorf("counters %+v", s)
	}
	if s.MemoryMB != 64 {
		t.Errorf("memory %v", s.MemoryMB)
	}

	m = New(Config{SampleMemory: false}, WithClock(c.Now), WithMemoryReader(func() uint64 { return 64 << 20 }))
	if s := frame(m, c, time.Millisecond, 0); s.MemoryMB != 0 {
		t.Errorf("memory sampled while disabled: %v", s.MemoryMB)
	}
}

func TestSeverityGrades(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		th   Thresholds
		want Severity
	}{
		{"fps slightly low", Snapshot{FPS: 25}, Thresholds{MinFPS: 30}, SeverityLow},
		{"fps medium", Snapshot{FPS: 20}, Thresholds{MinFPS: 30}, SeverityMedium},
		{"fps high", Snapshot{FPS: 10}, Thresholds{MinFPS: 30}, SeverityHigh},
		{"fps critical", Snapshot{FPS: 5}, Thresholds{MinFPS: 30}, SeverityCritical},
		{"draw calls low", Snapshot{DrawCalls: 120}, Thresholds{MaxDrawCalls: 100}, SeverityLow},
		{"draw calls medium", Snapshot{DrawCalls: 180}, Thresholds{MaxDrawCalls: 100}, SeverityMedium},
		{"memory high", Snapshot{MemoryMB: 300}, Thresholds{MaxMemoryMB: 100}, SeverityHigh},
		{"frame time critical", Snapshot{FrameTime: 500 * time.Millisecond}, Thresholds{MaxFrameTime: 50 * time.Millisecond}, SeverityCritical},
		{"textures low", Snapshot{Textures: 11}, Thresholds{MaxTextures: 10}, SeverityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.th.Evaluate(tt.snap)
			if len(got) != 1 {
				t.Fatalf("got %d suggestions: %v", len(got), got)
			}
			if got[0].Severity != tt.want {
				t.Errorf("severity = %s, want %s", got[0].Severity, tt.want)
			}
		})
	}
}

func TestEvaluateWithinLimits(t *testing.T) {
	th := DefaultThresholds()
	if got := th.Evaluate(Snapshot{FPS: 60, FrameTime: time.Millisecond, DrawCalls: 5}); len(got) != 0 {
		t.Errorf("unexpected suggestions %v", got)
	}
	// An unmeasured rate is not a violation.
	if got := th.Evaluate(Snapshot{FPS: 0}); len(got) != 0 {
		t.Errorf("unexpected suggestions %v", got)
	}
}

func TestSuggestionsThrottledPerMetric(t *testing.T) {
	c := newClock()
	var got []Suggestion
	m := New(Config{
		Thresholds:         Thresholds{MaxDrawCalls: 10},
		SuggestionInterval: time.Second,
	},
		WithClock(c.Now),
		WithCounters(CounterFunc(func() Counters { return Counters{DrawCalls: 50} })),
		OnSuggestion(func(s Suggestion) { got = append(got, s) }))

	for i := 0; i < 10; i++ {
		frame(m, c, 50*time.Millisecond, 0)
	}
	if len(got) != 1 {
		t.Fatalf("got %d suggestions in 500ms, want 1", len(got))
	}
	for i := 0; i < 12; i++ {
		frame(m, c, 50*time.Millisecond, 0)
	}
	if len(got) != 2 {
		t.Fatalf("got %d suggestions after 1.1s, want 2", len(got))
	}
	if got[0].Metric != MetricDrawCalls || got[0].Severity != SeverityCritical {
		t.Errorf("suggestion %+v", got[0])
	}
}

func TestSummary(t *testing.T) {
	c := newClock()
	mem := uint64(10 << 20)
	m := New(Config{HistorySize: 1000, SampleMemory: true},
		WithClock(c.Now),
		WithMemoryReader(func() uint64 { mem += 1 << 20; return mem }))

	for i := 0; i < 100; i++ {
		d := 10 * time.Millisecond
		if i == 50 {
			d = 90 * time.Millisecond
		}
		frame(m, c, d, 5*time.Millisecond)
	}
	sum := m.Summary()
	if sum.Frames != 100 {
		t.Errorf("frames %d", sum.Frames)
	}
	if sum.MaxFrameTime != 90*time.Millisecond {
		t.Errorf("max frame time %v", sum.MaxFrameTime)
	}
	if sum.AvgRenderTime != 5*time.Millisecond {
		t.Errorf("avg render %v", sum.AvgRenderTime)
	}
	if sum.AvgFPS <= 0 || sum.MinFPS <= 0 || sum.MinFPS > sum.AvgFPS {
		t.Errorf("fps avg=%v min=%v", sum.AvgFPS, sum.MinFPS)
	}
	if sum.PeakMemoryMB < 11 {
		t.Errorf("peak memory %v", sum.PeakMemoryMB)
	}

	m.Reset()
	if s := m.Summary(); s.Frames != 0 || s.AvgFPS != 0 {
		t.Errorf("summary after reset %+v", s)
	}
}
