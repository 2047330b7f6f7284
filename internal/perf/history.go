package perf

import "time"

// Snapshot is one frame's metrics.
type Snapshot struct {
	Time       time.Time
	FPS        float64
	FrameTime  time.Duration
	RenderTime time.Duration
	MemoryMB   float64
	DrawCalls  int
	Triangles  int
	Geometries int
	Textures   int
}

// History is a fixed-capacity ring of snapshots; the oldest is evicted
// first.
type History struct {
	buf   []Snapshot
	start int
	n     int
}

// NewHistory creates a history holding up to capacity snapshots.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]Snapshot, capacity)}
}

// Push appends s, evicting the oldest snapshot when full.
func (h *History) Push(s Snapshot) {
	if h.n < len(h.buf) {
		h.buf[(h.start+h.n)%len(h.buf)] = s
		h.n++
		return
	}
	h.buf[h.start] = s
	h.start = (h.start + 1) % len(h.buf)
}

// Len returns the number of stored snapshots.
func (h *History) Len() int { return h.n }

// Cap returns the capacity.
func (h *History) Cap() int { return len(h.buf) }

// At returns the i-th snapshot, oldest first.
func (h *History) At(i int) Snapshot {
	return h.buf[(h.start+i)%len(h.buf)]
}

// Latest returns the newest snapshot.
func (h *History) Latest() (Snapshot, bool) {
	if h.n == 0 {
		return Snapshot{}, false
	}
	return h.At(h.n - 1), true
}

// All returns the snapshots, oldest first.
func (h *History) All() []Snapshot {
	out := make([]Snapshot, h.n)
	for i := range out {
		out[i] = h.At(i)
	}
	return out
}

// Clear empties the history.
func (h *History) Clear() {
	h.start, h.n = 0, 0
}
