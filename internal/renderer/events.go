package renderer

import (
	"fmt"

	"github.com/vovakirdan/orrery/internal/catalog"
	"github.com/vovakirdan/orrery/internal/perf"
)

// Event is something the renderer reports to its host. The set of
// variants is closed.
type Event interface {
	event()
}

// BodySelectedEvent reports a selection change. Descriptor is zero when
// the selection was cleared.
type BodySelectedEvent struct {
	ID         string
	Descriptor catalog.Descriptor
}

// CameraChangedEvent reports a new camera-to-target distance.
type CameraChangedEvent struct {
	Zoom float64
}

// SystemLoadedEvent reports a completed Initialize.
type SystemLoadedEvent struct {
	ID      string
	Bodies  int
	Skipped int
}

// ErrorEvent reports a failure. Fatal errors leave the renderer unusable.
type ErrorEvent struct {
	Err    error
	Fatal  bool
	BodyID string
}

// RenderStatsEvent is a periodic stats report.
type RenderStatsEvent struct {
	FPS        float64
	Triangles  int
	Geometries int
	Textures   int
	DrawCalls  int
}

// SuggestionEvent forwards a performance suggestion.
type SuggestionEvent struct {
	Suggestion perf.Suggestion
}

func (BodySelectedEvent) event()  {}
func (CameraChangedEvent) event() {}
func (SystemLoadedEvent) event()  {}
func (ErrorEvent) event()         {}
func (RenderStatsEvent) event()   {}
func (SuggestionEvent) event()    {}

// Observer receives events. A panicking observer is recovered and logged;
// it does not affect other observers or the frame loop.
type Observer func(Event)

// Callbacks adapts per-kind callbacks to an Observer. Nil callbacks are
// skipped.
type Callbacks struct {
	OnBodySelect   func(catalog.Descriptor)
	OnCameraChange func(zoom float64)
	OnSystemLoad   func(id string)
	OnError        func(error)
	OnRenderStats  func(RenderStatsEvent)
	OnSuggestion   func(perf.Suggestion)
}

// Observer returns an Observer dispatching to c.
func (c Callbacks) Observer() Observer {
	return func(e Event) {
		switch ev := e.(type) {
		case BodySelectedEvent:
			if c.OnBodySelect != nil {
				c.OnBodySelect(ev.Descriptor)
			}
		case CameraChangedEvent:
			if c.OnCameraChange != nil {
				c.OnCameraChange(ev.Zoom)
			}
		case SystemLoadedEvent:
			if c.OnSystemLoad != nil {
				c.OnSystemLoad(ev.ID)
			}
		case ErrorEvent:
			if c.OnError != nil {
				c.OnError(ev.Err)
			}
		case RenderStatsEvent:
			if c.OnRenderStats != nil {
				c.OnRenderStats(ev)
			}
		case SuggestionEvent:
			if c.OnSuggestion != nil {
				c.OnSuggestion(ev.Suggestion)
			}
		}
	}
}

func (r *Renderer) emit(e Event) {
	for _, obs := range r.observers {
		r.notify(obs, e)
	}
}

func (r *Renderer) notify(obs Observer, e Event) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("observer panicked", "event", fmt.Sprintf("%T", e), "panic", p)
		}
	}()
	obs(e)
}
