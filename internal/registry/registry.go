// Package registry holds the planetary systems available to the viewer.
// A Registry is an explicit instance: sources are loaded by InitializeAll
// and released by CleanupAll, with no import-time side effects.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/orrery/internal/catalog"
	"github.com/vovakirdan/orrery/internal/logging"
)

// ErrUnknownSystem is returned by Get for an id that is not registered.
var ErrUnknownSystem = errors.New("registry: unknown system")

// Source supplies systems to a registry.
type Source interface {
	// Name identifies the source in logs and listings (e.g. "embedded").
	Name() string

	// Systems returns every system the source currently holds.
	// A source may return systems together with a non-nil error when only
	// some entries failed to load.
	Systems(ctx context.Context) ([]catalog.System, error)
}

// Info contains metadata about a registered system.
type Info struct {
	ID     string
	Title  string
	Source string
	Bodies int
}

type entry struct {
	system catalog.System
	source string
}

// Registry maps system ids to catalogue entries. It is safe for concurrent
// use; SSH sessions read it in parallel.
type Registry struct {
	mu      sync.RWMutex
	systems map[string]entry
	log     *log.Logger
}

// New creates an empty registry.
func New(logger *log.Logger) *Registry {
	return &Registry{
		systems: make(map[string]entry),
		log:     logging.OrDiscard(logger),
	}
}

// Register adds a system. It fails if the id is empty or already taken.
func (r *Registry) Register(s catalog.System, source string) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.systems[s.ID]; exists {
		return fmt.Errorf("registry: system %q already registered", s.ID)
	}
	r.systems[s.ID] = entry{system: s, source: source}
	return nil
}

// InitializeAll loads every source in order. A system from a later source
// replaces one with the same id from an earlier source, so user catalogues
// can shadow the built-in ones. Errors from individual sources are logged
// and joined; the registry keeps whatever did load.
func (r *Registry) InitializeAll(ctx context.Context, sources ...Source) error {
	var errs []error
	for _, src := range sources {
		systems, err := src.Systems(ctx)
		if err != nil {
			r.log.Warn("source failed", "source", src.Name(), "err", err)
			errs = append(errs, fmt.Errorf("registry: source %s: %w", src.Name(), err))
			if ctx.Err() != nil {
				break
			}
		}

		r.mu.Lock()
		for _, s := range systems {
			if prev, ok := r.systems[s.ID]; ok {
				r.log.Debug("system overridden", "id", s.ID, "was", prev.source, "now", src.Name())
			}
			r.systems[s.ID] = entry{system: s, source: src.Name()}
		}
		r.mu.Unlock()

		r.log.Debug("source loaded", "source", src.Name(), "systems", len(systems))
	}
	return errors.Join(errs...)
}

// CleanupAll removes every system.
func (r *Registry) CleanupAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.systems)
}

// List returns information about all registered systems, sorted by ID.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Info, 0, len(r.systems))
	for id, e := range r.systems {
		result = append(result, Info{
			ID:     id,
			Title:  e.system.Title(),
			Source: e.source,
			Bodies: len(e.system.Bodies),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Get returns the system registered under id.
func (r *Registry) Get(id string) (catalog.System, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.systems[id]
	if !ok {
		return catalog.System{}, fmt.Errorf("%w %q", ErrUnknownSystem, id)
	}
	return e.system, nil
}

// Exists checks if a system with the given ID is registered.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.systems[id]
	return ok
}

// Remove unregisters a system and reports whether it was present.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.systems[id]
	delete(r.systems, id)
	return ok
}

// Len returns the number of registered systems.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.systems)
}
