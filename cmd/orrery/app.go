package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/orrery/internal/assets"
	"github.com/vovakirdan/orrery/internal/catalog"
	"github.com/vovakirdan/orrery/internal/config"
	"github.com/vovakirdan/orrery/internal/logging"
	"github.com/vovakirdan/orrery/internal/registry"
	"github.com/vovakirdan/orrery/internal/storage"
)

// app holds what every command shares.
type app struct {
	cfg      config.ViewerConfig
	logger   *log.Logger
	registry *registry.Registry
	store    *storage.Store
	loader   assets.Loader
	closers  []io.Closer
}

// appOptions control how much of the app a command needs.
type appOptions struct {
	// logToFile sends logs to ~/.orrery/orrery.log so they don't tear the TUI.
	logToFile bool
	// requireStore fails instead of continuing without a database.
	requireStore bool
}

// setup loads configuration, opens the store and fills the registry.
// Sources load in override order: embedded, config catalog dir,
// ~/.orrery/systems, then the database.
func setup(ctx context.Context, opts appOptions) (*app, error) {
	a := &app{}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagQuality != "" {
		preset := config.QualityPreset(flagQuality)
		if !preset.Valid() {
			return nil, fmt.Errorf("unknown quality preset %q", flagQuality)
		}
		config.ApplyQualityPreset(&cfg, preset)
	}
	if flagFPS > 0 {
		cfg.Render.FPS = flagFPS
	}
	a.cfg = cfg

	var w io.Writer = os.Stderr
	if opts.logToFile {
		if f, err := logging.OpenFile(config.UserPath("orrery.log")); err == nil {
			a.closers = append(a.closers, f)
			w = f
		} else {
			w = io.Discard
		}
	}
	a.logger = logging.New(w, "orrery", logging.ParseLevel(flagLogLevel))

	store, err := storage.Open(flagDBPath)
	if err != nil {
		if opts.requireStore {
			a.Close()
			return nil, err
		}
		a.logger.Warn("could not open database", "err", err)
	} else {
		a.store = store
		a.closers = append(a.closers, store)
	}

	sources := []registry.Source{catalog.EmbeddedSource{}}
	if cfg.Catalog.Dir != "" {
		sources = append(sources, catalog.DirSource{Dir: cfg.Catalog.Dir})
	}
	if dir := config.UserPath("systems"); dir != "" {
		sources = append(sources, catalog.DirSource{Dir: dir})
	}
	if a.store != nil {
		sources = append(sources, a.store)
	}
	a.registry = registry.New(a.logger)
	if err := a.registry.InitializeAll(ctx, sources...); err != nil {
		// Partial loads are usable; the registry keeps what did load.
		a.logger.Warn("some systems failed to load", "err", err)
	}

	if dir := cfg.Assets.TextureDir; dir != "" {
		loader := assets.NewDirLoader(os.DirFS(filepath.Clean(dir)))
		if cfg.Assets.MaxTextureSize > 0 {
			loader.MaxSize = cfg.Assets.MaxTextureSize
		}
		a.loader = loader
	}

	return a, nil
}

// Close releases the store and log file.
func (a *app) Close() {
	if a.registry != nil {
		a.registry.CleanupAll()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
	a.closers = nil
}

// requireSystem fails with a hint when id is not registered.
func (a *app) requireSystem(id string) error {
	if !a.registry.Exists(id) {
		return fmt.Errorf("unknown system %q; run 'orrery list' to see available systems", id)
	}
	return nil
}
