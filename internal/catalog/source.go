package catalog

import (
	"context"
	"errors"
)

// EmbeddedSource serves the built-in systems.
type EmbeddedSource struct{}

// Name implements registry.Source.
func (EmbeddedSource) Name() string { return "embedded" }

// Systems implements registry.Source.
func (EmbeddedSource) Systems(ctx context.Context) ([]System, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Embedded()
}

// DirSource serves systems from a directory of YAML files. A missing
// directory yields no systems and no error.
type DirSource struct {
	Dir string
}

// Name implements registry.Source.
func (s DirSource) Name() string { return "dir:" + s.Dir }

// Systems implements registry.Source.
func (s DirSource) Systems(ctx context.Context) ([]System, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Dir == "" || !dirExists(s.Dir) {
		return nil, nil
	}
	systems, errs := LoadDir(s.Dir)
	return systems, errors.Join(errs...)
}
