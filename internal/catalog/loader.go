package catalog

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed systems/*.yaml
var embedded embed.FS

// Parse decodes one system from YAML. Unknown fields are rejected so typos
// in catalogue files surface instead of silently dropping settings.
func Parse(data []byte) (System, error) {
	var s System
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return System{}, fmt.Errorf("catalog: yaml unmarshal: %w", err)
	}
	if err := s.Validate(); err != nil {
		return System{}, err
	}
	return s, nil
}

// Marshal encodes a system as YAML.
func Marshal(s System) ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("catalog: yaml marshal: %w", err)
	}
	return data, nil
}

// LoadFile reads a single system file.
func LoadFile(path string) (System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return System{}, fmt.Errorf("catalog: reading file %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return System{}, fmt.Errorf("catalog: parsing file %s: %w", path, err)
	}
	return s, nil
}

// LoadFS loads every .yaml/.yml file under root in fsys, sorted by id.
// Files that fail to parse are skipped and reported in the returned slice
// of errors.
func LoadFS(fsys fs.FS, root string) ([]System, []error) {
	var (
		systems []System
		errs    []error
	)
	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSupportedExtension(filepath.Ext(path)) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("catalog: reading %s: %w", path, err))
			return nil
		}
		s, err := Parse(data)
		if err != nil {
			errs = append(errs, fmt.Errorf("catalog: parsing %s: %w", path, err))
			return nil
		}
		systems = append(systems, s)
		return nil
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("catalog: walking %s: %w", root, err))
	}

	sort.Slice(systems, func(i, j int) bool {
		return systems[i].ID < systems[j].ID
	})
	return systems, errs
}

// LoadDir loads every system file in a directory tree.
func LoadDir(dir string) ([]System, []error) {
	return LoadFS(os.DirFS(dir), ".")
}

// Embedded returns the built-in systems.
func Embedded() ([]System, error) {
	systems, errs := LoadFS(embedded, "systems")
	if len(errs) > 0 {
		return systems, errs[0]
	}
	return systems, nil
}

func isSupportedExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
