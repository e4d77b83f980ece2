// Package file provides a content-type registry backed by a directory of
// YAML schema files, with optional hot reload on filesystem changes.
package file

import (
	"context"
	"log/slog"
	"sync"

	"github.com/strata-cms/strata/pkg/strata"
)

// Registry serves content types parsed from a schema directory. Reload
// swaps the whole snapshot atomically; a failed reload keeps the previous
// snapshot serving.
type Registry struct {
	dir    string
	logger *slog.Logger

	mu    sync.RWMutex
	types []strata.ContentType
}

// New loads the schema directory and returns a registry serving it. The
// initial load must succeed; warnings are logged, not fatal.
func New(dir string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{dir: dir, logger: logger}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Dir returns the schema directory this registry watches.
func (r *Registry) Dir() string { return r.dir }

// ListTypes implements strata.TypeRegistry. The returned slice is a
// snapshot; reloads replace it rather than mutate it.
func (r *Registry) ListTypes(ctx context.Context) ([]strata.ContentType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]strata.ContentType, len(r.types))
	copy(out, r.types)
	return out, nil
}

// Reload re-parses the schema directory and swaps in the result.
func (r *Registry) Reload() error {
	types, warnings, err := LoadDir(r.dir)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		r.logger.Warn("schema warning", "dir", r.dir, "detail", w)
	}

	r.mu.Lock()
	r.types = types
	r.mu.Unlock()

	r.logger.Info("schemas loaded", "dir", r.dir, "types", len(types))
	return nil
}
