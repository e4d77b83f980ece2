// Package memory provides an in-memory content-type registry, used in
// tests and in deployments that register their schemas at startup.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/strata-cms/strata/pkg/strata"
)

// Registry is an in-memory strata.TypeRegistry. Safe for concurrent use;
// all reads return defensive copies.
type Registry struct {
	mu    sync.RWMutex
	types map[string]strata.ContentType // keyed by slug
}

// New creates an empty in-memory registry.
func New() *Registry {
	return &Registry{types: make(map[string]strata.ContentType)}
}

// Register validates and stores a content type, replacing any previous
// definition with the same slug. A zero ID is assigned; timestamps are
// stamped when missing.
func (r *Registry) Register(ct strata.ContentType) error {
	if err := ct.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if ct.ID == uuid.Nil {
		ct.ID = uuid.New()
	}
	for slug, existing := range r.types {
		if slug != ct.Slug && existing.ID == ct.ID {
			return fmt.Errorf("content type id %s already registered under slug %q", ct.ID, slug)
		}
	}
	now := time.Now().UTC()
	if ct.CreatedAt.IsZero() {
		if previous, ok := r.types[ct.Slug]; ok {
			ct.CreatedAt = previous.CreatedAt
		} else {
			ct.CreatedAt = now
		}
	}
	if ct.UpdatedAt.IsZero() {
		ct.UpdatedAt = now
	}

	r.types[ct.Slug] = cloneType(ct)
	return nil
}

// Remove drops the content type with the given slug. Removing an unknown
// slug is a no-op.
func (r *Registry) Remove(slug string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.types, slug)
}

// ListTypes implements strata.TypeRegistry. The result is sorted by slug.
func (r *Registry) ListTypes(ctx context.Context) ([]strata.ContentType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]strata.ContentType, 0, len(r.types))
	for _, ct := range r.types {
		out = append(out, cloneType(ct))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

// cloneType deep-copies a content type so callers cannot mutate the
// registry's state through shared slices or constraint pointers.
func cloneType(ct strata.ContentType) strata.ContentType {
	out := ct
	out.Fields = make([]strata.ContentField, len(ct.Fields))
	copy(out.Fields, ct.Fields)
	for i, f := range out.Fields {
		if f.Validation != nil {
			v := *f.Validation
			out.Fields[i].Validation = &v
		}
	}
	return out
}
