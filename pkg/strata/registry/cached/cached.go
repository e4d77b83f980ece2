// Package cached decorates a TypeRegistry with a TTL cache, keeping hot
// request paths off slower registries such as the file loader.
package cached

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/strata-cms/strata/pkg/strata"
)

const typesKey = "content-types"

// Registry caches the inner registry's ListTypes result for a fixed TTL.
// Expired snapshots are re-fetched lazily on the next call.
type Registry struct {
	inner strata.TypeRegistry
	cache *gocache.Cache
}

// New wraps inner with a TTL cache.
func New(inner strata.TypeRegistry, ttl time.Duration) *Registry {
	return &Registry{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// ListTypes implements strata.TypeRegistry. Errors from the inner registry
// are passed through uncached, so a transient failure does not stick for a
// full TTL.
func (r *Registry) ListTypes(ctx context.Context) ([]strata.ContentType, error) {
	if hit, ok := r.cache.Get(typesKey); ok {
		if types, ok := hit.([]strata.ContentType); ok {
			return types, nil
		}
	}
	types, err := r.inner.ListTypes(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.Set(typesKey, types, gocache.DefaultExpiration)
	return types, nil
}

// Invalidate drops the cached snapshot; the next ListTypes call hits the
// inner registry.
func (r *Registry) Invalidate() {
	r.cache.Delete(typesKey)
}
