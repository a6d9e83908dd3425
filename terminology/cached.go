package terminology

import (
	"context"

	"github.com/gofhir/fhir/r4"

	igp "github.com/gofhir/igpublisher"
	"github.com/gofhir/igpublisher/cache"
	"github.com/gofhir/igpublisher/service"
)

// CachedExpander wraps an Expander with an LRU cache keyed by the value
// set's canonical URL. Value sets without a URL bypass the cache.
type CachedExpander struct {
	inner   service.Expander
	cache   *cache.Cache[string, *r4.ValueSet]
	metrics *igp.Metrics
}

var _ service.Expander = (*CachedExpander)(nil)

// NewCachedExpander wraps the given expander with a cache of the given
// capacity. metrics may be nil.
func NewCachedExpander(inner service.Expander, capacity int, metrics *igp.Metrics) *CachedExpander {
	return &CachedExpander{
		inner:   inner,
		cache:   cache.New[string, *r4.ValueSet](capacity),
		metrics: metrics,
	}
}

// Expand implements service.Expander with caching.
func (e *CachedExpander) Expand(ctx context.Context, vs *r4.ValueSet) (*r4.ValueSet, error) {
	if vs == nil || vs.Url == nil {
		return e.inner.Expand(ctx, vs)
	}
	url := *vs.Url

	if cached, ok := e.cache.Get(url); ok {
		if e.metrics != nil {
			e.metrics.RecordExpansionCacheHit()
		}
		return cached, nil
	}
	if e.metrics != nil {
		e.metrics.RecordExpansionCacheMiss()
	}

	expanded, err := e.inner.Expand(ctx, vs)
	if err != nil {
		return nil, err
	}
	e.cache.Set(url, expanded)
	return expanded, nil
}

// Invalidate drops a cached expansion, typically because the value set
// or one of its code systems changed.
func (e *CachedExpander) Invalidate(url string) {
	e.cache.Delete(url)
}

// Clear drops every cached expansion.
func (e *CachedExpander) Clear() {
	e.cache.Clear()
}
