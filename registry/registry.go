// Package registry holds the conformance resources loaded during one
// publishing run, keyed by canonical URL. The registry is an explicit
// object owned by the run — it is dropped and rebuilt at the start of
// every re-load so no stale cross-references survive a change.
package registry

import (
	"errors"
	"fmt"
	"sync"

	igp "github.com/gofhir/igpublisher"
)

// ErrDuplicateURL is returned when two resources in one run claim the
// same canonical URL.
var ErrDuplicateURL = errors.New("duplicate canonical URL")

// Resource is a loaded conformance resource.
type Resource interface {
	// ResourceType returns the resource's type.
	ResourceType() igp.ResourceType
	// URL returns the resource's canonical URL.
	URL() string
}

// Registry maps canonical URLs to loaded resources.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Resource
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]Resource)}
}

// Register adds a resource under its canonical URL. Registering a URL
// twice within one run is an error.
func (r *Registry) Register(res Resource) error {
	url := res.URL()
	if url == "" {
		return fmt.Errorf("%s has no canonical URL", res.ResourceType())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[url]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateURL, url)
	}
	r.entries[url] = res
	return nil
}

// Get returns the resource registered under the canonical URL.
func (r *Registry) Get(url string) (Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.entries[url]
	return res, ok
}

// DropAll removes every entry. Called at the start of each re-load.
func (r *Registry) DropAll() {
	r.mu.Lock()
	r.entries = make(map[string]Resource)
	r.mu.Unlock()
}

// Len returns the number of registered resources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// URLs returns all registered canonical URLs.
func (r *Registry) URLs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	urls := make([]string, 0, len(r.entries))
	for url := range r.entries {
		urls = append(urls, url)
	}
	return urls
}
