package publisher

import (
	"strings"
	"sync"

	igp "github.com/gofhir/igpublisher"
	"github.com/gofhir/igpublisher/service"
)

// linkResolver maps canonical URLs to page targets. Guide-local
// resources resolve to the page rendered for them this run; core
// specification URLs resolve against the configured spec location.
// Everything else is left as plain text.
type linkResolver struct {
	specPath string

	mu    sync.RWMutex
	local map[string]string
}

var _ service.LinkResolver = (*linkResolver)(nil)

func newLinkResolver(specPath string) *linkResolver {
	return &linkResolver{
		specPath: strings.TrimSuffix(specPath, "/"),
		local:    make(map[string]string),
	}
}

// reset replaces the guide-local link table for a new pass.
func (r *linkResolver) reset() {
	r.mu.Lock()
	r.local = make(map[string]string)
	r.mu.Unlock()
}

// add maps a canonical URL to the page rendered for the resource with
// the given id.
func (r *linkResolver) add(url, id string) {
	if url == "" || id == "" {
		return
	}
	r.mu.Lock()
	r.local[url] = id + "-html.html"
	r.mu.Unlock()
}

// ResolveLink implements service.LinkResolver.
func (r *linkResolver) ResolveLink(value string) (string, bool) {
	r.mu.RLock()
	target, ok := r.local[value]
	r.mu.RUnlock()
	if ok {
		return target, true
	}

	if r.specPath != "" && strings.HasPrefix(value, igp.FHIRNamespace+"/") {
		rest := strings.TrimPrefix(value, igp.FHIRNamespace)
		return r.specPath + rest, true
	}
	return "", false
}
