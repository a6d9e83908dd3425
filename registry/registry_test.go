package registry

import (
	"errors"
	"testing"

	igp "github.com/gofhir/igpublisher"
)

type fakeResource struct {
	typ igp.ResourceType
	url string
}

func (f fakeResource) ResourceType() igp.ResourceType { return f.typ }
func (f fakeResource) URL() string                    { return f.url }

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := New()

	err := r.Register(fakeResource{igp.ResourceCodeSystem, "http://example.org/cs"})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	res, ok := r.Get("http://example.org/cs")
	if !ok {
		t.Fatal("Get() should find the registered resource")
	}
	if res.ResourceType() != igp.ResourceCodeSystem {
		t.Errorf("ResourceType = %s", res.ResourceType())
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d; want 1", r.Len())
	}
}

func TestRegistry_DuplicateURL(t *testing.T) {
	r := New()
	url := "http://example.org/vs"

	if err := r.Register(fakeResource{igp.ResourceValueSet, url}); err != nil {
		t.Fatal(err)
	}
	err := r.Register(fakeResource{igp.ResourceValueSet, url})
	if err == nil {
		t.Fatal("duplicate URL should be rejected")
	}
	if !errors.Is(err, ErrDuplicateURL) {
		t.Errorf("error should wrap ErrDuplicateURL, got %v", err)
	}
}

func TestRegistry_EmptyURL(t *testing.T) {
	r := New()
	if err := r.Register(fakeResource{igp.ResourceValueSet, ""}); err == nil {
		t.Error("empty canonical URL should be rejected")
	}
}

func TestRegistry_DropAll(t *testing.T) {
	r := New()
	if err := r.Register(fakeResource{igp.ResourceCodeSystem, "http://example.org/a"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(fakeResource{igp.ResourceValueSet, "http://example.org/b"}); err != nil {
		t.Fatal(err)
	}

	r.DropAll()

	if r.Len() != 0 {
		t.Errorf("Len() after DropAll = %d; want 0", r.Len())
	}
	if _, ok := r.Get("http://example.org/a"); ok {
		t.Error("dropped entry should not resolve")
	}

	// the same URL registers cleanly in the next run
	if err := r.Register(fakeResource{igp.ResourceCodeSystem, "http://example.org/a"}); err != nil {
		t.Errorf("re-register after DropAll: %v", err)
	}
}

func TestRegistry_URLs(t *testing.T) {
	r := New()
	_ = r.Register(fakeResource{igp.ResourceCodeSystem, "http://example.org/a"})
	_ = r.Register(fakeResource{igp.ResourceValueSet, "http://example.org/b"})

	urls := r.URLs()
	if len(urls) != 2 {
		t.Fatalf("len(URLs()) = %d; want 2", len(urls))
	}
	seen := map[string]bool{}
	for _, u := range urls {
		seen[u] = true
	}
	if !seen["http://example.org/a"] || !seen["http://example.org/b"] {
		t.Errorf("URLs() = %v", urls)
	}
}
