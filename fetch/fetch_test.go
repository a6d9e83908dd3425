package fetch

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLocalFetcher_Fetch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "vs.json", `{"resourceType":"ValueSet"}`)

	f, err := NewLocalFetcher().Fetch(path)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	if f.ContentType != "application/fhir+json" {
		t.Errorf("ContentType = %q; want application/fhir+json", f.ContentType)
	}
	if string(f.Source) != `{"resourceType":"ValueSet"}` {
		t.Errorf("Source = %q", f.Source)
	}
	if f.Time.IsZero() {
		t.Error("Time should be set")
	}
	if f.Path == "" || !filepath.IsAbs(f.Path) {
		t.Errorf("Path = %q; want absolute", f.Path)
	}
}

func TestLocalFetcher_XMLContentType(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cs.xml", `<CodeSystem xmlns="http://hl7.org/fhir"/>`)

	f, err := NewLocalFetcher().Fetch(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.ContentType != "application/fhir+xml" {
		t.Errorf("ContentType = %q; want application/fhir+xml", f.ContentType)
	}
}

func TestLocalFetcher_UnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "hello")

	if _, err := NewLocalFetcher().Fetch(path); err == nil {
		t.Error("unknown extension should fail")
	}
}

func TestLocalFetcher_Missing(t *testing.T) {
	if _, err := NewLocalFetcher().Fetch(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestLocalFetcher_FetchRelative(t *testing.T) {
	dir := t.TempDir()
	igPath := writeFile(t, dir, "ig.json", `{"resourceType":"ImplementationGuide"}`)
	writeFile(t, dir, "vs.json", `{"resourceType":"ValueSet"}`)

	fetcher := NewLocalFetcher()
	base, err := fetcher.Fetch(igPath)
	if err != nil {
		t.Fatal(err)
	}

	f, err := fetcher.FetchRelative("vs.json", base)
	if err != nil {
		t.Fatalf("FetchRelative() error: %v", err)
	}
	if f.Name != "vs.json" {
		t.Errorf("Name = %q; want vs.json (declared locator preserved)", f.Name)
	}
	if f.Path != filepath.Join(dir, "vs.json") {
		t.Errorf("Path = %q", f.Path)
	}
}

func TestFetchedFile_Format(t *testing.T) {
	f := &FetchedFile{Name: "a", ContentType: "application/fhir+json"}
	if format, err := f.Format(); err != nil || format != "json" {
		t.Errorf("Format() = %q, %v", format, err)
	}

	f = &FetchedFile{Name: "b", ContentType: "application/octet-stream"}
	if _, err := f.Format(); err == nil {
		t.Error("ambiguous content type should fail")
	}
}
