package ig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gofhir/igpublisher/element"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadControlJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ig.json", `{"source": "ig/myguide.xml", "license": "CC0-1.0"}`)

	ctl, err := LoadControl(path)
	if err != nil {
		t.Fatalf("LoadControl() error = %v", err)
	}
	if ctl.Source != "ig/myguide.xml" {
		t.Errorf("Source = %q, want %q", ctl.Source, "ig/myguide.xml")
	}
	if ctl.License != "CC0-1.0" {
		t.Errorf("License = %q, want %q", ctl.License, "CC0-1.0")
	}

	got := ctl.GuidePath(path)
	want := filepath.Join(dir, "ig", "myguide.xml")
	if got != want {
		t.Errorf("GuidePath() = %q, want %q", got, want)
	}
}

func TestLoadControlYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ig.yaml", "source: guide.json\n")

	ctl, err := LoadControl(path)
	if err != nil {
		t.Fatalf("LoadControl() error = %v", err)
	}
	if ctl.Source != "guide.json" {
		t.Errorf("Source = %q, want %q", ctl.Source, "guide.json")
	}
}

func TestLoadControlErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadControl(filepath.Join(dir, "absent.json")); err == nil {
			t.Error("expected error for missing control file")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeFile(t, dir, "bad.json", `{"source": `)
		if _, err := LoadControl(path); err == nil {
			t.Error("expected error for malformed control file")
		}
	})

	t.Run("no source", func(t *testing.T) {
		path := writeFile(t, dir, "empty.json", `{"license": "CC0-1.0"}`)
		if _, err := LoadControl(path); err == nil {
			t.Error("expected error for control file without source")
		}
	})
}

const guideJSON = `{
  "resourceType": "ImplementationGuide",
  "name": "test.guide",
  "package": [
    {
      "name": "base",
      "resource": [
        {"sourceUri": "namingsystem.json"},
        {"sourceReference": {"reference": "codesystem.xml"}}
      ]
    },
    {
      "name": "profiles",
      "resource": [
        {"source": "valueset.json"}
      ]
    }
  ]
}`

func parseGuideTree(t *testing.T, src string) *element.Element {
	t.Helper()
	root, err := element.ParseJSON([]byte(src))
	if err != nil {
		t.Fatalf("parsing guide fixture: %v", err)
	}
	return root
}

func TestParseGuide(t *testing.T) {
	g, err := ParseGuide(parseGuideTree(t, guideJSON))
	if err != nil {
		t.Fatalf("ParseGuide() error = %v", err)
	}
	if g.Name != "test.guide" {
		t.Errorf("Name = %q, want %q", g.Name, "test.guide")
	}
	if len(g.Packages) != 2 {
		t.Fatalf("len(Packages) = %d, want 2", len(g.Packages))
	}

	refs := g.Refs()
	want := []string{"namingsystem.json", "codesystem.xml", "valueset.json"}
	if len(refs) != len(want) {
		t.Fatalf("len(Refs()) = %d, want %d", len(refs), len(want))
	}
	for i, ref := range refs {
		if ref.Source != want[i] {
			t.Errorf("Refs()[%d].Source = %q, want %q", i, ref.Source, want[i])
		}
	}
}

func TestParseGuideWrongType(t *testing.T) {
	root := parseGuideTree(t, `{"resourceType": "Patient", "id": "p1"}`)
	if _, err := ParseGuide(root); err == nil {
		t.Error("expected error for non-ImplementationGuide root")
	}
}

func TestParseGuideMissingSource(t *testing.T) {
	root := parseGuideTree(t, `{
	  "resourceType": "ImplementationGuide",
	  "name": "bad",
	  "package": [{"name": "p", "resource": [{"name": "unnamed"}]}]
	}`)
	if _, err := ParseGuide(root); err == nil {
		t.Error("expected error for resource entry without source")
	}
}

func TestParseGuideNil(t *testing.T) {
	if _, err := ParseGuide(nil); err == nil {
		t.Error("expected error for nil root")
	}
}
