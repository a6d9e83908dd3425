// Package ig reads the implementation guide manifest: the control file
// naming the guide's source, and the guide document itself with its
// declared packages of resource entries.
package ig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gofhir/igpublisher/element"
)

// Control is the guide's control file. It is read once at startup and
// locates the guide document relative to itself.
type Control struct {
	// Source is the guide document's locator, relative to the control file.
	Source string `json:"source" yaml:"source"`

	// License is informational and carried through to outputs.
	License string `json:"license,omitempty" yaml:"license,omitempty"`
}

// LoadControl reads a JSON or YAML control file. The format is chosen
// by file extension.
func LoadControl(path string) (*Control, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading control file: %w", err)
	}

	var ctl Control
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &ctl); err != nil {
			return nil, fmt.Errorf("parsing control file %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &ctl); err != nil {
			return nil, fmt.Errorf("parsing control file %s: %w", path, err)
		}
	}

	if ctl.Source == "" {
		return nil, fmt.Errorf("control file %s declares no source", path)
	}
	return &ctl, nil
}

// GuidePath resolves the guide document's location against the control
// file's directory.
func (c *Control) GuidePath(controlPath string) string {
	if filepath.IsAbs(c.Source) {
		return c.Source
	}
	return filepath.Join(filepath.Dir(controlPath), c.Source)
}

// ResourceRef is one declared source artifact inside the guide.
// Immutable once read; its identity serves as the change-tracking key
// for its manifest slot.
type ResourceRef struct {
	// Source is the artifact's locator, relative to the guide document.
	Source string
}

// Package is a named group of resource entries.
type Package struct {
	Name      string
	Resources []*ResourceRef
}

// Guide is the parsed guide document.
type Guide struct {
	Name     string
	Packages []*Package
}

// ParseGuide reads the guide's packages from its canonical element
// tree. Entries without a usable source locator are an error — a guide
// that declares an artifact it cannot name is unbuildable.
func ParseGuide(root *element.Element) (*Guide, error) {
	if root == nil {
		return nil, fmt.Errorf("no guide content")
	}
	if root.Name != "ImplementationGuide" {
		return nil, fmt.Errorf("guide document is a %s, not an ImplementationGuide", root.Name)
	}

	g := &Guide{Name: root.ChildValue("name")}
	for _, pkg := range root.NamedChildren("package") {
		p := &Package{Name: pkg.ChildValue("name")}
		for _, res := range pkg.NamedChildren("resource") {
			source := resourceSource(res)
			if source == "" {
				return nil, fmt.Errorf("guide %s: resource entry in package %q has no source", g.Name, p.Name)
			}
			p.Resources = append(p.Resources, &ResourceRef{Source: source})
		}
		g.Packages = append(g.Packages, p)
	}
	return g, nil
}

// resourceSource reads a resource entry's locator: sourceUri, or the
// reference inside sourceReference.
func resourceSource(res *element.Element) string {
	if v := res.ChildValue("sourceUri"); v != "" {
		return v
	}
	if ref := res.NamedChild("sourceReference"); ref != nil {
		return ref.ChildValue("reference")
	}
	// plain "source" is tolerated for hand-written guides
	return res.ChildValue("source")
}

// Refs returns every declared resource entry in manifest order.
func (g *Guide) Refs() []*ResourceRef {
	var refs []*ResourceRef
	for _, p := range g.Packages {
		refs = append(refs, p.Resources...)
	}
	return refs
}
