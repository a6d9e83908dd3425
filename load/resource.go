// Package load turns validated artifacts into typed conformance
// resources and registers them by canonical URL, in dependency order.
package load

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofhir/fhir/r4"

	igp "github.com/gofhir/igpublisher"
	"github.com/gofhir/igpublisher/element"
	"github.com/gofhir/igpublisher/fetch"
	"github.com/gofhir/igpublisher/registry"
	"github.com/gofhir/igpublisher/render"
)

// ValueSet is a loaded value set. Its derived output is the expansion
// fragment.
type ValueSet struct {
	res *r4.ValueSet
}

var (
	_ registry.Resource    = (*ValueSet)(nil)
	_ render.DerivedSource = (*ValueSet)(nil)
)

// ResourceType implements registry.Resource.
func (v *ValueSet) ResourceType() igp.ResourceType { return igp.ResourceValueSet }

// URL implements registry.Resource.
func (v *ValueSet) URL() string {
	if v.res.Url == nil {
		return ""
	}
	return *v.res.Url
}

// Definition returns the underlying value set.
func (v *ValueSet) Definition() *r4.ValueSet { return v.res }

// RenderDerived writes the value set's expansion fragment. A failed
// expansion or narrative becomes a visible error fragment rather than
// aborting the run.
func (v *ValueSet) RenderDerived(ctx context.Context, p *render.Pipeline, f *fetch.FetchedFile) error {
	name := f.ID + "-expansion"
	if f.ID == "" {
		name = f.Element.Name + "-expansion"
	}
	if p.Expander == nil {
		return p.FragmentError(name, "no expansion support configured")
	}

	expanded, err := p.Expander.Expand(ctx, v.res)
	if err != nil {
		return p.FragmentError(name, fmt.Sprintf("expansion failed: %v", err))
	}
	if p.Narrative == nil {
		return p.FragmentError(name, "no narrative support configured")
	}
	xhtml, err := p.Narrative.Generate(expanded)
	if err != nil {
		return p.FragmentError(name, fmt.Sprintf("narrative generation failed: %v", err))
	}
	return p.Fragment(name, xhtml)
}

// CodeSystem is a loaded code system.
type CodeSystem struct {
	res *r4.CodeSystem
}

var _ registry.Resource = (*CodeSystem)(nil)

// ResourceType implements registry.Resource.
func (c *CodeSystem) ResourceType() igp.ResourceType { return igp.ResourceCodeSystem }

// URL implements registry.Resource.
func (c *CodeSystem) URL() string {
	if c.res.Url == nil {
		return ""
	}
	return *c.res.Url
}

// Definition returns the underlying code system.
func (c *CodeSystem) Definition() *r4.CodeSystem { return c.res }

// CodeSystemResource exposes the code system to the in-memory expander.
func (c *CodeSystem) CodeSystemResource() *r4.CodeSystem { return c.res }

// StructureDefinition is a loaded structure definition. Derived
// outputs (snapshots, differential views) are not generated yet.
type StructureDefinition struct {
	res *r4.StructureDefinition
}

var _ registry.Resource = (*StructureDefinition)(nil)

// ResourceType implements registry.Resource.
func (s *StructureDefinition) ResourceType() igp.ResourceType {
	return igp.ResourceStructureDefinition
}

// URL implements registry.Resource.
func (s *StructureDefinition) URL() string {
	if s.res.Url == nil {
		return ""
	}
	return *s.res.Url
}

// Definition returns the underlying structure definition.
func (s *StructureDefinition) Definition() *r4.StructureDefinition { return s.res }

// Generic is a loaded conformance resource without a dedicated typed
// form. It carries only its canonical identity.
type Generic struct {
	resourceType igp.ResourceType
	url          string
}

var _ registry.Resource = (*Generic)(nil)

// ResourceType implements registry.Resource.
func (g *Generic) ResourceType() igp.ResourceType { return g.resourceType }

// URL implements registry.Resource.
func (g *Generic) URL() string { return g.url }

// wrap builds the typed form of a validated artifact. The element tree
// is the source of truth: typed structs are decoded from its JSON
// composition so that XML sources and JSON sources load identically.
func wrap(f *fetch.FetchedFile) (registry.Resource, error) {
	source, err := element.ComposeJSON(f.Element)
	if err != nil {
		return nil, fmt.Errorf("composing %s for loading: %w", f.Name, err)
	}

	switch f.Type {
	case igp.ResourceValueSet:
		var vs r4.ValueSet
		if err := json.Unmarshal(source, &vs); err != nil {
			return nil, fmt.Errorf("decoding %s as ValueSet: %w", f.Name, err)
		}
		return &ValueSet{res: &vs}, nil
	case igp.ResourceCodeSystem:
		var cs r4.CodeSystem
		if err := json.Unmarshal(source, &cs); err != nil {
			return nil, fmt.Errorf("decoding %s as CodeSystem: %w", f.Name, err)
		}
		return &CodeSystem{res: &cs}, nil
	case igp.ResourceStructureDefinition:
		var sd r4.StructureDefinition
		if err := json.Unmarshal(source, &sd); err != nil {
			return nil, fmt.Errorf("decoding %s as StructureDefinition: %w", f.Name, err)
		}
		return &StructureDefinition{res: &sd}, nil
	default:
		return &Generic{
			resourceType: f.Type,
			url:          f.Element.ChildValue("url"),
		}, nil
	}
}
