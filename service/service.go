// Package service defines the interfaces of the publisher's external
// collaborators: instance validation, terminology expansion, narrative
// generation, and link resolution. The pipeline depends only on these
// interfaces; default implementations live in their own packages.
package service

import (
	"context"

	"github.com/gofhir/fhir/r4"

	igp "github.com/gofhir/igpublisher"
	"github.com/gofhir/igpublisher/element"
)

// InstanceValidator performs structural validation of raw content,
// producing the canonical element tree as a byproduct.
//
// Content-level problems surface as issues, never as the error return;
// the error is reserved for non-content failures such as an ambiguous
// format.
type InstanceValidator interface {
	Validate(ctx context.Context, source []byte, format element.Format) (*element.Element, []igp.Issue, error)
}

// Expander resolves a value set's defining rules into its concrete
// member list. A failed expansion returns an error that the renderer
// surfaces as a visible in-page fragment, not a pipeline abort.
type Expander interface {
	Expand(ctx context.Context, vs *r4.ValueSet) (*r4.ValueSet, error)
}

// NarrativeGenerator produces narrative XHTML for a resource.
type NarrativeGenerator interface {
	Generate(res any) (string, error)
}

// LinkResolver turns a value that references another resource into a
// hyperlink target. Returns false when the value is not a resolvable
// reference.
type LinkResolver interface {
	ResolveLink(value string) (string, bool)
}

// LinkResolverFunc adapts a function to the LinkResolver interface.
type LinkResolverFunc func(value string) (string, bool)

// ResolveLink implements LinkResolver.
func (f LinkResolverFunc) ResolveLink(value string) (string, bool) {
	return f(value)
}
