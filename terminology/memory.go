// Package terminology expands value sets. The in-memory expander works
// entirely from code systems registered during the current run; the
// HTTP client delegates to an external terminology server; the cached
// expander wraps either with an LRU cache keyed by canonical URL.
package terminology

import (
	"context"
	"fmt"

	"github.com/gofhir/fhir/r4"

	"github.com/gofhir/igpublisher/registry"
	"github.com/gofhir/igpublisher/service"
)

// CodeSystemSource resolves a code system by canonical URL. The load
// registry satisfies this through its typed entries.
type CodeSystemSource interface {
	CodeSystem(url string) (*r4.CodeSystem, bool)
}

// InMemoryExpander expands value sets from the code systems loaded in
// the current run. It handles explicitly enumerated concepts and
// whole-system includes; compose filters need a terminology server.
type InMemoryExpander struct {
	source CodeSystemSource
}

var _ service.Expander = (*InMemoryExpander)(nil)

// NewInMemoryExpander creates an expander over the given code system
// source.
func NewInMemoryExpander(source CodeSystemSource) *InMemoryExpander {
	return &InMemoryExpander{source: source}
}

// Expand computes the value set's member list. The result is a copy of
// the input carrying an expansion; the input is never mutated. A value
// set whose compose rules cannot be resolved locally is an error.
func (e *InMemoryExpander) Expand(ctx context.Context, vs *r4.ValueSet) (*r4.ValueSet, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if vs == nil {
		return nil, fmt.Errorf("no valueset to expand")
	}
	url := ""
	if vs.Url != nil {
		url = *vs.Url
	}

	// A value set that already carries an expansion is its own answer.
	if vs.Expansion != nil {
		return vs, nil
	}
	if vs.Compose == nil {
		return nil, fmt.Errorf("valueset %s has no compose and no expansion", url)
	}

	var contains []r4.ValueSetExpansionContains
	for i := range vs.Compose.Include {
		include := &vs.Compose.Include[i]
		if include.System == nil {
			return nil, fmt.Errorf("valueset %s: include without a system cannot be expanded locally", url)
		}
		system := *include.System

		if len(include.Filter) > 0 {
			return nil, fmt.Errorf("valueset %s: filter on %s needs a terminology server", url, system)
		}

		if len(include.Concept) > 0 {
			for j := range include.Concept {
				concept := &include.Concept[j]
				if concept.Code == nil {
					continue
				}
				contains = append(contains, expansionConcept(system, *concept.Code, concept.Display))
			}
			continue
		}

		// Whole-system include: every concept of the code system.
		cs, ok := e.source.CodeSystem(system)
		if !ok {
			return nil, fmt.Errorf("valueset %s: code system %s is not loaded", url, system)
		}
		contains = append(contains, allConcepts(system, cs.Concept)...)
	}

	expanded := *vs
	expanded.Expansion = &r4.ValueSetExpansion{Contains: contains}
	return &expanded, nil
}

// expansionConcept builds one expansion member.
func expansionConcept(system, code string, display *string) r4.ValueSetExpansionContains {
	member := r4.ValueSetExpansionContains{
		System: &system,
		Code:   &code,
	}
	if display != nil {
		d := *display
		member.Display = &d
	}
	return member
}

// allConcepts flattens a code system's concept hierarchy into expansion
// members, depth first.
func allConcepts(system string, concepts []r4.CodeSystemConcept) []r4.ValueSetExpansionContains {
	var members []r4.ValueSetExpansionContains
	for i := range concepts {
		concept := &concepts[i]
		if concept.Code != nil {
			members = append(members, expansionConcept(system, *concept.Code, concept.Display))
		}
		if len(concept.Concept) > 0 {
			members = append(members, allConcepts(system, concept.Concept)...)
		}
	}
	return members
}

// RegistrySource adapts the load registry to CodeSystemSource.
type RegistrySource struct {
	Registry *registry.Registry
}

// CodeSystem resolves a registered code system by canonical URL.
func (s RegistrySource) CodeSystem(url string) (*r4.CodeSystem, bool) {
	res, ok := s.Registry.Get(url)
	if !ok {
		return nil, false
	}
	holder, ok := res.(interface{ CodeSystemResource() *r4.CodeSystem })
	if !ok {
		return nil, false
	}
	cs := holder.CodeSystemResource()
	return cs, cs != nil
}
