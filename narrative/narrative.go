// Package narrative generates XHTML narrative for resources that carry
// a computable definition, currently expanded value sets.
package narrative

import (
	"fmt"
	"html"
	"strings"

	"github.com/gofhir/fhir/r4"

	"github.com/gofhir/igpublisher/service"
)

// Generator is the default narrative generator.
type Generator struct{}

var _ service.NarrativeGenerator = (*Generator)(nil)

// NewGenerator creates a narrative generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate produces a narrative XHTML div for the given resource.
// Resources without a narrative rendition are an error; callers decide
// whether that is worth reporting.
func (g *Generator) Generate(res any) (string, error) {
	switch r := res.(type) {
	case *r4.ValueSet:
		return valueSetNarrative(r)
	default:
		return "", fmt.Errorf("no narrative rendition for %T", res)
	}
}

// valueSetNarrative renders an expanded value set's member list as a
// table. The value set must already carry an expansion.
func valueSetNarrative(vs *r4.ValueSet) (string, error) {
	if vs == nil || vs.Expansion == nil {
		return "", fmt.Errorf("valueset has no expansion to render")
	}

	var b strings.Builder
	b.WriteString(`<div xmlns="http://www.w3.org/1999/xhtml">`)
	name := ""
	if vs.Name != nil {
		name = *vs.Name
	}
	if name != "" {
		fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(name))
	}
	fmt.Fprintf(&b, "<p>This value set contains %d concepts</p>", countMembers(vs.Expansion.Contains))
	b.WriteString(`<table class="codes"><tr><td><b>System</b></td><td><b>Code</b></td><td><b>Display</b></td></tr>`)
	writeMembers(&b, vs.Expansion.Contains)
	b.WriteString("</table></div>")
	return b.String(), nil
}

func countMembers(contains []r4.ValueSetExpansionContains) int {
	n := 0
	for i := range contains {
		if contains[i].Code != nil {
			n++
		}
		n += countMembers(contains[i].Contains)
	}
	return n
}

func writeMembers(b *strings.Builder, contains []r4.ValueSetExpansionContains) {
	for i := range contains {
		member := &contains[i]
		if member.Code != nil {
			system, code, display := "", *member.Code, ""
			if member.System != nil {
				system = *member.System
			}
			if member.Display != nil {
				display = *member.Display
			}
			fmt.Fprintf(b, "<tr><td>%s</td><td>%s</td><td>%s</td></tr>",
				html.EscapeString(system), html.EscapeString(code), html.EscapeString(display))
		}
		writeMembers(b, member.Contains)
	}
}
