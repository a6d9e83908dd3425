// Package element provides the canonical in-memory form of a FHIR
// resource: a tree of named elements that can be parsed from, and
// composed to, the FHIR JSON and XML representations without a
// StructureDefinition in hand.
package element

import "strings"

// Kind describes what an element holds.
type Kind int

const (
	// KindObject is an element with child elements.
	KindObject Kind = iota
	// KindString is a primitive carried as a string.
	KindString
	// KindNumber is a primitive carried as a JSON number.
	KindNumber
	// KindBool is a primitive carried as a JSON boolean.
	KindBool
	// KindXHTML is a narrative div carried as raw XHTML.
	KindXHTML
)

// Element is one node of the canonical tree. The root element's Name is
// the resource type.
type Element struct {
	// Name is the element name ("status", "concept", ...).
	Name string

	// Kind describes the element's content.
	Kind Kind

	// Value holds the primitive value, or raw XHTML for KindXHTML.
	Value string

	// List is true when the element was one entry of a JSON array.
	// Used to restore singleton arrays on composition.
	List bool

	// Children holds child elements in source order.
	Children []*Element
}

// NamedChild returns the first child with the given name, or nil.
func (e *Element) NamedChild(name string) *Element {
	if e == nil {
		return nil
	}
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// NamedChildren returns all children with the given name.
func (e *Element) NamedChildren(name string) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// ChildValue returns the primitive value of the first child with the
// given name, or "".
func (e *Element) ChildValue(name string) string {
	if c := e.NamedChild(name); c != nil {
		return c.Value
	}
	return ""
}

// Narrative returns the raw XHTML of the resource's narrative
// (the "div" child of the "text" child), or "" when absent.
func (e *Element) Narrative() string {
	text := e.NamedChild("text")
	if text == nil {
		return ""
	}
	div := text.NamedChild("div")
	if div == nil {
		return ""
	}
	return div.Value
}

// Format identifies a FHIR wire format.
type Format string

// Supported wire formats.
const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// FormatFromContentType maps a content type to a wire format.
// Returns false for content types that are neither JSON nor XML.
func FormatFromContentType(contentType string) (Format, bool) {
	switch {
	case strings.Contains(contentType, "json"):
		return FormatJSON, true
	case strings.Contains(contentType, "xml"):
		return FormatXML, true
	default:
		return "", false
	}
}
