// Package classify determines the resource type of raw artifact content.
//
// Classification never panics and never throws away sibling artifacts:
// every attempt yields an explicit Outcome that the controller inspects
// to decide between per-artifact skip and batch abort.
package classify

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"

	igp "github.com/gofhir/igpublisher"
)

// Status is the result category of a classification attempt.
type Status int

const (
	// Classified means the resource type was resolved.
	Classified Status = iota
	// Unknown means the content was readable but not recognizably FHIR
	// (wrong XML namespace, unrecognized type name).
	Unknown
	// Unsupported means the type was resolved but is not accepted
	// (batched Bundle containers).
	Unsupported
	// Malformed means the content could not be read at all.
	Malformed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Classified:
		return "classified"
	case Unknown:
		return "unknown"
	case Unsupported:
		return "unsupported"
	case Malformed:
		return "malformed"
	default:
		return "invalid"
	}
}

// Outcome is the result of classifying one artifact.
type Outcome struct {
	Status Status
	Type   igp.ResourceType

	// Err carries diagnostic detail for Unsupported and Malformed
	// outcomes, wrapped with the artifact's name.
	Err error
}

// Classify determines the resource type of the named artifact from its
// content bytes and content-type hint.
func Classify(name string, source []byte, contentType string) Outcome {
	var out Outcome
	switch {
	case strings.Contains(contentType, "json"):
		out = fromJSON(source)
	case strings.Contains(contentType, "xml"):
		out = fromXML(source)
	default:
		out = Outcome{Status: Malformed, Err: fmt.Errorf("unable to determine file type")}
	}

	if out.Status == Classified && out.Type == igp.ResourceBundle {
		out = Outcome{
			Status: Unsupported,
			Type:   igp.ResourceBundle,
			Err:    fmt.Errorf("Bundles are not supported"),
		}
	}

	if out.Err != nil {
		out.Err = fmt.Errorf("unable to classify %s: %w", name, out.Err)
	}
	return out
}

// fromJSON reads the resourceType discriminator from a generic document.
func fromJSON(source []byte) Outcome {
	var probe struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(source, &probe); err != nil {
		return Outcome{Status: Malformed, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if probe.ResourceType == "" {
		return Outcome{Status: Unknown}
	}
	typ, ok := igp.ParseResourceType(probe.ResourceType)
	if !ok {
		return Outcome{Status: Unknown}
	}
	return Outcome{Status: Classified, Type: typ}
}

// fromXML reads the root element's namespace and local name. Entity
// expansion and external DTD resolution are disabled; DOCTYPE content
// is rejected outright.
func fromXML(source []byte) Outcome {
	dec := xml.NewDecoder(bytes.NewReader(source))
	dec.Strict = true
	dec.Entity = map[string]string{}

	for {
		tok, err := dec.Token()
		if err != nil {
			return Outcome{Status: Malformed, Err: fmt.Errorf("invalid XML: %w", err)}
		}
		switch t := tok.(type) {
		case xml.Directive:
			if strings.HasPrefix(strings.TrimSpace(string(t)), "DOCTYPE") {
				return Outcome{Status: Malformed, Err: fmt.Errorf("DOCTYPE declarations are not allowed")}
			}
		case xml.StartElement:
			if t.Name.Space != igp.FHIRNamespace {
				return Outcome{Status: Unknown}
			}
			typ, ok := igp.ParseResourceType(t.Name.Local)
			if !ok {
				return Outcome{Status: Unknown}
			}
			return Outcome{Status: Classified, Type: typ}
		}
	}
}
