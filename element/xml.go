package element

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// XHTMLNamespace is the namespace of narrative content.
const XHTMLNamespace = "http://www.w3.org/1999/xhtml"

// fhirNamespace is the XML namespace of FHIR content.
const fhirNamespace = "http://hl7.org/fhir"

// ParseXML parses FHIR XML content into an element tree. The decoder is
// strict and performs no entity expansion or external DTD resolution;
// content carrying a DOCTYPE declaration is rejected.
func ParseXML(data []byte) (*Element, error) {
	dec := newSecureDecoder(data)

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.Directive:
			if strings.HasPrefix(strings.TrimSpace(string(t)), "DOCTYPE") {
				return nil, fmt.Errorf("invalid XML: DOCTYPE declarations are not allowed")
			}
		case xml.StartElement:
			if t.Name.Space != fhirNamespace {
				return nil, fmt.Errorf("root element is not in the FHIR namespace: %s", t.Name.Space)
			}
			root := &Element{Name: t.Name.Local, Kind: KindObject}
			if err := parseXMLChildren(dec, t, root); err != nil {
				return nil, err
			}
			return root, nil
		}
	}
}

// newSecureDecoder returns a decoder hardened against entity injection:
// strict parsing, no custom entity map, no character set conversion.
func newSecureDecoder(data []byte) *xml.Decoder {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	dec.Entity = map[string]string{}
	return dec
}

func parseXMLChildren(dec *xml.Decoder, start xml.StartElement, parent *Element) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("invalid XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			if t.Name.Space == XHTMLNamespace && t.Name.Local == "div" {
				raw, err := rawXHTML(dec, t)
				if err != nil {
					return err
				}
				parent.Children = append(parent.Children, &Element{Name: "div", Kind: KindXHTML, Value: raw})
				continue
			}

			child := &Element{Name: t.Name.Local, Kind: KindObject}
			for _, a := range t.Attr {
				if a.Name.Local == "value" {
					child.Kind = KindString
					child.Value = a.Value
				}
			}
			parent.Children = append(parent.Children, child)
			if err := parseXMLChildren(dec, t, child); err != nil {
				return err
			}
			if child.Kind == KindString && len(child.Children) > 0 {
				// value attribute plus children: treat as object that
				// happens to carry a value
				child.Kind = KindObject
			}
		}
	}
}

// rawXHTML re-serializes a narrative div, including the div tag itself,
// so the tree carries the complete fragment the way FHIR JSON does.
func rawXHTML(dec *xml.Decoder, start xml.StartElement) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(`<div xmlns="` + XHTMLNamespace + `"`)
	for _, a := range start.Attr {
		if a.Name.Local == "xmlns" || a.Name.Space == "xmlns" {
			continue
		}
		fmt.Fprintf(&buf, ` %s="%s"`, a.Name.Local, escapeAttr(a.Value))
	}
	buf.WriteString(">")

	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("invalid narrative: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			buf.WriteString("<" + t.Name.Local)
			for _, a := range t.Attr {
				if a.Name.Local == "xmlns" || a.Name.Space == "xmlns" {
					continue
				}
				fmt.Fprintf(&buf, ` %s="%s"`, a.Name.Local, escapeAttr(a.Value))
			}
			buf.WriteString(">")
		case xml.EndElement:
			depth--
			if depth > 0 {
				buf.WriteString("</" + t.Name.Local + ">")
			}
		case xml.CharData:
			xml.EscapeText(&buf, t)
		}
	}
	buf.WriteString("</div>")
	return buf.String(), nil
}

// ComposeXML renders the tree as pretty-printed FHIR XML. Output is
// deterministic: children appear in tree order with two-space indent.
func ComposeXML(root *Element) ([]byte, error) {
	if root == nil || root.Name == "" {
		return nil, fmt.Errorf("no resource to compose")
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	fmt.Fprintf(&buf, "<%s xmlns=%q>\n", root.Name, fhirNamespace)
	composeXMLChildren(&buf, root.Children, "  ")
	fmt.Fprintf(&buf, "</%s>\n", root.Name)
	return buf.Bytes(), nil
}

func composeXMLChildren(buf *bytes.Buffer, children []*Element, indent string) {
	for _, c := range children {
		switch c.Kind {
		case KindXHTML:
			buf.WriteString(indent + c.Value + "\n")
		case KindObject:
			if len(c.Children) == 0 {
				fmt.Fprintf(buf, "%s<%s/>\n", indent, c.Name)
				continue
			}
			fmt.Fprintf(buf, "%s<%s>\n", indent, c.Name)
			composeXMLChildren(buf, c.Children, indent+"  ")
			fmt.Fprintf(buf, "%s</%s>\n", indent, c.Name)
		default:
			fmt.Fprintf(buf, "%s<%s value=\"%s\"/>\n", indent, c.Name, escapeAttr(c.Value))
		}
	}
}

// escapeAttr escapes a string for use inside a double-quoted attribute.
func escapeAttr(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return r.Replace(s)
}
