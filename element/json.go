package element

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON parses FHIR JSON content into an element tree. The root
// element's Name is taken from the resourceType discriminator; the
// discriminator itself does not appear as a child.
//
// Primitive extensions (underscore-prefixed properties) are not carried
// into the tree.
func ParseJSON(data []byte) (*Element, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("invalid JSON: content is not an object")
	}

	root := &Element{Kind: KindObject}
	if err := parseJSONObject(dec, root); err != nil {
		return nil, err
	}

	// Hoist the discriminator into the root name.
	for i, c := range root.Children {
		if c.Name == "resourceType" {
			root.Name = c.Value
			root.Children = append(root.Children[:i], root.Children[i+1:]...)
			break
		}
	}
	if root.Name == "" {
		return nil, fmt.Errorf("no resourceType property")
	}
	return root, nil
}

func parseJSONObject(dec *json.Decoder, parent *Element) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return nil
		}

		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("invalid JSON: unexpected token %v", tok)
		}
		if strings.HasPrefix(key, "_") {
			if err := skipJSONValue(dec); err != nil {
				return err
			}
			continue
		}
		if err := parseJSONValue(dec, parent, key, false); err != nil {
			return err
		}
	}
}

func parseJSONValue(dec *json.Decoder, parent *Element, name string, list bool) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			child := &Element{Name: name, Kind: KindObject, List: list}
			parent.Children = append(parent.Children, child)
			return parseJSONObject(dec, child)
		case '[':
			for dec.More() {
				if err := parseJSONValue(dec, parent, name, true); err != nil {
					return err
				}
			}
			// consume ']'
			if _, err := dec.Token(); err != nil {
				return fmt.Errorf("invalid JSON: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("invalid JSON: unexpected delimiter %v", v)
		}
	case string:
		kind := KindString
		if name == "div" {
			kind = KindXHTML
		}
		parent.Children = append(parent.Children, &Element{Name: name, Kind: kind, Value: v, List: list})
	case json.Number:
		parent.Children = append(parent.Children, &Element{Name: name, Kind: KindNumber, Value: v.String(), List: list})
	case bool:
		val := "false"
		if v {
			val = "true"
		}
		parent.Children = append(parent.Children, &Element{Name: name, Kind: KindBool, Value: val, List: list})
	case nil:
		// null is tolerated and dropped
	default:
		return fmt.Errorf("invalid JSON: unexpected token %v", tok)
	}
	return nil
}

// skipJSONValue consumes one complete JSON value.
func skipJSONValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	d, ok := tok.(json.Delim)
	if !ok {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err = dec.Token()
		if err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		if dd, ok := tok.(json.Delim); ok {
			switch dd {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	_ = d
	return nil
}

// ComposeJSON renders the tree as pretty-printed FHIR JSON. Output is
// deterministic: children appear in tree order, objects are two-space
// indented, and the resourceType discriminator comes first.
func ComposeJSON(root *Element) ([]byte, error) {
	if root == nil || root.Name == "" {
		return nil, fmt.Errorf("no resource to compose")
	}
	var buf bytes.Buffer
	buf.WriteString("{\n")
	fmt.Fprintf(&buf, "  \"resourceType\": %s", quoteJSON(root.Name))
	if len(root.Children) > 0 {
		buf.WriteString(",\n")
	} else {
		buf.WriteString("\n")
	}
	if err := composeJSONChildren(&buf, root.Children, "  "); err != nil {
		return nil, err
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func composeJSONChildren(buf *bytes.Buffer, children []*Element, indent string) error {
	groups := groupChildren(children)
	for i, g := range groups {
		fmt.Fprintf(buf, "%s%s: ", indent, quoteJSON(g[0].Name))
		if len(g) > 1 || g[0].List {
			buf.WriteString("[\n")
			for j, c := range g {
				buf.WriteString(indent + "  ")
				if err := composeJSONValue(buf, c, indent+"  "); err != nil {
					return err
				}
				if j < len(g)-1 {
					buf.WriteString(",")
				}
				buf.WriteString("\n")
			}
			buf.WriteString(indent + "]")
		} else {
			if err := composeJSONValue(buf, g[0], indent); err != nil {
				return err
			}
		}
		if i < len(groups)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	return nil
}

func composeJSONValue(buf *bytes.Buffer, e *Element, indent string) error {
	switch e.Kind {
	case KindObject:
		if len(e.Children) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		if err := composeJSONChildren(buf, e.Children, indent+"  "); err != nil {
			return err
		}
		buf.WriteString(indent + "}")
	case KindNumber, KindBool:
		buf.WriteString(e.Value)
	default:
		buf.WriteString(quoteJSON(e.Value))
	}
	return nil
}

// groupChildren batches same-named children together, preserving the
// order of first appearance.
func groupChildren(children []*Element) [][]*Element {
	var order []string
	byName := make(map[string][]*Element)
	for _, c := range children {
		if _, seen := byName[c.Name]; !seen {
			order = append(order, c.Name)
		}
		byName[c.Name] = append(byName[c.Name], c)
	}
	groups := make([][]*Element, 0, len(order))
	for _, name := range order {
		groups = append(groups, byName[name])
	}
	return groups
}

func quoteJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
