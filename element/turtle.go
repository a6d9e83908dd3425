package element

import (
	"bytes"
	"fmt"
	"strings"
)

// ComposeTurtle renders the tree as RDF Turtle in the FHIR shape: each
// element becomes a fhir:Parent.name predicate whose object is either a
// literal value node or a nested blank node. Output is deterministic
// for a given tree.
func ComposeTurtle(root *Element) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("no element tree to compose")
	}

	var buf bytes.Buffer
	buf.WriteString("@prefix fhir: <http://hl7.org/fhir/> .\n")
	buf.WriteString("@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .\n\n")
	fmt.Fprintf(&buf, "[a fhir:%s;\n", root.Name)
	buf.WriteString("  fhir:nodeRole fhir:treeRoot")
	composeTurtleChildren(&buf, root.Name, root.Children, "  ", false)
	buf.WriteString("] .\n")
	return buf.Bytes(), nil
}

// composeTurtleChildren writes one predicate per child. When first is
// set, the first predicate carries no leading semicolon; the caller has
// just opened a blank node.
func composeTurtleChildren(buf *bytes.Buffer, parent string, children []*Element, indent string, first bool) {
	for i, child := range children {
		if first && i == 0 {
			fmt.Fprintf(buf, "\n%sfhir:%s.%s ", indent, parent, child.Name)
		} else {
			fmt.Fprintf(buf, ";\n%sfhir:%s.%s ", indent, parent, child.Name)
		}
		if child.Kind == KindObject {
			buf.WriteString("[")
			if len(child.Children) > 0 {
				composeTurtleChildren(buf, child.Name, child.Children, indent+"  ", true)
				buf.WriteString("\n" + indent)
			}
			buf.WriteString("]")
			continue
		}
		fmt.Fprintf(buf, "[ fhir:value %s]", turtleLiteral(child))
	}
}

// turtleLiteral renders a primitive as a Turtle literal. Numbers and
// booleans stay bare; everything else is a quoted string.
func turtleLiteral(e *Element) string {
	switch e.Kind {
	case KindNumber, KindBool:
		return e.Value
	default:
		return `"` + turtleEscaper.Replace(e.Value) + `"`
	}
}

var turtleEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)
