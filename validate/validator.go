// Package validate checks source artifacts structurally and produces
// the canonical element tree each downstream phase works from. Parsing
// and validation are one step: a file that cannot be parsed has no
// element tree, and a file with an element tree has been validated.
package validate

import (
	"context"
	"fmt"

	igp "github.com/gofhir/igpublisher"
	"github.com/gofhir/igpublisher/element"
	"github.com/gofhir/igpublisher/service"
)

// invariant is one DomainResource constraint checked against every
// artifact. Expressions evaluate to true when the constraint holds.
type invariant struct {
	key        string
	severity   igp.IssueSeverity
	expression string
	human      string
}

// domainInvariants are the base constraints every DomainResource
// carries, independent of profile.
var domainInvariants = []invariant{
	{
		key:        "dom-2",
		severity:   igp.SeverityError,
		expression: "contained.contained.empty()",
		human:      "if the resource is contained in another resource, it SHALL NOT contain nested resources",
	},
	{
		key:        "dom-3",
		severity:   igp.SeverityError,
		expression: "contained.where(id.empty()).empty()",
		human:      "contained resources SHALL have an id so they can be referenced",
	},
	{
		key:        "dom-4",
		severity:   igp.SeverityError,
		expression: "contained.meta.versionId.empty() and contained.meta.lastUpdated.empty()",
		human:      "if a resource is contained in another resource, it SHALL NOT have a meta.versionId or a meta.lastUpdated",
	},
	{
		key:        "dom-6",
		severity:   igp.SeverityWarning,
		expression: "text.div.exists()",
		human:      "a resource should have narrative for robust management",
	},
}

// Validator is the default structural validator. It parses content into
// the canonical element tree and optionally checks the base domain
// invariants via FHIRPath.
type Validator struct {
	fhirpath        *service.FHIRPathAdapter
	checkInvariants bool
}

// compile-time interface compliance check
var _ service.InstanceValidator = (*Validator)(nil)

// NewValidator creates a structural validator. When checkInvariants is
// set, the base domain invariants are evaluated against each artifact.
func NewValidator(checkInvariants bool) *Validator {
	return &Validator{
		fhirpath:        service.NewFHIRPathAdapter(),
		checkInvariants: checkInvariants,
	}
}

// Validate parses the source in the given format. Content problems are
// reported as issues with a nil tree; the error return is reserved for
// requests the validator cannot act on, such as an unknown format.
func (v *Validator) Validate(ctx context.Context, source []byte, format element.Format) (*element.Element, []igp.Issue, error) {
	var (
		root *element.Element
		err  error
	)
	switch format {
	case element.FormatJSON:
		root, err = element.ParseJSON(source)
	case element.FormatXML:
		root, err = element.ParseXML(source)
	default:
		return nil, nil, fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		issue := igp.Fatal(igp.IssueTypeStructure).
			Diagnostics(fmt.Sprintf("content could not be parsed: %v", err)).
			Build()
		return nil, []igp.Issue{issue}, nil
	}

	var issues []igp.Issue
	if v.checkInvariants {
		issues = append(issues, v.checkDomainInvariants(ctx, root)...)
	}
	return root, issues, nil
}

// checkDomainInvariants evaluates the base constraints against the
// parsed tree. An expression that fails to evaluate is skipped rather
// than reported: an engine limitation is not a content problem.
func (v *Validator) checkDomainInvariants(ctx context.Context, root *element.Element) []igp.Issue {
	jsonSource, err := element.ComposeJSON(root)
	if err != nil {
		return nil
	}

	var issues []igp.Issue
	for _, inv := range domainInvariants {
		ok, err := v.fhirpath.Evaluate(ctx, inv.expression, jsonSource)
		if err != nil || ok {
			continue
		}
		builder := igp.Warning(igp.IssueTypeInvariant)
		if inv.severity == igp.SeverityError {
			builder = igp.Error(igp.IssueTypeInvariant)
		}
		issues = append(issues, builder.
			Diagnostics(inv.human).
			Constraint(inv.key).
			At(root.Name).
			Build())
	}
	return issues
}
