package igpublisher

// IssueSeverity represents the severity of a validation issue.
// Maps to OperationOutcome.issue.severity in FHIR.
type IssueSeverity string

const (
	// SeverityFatal indicates the artifact could not be processed at all.
	SeverityFatal IssueSeverity = "fatal"
	// SeverityError indicates a validation error that makes the artifact invalid.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a potential problem that should be reviewed.
	SeverityWarning IssueSeverity = "warning"
	// SeverityInformation indicates informational feedback.
	SeverityInformation IssueSeverity = "information"
)

// IssueType represents the type of validation issue.
// Maps to OperationOutcome.issue.code in FHIR.
type IssueType string

const (
	// IssueTypeInvalid indicates the content is invalid against the specification.
	IssueTypeInvalid IssueType = "invalid"
	// IssueTypeStructure indicates a structural issue.
	IssueTypeStructure IssueType = "structure"
	// IssueTypeRequired indicates a required element is missing.
	IssueTypeRequired IssueType = "required"
	// IssueTypeValue indicates an invalid value.
	IssueTypeValue IssueType = "value"
	// IssueTypeInvariant indicates an invariant violation.
	IssueTypeInvariant IssueType = "invariant"
	// IssueTypeProcessing indicates a processing error.
	IssueTypeProcessing IssueType = "processing"
	// IssueTypeNotFound indicates a referenced resource was not found.
	IssueTypeNotFound IssueType = "not-found"
	// IssueTypeNotSupported indicates the content is not supported.
	IssueTypeNotSupported IssueType = "not-supported"
	// IssueTypeInformational indicates informational content.
	IssueTypeInformational IssueType = "informational"
)

// Issue represents a single validation issue found in one artifact.
type Issue struct {
	// Severity of the issue (fatal, error, warning, information)
	Severity IssueSeverity `json:"severity"`

	// Code identifying the type of issue
	Code IssueType `json:"code"`

	// Diagnostics contains human-readable details about the issue
	Diagnostics string `json:"diagnostics,omitempty"`

	// Location contains path(s) to the element(s) in error
	Location []string `json:"location,omitempty"`

	// ConstraintKey is the invariant key (e.g., "dom-2") if this issue is a
	// constraint violation
	ConstraintKey string `json:"constraintKey,omitempty"`
}

// IsError returns true if this is an error or fatal issue.
func (i Issue) IsError() bool {
	return i.Severity == SeverityError || i.Severity == SeverityFatal
}

// IsWarning returns true if this is a warning.
func (i Issue) IsWarning() bool {
	return i.Severity == SeverityWarning
}

// String returns a human-readable representation of the issue.
func (i Issue) String() string {
	path := ""
	if len(i.Location) > 0 {
		path = " at " + i.Location[0]
	}
	return string(i.Severity) + ": " + i.Diagnostics + path
}

// IssueBuilder provides a fluent API for building issues.
type IssueBuilder struct {
	issue Issue
}

// NewIssue creates a new IssueBuilder.
func NewIssue(severity IssueSeverity, code IssueType) *IssueBuilder {
	return &IssueBuilder{
		issue: Issue{
			Severity: severity,
			Code:     code,
		},
	}
}

// Fatal creates a fatal issue.
func Fatal(code IssueType) *IssueBuilder {
	return NewIssue(SeverityFatal, code)
}

// Error creates an error issue.
func Error(code IssueType) *IssueBuilder {
	return NewIssue(SeverityError, code)
}

// Warning creates a warning issue.
func Warning(code IssueType) *IssueBuilder {
	return NewIssue(SeverityWarning, code)
}

// Info creates an informational issue.
func Info(code IssueType) *IssueBuilder {
	return NewIssue(SeverityInformation, code)
}

// Diagnostics sets the diagnostic message.
func (b *IssueBuilder) Diagnostics(msg string) *IssueBuilder {
	b.issue.Diagnostics = msg
	return b
}

// At sets the location path.
func (b *IssueBuilder) At(path string) *IssueBuilder {
	b.issue.Location = []string{path}
	return b
}

// Constraint sets the invariant key.
func (b *IssueBuilder) Constraint(key string) *IssueBuilder {
	b.issue.ConstraintKey = key
	return b
}

// Build returns the constructed issue.
func (b *IssueBuilder) Build() Issue {
	return b.issue
}
