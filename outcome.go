package igpublisher

import (
	"sync"
	"time"
)

// ValidationOutcome holds the issues found in one artifact together with a
// reference to that artifact. Outcomes accumulate across a validation pass
// into a Report.
type ValidationOutcome struct {
	// Name is the artifact's source locator.
	Name string `json:"name"`

	// Type is the artifact's resolved resource type, if any.
	Type ResourceType `json:"type,omitempty"`

	// Issues contains all issues found in the artifact.
	Issues []Issue `json:"issues,omitempty"`

	mu sync.Mutex
}

// NewValidationOutcome creates an outcome for the named artifact.
func NewValidationOutcome(name string) *ValidationOutcome {
	return &ValidationOutcome{Name: name}
}

// AddIssue appends an issue. Safe for concurrent use.
func (o *ValidationOutcome) AddIssue(issue Issue) {
	o.mu.Lock()
	o.Issues = append(o.Issues, issue)
	o.mu.Unlock()
}

// AddIssues appends multiple issues. Safe for concurrent use.
func (o *ValidationOutcome) AddIssues(issues []Issue) {
	if len(issues) == 0 {
		return
	}
	o.mu.Lock()
	o.Issues = append(o.Issues, issues...)
	o.mu.Unlock()
}

// HasErrors returns true if any issue is an error or fatal.
func (o *ValidationOutcome) HasErrors() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, issue := range o.Issues {
		if issue.IsError() {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error and fatal issues.
func (o *ValidationOutcome) ErrorCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, issue := range o.Issues {
		if issue.IsError() {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning issues.
func (o *ValidationOutcome) WarningCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, issue := range o.Issues {
		if issue.IsWarning() {
			n++
		}
	}
	return n
}

// Report aggregates the outcomes of one full validation pass.
type Report struct {
	// RunID identifies the publishing run that produced this report.
	RunID string `json:"runId"`

	// Guide is the implementation guide's name.
	Guide string `json:"guide,omitempty"`

	// Version is the FHIR release the run targeted.
	Version FHIRVersion `json:"fhirVersion,omitempty"`

	// Generated is when the report was produced.
	Generated time.Time `json:"generated"`

	// Outcomes holds one entry per artifact, in manifest order.
	Outcomes []*ValidationOutcome `json:"outcomes"`

	mu sync.Mutex
}

// NewReport creates an empty report for the given run.
func NewReport(runID string) *Report {
	return &Report{RunID: runID, Generated: time.Now()}
}

// Add appends an outcome to the report.
func (r *Report) Add(o *ValidationOutcome) {
	r.mu.Lock()
	r.Outcomes = append(r.Outcomes, o)
	r.mu.Unlock()
}

// Reset clears all outcomes, keeping the run identity.
func (r *Report) Reset() {
	r.mu.Lock()
	r.Outcomes = r.Outcomes[:0]
	r.Generated = time.Now()
	r.mu.Unlock()
}

// ErrorCount returns the total number of error and fatal issues.
func (r *Report) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.Outcomes {
		n += o.ErrorCount()
	}
	return n
}

// WarningCount returns the total number of warning issues.
func (r *Report) WarningCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.Outcomes {
		n += o.WarningCount()
	}
	return n
}

// HasErrors returns true if any artifact has an error or fatal issue.
func (r *Report) HasErrors() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.Outcomes {
		if o.HasErrors() {
			return true
		}
	}
	return false
}
