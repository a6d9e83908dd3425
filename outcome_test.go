package igpublisher

import (
	"sync"
	"testing"
)

func TestValidationOutcome_Counts(t *testing.T) {
	o := NewValidationOutcome("valueset-example.json")

	o.AddIssue(Issue{Severity: SeverityWarning, Code: IssueTypeInformational})
	if o.HasErrors() {
		t.Error("outcome should not have errors after a warning")
	}

	o.AddIssue(Issue{Severity: SeverityError, Code: IssueTypeStructure})
	o.AddIssue(Issue{Severity: SeverityFatal, Code: IssueTypeNotSupported})

	if !o.HasErrors() {
		t.Error("outcome should have errors")
	}
	if got := o.ErrorCount(); got != 2 {
		t.Errorf("ErrorCount() = %d; want 2", got)
	}
	if got := o.WarningCount(); got != 1 {
		t.Errorf("WarningCount() = %d; want 1", got)
	}
}

func TestValidationOutcome_ConcurrentAdd(t *testing.T) {
	o := NewValidationOutcome("x")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				o.AddIssue(Issue{Severity: SeverityError, Code: IssueTypeInvalid})
			}
		}()
	}
	wg.Wait()

	if got := o.ErrorCount(); got != 1000 {
		t.Errorf("ErrorCount() = %d; want 1000", got)
	}
}

func TestReport_Aggregation(t *testing.T) {
	r := NewReport("run-1")

	a := NewValidationOutcome("a.json")
	a.AddIssue(Issue{Severity: SeverityError, Code: IssueTypeInvalid})
	b := NewValidationOutcome("b.xml")
	b.AddIssue(Issue{Severity: SeverityWarning, Code: IssueTypeValue})

	r.Add(a)
	r.Add(b)

	if len(r.Outcomes) != 2 {
		t.Fatalf("len(Outcomes) = %d; want 2", len(r.Outcomes))
	}
	if got := r.ErrorCount(); got != 1 {
		t.Errorf("ErrorCount() = %d; want 1", got)
	}
	if got := r.WarningCount(); got != 1 {
		t.Errorf("WarningCount() = %d; want 1", got)
	}
	if !r.HasErrors() {
		t.Error("report should have errors")
	}
}

func TestReport_Reset(t *testing.T) {
	r := NewReport("run-1")
	r.Add(NewValidationOutcome("a.json"))
	r.Reset()

	if len(r.Outcomes) != 0 {
		t.Errorf("len(Outcomes) after Reset = %d; want 0", len(r.Outcomes))
	}
	if r.RunID != "run-1" {
		t.Errorf("RunID after Reset = %q; want run-1", r.RunID)
	}
}
