package validate

import (
	"context"
	"fmt"
	"log/slog"

	igp "github.com/gofhir/igpublisher"
	"github.com/gofhir/igpublisher/fetch"
	"github.com/gofhir/igpublisher/service"
)

// Adapter drives the structural validator over fetched files, attaching
// each file's outcome, element tree, and resource id. The caller
// assembles outcomes into the run report; files that survive unchanged
// between runs keep their previous outcome.
type Adapter struct {
	validator service.InstanceValidator
	metrics   *igp.Metrics
	log       *slog.Logger
}

// NewAdapter creates a validation adapter around the given validator.
func NewAdapter(validator service.InstanceValidator, metrics *igp.Metrics, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{
		validator: validator,
		metrics:   metrics,
		log:       log,
	}
}

// Validate runs the validator over one file, attaching the outcome and
// the parsed element tree. The error return is reserved for files the
// validator could not act on at all; validation findings live in the
// outcome.
func (a *Adapter) Validate(ctx context.Context, f *fetch.FetchedFile) error {
	format, err := f.Format()
	if err != nil {
		return err
	}

	outcome := igp.NewValidationOutcome(f.Name)
	outcome.Type = f.Type
	f.Outcome = outcome

	root, issues, err := a.validator.Validate(ctx, f.Source, format)
	if err != nil {
		return fmt.Errorf("validating %s: %w", f.Name, err)
	}
	outcome.AddIssues(issues)

	if root != nil {
		f.Element = root
		f.ID = root.ChildValue("id")
	}

	valid := !outcome.HasErrors()
	if a.metrics != nil {
		a.metrics.RecordValidation(valid)
	}
	a.log.Debug("validated artifact",
		"name", f.Name,
		"type", f.Type,
		"errors", outcome.ErrorCount(),
		"warnings", outcome.WarningCount())
	return nil
}

// ValidateAll validates every file not yet examined this run or any
// earlier run. Files with an outcome keep it.
func (a *Adapter) ValidateAll(ctx context.Context, files []*fetch.FetchedFile) error {
	for _, f := range files {
		if f.Outcome != nil {
			continue
		}
		if err := a.Validate(ctx, f); err != nil {
			return err
		}
	}
	return nil
}
