package load

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	igp "github.com/gofhir/igpublisher"
	"github.com/gofhir/igpublisher/fetch"
	"github.com/gofhir/igpublisher/registry"
	"github.com/gofhir/igpublisher/validate"
)

// Loader validates, types, and registers conformance resources in
// dependency order: naming systems first, then code systems, value
// sets, and so on through structure maps. Artifacts outside the
// conformance categories are left for rendering only.
type Loader struct {
	registry  *registry.Registry
	validator *validate.Adapter
	log       *slog.Logger
}

// NewLoader creates a loader over the given registry.
func NewLoader(reg *registry.Registry, validator *validate.Adapter, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{registry: reg, validator: validator, log: log}
}

// Load processes every conformance artifact in order. Content problems
// stay on the artifact's outcome; the error return means the run itself
// cannot proceed.
func (l *Loader) Load(ctx context.Context, files []*fetch.FetchedFile) error {
	for _, resourceType := range igp.LoadOrder {
		for _, f := range files {
			if f.Type != resourceType {
				continue
			}
			if err := l.loadOne(ctx, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Loader) loadOne(ctx context.Context, f *fetch.FetchedFile) error {
	// Validation builds the element tree; a file kept from an earlier
	// run arrives with its tree already in place.
	if f.Element == nil && f.Outcome == nil {
		if err := l.validator.Validate(ctx, f); err != nil {
			return err
		}
	}
	if f.Element == nil {
		// Malformed content: the outcome already says why.
		return nil
	}

	if f.Resource == nil {
		res, err := wrap(f)
		if err != nil {
			f.Outcome.AddIssue(igp.Error(igp.IssueTypeProcessing).
				Diagnostics(err.Error()).
				Build())
			return nil
		}
		f.Resource = res
	}

	res, ok := f.Resource.(registry.Resource)
	if !ok || res.URL() == "" {
		return nil
	}
	if err := l.registry.Register(res); err != nil {
		if errors.Is(err, registry.ErrDuplicateURL) {
			f.Outcome.AddIssue(igp.Error(igp.IssueTypeInvalid).
				Diagnostics(fmt.Sprintf("duplicate canonical URL %s", res.URL())).
				Build())
			return nil
		}
		return fmt.Errorf("registering %s: %w", f.Name, err)
	}

	l.log.Debug("loaded resource", "name", f.Name, "type", f.Type, "url", res.URL())
	return nil
}
