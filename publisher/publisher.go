// Package publisher drives one publishing run end to end: load the
// guide's artifacts, validate them, and render the output set. In
// watch mode it keeps running, repeating the pass whenever a source
// changes.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofhir/fhir/r4"
	"github.com/google/uuid"

	igp "github.com/gofhir/igpublisher"
	"github.com/gofhir/igpublisher/classify"
	"github.com/gofhir/igpublisher/fetch"
	"github.com/gofhir/igpublisher/ig"
	"github.com/gofhir/igpublisher/load"
	"github.com/gofhir/igpublisher/narrative"
	"github.com/gofhir/igpublisher/registry"
	"github.com/gofhir/igpublisher/render"
	"github.com/gofhir/igpublisher/service"
	"github.com/gofhir/igpublisher/terminology"
	"github.com/gofhir/igpublisher/track"
	"github.com/gofhir/igpublisher/validate"
	"github.com/gofhir/igpublisher/worker"
)

// Publisher is the run controller. It owns the shared mutable state of
// a run (the change tracker and the resource registry) and hands it
// phase by phase to the loader, the validator, and the renderer.
type Publisher struct {
	controlPath string
	out         string
	opts        *igp.Options

	fetcher    fetch.Fetcher
	tracker    *track.Tracker
	registry   *registry.Registry
	validator  *validate.Adapter
	loader     *load.Loader
	pipeline   *render.Pipeline
	resolver   *linkResolver
	expansions *terminology.CachedExpander
	metrics    *igp.Metrics
	log        *slog.Logger

	runID     string
	state     State
	guidePath string
	guide     *ig.Guide
	report    *igp.Report
}

// New creates a publisher for the guide named by the control file,
// writing outputs under out.
func New(controlPath, out string, opts ...igp.Option) (*Publisher, error) {
	options := igp.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	log := slog.Default()
	metrics := igp.NewMetrics()
	reg := registry.New()

	adapter := validate.NewAdapter(validate.NewValidator(options.CheckInvariants), metrics, log)
	resolver := newLinkResolver(options.SpecPath)

	expander := terminology.NewCachedExpander(
		&fallbackExpander{
			local:  terminology.NewInMemoryExpander(terminology.RegistrySource{Registry: reg}),
			remote: terminology.NewClient(options.TerminologyServer),
		},
		options.ExpansionCacheSize,
		metrics,
	)

	runID := uuid.NewString()
	p := &Publisher{
		controlPath: controlPath,
		out:         out,
		opts:        options,
		fetcher:     fetch.NewLocalFetcher(),
		tracker:     track.NewTracker(),
		registry:    reg,
		validator:   adapter,
		loader:      load.NewLoader(reg, adapter, log),
		pipeline:    render.NewPipeline(out, resolver, expander, narrative.NewGenerator(), metrics, log),
		resolver:    resolver,
		expansions:  expander,
		metrics:     metrics,
		log:         log,
		runID:       runID,
		state:       StateInitializing,
		report:      igp.NewReport(runID),
	}
	p.report.Version = options.FHIRVersion
	return p, nil
}

// UseFetcher replaces the default filesystem fetcher. Must be called
// before Execute.
func (p *Publisher) UseFetcher(f fetch.Fetcher) {
	p.fetcher = f
}

// UseLogger replaces the default logger. Must be called before Execute.
func (p *Publisher) UseLogger(log *slog.Logger) {
	p.log = log
	p.validator = validate.NewAdapter(validate.NewValidator(p.opts.CheckInvariants), p.metrics, log)
	p.loader = load.NewLoader(p.registry, p.validator, log)
	p.pipeline.Log = log
}

// State returns the controller's current lifecycle state.
func (p *Publisher) State() State {
	return p.state
}

// Report returns the most recent pass's validation report.
func (p *Publisher) Report() *igp.Report {
	return p.report
}

// Metrics returns the publisher's metrics.
func (p *Publisher) Metrics() *igp.Metrics {
	return p.metrics
}

// Execute runs the publisher: one pass in single-shot mode, or a pass
// followed by the watch loop when watch mode is configured. The
// context cancels the watch loop between and during sleeps.
func (p *Publisher) Execute(ctx context.Context) error {
	if err := p.initialize(); err != nil {
		return err
	}

	if _, err := p.runOnce(ctx); err != nil {
		return err
	}

	if !p.opts.Watch {
		p.state = StateIdle
		return nil
	}
	return p.watch(ctx)
}

// initialize reads the control file and prepares the output tree. It
// must complete before any load.
func (p *Publisher) initialize() error {
	ctl, err := ig.LoadControl(p.controlPath)
	if err != nil {
		return err
	}
	p.guidePath = ctl.GuidePath(p.controlPath)

	if err := os.MkdirAll(p.out, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := p.pipeline.WriteAssets(); err != nil {
		return err
	}

	p.log.Info("publisher initialized",
		"run", p.runID,
		"guide", p.guidePath,
		"out", p.out)
	return nil
}

// runOnce performs one load, validate, render pass. It reports whether
// any source changed; an unchanged pass skips validation and rendering
// entirely, leaving the previous outputs in place.
func (p *Publisher) runOnce(ctx context.Context) (bool, error) {
	start := time.Now()

	changed, err := p.loadPhase(ctx)
	if err != nil {
		return false, err
	}
	p.state = StateLoaded
	if !changed {
		p.log.Debug("no changes, nothing to build")
		p.metrics.RecordRun(time.Since(start), false)
		return false, nil
	}

	if err := p.validatePhase(ctx); err != nil {
		return true, err
	}
	p.state = StateValidated

	if err := p.renderPhase(ctx); err != nil {
		return true, err
	}
	p.state = StateRendered

	p.metrics.RecordRun(time.Since(start), true)
	p.log.Info("pass complete",
		"run", p.runID,
		"artifacts", len(p.tracker.Files()),
		"errors", p.report.ErrorCount(),
		"warnings", p.report.WarningCount(),
		"elapsed", time.Since(start))
	return true, nil
}

// loadPhase fetches and classifies every declared artifact, then loads
// the conformance categories in dependency order. The registry is
// rebuilt from scratch whenever anything changed, so no stale
// cross-references survive an edit.
func (p *Publisher) loadPhase(ctx context.Context) (bool, error) {
	p.tracker.BeginRun()

	guideFile, err := p.fetcher.Fetch(p.guidePath)
	if err != nil {
		return false, err
	}
	p.metrics.RecordFetch()
	changed := p.tracker.NoteFile(track.RootKey, guideFile)
	guideFile = p.tracker.Known(track.RootKey)

	if guideFile.Element == nil {
		guideFile.Type = igp.ResourceImplementationGuide
		if err := p.validator.Validate(ctx, guideFile); err != nil {
			return false, err
		}
		if guideFile.Element == nil {
			return false, fmt.Errorf("guide %s could not be parsed: %s",
				p.guidePath, firstDiagnostic(guideFile.Outcome))
		}
	}
	guide, err := ig.ParseGuide(guideFile.Element)
	if err != nil {
		return false, err
	}
	p.guide = guide

	for _, ref := range guide.Refs() {
		f, err := p.fetcher.FetchRelative(ref.Source, guideFile)
		if err != nil {
			return false, fmt.Errorf("fetching %s: %w", ref.Source, err)
		}
		p.metrics.RecordFetch()
		if p.tracker.NoteFile(ref, f) {
			changed = true
		}
		p.classifyFile(p.tracker.Known(ref))
	}

	if !changed {
		return false, nil
	}

	// A changed source may invalidate anything downstream of it, so the
	// registry and the expansion cache are rebuilt from scratch.
	p.registry.DropAll()
	p.expansions.Clear()
	if err := p.loader.Load(ctx, p.tracker.Files()); err != nil {
		return true, err
	}

	p.resolver.reset()
	for _, f := range p.tracker.Files() {
		if res, ok := f.Resource.(registry.Resource); ok {
			p.resolver.add(res.URL(), f.ID)
		}
	}
	return true, nil
}

// classifyFile resolves the file's resource type. A file that cannot
// be classified gets an error outcome instead of aborting the batch:
// it is reported, skipped by the later phases, and its siblings are
// unaffected.
func (p *Publisher) classifyFile(f *fetch.FetchedFile) {
	if f.Type != "" || f.Outcome != nil {
		return
	}
	out := classify.Classify(f.Name, f.Source, f.ContentType)
	p.metrics.RecordClassification(out.Status == classify.Classified)

	if out.Status == classify.Classified {
		f.Type = out.Type
		return
	}

	outcome := igp.NewValidationOutcome(f.Name)
	switch out.Status {
	case classify.Unknown:
		outcome.AddIssue(igp.Error(igp.IssueTypeNotSupported).
			Diagnostics(fmt.Sprintf("unable to classify %s: content is not a recognized FHIR resource", f.Name)).
			Build())
	case classify.Unsupported:
		outcome.AddIssue(igp.Error(igp.IssueTypeNotSupported).
			Diagnostics(out.Err.Error()).
			Build())
	default:
		outcome.AddIssue(igp.Fatal(igp.IssueTypeStructure).
			Diagnostics(out.Err.Error()).
			Build())
	}
	f.Outcome = outcome
	p.log.Warn("artifact not classified", "name", f.Name, "status", out.Status.String())
}

// validatePhase validates every artifact not yet examined and rebuilds
// the run report in manifest order. Content problems never abort the
// batch.
func (p *Publisher) validatePhase(ctx context.Context) error {
	if err := p.validator.ValidateAll(ctx, p.tracker.Files()); err != nil {
		return err
	}

	p.report.Reset()
	p.report.Guide = p.guide.Name
	for _, f := range p.tracker.Files() {
		if f.Outcome != nil {
			p.report.Add(f.Outcome)
		}
	}
	return nil
}

// renderPhase renders every parseable artifact and writes the
// validation report. A render failure is scoped to its artifact: it is
// recorded on that artifact's outcome and the batch carries on.
func (p *Publisher) renderPhase(ctx context.Context) error {
	var (
		jobs    []worker.Job
		subject []*fetch.FetchedFile
	)
	for _, f := range p.tracker.Files() {
		if f.Element == nil {
			// classification or parse failure, already reported
			continue
		}
		f := f
		jobs = append(jobs, func(ctx context.Context) error {
			return p.pipeline.Render(ctx, f)
		})
		subject = append(subject, f)
	}

	pool := worker.NewPool(p.opts.RenderWorkers)
	for i, err := range pool.Run(ctx, jobs) {
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f := subject[i]
		if f.Outcome != nil {
			f.Outcome.AddIssue(igp.Error(igp.IssueTypeProcessing).
				Diagnostics(fmt.Sprintf("rendering failed: %v", err)).
				Build())
		}
		p.log.Warn("render failed", "name", f.Name, "error", err)
	}

	return p.writeReport()
}

// writeReport writes the aggregated validation report at the output
// root.
func (p *Publisher) writeReport() error {
	path := filepath.Join(p.out, "validation.html")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating validation report: %w", err)
	}
	defer f.Close()
	if err := validate.WriteReport(f, p.report); err != nil {
		return err
	}
	return nil
}

// firstDiagnostic summarizes an outcome for an error message.
func firstDiagnostic(o *igp.ValidationOutcome) string {
	if o == nil || len(o.Issues) == 0 {
		return "no diagnostic available"
	}
	return o.Issues[0].Diagnostics
}

// fallbackExpander tries the in-memory expander first, since the
// guide's own code systems are authoritative for its value sets, and
// falls back to the terminology server for compose rules that cannot
// be resolved locally.
type fallbackExpander struct {
	local  service.Expander
	remote service.Expander
}

var _ service.Expander = (*fallbackExpander)(nil)

func (e *fallbackExpander) Expand(ctx context.Context, vs *r4.ValueSet) (*r4.ValueSet, error) {
	expanded, err := e.local.Expand(ctx, vs)
	if err == nil {
		return expanded, nil
	}
	if e.remote == nil {
		return nil, err
	}
	return e.remote.Expand(ctx, vs)
}
