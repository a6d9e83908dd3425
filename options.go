package igpublisher

import "time"

// Option configures a publishing run.
type Option func(*Options)

// Options holds all configuration for a publishing run.
type Options struct {
	// SpecPath is the location of the FHIR specification relative to the
	// published guide, used when resolving links to core definitions.
	SpecPath string

	// TerminologyServer is the base URL of the terminology service used
	// for value set expansion.
	TerminologyServer string

	// Watch keeps the publisher running, re-building whenever guide
	// sources change.
	Watch bool

	// WatchInterval is the poll interval in watch mode.
	WatchInterval time.Duration

	// FHIRVersion selects the FHIR release the guide targets.
	FHIRVersion FHIRVersion

	// CheckInvariants enables evaluation of the universal DomainResource
	// invariants during validation.
	CheckInvariants bool

	// ExpansionCacheSize bounds the value set expansion cache.
	ExpansionCacheSize int

	// RenderWorkers is the number of goroutines rendering artifacts.
	// Artifacts are independent during render; 1 keeps the phase
	// strictly sequential in manifest order.
	RenderWorkers int
}

// DefaultTerminologyServer is used when no terminology server is configured.
const DefaultTerminologyServer = "http://tx.fhir.org/r4"

// DefaultWatchInterval is the poll interval used in watch mode when none
// is configured.
const DefaultWatchInterval = 5 * time.Second

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		TerminologyServer:  DefaultTerminologyServer,
		WatchInterval:      DefaultWatchInterval,
		FHIRVersion:        R4,
		CheckInvariants:    true,
		ExpansionCacheSize: 100,
		RenderWorkers:      1,
	}
}

// WithSpecPath sets the FHIR specification location used for links.
func WithSpecPath(path string) Option {
	return func(o *Options) {
		o.SpecPath = path
	}
}

// WithTerminologyServer sets the terminology service address.
func WithTerminologyServer(url string) Option {
	return func(o *Options) {
		if url != "" {
			o.TerminologyServer = url
		}
	}
}

// WithWatch enables watch mode.
func WithWatch(watch bool) Option {
	return func(o *Options) {
		o.Watch = watch
	}
}

// WithWatchInterval sets the watch-mode poll interval.
func WithWatchInterval(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.WatchInterval = d
		}
	}
}

// WithFHIRVersion sets the targeted FHIR release.
func WithFHIRVersion(v FHIRVersion) Option {
	return func(o *Options) {
		o.FHIRVersion = v
	}
}

// WithInvariants enables or disables DomainResource invariant checking.
func WithInvariants(enable bool) Option {
	return func(o *Options) {
		o.CheckInvariants = enable
	}
}

// WithExpansionCacheSize bounds the value set expansion cache.
func WithExpansionCacheSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.ExpansionCacheSize = n
		}
	}
}

// WithRenderWorkers sets the number of goroutines used for rendering.
func WithRenderWorkers(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.RenderWorkers = n
		}
	}
}
