package igpublisher

import (
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()

	if o.TerminologyServer != DefaultTerminologyServer {
		t.Errorf("TerminologyServer = %q; want %q", o.TerminologyServer, DefaultTerminologyServer)
	}
	if o.WatchInterval != DefaultWatchInterval {
		t.Errorf("WatchInterval = %v; want %v", o.WatchInterval, DefaultWatchInterval)
	}
	if o.FHIRVersion != R4 {
		t.Errorf("FHIRVersion = %s; want R4", o.FHIRVersion)
	}
	if !o.CheckInvariants {
		t.Error("CheckInvariants should default to true")
	}
	if o.Watch {
		t.Error("Watch should default to false")
	}
	if o.RenderWorkers != 1 {
		t.Errorf("RenderWorkers = %d; want the sequential default of 1", o.RenderWorkers)
	}
}

func TestOptions_Apply(t *testing.T) {
	o := DefaultOptions()
	for _, opt := range []Option{
		WithSpecPath("http://hl7.org/fhir"),
		WithTerminologyServer("http://tx.example.org"),
		WithWatch(true),
		WithWatchInterval(10 * time.Second),
		WithFHIRVersion(R5),
		WithInvariants(false),
		WithExpansionCacheSize(7),
		WithRenderWorkers(4),
	} {
		opt(o)
	}

	if o.SpecPath != "http://hl7.org/fhir" {
		t.Errorf("SpecPath = %q", o.SpecPath)
	}
	if o.TerminologyServer != "http://tx.example.org" {
		t.Errorf("TerminologyServer = %q", o.TerminologyServer)
	}
	if !o.Watch {
		t.Error("Watch should be true")
	}
	if o.WatchInterval != 10*time.Second {
		t.Errorf("WatchInterval = %v", o.WatchInterval)
	}
	if o.FHIRVersion != R5 {
		t.Errorf("FHIRVersion = %s", o.FHIRVersion)
	}
	if o.CheckInvariants {
		t.Error("CheckInvariants should be false")
	}
	if o.ExpansionCacheSize != 7 {
		t.Errorf("ExpansionCacheSize = %d", o.ExpansionCacheSize)
	}
	if o.RenderWorkers != 4 {
		t.Errorf("RenderWorkers = %d", o.RenderWorkers)
	}
}

func TestOptions_IgnoreInvalid(t *testing.T) {
	o := DefaultOptions()
	WithTerminologyServer("")(o)
	WithWatchInterval(0)(o)
	WithExpansionCacheSize(-1)(o)
	WithRenderWorkers(0)(o)

	if o.TerminologyServer != DefaultTerminologyServer {
		t.Error("empty terminology server should be ignored")
	}
	if o.WatchInterval != DefaultWatchInterval {
		t.Error("zero watch interval should be ignored")
	}
	if o.ExpansionCacheSize != 100 {
		t.Error("negative cache size should be ignored")
	}
	if o.RenderWorkers != 1 {
		t.Error("zero render workers should be ignored")
	}
}
