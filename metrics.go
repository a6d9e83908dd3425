package igpublisher

import (
	"sync/atomic"
	"time"
)

// Metrics tracks publishing pipeline activity using lock-free atomic
// operations. All methods are safe for concurrent use.
type Metrics struct {
	// Run counts
	runsTotal   atomic.Uint64
	runsChanged atomic.Uint64

	// Run timing (stored as nanoseconds)
	runTimeTotal atomic.Uint64
	runTimeMin   atomic.Uint64
	runTimeMax   atomic.Uint64

	// Per-phase counts
	fetchesTotal        atomic.Uint64
	classificationsOK   atomic.Uint64
	classificationsBad  atomic.Uint64
	validationsTotal    atomic.Uint64
	validationsValid    atomic.Uint64
	rendersTotal        atomic.Uint64
	rendersFailed       atomic.Uint64
	expansionCacheHits  atomic.Uint64
	expansionCacheMiss  atomic.Uint64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	// Initialize min to max uint64 so the first value becomes the minimum
	m.runTimeMin.Store(^uint64(0))
	return m
}

// RecordRun records a completed pipeline pass.
func (m *Metrics) RecordRun(duration time.Duration, changed bool) {
	m.runsTotal.Add(1)
	if changed {
		m.runsChanged.Add(1)
	}

	ns := uint64(duration.Nanoseconds())
	m.runTimeTotal.Add(ns)

	for {
		old := m.runTimeMin.Load()
		if ns >= old {
			break
		}
		if m.runTimeMin.CompareAndSwap(old, ns) {
			break
		}
	}

	for {
		old := m.runTimeMax.Load()
		if ns <= old {
			break
		}
		if m.runTimeMax.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordFetch records a fetched artifact.
func (m *Metrics) RecordFetch() {
	m.fetchesTotal.Add(1)
}

// RecordClassification records a classification attempt.
func (m *Metrics) RecordClassification(ok bool) {
	if ok {
		m.classificationsOK.Add(1)
	} else {
		m.classificationsBad.Add(1)
	}
}

// RecordValidation records a validated artifact.
func (m *Metrics) RecordValidation(valid bool) {
	m.validationsTotal.Add(1)
	if valid {
		m.validationsValid.Add(1)
	}
}

// RecordRender records a rendered artifact.
func (m *Metrics) RecordRender(failed bool) {
	m.rendersTotal.Add(1)
	if failed {
		m.rendersFailed.Add(1)
	}
}

// RecordExpansionCacheHit records an expansion cache hit.
func (m *Metrics) RecordExpansionCacheHit() {
	m.expansionCacheHits.Add(1)
}

// RecordExpansionCacheMiss records an expansion cache miss.
func (m *Metrics) RecordExpansionCacheMiss() {
	m.expansionCacheMiss.Add(1)
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	RunsTotal          uint64
	RunsChanged        uint64
	RunTimeTotal       time.Duration
	RunTimeMin         time.Duration
	RunTimeMax         time.Duration
	RunTimeAvg         time.Duration
	Fetches            uint64
	ClassificationsOK  uint64
	ClassificationsBad uint64
	Validations        uint64
	ValidationsValid   uint64
	Renders            uint64
	RendersFailed      uint64
	ExpansionCacheHits uint64
	ExpansionCacheMiss uint64
}

// Snapshot returns a consistent-enough copy of the current metrics.
func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		RunsTotal:          m.runsTotal.Load(),
		RunsChanged:        m.runsChanged.Load(),
		RunTimeTotal:       time.Duration(m.runTimeTotal.Load()),
		RunTimeMax:         time.Duration(m.runTimeMax.Load()),
		Fetches:            m.fetchesTotal.Load(),
		ClassificationsOK:  m.classificationsOK.Load(),
		ClassificationsBad: m.classificationsBad.Load(),
		Validations:        m.validationsTotal.Load(),
		ValidationsValid:   m.validationsValid.Load(),
		Renders:            m.rendersTotal.Load(),
		RendersFailed:      m.rendersFailed.Load(),
		ExpansionCacheHits: m.expansionCacheHits.Load(),
		ExpansionCacheMiss: m.expansionCacheMiss.Load(),
	}

	if min := m.runTimeMin.Load(); min != ^uint64(0) {
		s.RunTimeMin = time.Duration(min)
	}
	if s.RunsTotal > 0 {
		s.RunTimeAvg = s.RunTimeTotal / time.Duration(s.RunsTotal)
	}
	return s
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.runsTotal.Store(0)
	m.runsChanged.Store(0)
	m.runTimeTotal.Store(0)
	m.runTimeMin.Store(^uint64(0))
	m.runTimeMax.Store(0)
	m.fetchesTotal.Store(0)
	m.classificationsOK.Store(0)
	m.classificationsBad.Store(0)
	m.validationsTotal.Store(0)
	m.validationsValid.Store(0)
	m.rendersTotal.Store(0)
	m.rendersFailed.Store(0)
	m.expansionCacheHits.Store(0)
	m.expansionCacheMiss.Store(0)
}
