// Package igpublisher builds publishable output from a FHIR Implementation
// Guide: the guide's source artifacts are fetched, type-classified, parsed
// into a canonical element tree, loaded in dependency order, validated, and
// rendered into alternate serializations and HTML fragments.
//
// # Quick Start
//
//	import (
//	    igp "github.com/gofhir/igpublisher"
//	    "github.com/gofhir/igpublisher/publisher"
//	)
//
//	pub, err := publisher.New("myig/ig.json", "out",
//	    igp.WithSpecPath("http://hl7.org/fhir"),
//	    igp.WithTerminologyServer("http://tx.fhir.org/r4"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := pub.Execute(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Pipeline
//
// One pass runs three phases, strictly in order:
//
//   - Load: fetch every declared artifact, classify its resource type,
//     and register conformance resources by canonical URL. Categories load
//     in a fixed dependency order (naming systems before code systems
//     before value sets, and so on) so that later categories can resolve
//     references to earlier ones.
//   - Validate: every artifact is structurally validated; issues are
//     aggregated into a single report, never aborting the batch.
//   - Render: every artifact is written in XML, JSON, and Turtle forms,
//     plus per-format HTML fragments, a narrative fragment, and
//     type-specific derived outputs such as value set expansions.
//
// In watch mode the pass repeats on an interval, re-doing the heavy work
// only when at least one artifact's source actually changed.
//
// # Partial failure
//
// Content-level problems never stop the batch: they surface as issues in
// the validation report (validation.html, the primary output). A render
// failure is scoped to its artifact. Only infrastructure failures (fetch,
// output I/O) abort a run.
//
// # Architecture
//
//   - Small interfaces for the external collaborators (fetcher, instance
//     validator, terminology expander, narrative generator, link resolver)
//   - Explicit classification outcomes instead of error-based control flow
//   - Context-based cancellation, including the watch loop
package igpublisher
