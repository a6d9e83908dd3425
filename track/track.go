// Package track decides, per manifest slot, whether a fetched artifact's
// previously seen version is still current. It is what makes watch mode
// cheap: a full rebuild happens only when at least one artifact changed.
package track

import "github.com/gofhir/igpublisher/fetch"

// RootKey is the distinguished slot for the guide document itself.
// Declared resources use their manifest entry as key.
var RootKey any = rootKey{}

type rootKey struct{}

// Tracker remembers the last-seen version of every manifest slot across
// runs. Entries are replaced whole, never partially updated: a slot is
// either fully "unchanged" (the prior parse is reused) or fully
// "changed" (the new fetch replaces it).
type Tracker struct {
	known map[any]*fetch.FetchedFile
	run   []*fetch.FetchedFile
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{known: make(map[any]*fetch.FetchedFile)}
}

// BeginRun clears the current run's artifact list. The change memory
// survives between runs.
func (t *Tracker) BeginRun() {
	t.run = t.run[:0]
}

// NoteFile records the fetched artifact under its manifest slot and
// reports whether it changed since the previous run. Exactly one
// artifact — the new fetch if changed, the remembered one otherwise —
// is appended to the current run's list, preserving manifest order.
func (t *Tracker) NoteFile(key any, file *fetch.FetchedFile) bool {
	if key == nil {
		key = RootKey
	}
	existing, ok := t.known[key]
	if !ok || !existing.Time.Equal(file.Time) || existing.Path != file.Path {
		t.run = append(t.run, file)
		t.known[key] = file
		return true
	}
	// unchanged: the remembered file already carries its parse state
	t.run = append(t.run, existing)
	return false
}

// Files returns the current run's artifacts in manifest order. The
// returned slice is valid until the next BeginRun.
func (t *Tracker) Files() []*fetch.FetchedFile {
	return t.run
}

// Known returns the remembered artifact for a slot, or nil.
func (t *Tracker) Known(key any) *fetch.FetchedFile {
	if key == nil {
		key = RootKey
	}
	return t.known[key]
}
