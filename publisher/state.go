package publisher

// State is the run controller's position in the publishing lifecycle.
type State int

const (
	// StateInitializing covers one-time setup: reading the control
	// file and preparing the output tree. No load may start before it
	// completes.
	StateInitializing State = iota
	// StateLoaded means every artifact has been fetched, classified,
	// and registered for the current pass.
	StateLoaded
	// StateValidated means every artifact has a validation outcome.
	StateValidated
	// StateRendered means every output for the current pass has been
	// written.
	StateRendered
	// StateIdle means a single-shot run has finished.
	StateIdle
	// StateWatching means the publisher is waiting for source changes.
	StateWatching
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateLoaded:
		return "loaded"
	case StateValidated:
		return "validated"
	case StateRendered:
		return "rendered"
	case StateIdle:
		return "idle"
	case StateWatching:
		return "watching"
	default:
		return "unknown"
	}
}
