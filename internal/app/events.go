package app

import "mscript-quiz-client/internal/domain"

// EventKind labels the async notifications an attempt broadcasts to its
// subscribers (the UI transport).
type EventKind string

const (
	// EventTick carries the countdown's remaining seconds and warning flag.
	EventTick EventKind = "tick"
	// EventView signals that the visible question or a selection changed and
	// the subscriber should re-render from the attempt's current state.
	EventView EventKind = "view"
	// EventGraded carries the graded result, exactly once per attempt.
	EventGraded EventKind = "graded"
	// EventExpired signals the grading endpoint rejected the session; the
	// user must be redirected to re-authenticate. Terminal, no retry.
	EventExpired EventKind = "expired"
	// EventSubmitFailed signals a transport failure; a deliberate retry may
	// follow but never an automatic one.
	EventSubmitFailed EventKind = "submitFailed"
)

// Event is one notification on an attempt's subscription channel.
type Event struct {
	Kind      EventKind
	Remaining int
	Warning   bool
	Result    *domain.GradedResult
	Err       error
}
