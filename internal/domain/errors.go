package domain

import "errors"

var (
	// ErrSessionExpired is returned when a collaborator rejects a request as
	// unauthorized; the attempt is over and the user must re-authenticate.
	ErrSessionExpired = errors.New("session expired")
	// ErrAlreadySubmitted is returned when a submit arrives after the
	// submitted latch has been set.
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	// ErrNotSubmitted is returned when a retry is requested before any
	// submission failed.
	ErrNotSubmitted = errors.New("no failed submission to retry")
	// ErrNoQuestions indicates the question fetch returned an empty set.
	ErrNoQuestions = errors.New("question set is empty")
	// ErrUnavailable indicates a collaborator could not be reached.
	ErrUnavailable = errors.New("service unavailable")
)
