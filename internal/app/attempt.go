package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mscript-quiz-client/internal/domain"
)

// QuestionSource loads the question set for one attempt (remote endpoint or
// in-memory fixture).
type QuestionSource interface {
	FetchQuestionSet(ctx context.Context) (domain.QuestionSet, error)
}

// Grader scores a frozen submission (remote endpoint or in-memory fixture).
type Grader interface {
	Grade(ctx context.Context, sub domain.Submission) (domain.GradedResult, error)
}

// Phase is the attempt's submission lifecycle.
type Phase int

const (
	// PhaseActive: questions loaded, countdown running, answers mutable.
	PhaseActive Phase = iota
	// PhaseSubmitting: latch set, grading request in flight.
	PhaseSubmitting
	// PhaseGraded: graded result available. Terminal.
	PhaseGraded
	// PhaseExpired: grading rejected the session as unauthorized. Terminal.
	PhaseExpired
	// PhaseSubmitFailed: no response from the grader; a deliberate Retry of
	// the frozen snapshot is allowed.
	PhaseSubmitFailed
)

// DefaultDuration is the compiled-in quiz length used when the question
// fetch does not supply one.
const DefaultDuration = 30 * time.Minute

// Attempt owns all state of one quiz attempt: the immutable question set,
// the answer store, the navigation cursor, the countdown, and the submitted
// latch. Every mutation is serialized through one mutex; the latch is what
// makes the grading request fire at most once no matter whether the final
// tick or a manual submit gets there first.
type Attempt struct {
	baseCtx context.Context

	mu        sync.Mutex
	questions []domain.Question
	answers   *AnswerStore
	nav       *Navigator
	countdown *Countdown
	grader    Grader

	submitted bool
	phase     Phase
	frozen    *domain.Submission
	result    *domain.GradedResult

	subscribers map[chan Event]struct{}
}

// StartAttempt fetches the question set, builds the session state, and
// starts the countdown. A fetch failure is fatal to the attempt; the caller
// renders it and requires a manual refresh, never an automatic retry.
func StartAttempt(ctx context.Context, source QuestionSource, grader Grader, defaultDuration time.Duration) (*Attempt, error) {
	set, err := source.FetchQuestionSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch question set: %w", err)
	}
	if len(set.Questions) == 0 {
		return nil, domain.ErrNoQuestions
	}

	duration := set.Duration
	if duration <= 0 {
		duration = defaultDuration
	}
	if duration <= 0 {
		duration = DefaultDuration
	}

	a := newAttempt(ctx, set.Questions, grader, time.Now, time.Second)
	a.countdown.Start(int(duration / time.Second))
	return a, nil
}

// newAttempt wires the pieces without starting the countdown, so tests can
// drive ticks deterministically with an injected clock.
func newAttempt(ctx context.Context, questions []domain.Question, grader Grader, now func() time.Time, tickInterval time.Duration) *Attempt {
	a := &Attempt{
		baseCtx:     ctx,
		questions:   questions,
		answers:     NewAnswerStore(questions),
		nav:         NewNavigator(len(questions)),
		grader:      grader,
		subscribers: make(map[chan Event]struct{}),
	}
	a.countdown = newCountdownWithClock(now, tickInterval, a.handleTick, a.handleExpiry)
	return a
}

// Select applies one toggle event to the answer store. Selections arriving
// after the latch is set are silently absorbed.
func (a *Attempt) Select(questionID, optionText string, selected bool) {
	a.mu.Lock()
	if a.submitted {
		a.mu.Unlock()
		return
	}
	var question *domain.Question
	for i := range a.questions {
		if a.questions[i].ID == questionID {
			question = &a.questions[i]
			break
		}
	}
	if question == nil {
		a.mu.Unlock()
		return
	}
	a.answers.Record(questionID, optionText, selected, question.Multiple)
	a.mu.Unlock()

	a.broadcast(Event{Kind: EventView})
}

// Prev moves the cursor back one question.
func (a *Attempt) Prev() {
	a.mu.Lock()
	moved := a.nav.Prev()
	a.mu.Unlock()
	if moved {
		a.broadcast(Event{Kind: EventView})
	}
}

// Next moves the cursor forward one question.
func (a *Attempt) Next() {
	a.mu.Lock()
	moved := a.nav.Next()
	a.mu.Unlock()
	if moved {
		a.broadcast(Event{Kind: EventView})
	}
}

// Submit is the manual submission trigger. The second and later calls are
// rejected by the latch with ErrAlreadySubmitted; the grading endpoint sees
// at most one request per attempt.
func (a *Attempt) Submit(ctx context.Context) error {
	sub, ok := a.freeze()
	if !ok {
		return domain.ErrAlreadySubmitted
	}
	a.broadcast(Event{Kind: EventView})
	a.doSubmit(ctx, sub)
	return nil
}

// Retry re-sends the frozen snapshot after a transport failure. It is a
// fresh deliberate action: only valid in the submit-failed phase, never
// invoked automatically.
func (a *Attempt) Retry(ctx context.Context) error {
	a.mu.Lock()
	if !a.submitted {
		a.mu.Unlock()
		return domain.ErrNotSubmitted
	}
	if a.phase != PhaseSubmitFailed {
		a.mu.Unlock()
		return domain.ErrAlreadySubmitted
	}
	a.phase = PhaseSubmitting
	sub := *a.frozen
	a.mu.Unlock()

	a.doSubmit(ctx, sub)
	return nil
}

// handleExpiry is the countdown's auto-submit path. The latch check makes
// it a no-op when a manual submit won the race on the same logical step.
func (a *Attempt) handleExpiry() {
	sub, ok := a.freeze()
	if !ok {
		return
	}
	a.broadcast(Event{Kind: EventView})
	a.doSubmit(a.baseCtx, sub)
}

// freeze sets the submitted latch and snapshots the answer store together
// with the elapsed time. The snapshot is immutable: later store mutations
// (there are none, Select checks the latch) cannot affect an in-flight
// request. Returns ok=false when the latch was already set.
func (a *Attempt) freeze() (domain.Submission, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.submitted {
		return domain.Submission{}, false
	}
	a.submitted = true
	a.phase = PhaseSubmitting
	a.countdown.StopManually()

	sub := domain.Submission{
		Answers:   a.answers.Snapshot(),
		TimeTaken: FormatClock(int(a.countdown.Elapsed() / time.Second)),
	}
	a.frozen = &sub
	return sub, true
}

func (a *Attempt) doSubmit(ctx context.Context, sub domain.Submission) {
	res, err := a.grader.Grade(ctx, sub)
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		a.setPhase(PhaseExpired)
		a.broadcast(Event{Kind: EventExpired})
	case err != nil:
		a.setPhase(PhaseSubmitFailed)
		a.broadcast(Event{Kind: EventSubmitFailed, Err: err})
	default:
		a.mu.Lock()
		a.phase = PhaseGraded
		a.result = &res
		a.mu.Unlock()
		a.broadcast(Event{Kind: EventGraded, Result: &res})
	}
}

func (a *Attempt) handleTick(remaining int, warning bool) {
	a.broadcast(Event{Kind: EventTick, Remaining: remaining, Warning: warning})
}

func (a *Attempt) setPhase(p Phase) {
	a.mu.Lock()
	a.phase = p
	a.mu.Unlock()
}

// Current returns the visible question and its cursor index.
func (a *Attempt) Current() (domain.Question, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.questions[a.nav.Cursor()], a.nav.Cursor()
}

// QuestionCount returns the fixed length of the question sequence.
func (a *Attempt) QuestionCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.questions)
}

// Selected returns the current selection for a question in option order.
func (a *Attempt) Selected(questionID string) []string {
	return a.answers.Selected(questionID)
}

// AtStart reports whether the prev control is disabled.
func (a *Attempt) AtStart() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nav.AtStart()
}

// AtEnd reports whether the next control is disabled.
func (a *Attempt) AtEnd() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nav.AtEnd()
}

// Phase returns the submission lifecycle phase.
func (a *Attempt) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

// Submitted reports whether the latch is set.
func (a *Attempt) Submitted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.submitted
}

// GuardActive reports whether the UI must arm its before-navigate
// confirmation: questions are loaded and the latch is not set. The latch is
// set before the grading call returns, so the guard deactivates immediately
// even while the request is still pending.
func (a *Attempt) GuardActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.questions) > 0 && !a.submitted
}

// Result returns the graded result once the attempt reached PhaseGraded.
func (a *Attempt) Result() (domain.GradedResult, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result == nil {
		return domain.GradedResult{}, false
	}
	return *a.result, true
}

// Remaining returns the countdown's remaining seconds.
func (a *Attempt) Remaining() int {
	return a.countdown.Remaining()
}

// Elapsed is the wall-clock time spent on the attempt so far.
func (a *Attempt) Elapsed() time.Duration {
	return a.countdown.Elapsed()
}

// Subscribe returns a channel of attempt events, starting with a view
// snapshot. The caller must invoke the returned cancel function to avoid
// leaks.
func (a *Attempt) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	a.mu.Lock()
	a.subscribers[ch] = struct{}{}
	a.mu.Unlock()

	ch <- Event{Kind: EventView}

	cancel := func() {
		a.mu.Lock()
		if _, ok := a.subscribers[ch]; ok {
			delete(a.subscribers, ch)
			close(ch)
		}
		a.mu.Unlock()
	}
	return ch, cancel
}

// Close cancels the countdown so no timer outlives the session. Safe to
// call on any phase.
func (a *Attempt) Close() {
	a.countdown.StopManually()
}

func (a *Attempt) broadcast(ev Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for ch := range a.subscribers {
		select {
		case ch <- ev:
		default:
			// Drop the oldest buffered event so a slow UI cannot block the
			// tick goroutine.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}
