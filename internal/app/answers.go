package app

import (
	"sync"

	"mscript-quiz-client/internal/domain"
)

// AnswerStore is the single source of truth for what gets submitted. It maps
// question IDs to the set of selected option texts and normalizes every read
// to the question's option order, so the payload is stable no matter in which
// order the user toggled checkboxes.
type AnswerStore struct {
	mu       sync.RWMutex
	order    map[string][]string
	selected map[string]map[string]struct{}
}

// NewAnswerStore builds an empty store keyed by the attempt's question set.
func NewAnswerStore(questions []domain.Question) *AnswerStore {
	order := make(map[string][]string, len(questions))
	for _, q := range questions {
		order[q.ID] = q.Options
	}
	return &AnswerStore{
		order:    order,
		selected: make(map[string]map[string]struct{}),
	}
}

// Record applies one toggle event. Single-select questions replace the whole
// entry with the new option, which models exclusive choice even though the
// UI delivers independent toggle events per option. Multi-select questions
// add or remove the option; both directions are idempotent. Unknown question
// IDs get a fresh entry first.
func (s *AnswerStore) Record(questionID, optionText string, selected, multiple bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.selected[questionID]
	if !ok {
		entry = make(map[string]struct{})
		s.selected[questionID] = entry
	}

	if !multiple {
		for opt := range entry {
			delete(entry, opt)
		}
		entry[optionText] = struct{}{}
		return
	}

	if selected {
		entry[optionText] = struct{}{}
	} else {
		delete(entry, optionText)
	}
}

// Selected returns the current selection for a question in option order.
func (s *AnswerStore) Selected(questionID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orderedLocked(questionID)
}

// Snapshot copies every non-empty entry into a fresh map, normalized to
// option order. Later store mutations cannot affect the returned map.
func (s *AnswerStore) Snapshot() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]string, len(s.selected))
	for questionID, entry := range s.selected {
		if len(entry) == 0 {
			continue
		}
		out[questionID] = s.orderedLocked(questionID)
	}
	return out
}

func (s *AnswerStore) orderedLocked(questionID string) []string {
	entry := s.selected[questionID]
	if len(entry) == 0 {
		return nil
	}
	ordered := make([]string, 0, len(entry))
	for _, opt := range s.order[questionID] {
		if _, ok := entry[opt]; ok {
			ordered = append(ordered, opt)
		}
	}
	// Options recorded for a question the store does not know keep no
	// defined order; append them so nothing silently disappears.
	if len(ordered) < len(entry) {
		known := make(map[string]struct{}, len(ordered))
		for _, opt := range ordered {
			known[opt] = struct{}{}
		}
		for opt := range entry {
			if _, ok := known[opt]; !ok {
				ordered = append(ordered, opt)
			}
		}
	}
	return ordered
}
