package memory

import (
	"context"

	"mscript-quiz-client/internal/domain"
)

// Source is an app.QuestionSource backed by a fixed question set (useful
// for demo mode and tests).
type Source struct {
	set domain.QuestionSet
}

func NewSource(set domain.QuestionSet) *Source {
	return &Source{set: set}
}

func (s *Source) FetchQuestionSet(_ context.Context) (domain.QuestionSet, error) {
	if len(s.set.Questions) == 0 {
		return domain.QuestionSet{}, domain.ErrNoQuestions
	}
	return s.set, nil
}
