package memory

import (
	"context"
	"math"

	"mscript-quiz-client/internal/domain"
)

// AnswerKey holds the grading truth for a question set: the correct option
// texts per question and an optional section layout for the per-section
// breakdown.
type AnswerKey struct {
	// Correct maps question ID to the full set of correct option texts.
	Correct map[string][]string
	// Sections maps a section name to the question IDs it contains.
	Sections map[string][]string
}

// Grader is an app.Grader that scores submissions locally: a question is
// correct only when the selected set equals the correct set exactly. No
// partial credit.
type Grader struct {
	set domain.QuestionSet
	key AnswerKey
}

func NewGrader(set domain.QuestionSet, key AnswerKey) *Grader {
	return &Grader{set: set, key: key}
}

func (g *Grader) Grade(_ context.Context, sub domain.Submission) (domain.GradedResult, error) {
	result := domain.GradedResult{
		Total:   len(g.set.Questions),
		Results: make([]domain.QuestionResult, 0, len(g.set.Questions)),
	}
	correctByID := make(map[string]bool, len(g.set.Questions))

	for _, q := range g.set.Questions {
		correctSet := toSet(g.key.Correct[q.ID])
		userAnswers := sub.Answers[q.ID]
		correct := setsEqual(correctSet, toSet(userAnswers))
		if correct {
			result.Score++
		}
		correctByID[q.ID] = correct
		result.Results = append(result.Results, domain.QuestionResult{
			ID:             q.ID,
			Question:       q.Prompt,
			Options:        q.Options,
			Correct:        correct,
			CorrectAnswers: g.key.Correct[q.ID],
			UserAnswers:    userAnswers,
		})
	}

	result.Percentage = percentage(result.Score, result.Total)

	if len(g.key.Sections) > 0 {
		result.Sections = make(map[string]domain.SectionScore, len(g.key.Sections))
		for name, ids := range g.key.Sections {
			score := domain.SectionScore{Total: len(ids)}
			for _, id := range ids {
				if correctByID[id] {
					score.Correct++
				}
			}
			score.Percentage = percentage(score.Correct, score.Total)
			result.Sections[name] = score
		}
	}
	return result, nil
}

func percentage(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(score)/float64(total)*100*100) / 100
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for v := range a {
		if _, ok := b[v]; !ok {
			return false
		}
	}
	return true
}
