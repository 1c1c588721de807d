package render

import (
	"html/template"
	"sort"
	"strings"

	"mscript-quiz-client/internal/domain"
)

// Band classifies a section percentage for the review table.
type Band string

const (
	BandGood    Band = "good"
	BandAverage Band = "average"
	BandPoor    Band = "poor"
)

// Classify maps a percentage to its band: >=70 good, >=50 average, else poor.
func Classify(percentage float64) Band {
	switch {
	case percentage >= 70:
		return BandGood
	case percentage >= 50:
		return BandAverage
	default:
		return BandPoor
	}
}

// Annotation marks how an option relates to the graded outcome.
type Annotation string

const (
	AnnotationCorrect Annotation = "correct"
	AnnotationChosen  Annotation = "chosen"
	AnnotationBoth    Annotation = "both"
	AnnotationNeither Annotation = "neither"
)

// ResultOptionView is one option of a reviewed question with its annotation.
type ResultOptionView struct {
	Text       string     `json:"text"`
	Annotation Annotation `json:"annotation"`
}

// ResultQuestionView is the per-question review entry.
type ResultQuestionView struct {
	Counter       string             `json:"counter"`
	PromptHTML    template.HTML      `json:"promptHtml"`
	Correct       bool               `json:"correct"`
	Options       []ResultOptionView `json:"options"`
	CorrectAnswer string             `json:"correctAnswer"`
	// UserAnswer is filled only when the question was answered incorrectly:
	// the user's own answer, or an explicit marker when nothing was chosen.
	UserAnswer string `json:"userAnswer,omitempty"`
}

// SectionRow is one row of the optional per-section score table.
type SectionRow struct {
	Name       string  `json:"name"`
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Band       Band    `json:"band"`
}

// ResultsView is the full review view for a graded attempt.
type ResultsView struct {
	Score      int                  `json:"score"`
	Total      int                  `json:"total"`
	Percentage float64              `json:"percentage"`
	Sections   []SectionRow         `json:"sections,omitempty"`
	Questions  []ResultQuestionView `json:"questions"`
}

// NotAnsweredMarker is shown in place of the user's answer when an
// incorrectly graded question had no selection at all.
const NotAnsweredMarker = "Not answered"

// Results is a pure function of the graded response: it never touches quiz
// state and is invoked exactly once per attempt.
func Results(r domain.GradedResult) ResultsView {
	view := ResultsView{
		Score:      r.Score,
		Total:      r.Total,
		Percentage: r.Percentage,
		Questions:  make([]ResultQuestionView, 0, len(r.Results)),
	}

	if len(r.Sections) > 0 {
		names := make([]string, 0, len(r.Sections))
		for name := range r.Sections {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			s := r.Sections[name]
			view.Sections = append(view.Sections, SectionRow{
				Name:       name,
				Correct:    s.Correct,
				Total:      s.Total,
				Percentage: s.Percentage,
				Band:       Classify(s.Percentage),
			})
		}
	}

	for i, qr := range r.Results {
		view.Questions = append(view.Questions, questionResult(i, len(r.Results), qr))
	}
	return view
}

func questionResult(index, total int, qr domain.QuestionResult) ResultQuestionView {
	correct := make(map[string]struct{}, len(qr.CorrectAnswers))
	for _, opt := range qr.CorrectAnswers {
		correct[opt] = struct{}{}
	}
	chosen := make(map[string]struct{}, len(qr.UserAnswers))
	for _, opt := range qr.UserAnswers {
		chosen[opt] = struct{}{}
	}

	options := make([]ResultOptionView, 0, len(qr.Options))
	for _, opt := range qr.Options {
		_, isCorrect := correct[opt]
		_, isChosen := chosen[opt]
		options = append(options, ResultOptionView{Text: opt, Annotation: annotate(isCorrect, isChosen)})
	}

	view := ResultQuestionView{
		Counter:       counter(index, total),
		PromptHTML:    ExpandDiagrams(qr.Question),
		Correct:       qr.Correct,
		Options:       options,
		CorrectAnswer: strings.Join(qr.CorrectAnswers, ", "),
	}
	if !qr.Correct {
		if len(qr.UserAnswers) == 0 {
			view.UserAnswer = NotAnsweredMarker
		} else {
			view.UserAnswer = strings.Join(qr.UserAnswers, ", ")
		}
	}
	return view
}

func annotate(correct, chosen bool) Annotation {
	switch {
	case correct && chosen:
		return AnnotationBoth
	case correct:
		return AnnotationCorrect
	case chosen:
		return AnnotationChosen
	default:
		return AnnotationNeither
	}
}
