package domain

import "time"

// Question is one prompt with its ordered options. The option text is the
// value identity; there is no separate option code.
type Question struct {
	ID       string   `json:"id"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
	Multiple bool     `json:"multiple"`
}

// QuestionSet is the fetched content of one quiz attempt.
type QuestionSet struct {
	Questions []Question `json:"questions"`
	// Duration is the configured quiz length. Zero means the collaborator
	// did not supply one and the client keeps its compiled-in default.
	Duration time.Duration `json:"duration"`
}

// Submission is the frozen payload sent to the grading endpoint: for each
// answered question the selected option texts in option order, plus the
// elapsed time formatted as zero-padded MM:SS.
type Submission struct {
	Answers   map[string][]string `json:"answers"`
	TimeTaken string              `json:"time_taken"`
}

// SectionScore is one row of the optional per-section breakdown.
type SectionScore struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// QuestionResult is the graded outcome for a single question.
type QuestionResult struct {
	ID             string   `json:"id"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	Correct        bool     `json:"is_correct"`
	CorrectAnswers []string `json:"correct_answers"`
	UserAnswers    []string `json:"user_answers"`
}

// GradedResult is the grading endpoint's response for one attempt.
type GradedResult struct {
	Score      int                     `json:"score"`
	Total      int                     `json:"total"`
	Percentage float64                 `json:"percentage"`
	Sections   map[string]SectionScore `json:"sections,omitempty"`
	Results    []QuestionResult        `json:"results"`
}
