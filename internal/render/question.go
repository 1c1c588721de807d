package render

import (
	"fmt"
	"html/template"

	"mscript-quiz-client/internal/domain"
)

// OptionView is one selectable option as the UI should draw it.
type OptionView struct {
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
}

// QuestionView is the visible question: counter, prompt HTML with expanded
// diagram blocks, options with their current selection, and the boundary
// flags that disable the prev/next controls.
type QuestionView struct {
	ID         string        `json:"id"`
	Index      int           `json:"index"`
	Total      int           `json:"total"`
	Counter    string        `json:"counter"`
	PromptHTML template.HTML `json:"promptHtml"`
	Multiple   bool          `json:"multiple"`
	Options    []OptionView  `json:"options"`
	AtStart    bool          `json:"atStart"`
	AtEnd      bool          `json:"atEnd"`
}

// Question builds the view for one question. selected holds the option
// texts currently recorded in the answer store.
func Question(q domain.Question, selected []string, index, total int, atStart, atEnd bool) QuestionView {
	chosen := make(map[string]struct{}, len(selected))
	for _, opt := range selected {
		chosen[opt] = struct{}{}
	}

	options := make([]OptionView, 0, len(q.Options))
	for _, opt := range q.Options {
		_, isSelected := chosen[opt]
		options = append(options, OptionView{Text: opt, Selected: isSelected})
	}

	return QuestionView{
		ID:         q.ID,
		Index:      index,
		Total:      total,
		Counter:    counter(index, total),
		PromptHTML: ExpandDiagrams(q.Prompt),
		Multiple:   q.Multiple,
		Options:    options,
		AtStart:    atStart,
		AtEnd:      atEnd,
	}
}

func counter(index, total int) string {
	return fmt.Sprintf("Question %d of %d", index+1, total)
}
