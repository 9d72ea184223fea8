package domain

import (
	"fmt"
	"strings"
)

// Question is one multiple-choice item. CorrectAnswer is matched against
// Options by string equality, never by index.
type Question struct {
	Text          string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// IsCorrect reports whether option is the correct answer.
func (q *Question) IsCorrect(option string) bool {
	return strings.TrimSpace(option) == q.CorrectAnswer
}

// Quiz is an ordered list of questions.
type Quiz struct {
	Questions []Question `json:"questions"`
}

// QuizShape is the required number of questions and options per question.
type QuizShape struct {
	QuestionCount int
	OptionCount   int
}

// DefaultQuizShape is five questions with four options each.
var DefaultQuizShape = QuizShape{QuestionCount: 5, OptionCount: 4}

// Normalize trims surrounding whitespace from every text field in place.
func (q *Quiz) Normalize() {
	for i := range q.Questions {
		question := &q.Questions[i]
		question.Text = strings.TrimSpace(question.Text)
		question.CorrectAnswer = strings.TrimSpace(question.CorrectAnswer)
		for j := range question.Options {
			question.Options[j] = strings.TrimSpace(question.Options[j])
		}
	}
}

// Validate rejects any quiz whose answers could not be scored unambiguously:
// wrong counts, blank or duplicated options, or a correct answer that is not
// exactly one of the options. Call Normalize first.
func (q *Quiz) Validate(shape QuizShape) error {
	if len(q.Questions) != shape.QuestionCount {
		return fmt.Errorf("expected %d questions, got %d", shape.QuestionCount, len(q.Questions))
	}
	for i, question := range q.Questions {
		n := i + 1
		if question.Text == "" {
			return fmt.Errorf("question %d has no text", n)
		}
		if len(question.Options) != shape.OptionCount {
			return fmt.Errorf("question %d: expected %d options, got %d", n, shape.OptionCount, len(question.Options))
		}
		seen := make(map[string]struct{}, len(question.Options))
		matches := 0
		for _, option := range question.Options {
			if option == "" {
				return fmt.Errorf("question %d has a blank option", n)
			}
			if _, dup := seen[option]; dup {
				return fmt.Errorf("question %d has duplicate option %q", n, option)
			}
			seen[option] = struct{}{}
			if option == question.CorrectAnswer {
				matches++
			}
		}
		if matches != 1 {
			return fmt.Errorf("question %d: correct answer %q is not one of its options", n, question.CorrectAnswer)
		}
	}
	return nil
}
