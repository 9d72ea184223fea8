// Package session holds the per-user lesson state and the rules for what each
// user action invalidates.
package session

import (
	"time"

	"lesson-byte/internal/domain"
)

// Session is everything one learner has produced so far. Fields downstream of
// a change are cleared by the method that makes the change; callers never
// clear fields by hand.
type Session struct {
	ID              string                 `json:"id"`
	Document        *domain.Document       `json:"document,omitempty"`
	FullText        string                 `json:"full_text,omitempty"`
	Concepts        []domain.Concept       `json:"concepts,omitempty"`
	SelectedConcept domain.Concept         `json:"selected_concept,omitempty"`
	Explanation     *domain.Explanation    `json:"explanation,omitempty"`
	Scenario        *domain.Scenario       `json:"scenario,omitempty"`
	Feedback        *domain.Feedback       `json:"feedback,omitempty"`
	Quiz            *QuizProgress          `json:"quiz,omitempty"`
	Simulation      *domain.Simulation     `json:"simulation,omitempty"`
	Media           []domain.MediaArtifact `json:"media,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// QuizProgress tracks a quiz being taken one question at a time.
type QuizProgress struct {
	Questions []domain.Question `json:"questions"`
	Index     int               `json:"index"`
	Score     int               `json:"score"`
}

// Completed reports whether every question has been answered.
func (q *QuizProgress) Completed() bool {
	return q.Index >= len(q.Questions)
}

// Current returns the question awaiting an answer, or nil once completed.
func (q *QuizProgress) Current() *domain.Question {
	if q.Completed() {
		return nil
	}
	return &q.Questions[q.Index]
}

// AnswerResult is the outcome of answering one quiz question.
type AnswerResult struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Score         int    `json:"score"`
	Answered      int    `json:"answered"`
	Total         int    `json:"total"`
	Completed     bool   `json:"completed"`
}

// New creates an empty session.
func New(id string, now time.Time) *Session {
	return &Session{ID: id, CreatedAt: now, UpdatedAt: now}
}

// LoadDocument replaces the document and its concepts, clearing everything
// derived from the previous document.
func (s *Session) LoadDocument(doc *domain.Document, fullText string, concepts []domain.Concept) {
	s.Document = doc
	s.FullText = fullText
	s.Concepts = concepts
	s.SelectedConcept = ""
	s.clearConceptState()
}

// SelectConcept switches the active concept. Choosing the concept that is
// already selected keeps the generated content.
func (s *Session) SelectConcept(concept domain.Concept) error {
	if s.Document == nil {
		return domain.NewInvalidInputError("no document has been uploaded")
	}
	if !s.hasConcept(concept) {
		return domain.NewInvalidInputError("concept is not one of the document's concepts").
			WithContext("concept", string(concept))
	}
	if concept == s.SelectedConcept {
		return nil
	}
	s.SelectedConcept = concept
	s.clearConceptState()
	return nil
}

// RequireConcept returns the selected concept or INVALID_INPUT.
func (s *Session) RequireConcept() (domain.Concept, error) {
	if s.SelectedConcept == "" {
		return "", domain.NewInvalidInputError("no concept has been selected")
	}
	return s.SelectedConcept, nil
}

func (s *Session) SetExplanation(e *domain.Explanation) {
	s.Explanation = e
}

// SetScenario replaces the scenario; feedback on the old one is dropped.
func (s *Session) SetScenario(sc *domain.Scenario) {
	s.Scenario = sc
	s.Feedback = nil
}

// SetFeedback requires an active scenario.
func (s *Session) SetFeedback(f *domain.Feedback) error {
	if s.Scenario == nil {
		return domain.NewInvalidInputError("no scenario to answer")
	}
	s.Feedback = f
	return nil
}

// StartQuiz begins quiz at its first question with a zero score.
func (s *Session) StartQuiz(quiz *domain.Quiz) {
	s.Quiz = &QuizProgress{Questions: quiz.Questions}
}

// AnswerQuestion scores option against the current question and advances.
func (s *Session) AnswerQuestion(option string) (*AnswerResult, error) {
	if s.Quiz == nil {
		return nil, domain.NewInvalidInputError("no quiz in progress")
	}
	question := s.Quiz.Current()
	if question == nil {
		return nil, domain.NewInvalidInputError("quiz is already complete")
	}

	correct := question.IsCorrect(option)
	if correct {
		s.Quiz.Score++
	}
	s.Quiz.Index++

	return &AnswerResult{
		Correct:       correct,
		CorrectAnswer: question.CorrectAnswer,
		Score:         s.Quiz.Score,
		Answered:      s.Quiz.Index,
		Total:         len(s.Quiz.Questions),
		Completed:     s.Quiz.Completed(),
	}, nil
}

func (s *Session) SetSimulation(sim *domain.Simulation) {
	s.Simulation = sim
}

func (s *Session) AddMedia(a domain.MediaArtifact) {
	s.Media = append(s.Media, a)
}

func (s *Session) hasConcept(concept domain.Concept) bool {
	for _, c := range s.Concepts {
		if c == concept {
			return true
		}
	}
	return false
}

func (s *Session) clearConceptState() {
	s.Explanation = nil
	s.Scenario = nil
	s.Feedback = nil
	s.Quiz = nil
	s.Simulation = nil
	s.Media = nil
}
