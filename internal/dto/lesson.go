package dto

import (
	"time"

	"lesson-byte/internal/domain"
	"lesson-byte/internal/session"
)

// SelectConceptRequest represents the body of PUT /sessions/:id/concept
// @Description Concept to study next
type SelectConceptRequest struct {
	Concept string `json:"concept"`
}

// AnswerRequest carries a free-text scenario answer or a quiz option.
// @Description Request body for answering a scenario or quiz question
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// MediaRequest represents the body of an animation or video request. An empty
// script narrates the current explanation.
type MediaRequest struct {
	Script string `json:"script"`
}

// FeaturesResponse lists which optional integrations are configured.
type FeaturesResponse struct {
	Text      bool `json:"text"`
	Animation bool `json:"animation"`
	Video     bool `json:"video"`
	Database  bool `json:"database"`
}

// QuestionView is a quiz question without its answer.
type QuestionView struct {
	Number  int      `json:"number"`
	Text    string   `json:"question_text"`
	Options []string `json:"options"`
}

// QuizView shows quiz progress and the question awaiting an answer.
// @Description Quiz progress; correct answers are never included
type QuizView struct {
	Total     int           `json:"total"`
	Answered  int           `json:"answered"`
	Score     int           `json:"score"`
	Completed bool          `json:"completed"`
	Current   *QuestionView `json:"current,omitempty"`
}

// DocumentView describes the analysed chapter.
type DocumentView struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name"`
	CharCount  int       `json:"char_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// SessionResponse is the public view of a session. The extracted text and
// quiz answers stay on the server.
// @Description Session state
type SessionResponse struct {
	ID              string                 `json:"id"`
	Document        *DocumentView          `json:"document,omitempty"`
	Concepts        []string               `json:"concepts"`
	SelectedConcept string                 `json:"selected_concept,omitempty"`
	Explanation     *domain.Explanation    `json:"explanation,omitempty"`
	Scenario        *domain.Scenario       `json:"scenario,omitempty"`
	Feedback        *domain.Feedback       `json:"feedback,omitempty"`
	Quiz            *QuizView              `json:"quiz,omitempty"`
	HasSimulation   bool                   `json:"has_simulation"`
	Media           []domain.MediaArtifact `json:"media"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// PracticeResponse pairs a fresh scenario with the quiz started alongside it.
type PracticeResponse struct {
	Scenario *domain.Scenario `json:"scenario"`
	Quiz     *QuizView        `json:"quiz"`
}

// NewQuizView builds the answer-free view of quiz progress.
func NewQuizView(q *session.QuizProgress) *QuizView {
	if q == nil {
		return nil
	}
	view := &QuizView{
		Total:     len(q.Questions),
		Answered:  q.Index,
		Score:     q.Score,
		Completed: q.Completed(),
	}
	if current := q.Current(); current != nil {
		view.Current = &QuestionView{
			Number:  q.Index + 1,
			Text:    current.Text,
			Options: append([]string(nil), current.Options...),
		}
	}
	return view
}

// NewSessionResponse converts a session into its public view.
func NewSessionResponse(s *session.Session) *SessionResponse {
	resp := &SessionResponse{
		ID:              s.ID,
		Concepts:        make([]string, len(s.Concepts)),
		SelectedConcept: string(s.SelectedConcept),
		Explanation:     s.Explanation,
		Scenario:        s.Scenario,
		Feedback:        s.Feedback,
		Quiz:            NewQuizView(s.Quiz),
		HasSimulation:   s.Simulation != nil,
		Media:           s.Media,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	for i, c := range s.Concepts {
		resp.Concepts[i] = string(c)
	}
	if resp.Media == nil {
		resp.Media = []domain.MediaArtifact{}
	}
	if s.Document != nil {
		resp.Document = &DocumentView{
			ID:         s.Document.ID,
			FileName:   s.Document.FileName,
			CharCount:  s.Document.CharCount,
			UploadedAt: s.Document.UploadedAt,
		}
	}
	return resp
}
