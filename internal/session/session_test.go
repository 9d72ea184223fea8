package session

import (
	"testing"
	"time"

	"lesson-byte/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuiz() *domain.Quiz {
	return &domain.Quiz{Questions: []domain.Question{
		{Text: "Q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "b"},
		{Text: "Q2", Options: []string{"w", "x", "y", "z"}, CorrectAnswer: "z"},
	}}
}

func loadedSession(t *testing.T) *Session {
	s := New("s1", time.Now())
	s.LoadDocument(&domain.Document{ID: "d1"}, "full text", []domain.Concept{"Osmosis", "Diffusion"})
	require.NoError(t, s.SelectConcept("Osmosis"))
	s.SetExplanation(&domain.Explanation{Concept: "Osmosis"})
	s.SetScenario(&domain.Scenario{Concept: "Osmosis", Text: "A plant..."})
	require.NoError(t, s.SetFeedback(&domain.Feedback{Markdown: "### Feedback: good"}))
	s.StartQuiz(sampleQuiz())
	s.SetSimulation(&domain.Simulation{Concept: "Osmosis"})
	s.AddMedia(domain.MediaArtifact{Kind: domain.MediaVideo})
	return s
}

func TestLoadDocument_ClearsEverythingDerived(t *testing.T) {
	s := loadedSession(t)

	s.LoadDocument(&domain.Document{ID: "d2"}, "other text", []domain.Concept{"Mitosis"})

	assert.Equal(t, "d2", s.Document.ID)
	assert.Equal(t, "other text", s.FullText)
	assert.Equal(t, []domain.Concept{"Mitosis"}, s.Concepts)
	assert.Empty(t, s.SelectedConcept)
	assert.Nil(t, s.Explanation)
	assert.Nil(t, s.Scenario)
	assert.Nil(t, s.Feedback)
	assert.Nil(t, s.Quiz)
	assert.Nil(t, s.Simulation)
	assert.Empty(t, s.Media)
}

func TestSelectConcept(t *testing.T) {
	t.Run("same concept keeps content", func(t *testing.T) {
		s := loadedSession(t)
		require.NoError(t, s.SelectConcept("Osmosis"))
		assert.NotNil(t, s.Explanation)
		assert.NotNil(t, s.Quiz)
	})

	t.Run("different concept clears content", func(t *testing.T) {
		s := loadedSession(t)
		require.NoError(t, s.SelectConcept("Diffusion"))
		assert.Equal(t, domain.Concept("Diffusion"), s.SelectedConcept)
		assert.Nil(t, s.Explanation)
		assert.Nil(t, s.Scenario)
		assert.Nil(t, s.Feedback)
		assert.Nil(t, s.Quiz)
		assert.Nil(t, s.Simulation)
		assert.NotNil(t, s.Document)
	})

	t.Run("unknown concept rejected", func(t *testing.T) {
		s := loadedSession(t)
		err := s.SelectConcept("Photosynthesis")
		assert.True(t, domain.IsCode(err, domain.CodeInvalidInput))
		assert.Equal(t, domain.Concept("Osmosis"), s.SelectedConcept)
	})

	t.Run("no document", func(t *testing.T) {
		s := New("s", time.Now())
		assert.True(t, domain.IsCode(s.SelectConcept("X"), domain.CodeInvalidInput))
	})
}

func TestRequireConcept(t *testing.T) {
	s := New("s", time.Now())
	_, err := s.RequireConcept()
	assert.True(t, domain.IsCode(err, domain.CodeInvalidInput))

	c, err := loadedSession(t).RequireConcept()
	require.NoError(t, err)
	assert.Equal(t, domain.Concept("Osmosis"), c)
}

func TestSetScenario_ClearsFeedback(t *testing.T) {
	s := loadedSession(t)
	s.SetScenario(&domain.Scenario{Text: "new"})
	assert.Nil(t, s.Feedback)
	assert.NotNil(t, s.Explanation)
}

func TestSetFeedback_RequiresScenario(t *testing.T) {
	s := New("s", time.Now())
	err := s.SetFeedback(&domain.Feedback{})
	assert.True(t, domain.IsCode(err, domain.CodeInvalidInput))
}

func TestAnswerQuestion(t *testing.T) {
	s := New("s", time.Now())
	s.StartQuiz(sampleQuiz())

	first, err := s.AnswerQuestion(" b ")
	require.NoError(t, err)
	assert.Equal(t, &AnswerResult{Correct: true, CorrectAnswer: "b", Score: 1, Answered: 1, Total: 2}, first)

	second, err := s.AnswerQuestion("w")
	require.NoError(t, err)
	assert.Equal(t, &AnswerResult{Correct: false, CorrectAnswer: "z", Score: 1, Answered: 2, Total: 2, Completed: true}, second)

	_, err = s.AnswerQuestion("a")
	assert.True(t, domain.IsCode(err, domain.CodeInvalidInput))
}

func TestAnswerQuestion_NoQuiz(t *testing.T) {
	_, err := New("s", time.Now()).AnswerQuestion("a")
	assert.True(t, domain.IsCode(err, domain.CodeInvalidInput))
}

func TestStartQuiz_ResetsProgress(t *testing.T) {
	s := New("s", time.Now())
	s.StartQuiz(sampleQuiz())
	_, _ = s.AnswerQuestion("b")

	s.StartQuiz(sampleQuiz())

	assert.Equal(t, 0, s.Quiz.Index)
	assert.Equal(t, 0, s.Quiz.Score)
	assert.Equal(t, "Q1", s.Quiz.Current().Text)
}
