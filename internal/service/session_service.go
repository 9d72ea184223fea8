package service

import (
	"context"
	"io"
	"strings"

	"lesson-byte/internal/domain"
	"lesson-byte/internal/logger"
	"lesson-byte/internal/prompt"
	"lesson-byte/internal/session"

	"go.uber.org/zap"
)

// SessionStore is the persistence the session service needs.
type SessionStore interface {
	Create(ctx context.Context) (*session.Session, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	Save(ctx context.Context, sess *session.Session) error
}

// SessionService runs each user action against a session. Actions on one
// session are serialised; different sessions proceed independently.
type SessionService interface {
	Create(ctx context.Context) (*session.Session, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	UploadDocument(ctx context.Context, id, fileName string, content io.Reader) (*session.Session, error)
	SelectConcept(ctx context.Context, id string, concept domain.Concept) (*session.Session, error)
	Explain(ctx context.Context, id string) (*domain.Explanation, error)
	NewScenario(ctx context.Context, id string) (*domain.Scenario, error)
	AnswerScenario(ctx context.Context, id, answer string) (*domain.Feedback, error)
	StartQuiz(ctx context.Context, id string) (*session.QuizProgress, error)
	AnswerQuiz(ctx context.Context, id, option string) (*session.AnswerResult, error)
	Practice(ctx context.Context, id string) (*Practice, error)
	Simulate(ctx context.Context, id string) (*domain.Simulation, error)
	Animate(ctx context.Context, id, script string) (*domain.MediaArtifact, error)
	MakeVideo(ctx context.Context, id, script string) (*domain.MediaArtifact, error)
}

type sessionService struct {
	store           SessionStore
	lessons         LessonService
	media           MediaService
	documents       DocumentService
	narrationBudget int
	locks           *keyedMutex
}

// NewSessionService creates a SessionService. narrationBudget caps the script
// derived from an explanation when a media request carries none.
func NewSessionService(store SessionStore, lessons LessonService, media MediaService, documents DocumentService, narrationBudget int) SessionService {
	return &sessionService{
		store:           store,
		lessons:         lessons,
		media:           media,
		documents:       documents,
		narrationBudget: narrationBudget,
		locks:           newKeyedMutex(),
	}
}

func (s *sessionService) Create(ctx context.Context) (*session.Session, error) {
	sess, err := s.store.Create(ctx)
	if err != nil {
		return nil, err
	}
	logger.Get().Info("Session created", zap.String("session_id", sess.ID))
	return sess, nil
}

func (s *sessionService) Get(ctx context.Context, id string) (*session.Session, error) {
	return s.store.Get(ctx, id)
}

// update loads the session under its lock, applies fn and saves the result
// when fn succeeds.
func (s *sessionService) update(ctx context.Context, id string, fn func(sess *session.Session) error) (*session.Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// UploadDocument stores the chapter, extracts its text and concepts, and
// starts the session over on the new document.
func (s *sessionService) UploadDocument(ctx context.Context, id, fileName string, content io.Reader) (*session.Session, error) {
	return s.update(ctx, id, func(sess *session.Session) error {
		doc, text, err := s.documents.Ingest(ctx, id, fileName, content)
		if err != nil {
			return err
		}
		concepts, err := s.lessons.ExtractConcepts(ctx, text)
		if err != nil {
			s.documents.Discard(doc)
			return err
		}
		s.documents.Record(ctx, doc)
		sess.LoadDocument(doc, text, concepts)
		return nil
	})
}

func (s *sessionService) SelectConcept(ctx context.Context, id string, concept domain.Concept) (*session.Session, error) {
	return s.update(ctx, id, func(sess *session.Session) error {
		return sess.SelectConcept(concept)
	})
}

// Explain returns the current explanation, generating it on first request.
func (s *sessionService) Explain(ctx context.Context, id string) (*domain.Explanation, error) {
	sess, err := s.update(ctx, id, func(sess *session.Session) error {
		concept, err := sess.RequireConcept()
		if err != nil {
			return err
		}
		if sess.Explanation != nil {
			return nil
		}
		explanation, err := s.lessons.GenerateExplanation(ctx, concept, sess.FullText)
		if err != nil {
			return err
		}
		sess.SetExplanation(explanation)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess.Explanation, nil
}

func (s *sessionService) NewScenario(ctx context.Context, id string) (*domain.Scenario, error) {
	sess, err := s.update(ctx, id, func(sess *session.Session) error {
		concept, err := sess.RequireConcept()
		if err != nil {
			return err
		}
		scenario, err := s.lessons.GenerateScenario(ctx, concept, sess.FullText)
		if err != nil {
			return err
		}
		sess.SetScenario(scenario)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess.Scenario, nil
}

func (s *sessionService) AnswerScenario(ctx context.Context, id, answer string) (*domain.Feedback, error) {
	sess, err := s.update(ctx, id, func(sess *session.Session) error {
		if sess.Scenario == nil {
			return domain.NewInvalidInputError("no scenario to answer")
		}
		feedback, err := s.lessons.EvaluateAnswer(ctx, sess.Scenario.Text, answer, sess.FullText)
		if err != nil {
			return err
		}
		return sess.SetFeedback(feedback)
	})
	if err != nil {
		return nil, err
	}
	return sess.Feedback, nil
}

func (s *sessionService) StartQuiz(ctx context.Context, id string) (*session.QuizProgress, error) {
	sess, err := s.update(ctx, id, func(sess *session.Session) error {
		if _, err := sess.RequireConcept(); err != nil {
			return err
		}
		quiz, err := s.lessons.GenerateQuiz(ctx, sess.FullText)
		if err != nil {
			return err
		}
		sess.StartQuiz(quiz)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess.Quiz, nil
}

func (s *sessionService) AnswerQuiz(ctx context.Context, id, option string) (*session.AnswerResult, error) {
	var result *session.AnswerResult
	_, err := s.update(ctx, id, func(sess *session.Session) error {
		var err error
		result, err = sess.AnswerQuestion(option)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Practice generates a fresh scenario and quiz in one step.
func (s *sessionService) Practice(ctx context.Context, id string) (*Practice, error) {
	var practice *Practice
	_, err := s.update(ctx, id, func(sess *session.Session) error {
		concept, err := sess.RequireConcept()
		if err != nil {
			return err
		}
		practice, err = s.lessons.GeneratePractice(ctx, concept, sess.FullText)
		if err != nil {
			return err
		}
		sess.SetScenario(practice.Scenario)
		sess.StartQuiz(practice.Quiz)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return practice, nil
}

func (s *sessionService) Simulate(ctx context.Context, id string) (*domain.Simulation, error) {
	sess, err := s.update(ctx, id, func(sess *session.Session) error {
		concept, err := sess.RequireConcept()
		if err != nil {
			return err
		}
		simulation, err := s.lessons.GenerateSimulation(ctx, concept, sess.FullText)
		if err != nil {
			return err
		}
		sess.SetSimulation(simulation)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess.Simulation, nil
}

func (s *sessionService) Animate(ctx context.Context, id, script string) (*domain.MediaArtifact, error) {
	return s.renderMedia(ctx, id, script, s.media.CreateAnimation)
}

func (s *sessionService) MakeVideo(ctx context.Context, id, script string) (*domain.MediaArtifact, error) {
	return s.renderMedia(ctx, id, script, s.media.CreateVideo)
}

// renderMedia does not hold the session lock while the job renders; the
// artifact is attached afterwards only if the concept is still selected.
func (s *sessionService) renderMedia(
	ctx context.Context,
	id, script string,
	create func(context.Context, MediaRequest) (*domain.MediaArtifact, error),
) (*domain.MediaArtifact, error) {
	unlock := s.locks.Lock(id)
	sess, err := s.store.Get(ctx, id)
	unlock()
	if err != nil {
		return nil, err
	}
	concept, err := sess.RequireConcept()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(script) == "" && sess.Explanation != nil {
		script = sess.Explanation.Prose()
		if s.narrationBudget > 0 {
			script = prompt.Truncate(script, s.narrationBudget)
		}
	}

	artifact, err := create(ctx, MediaRequest{SessionID: id, Concept: concept, Script: script})
	if err != nil {
		return nil, err
	}

	_, err = s.update(ctx, id, func(sess *session.Session) error {
		if sess.SelectedConcept == concept {
			sess.AddMedia(*artifact)
		}
		return nil
	})
	if err != nil {
		logger.Get().Warn("Rendered media could not be attached to session",
			zap.String("session_id", id), zap.Error(err))
	}
	return artifact, nil
}
