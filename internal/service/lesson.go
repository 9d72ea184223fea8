package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"lesson-byte/internal/adapter/llm"
	"lesson-byte/internal/cache"
	"lesson-byte/internal/domain"
	"lesson-byte/internal/logger"
	"lesson-byte/internal/prompt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const feedbackHeading = "### Feedback:"

// Practice is a scenario and a quiz generated together for one concept.
type Practice struct {
	Scenario *domain.Scenario `json:"scenario"`
	Quiz     *domain.Quiz     `json:"quiz"`
}

// LessonService turns document text into learning material. Every method is
// stateless; the caller decides where results are kept.
type LessonService interface {
	ExtractConcepts(ctx context.Context, text string) ([]domain.Concept, error)
	GenerateExplanation(ctx context.Context, concept domain.Concept, source string) (*domain.Explanation, error)
	GenerateScenario(ctx context.Context, concept domain.Concept, source string) (*domain.Scenario, error)
	EvaluateAnswer(ctx context.Context, scenario, answer, source string) (*domain.Feedback, error)
	GenerateQuiz(ctx context.Context, source string) (*domain.Quiz, error)
	GenerateSimulation(ctx context.Context, concept domain.Concept, source string) (*domain.Simulation, error)
	GeneratePractice(ctx context.Context, concept domain.Concept, source string) (*Practice, error)
}

type lessonService struct {
	generator      domain.TextGenerator
	prompts        *prompt.Registry
	cache          domain.Cache
	explanationTTL time.Duration
	quizShape      domain.QuizShape
	sf             singleflight.Group
}

// NewLessonService creates a LessonService. cache may be nil, in which case
// explanations are always generated.
func NewLessonService(
	generator domain.TextGenerator,
	prompts *prompt.Registry,
	cache domain.Cache,
	explanationTTL time.Duration,
	quizShape domain.QuizShape,
) LessonService {
	if quizShape.QuestionCount <= 0 || quizShape.OptionCount <= 0 {
		quizShape = domain.DefaultQuizShape
	}
	return &lessonService{
		generator:      generator,
		prompts:        prompts,
		cache:          cache,
		explanationTTL: explanationTTL,
		quizShape:      quizShape,
	}
}

func (s *lessonService) complete(ctx context.Context, id string, vars prompt.Vars) (string, error) {
	p, err := s.prompts.Render(id, vars)
	if err != nil {
		return "", domain.NewInternalError("failed to build prompt", err)
	}
	return s.generator.Generate(ctx, p)
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewInvalidInputError(fmt.Sprintf("%s is empty", field))
	}
	return nil
}

// ExtractConcepts asks for a JSON list of concept names. The list keeps the
// model's order; any blank entry rejects the whole response.
func (s *lessonService) ExtractConcepts(ctx context.Context, text string) ([]domain.Concept, error) {
	if err := requireText("document text", text); err != nil {
		return nil, err
	}
	raw, err := s.complete(ctx, prompt.Concepts, prompt.Vars{Context: text})
	if err != nil {
		return nil, err
	}

	payload, err := llm.ExtractJSON(raw)
	if err != nil {
		return nil, domain.NewFormatError("concept list is not JSON", err)
	}
	var names []string
	if err := json.Unmarshal([]byte(payload), &names); err != nil {
		logger.Get().Warn("Concept list did not parse", zap.Error(err), zap.String("payload", payload))
		return nil, domain.NewFormatError("concept list is not a JSON list of strings", err)
	}
	if len(names) == 0 {
		return nil, domain.NewFormatError("concept list is empty", nil)
	}

	concepts := make([]domain.Concept, 0, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, domain.NewFormatError(fmt.Sprintf("concept %d is blank", i+1), nil)
		}
		concepts = append(concepts, domain.Concept(name))
	}
	return concepts, nil
}

// GenerateExplanation returns markdown with embedded mermaid diagrams. Results
// are cached by concept and context, and concurrent identical requests share
// one model call.
func (s *lessonService) GenerateExplanation(ctx context.Context, concept domain.Concept, source string) (*domain.Explanation, error) {
	if err := requireText("concept", string(concept)); err != nil {
		return nil, err
	}
	key := cache.GenerateCacheKey("lesson", "explanation", cache.Fingerprint(string(concept)), cache.Fingerprint(source))

	if markdown, ok := s.cachedText(ctx, key); ok {
		return domain.NewExplanation(concept, markdown), nil
	}

	v, shared, err := sharedCall(ctx, &s.sf, key, func(ctx context.Context) (interface{}, error) {
		markdown, err := s.complete(ctx, prompt.Explanation, prompt.Vars{Concept: string(concept), Context: source})
		if err != nil {
			return nil, err
		}
		markdown = strings.TrimSpace(llm.StripThink(markdown))
		s.storeText(ctx, key, markdown, s.explanationTTL)
		return markdown, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Get().Debug("Explanation shared with a concurrent request", zap.String("concept", string(concept)))
	}
	return domain.NewExplanation(concept, v.(string)), nil
}

func (s *lessonService) GenerateScenario(ctx context.Context, concept domain.Concept, source string) (*domain.Scenario, error) {
	if err := requireText("concept", string(concept)); err != nil {
		return nil, err
	}
	text, err := s.complete(ctx, prompt.Scenario, prompt.Vars{Concept: string(concept), Context: source})
	if err != nil {
		return nil, err
	}
	return &domain.Scenario{Concept: concept, Text: strings.TrimSpace(llm.StripThink(text))}, nil
}

// EvaluateAnswer grades a free-text answer. The feedback always starts with
// the feedback heading.
func (s *lessonService) EvaluateAnswer(ctx context.Context, scenario, answer, source string) (*domain.Feedback, error) {
	if err := requireText("scenario", scenario); err != nil {
		return nil, err
	}
	if err := requireText("answer", answer); err != nil {
		return nil, err
	}
	text, err := s.complete(ctx, prompt.Evaluation, prompt.Vars{Scenario: scenario, Answer: answer, Context: source})
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(llm.StripThink(text))
	if !strings.HasPrefix(text, feedbackHeading) {
		text = feedbackHeading + "\n\n" + text
	}
	return &domain.Feedback{Markdown: text}, nil
}

// GenerateQuiz parses {"questions": [...]} strictly. A quiz that could not be
// scored unambiguously is a FORMAT_ERROR; no partial quiz is returned.
func (s *lessonService) GenerateQuiz(ctx context.Context, source string) (*domain.Quiz, error) {
	if err := requireText("quiz source", source); err != nil {
		return nil, err
	}
	raw, err := s.complete(ctx, prompt.Quiz, prompt.Vars{
		Context:       source,
		QuestionCount: s.quizShape.QuestionCount,
		OptionCount:   s.quizShape.OptionCount,
	})
	if err != nil {
		return nil, err
	}

	payload, err := llm.ExtractJSON(raw)
	if err != nil {
		return nil, domain.NewFormatError("quiz is not JSON", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal([]byte(payload), &quiz); err != nil {
		return nil, domain.NewFormatError("quiz JSON has the wrong shape", err)
	}
	quiz.Normalize()
	if err := quiz.Validate(s.quizShape); err != nil {
		logger.Get().Warn("Rejected generated quiz", zap.Error(err))
		return nil, domain.NewFormatError("generated quiz is invalid", err)
	}
	return &quiz, nil
}

// GenerateSimulation asks for canvas JavaScript and wraps it in a standalone
// page.
func (s *lessonService) GenerateSimulation(ctx context.Context, concept domain.Concept, source string) (*domain.Simulation, error) {
	if err := requireText("concept", string(concept)); err != nil {
		return nil, err
	}
	raw, err := s.complete(ctx, prompt.Simulation, prompt.Vars{Concept: string(concept), Context: source})
	if err != nil {
		return nil, err
	}
	code := llm.StripFences(llm.StripThink(raw), "javascript", "js")
	if code == "" {
		return nil, domain.NewFormatError("simulation code is empty", nil)
	}
	return &domain.Simulation{Concept: concept, HTML: RenderSimulationPage(concept, code)}, nil
}

// GeneratePractice issues the scenario and quiz requests concurrently and
// returns both or the first error.
func (s *lessonService) GeneratePractice(ctx context.Context, concept domain.Concept, source string) (*Practice, error) {
	var practice Practice
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sc, err := s.GenerateScenario(gctx, concept, source)
		practice.Scenario = sc
		return err
	})
	g.Go(func() error {
		q, err := s.GenerateQuiz(gctx, source)
		practice.Quiz = q
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &practice, nil
}

func (s *lessonService) cachedText(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	val, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Cache read failed, generating instead", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	logger.Get().Debug("Cache hit", zap.String("key", key))
	return val, true
}

func (s *lessonService) storeText(ctx context.Context, key, value string, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		logger.Get().Warn("Failed to cache generated text", zap.String("key", key), zap.Error(err))
	}
}
