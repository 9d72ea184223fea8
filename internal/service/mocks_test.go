package service

import (
	"context"
	"io"
	"time"

	"lesson-byte/internal/domain"
	"lesson-byte/internal/session"

	"github.com/stretchr/testify/mock"
)

// --- MockTextGenerator ---
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	args := m.Called(ctx, key, expiration)
	return args.Error(0)
}

// --- MockTextExtractor ---
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) Extract(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

// --- MockDocumentRepository ---
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) SaveDocument(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetDocumentByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListDocumentsBySession(ctx context.Context, sessionID string) ([]*domain.Document, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

// --- MockArtifactRepository ---
type MockArtifactRepository struct {
	mock.Mock
}

func (m *MockArtifactRepository) SaveArtifact(ctx context.Context, artifact *domain.MediaArtifact) error {
	args := m.Called(ctx, artifact)
	return args.Error(0)
}

func (m *MockArtifactRepository) ListArtifactsBySession(ctx context.Context, sessionID string) ([]*domain.MediaArtifact, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MediaArtifact), args.Error(1)
}

// --- MockLessonService ---
type MockLessonService struct {
	mock.Mock
}

func (m *MockLessonService) ExtractConcepts(ctx context.Context, text string) ([]domain.Concept, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Concept), args.Error(1)
}

func (m *MockLessonService) GenerateExplanation(ctx context.Context, concept domain.Concept, source string) (*domain.Explanation, error) {
	args := m.Called(ctx, concept, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Explanation), args.Error(1)
}

func (m *MockLessonService) GenerateScenario(ctx context.Context, concept domain.Concept, source string) (*domain.Scenario, error) {
	args := m.Called(ctx, concept, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Scenario), args.Error(1)
}

func (m *MockLessonService) EvaluateAnswer(ctx context.Context, scenario, answer, source string) (*domain.Feedback, error) {
	args := m.Called(ctx, scenario, answer, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Feedback), args.Error(1)
}

func (m *MockLessonService) GenerateQuiz(ctx context.Context, source string) (*domain.Quiz, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockLessonService) GenerateSimulation(ctx context.Context, concept domain.Concept, source string) (*domain.Simulation, error) {
	args := m.Called(ctx, concept, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Simulation), args.Error(1)
}

func (m *MockLessonService) GeneratePractice(ctx context.Context, concept domain.Concept, source string) (*Practice, error) {
	args := m.Called(ctx, concept, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Practice), args.Error(1)
}

// --- MockMediaService ---
type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) CreateAnimation(ctx context.Context, req MediaRequest) (*domain.MediaArtifact, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MediaArtifact), args.Error(1)
}

func (m *MockMediaService) CreateVideo(ctx context.Context, req MediaRequest) (*domain.MediaArtifact, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MediaArtifact), args.Error(1)
}

func (m *MockMediaService) Enabled(kind domain.MediaKind) bool {
	args := m.Called(kind)
	return args.Bool(0)
}

// --- MockDocumentService ---
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Ingest(ctx context.Context, sessionID, fileName string, content io.Reader) (*domain.Document, string, error) {
	args := m.Called(ctx, sessionID, fileName, content)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.Document), args.String(1), args.Error(2)
}

func (m *MockDocumentService) Record(ctx context.Context, doc *domain.Document) {
	m.Called(ctx, doc)
}

func (m *MockDocumentService) Discard(doc *domain.Document) {
	m.Called(doc)
}

// memorySessionStore keeps sessions in a map by value.
type memorySessionStore struct {
	sessions map[string]session.Session
	saves    int
}

func newMemorySessionStore(seed ...*session.Session) *memorySessionStore {
	st := &memorySessionStore{sessions: make(map[string]session.Session)}
	for _, s := range seed {
		st.sessions[s.ID] = *s
	}
	return st
}

func (m *memorySessionStore) Create(ctx context.Context) (*session.Session, error) {
	sess := session.New("01HZXTESTSESSION0000000000", time.Now())
	m.sessions[sess.ID] = *sess
	return sess, nil
}

func (m *memorySessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return nil, domain.NewSessionNotFoundError(id)
	}
	return &sess, nil
}

func (m *memorySessionStore) Save(ctx context.Context, sess *session.Session) error {
	m.saves++
	m.sessions[sess.ID] = *sess
	return nil
}
