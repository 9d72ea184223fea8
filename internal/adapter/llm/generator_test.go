package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"lesson-byte/internal/config"
	"lesson-byte/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// MockModel is a testify mock of llms.Model.
type MockModel struct {
	mock.Mock
}

func (m *MockModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	args := m.Called(ctx, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llms.ContentResponse), args.Error(1)
}

func (m *MockModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func textResponse(s string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: s}}}
}

func TestGenerator_Generate(t *testing.T) {
	model := new(MockModel)
	model.On("GenerateContent", mock.Anything, mock.Anything).Return(textResponse("an answer"), nil)

	out, err := NewGenerator(model, 0.2, time.Second).Generate(context.Background(), "a prompt")

	require.NoError(t, err)
	assert.Equal(t, "an answer", out)
	model.AssertExpectations(t)
}

func TestGenerator_TransportError(t *testing.T) {
	model := new(MockModel)
	model.On("GenerateContent", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	out, err := NewGenerator(model, 0.2, 0).Generate(context.Background(), "a prompt")

	assert.Empty(t, out)
	assert.True(t, domain.IsCode(err, domain.CodeTransport))
}

func TestGenerator_Timeout(t *testing.T) {
	model := new(MockModel)
	model.On("GenerateContent", mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded)

	_, err := NewGenerator(model, 0.2, time.Millisecond).Generate(context.Background(), "a prompt")

	assert.True(t, domain.IsCode(err, domain.CodeTransport))
	assert.ErrorContains(t, err, "timed out")
}

func TestGenerator_EmptyResponseIsFormatError(t *testing.T) {
	model := new(MockModel)
	model.On("GenerateContent", mock.Anything, mock.Anything).Return(textResponse("   "), nil)

	_, err := NewGenerator(model, 0.2, 0).Generate(context.Background(), "a prompt")

	assert.True(t, domain.IsCode(err, domain.CodeFormat))
}

func TestNewModel_MissingKeys(t *testing.T) {
	_, err := NewModel(config.LLMConfig{Provider: ProviderGoogleAI})
	assert.True(t, domain.IsCode(err, domain.CodeConfiguration))

	_, err = NewModel(config.LLMConfig{Provider: ProviderOpenAI})
	assert.True(t, domain.IsCode(err, domain.CodeConfiguration))
}

func TestNewModel_BuildsClients(t *testing.T) {
	model, err := NewModel(config.LLMConfig{Provider: ProviderOpenAI, OpenAIAPIKey: "sk-test", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.NotNil(t, model)

	model, err = NewModel(config.LLMConfig{Provider: ProviderOllama, OllamaServer: "http://localhost:11434", Model: "llama3", Timeout: time.Second})
	require.NoError(t, err)
	assert.NotNil(t, model)
}

func TestNewModel_UnknownProvider(t *testing.T) {
	_, err := NewModel(config.LLMConfig{Provider: "carrier-pigeon"})
	assert.ErrorContains(t, err, "unsupported llm provider")
}

func TestUnavailable_ReturnsConfiguredError(t *testing.T) {
	gen := Unavailable{Err: domain.NewConfigurationError("Gemini text generation (GEMINI_API_KEY)")}

	out, err := gen.Generate(context.Background(), "anything")

	assert.Empty(t, out)
	assert.True(t, domain.IsCode(err, domain.CodeConfiguration))
}
