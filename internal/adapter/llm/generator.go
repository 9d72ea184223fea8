package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lesson-byte/internal/config"
	"lesson-byte/internal/domain"
	"lesson-byte/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

const (
	ProviderGoogleAI = "googleai"
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
)

// NewModel builds the langchaingo model selected by cfg.Provider. A missing
// API key is reported as a CONFIGURATION_ERROR so callers can disable the
// text features instead of exiting. Clients are built on a background context
// because they outlive any startup deadline.
func NewModel(cfg config.LLMConfig) (llms.Model, error) {
	switch cfg.Provider {
	case ProviderGoogleAI, "":
		if cfg.GeminiAPIKey == "" {
			return nil, domain.NewConfigurationError("Gemini text generation (GEMINI_API_KEY)")
		}
		model, err := googleai.New(context.Background(),
			googleai.WithAPIKey(cfg.GeminiAPIKey),
			googleai.WithDefaultModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return model, nil
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, domain.NewConfigurationError("OpenAI text generation (OPENAI_API_KEY)")
		}
		model, err := openai.New(openai.WithToken(cfg.OpenAIAPIKey), openai.WithModel(cfg.Model))
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		return model, nil
	case ProviderOllama:
		httpClient := &http.Client{Timeout: cfg.Timeout}
		model, err := ollama.New(
			ollama.WithServerURL(cfg.OllamaServer),
			ollama.WithModel(cfg.Model),
			ollama.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return model, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// Generator implements domain.TextGenerator on top of any langchaingo model.
type Generator struct {
	model       llms.Model
	temperature float64
	timeout     time.Duration
}

// NewGenerator creates a new Generator. A zero timeout means the caller's
// context alone bounds each call.
func NewGenerator(model llms.Model, temperature float64, timeout time.Duration) *Generator {
	return &Generator{
		model:       model,
		temperature: temperature,
		timeout:     timeout,
	}
}

// Generate implements domain.TextGenerator
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	l := logger.Get()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	response, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt, llms.WithTemperature(g.temperature))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			l.Error("LLM request timed out", zap.Error(err), zap.Duration("timeout", g.timeout))
			return "", domain.NewTransportError("LLM request timed out", err)
		}
		l.Error("Failed to get response from LLM", zap.Error(err))
		return "", domain.NewTransportError("LLM call failed", err)
	}

	l.Debug("LLM response received",
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("response_chars", len(response)),
		zap.Duration("duration", time.Since(start)))

	if strings.TrimSpace(response) == "" {
		return "", domain.NewFormatError("LLM returned an empty response", nil)
	}
	return response, nil
}

var _ domain.TextGenerator = (*Generator)(nil)

// Unavailable stands in for a model that could not be configured. Every call
// returns Err, so text features fail per request instead of at startup.
type Unavailable struct {
	Err error
}

func (u Unavailable) Generate(ctx context.Context, prompt string) (string, error) {
	return "", u.Err
}

var _ domain.TextGenerator = Unavailable{}
