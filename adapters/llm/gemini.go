package llm

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/estudia/server/domain"
	"github.com/estudia/server/domain/repositories"
	"github.com/estudia/server/internal/metrics"
)

// GeminiCompletion implements LanguageModel using Google's Gemini API.
// Selected with LLM_PROVIDER=gemini.
type GeminiCompletion struct {
	client *genai.Client
	logger *zap.Logger
	model  string
}

var _ repositories.LanguageModel = (*GeminiCompletion)(nil)

// NewGeminiCompletion creates a new Gemini completion adapter.
func NewGeminiCompletion(logger *zap.Logger) (*GeminiCompletion, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &GeminiCompletion{
		client: client,
		logger: logger,
		model:  model,
	}, nil
}

// Complete implements repositories.LanguageModel. The JSON response MIME
// type forces the model to emit a single JSON object.
func (g *GeminiCompletion) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	metrics.ProviderRequests.WithLabelValues("completion").Inc()

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(userPrompt), &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(temperature)),
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	})
	if err != nil {
		metrics.ProviderFailures.WithLabelValues("completion").Inc()
		g.logger.Error("gemini completion failed", zap.Error(err))
		return "", fmt.Errorf("%w: completion", domain.ErrProvider)
	}

	text := result.Text()
	if text == "" {
		metrics.ProviderFailures.WithLabelValues("completion").Inc()
		g.logger.Error("gemini completion returned empty content")
		return "", fmt.Errorf("%w: completion returned empty content", domain.ErrProvider)
	}

	return text, nil
}
