package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"

	"github.com/estudia/server/domain"
	"github.com/estudia/server/domain/repositories"
	"github.com/estudia/server/internal/metrics"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "llama-3.3-70b-versatile"
)

// OpenAIConfig holds configuration for the OpenAI-compatible completion
// adapter. Only APIKey is required; BaseURL defaults to Groq's
// OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewOpenAIConfigFromEnv reads the adapter configuration from the
// environment.
func NewOpenAIConfigFromEnv() OpenAIConfig {
	return OpenAIConfig{
		APIKey:  os.Getenv("GROQ_API_KEY"),
		BaseURL: os.Getenv("LLM_BASE_URL"),
		Model:   os.Getenv("LLM_MODEL"),
	}
}

// OpenAICompletion implements LanguageModel against any OpenAI-compatible
// chat completions API (Groq, OpenAI, ...).
type OpenAICompletion struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.LanguageModel = (*OpenAICompletion)(nil)

// NewOpenAICompletion creates a new OpenAI-compatible completion adapter.
func NewOpenAICompletion(config OpenAIConfig, logger *zap.Logger) (*OpenAICompletion, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("completion API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := config.Model
	if model == "" {
		model = defaultModel
	}

	client := openai.NewClient(
		option.WithAPIKey(config.APIKey),
		option.WithBaseURL(baseURL),
	)

	return &OpenAICompletion{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Complete implements repositories.LanguageModel. The request always asks
// for a JSON object response; the raw text is returned unparsed.
func (o *OpenAICompletion) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	metrics.ProviderRequests.WithLabelValues("completion").Inc()

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		metrics.ProviderFailures.WithLabelValues("completion").Inc()
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			o.logger.Error("completion provider returned error",
				zap.Int("statusCode", apierr.StatusCode),
				zap.String("response", apierr.RawJSON()))
		} else {
			o.logger.Error("completion request failed", zap.Error(err))
		}
		return "", fmt.Errorf("%w: completion", domain.ErrProvider)
	}

	if len(resp.Choices) == 0 {
		metrics.ProviderFailures.WithLabelValues("completion").Inc()
		o.logger.Error("completion provider returned no choices")
		return "", fmt.Errorf("%w: completion returned no choices", domain.ErrProvider)
	}

	return resp.Choices[0].Message.Content, nil
}
