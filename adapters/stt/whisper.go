package stt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/estudia/server/domain"
	"github.com/estudia/server/domain/repositories"
	"github.com/estudia/server/internal/metrics"
)

const (
	defaultBaseURL  = "https://api.groq.com/openai/v1"
	defaultModel    = "whisper-large-v3"
	defaultLanguage = "es"
)

// WhisperConfig holds configuration for the Whisper transcription adapter.
// The same Groq credential used for completions serves here.
type WhisperConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
}

// NewWhisperConfigFromEnv reads the adapter configuration from the
// environment.
func NewWhisperConfigFromEnv() WhisperConfig {
	return WhisperConfig{
		APIKey:   os.Getenv("GROQ_API_KEY"),
		BaseURL:  os.Getenv("LLM_BASE_URL"),
		Model:    os.Getenv("STT_MODEL"),
		Language: os.Getenv("STT_LANGUAGE"),
	}
}

// WhisperTranscriber implements SpeechToText via a Whisper-style multipart
// transcription endpoint on an OpenAI-compatible API.
type WhisperTranscriber struct {
	client   openai.Client
	model    string
	language string
	logger   *zap.Logger
}

var _ repositories.SpeechToText = (*WhisperTranscriber)(nil)

// NewWhisperTranscriber creates a new Whisper transcription adapter.
func NewWhisperTranscriber(config WhisperConfig, logger *zap.Logger) (*WhisperTranscriber, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("transcription API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := config.Model
	if model == "" {
		model = defaultModel
	}
	language := config.Language
	if language == "" {
		language = defaultLanguage
	}

	client := openai.NewClient(
		option.WithAPIKey(config.APIKey),
		option.WithBaseURL(baseURL),
	)

	return &WhisperTranscriber{
		client:   client,
		model:    model,
		language: language,
		logger:   logger,
	}, nil
}

// Transcribe implements repositories.SpeechToText. The audio is uploaded
// as a multipart file named after its mime type; the transcript comes back
// unmodified.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	metrics.ProviderRequests.WithLabelValues("transcription").Inc()

	resp, err := w.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model:          openai.AudioModel(w.model),
		File:           openai.File(bytes.NewReader(audio), filenameFor(mimeType), mimeType),
		Language:       openai.String(w.language),
		ResponseFormat: openai.AudioResponseFormatJSON,
	})
	if err != nil {
		metrics.ProviderFailures.WithLabelValues("transcription").Inc()
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			w.logger.Error("transcription provider returned error",
				zap.Int("statusCode", apierr.StatusCode),
				zap.String("response", apierr.RawJSON()))
		} else {
			w.logger.Error("transcription request failed", zap.Error(err))
		}
		return "", fmt.Errorf("%w: transcription", domain.ErrProvider)
	}

	return resp.Text, nil
}

// filenameFor derives an upload filename from the recorded container's
// mime type. Whisper endpoints use the extension to sniff the format.
func filenameFor(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "webm"):
		return "audio.webm"
	case strings.Contains(mimeType, "ogg"):
		return "audio.ogg"
	case strings.Contains(mimeType, "wav"):
		return "audio.wav"
	case strings.Contains(mimeType, "mp4"):
		return "audio.mp4"
	case strings.Contains(mimeType, "mpeg"), strings.Contains(mimeType, "mp3"):
		return "audio.mp3"
	default:
		return "audio.webm"
	}
}
