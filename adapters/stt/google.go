package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/estudia/server/domain"
	"github.com/estudia/server/domain/repositories"
	"github.com/estudia/server/internal/metrics"
)

// GoogleTranscriber implements SpeechToText using Google Cloud
// Speech-to-Text synchronous recognition. Selected with
// STT_PROVIDER=google; credentials come from the usual
// GOOGLE_APPLICATION_CREDENTIALS mechanism.
type GoogleTranscriber struct {
	client   *speech.Client
	language string
	logger   *zap.Logger
}

var _ repositories.SpeechToText = (*GoogleTranscriber)(nil)

// NewGoogleTranscriber creates a new Google Cloud transcription adapter.
func NewGoogleTranscriber(ctx context.Context, language string, logger *zap.Logger) (*GoogleTranscriber, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	if language == "" {
		language = "es-ES"
	}

	return &GoogleTranscriber{
		client:   client,
		language: language,
		logger:   logger,
	}, nil
}

// Close releases the underlying gRPC connection.
func (g *GoogleTranscriber) Close() error {
	return g.client.Close()
}

// Transcribe implements repositories.SpeechToText. The best alternative of
// each result is concatenated into the transcript.
func (g *GoogleTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	metrics.ProviderRequests.WithLabelValues("transcription").Inc()

	encoding, err := encodingFor(mimeType)
	if err != nil {
		metrics.ProviderFailures.WithLabelValues("transcription").Inc()
		g.logger.Error("unsupported audio mime type", zap.String("mimeType", mimeType))
		return "", fmt.Errorf("%w: transcription", domain.ErrProvider)
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        encoding,
			SampleRateHertz: 48000,
			LanguageCode:    g.language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		metrics.ProviderFailures.WithLabelValues("transcription").Inc()
		g.logger.Error("google speech recognize failed", zap.Error(err))
		return "", fmt.Errorf("%w: transcription", domain.ErrProvider)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, result.Alternatives[0].Transcript)
		}
	}

	return strings.Join(parts, " "), nil
}

// encodingFor converts a recorded container's mime type to the Google
// Speech API encoding enum.
func encodingFor(mimeType string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch {
	case strings.Contains(mimeType, "webm"):
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	case strings.Contains(mimeType, "ogg"):
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case strings.Contains(mimeType, "wav"), strings.Contains(mimeType, "l16"):
		return speechpb.RecognitionConfig_LINEAR16, nil
	case strings.Contains(mimeType, "flac"):
		return speechpb.RecognitionConfig_FLAC, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported mime type: %s", mimeType)
	}
}
