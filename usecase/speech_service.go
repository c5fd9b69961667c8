package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/estudia/server/domain"
	"github.com/estudia/server/domain/entities"
	"github.com/estudia/server/domain/repositories"
)

const (
	// Speaking-rate bounds and the language-learning default pace.
	minSpeed     = 0.5
	maxSpeed     = 1.5
	defaultSpeed = 0.7
)

// SpeechService handles transcription and synthesis. Either collaborator
// may be nil when its provider is not configured; the matching operations
// then fail fast as unavailable.
type SpeechService struct {
	stt            repositories.SpeechToText
	tts            repositories.TextToSpeech
	defaultVoiceID string
	voiceLanguage  string
	logger         *zap.Logger
}

// NewSpeechService creates a new speech service.
func NewSpeechService(stt repositories.SpeechToText, tts repositories.TextToSpeech, defaultVoiceID, voiceLanguage string, logger *zap.Logger) *SpeechService {
	return &SpeechService{
		stt:            stt,
		tts:            tts,
		defaultVoiceID: defaultVoiceID,
		voiceLanguage:  voiceLanguage,
		logger:         logger,
	}
}

// TranscribeAudio converts recorded audio to text. The transcript is
// returned exactly as the provider produced it.
func (s *SpeechService) TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: audio is required", domain.ErrInvalidInput)
	}
	if s.stt == nil {
		return "", fmt.Errorf("%w: transcription provider is not configured", domain.ErrUnavailable)
	}
	return s.stt.Transcribe(ctx, audio, mimeType)
}

// SynthesizeSpeech renders text as audio with the requested voice and
// pace, returning the raw bytes and their content type.
func (s *SpeechService) SynthesizeSpeech(ctx context.Context, text, voiceID string, speed *float64) ([]byte, string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, "", fmt.Errorf("%w: text is required", domain.ErrInvalidInput)
	}
	if s.tts == nil {
		return nil, "", fmt.Errorf("%w: speech synthesis provider is not configured", domain.ErrUnavailable)
	}

	if voiceID == "" {
		voiceID = s.defaultVoiceID
	}

	return s.tts.Synthesize(ctx, text, repositories.SynthesisOptions{
		VoiceID:      voiceID,
		SpeakingRate: clampSpeed(speed),
	})
}

// ListSpanishVoices returns the synthesis voices for the configured
// target language.
func (s *SpeechService) ListSpanishVoices(ctx context.Context) ([]entities.Voice, error) {
	if s.tts == nil {
		return nil, fmt.Errorf("%w: speech synthesis provider is not configured", domain.ErrUnavailable)
	}
	return s.tts.ListVoices(ctx, s.voiceLanguage)
}

// clampSpeed bounds the requested speaking rate, defaulting to the slow
// language-learning pace when none is given.
func clampSpeed(speed *float64) float64 {
	if speed == nil {
		return defaultSpeed
	}
	if *speed < minSpeed {
		return minSpeed
	}
	if *speed > maxSpeed {
		return maxSpeed
	}
	return *speed
}
