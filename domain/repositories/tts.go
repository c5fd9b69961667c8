package repositories

import (
	"context"

	"github.com/estudia/server/domain/entities"
)

// SynthesisOptions selects the voice and pace for one synthesis request.
type SynthesisOptions struct {
	VoiceID      string
	SpeakingRate float64
}

// TextToSpeech abstracts speech synthesis services.
type TextToSpeech interface {
	// Synthesize renders text as audio, returning the raw bytes and the
	// content type matching the provider's output encoding.
	Synthesize(ctx context.Context, text string, opts SynthesisOptions) ([]byte, string, error)
	// ListVoices returns the provider's voices for a language code,
	// normalized into the Voice shape.
	ListVoices(ctx context.Context, language string) ([]entities.Voice, error)
}
