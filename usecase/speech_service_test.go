package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/estudia/server/domain"
	"github.com/estudia/server/domain/entities"
	"github.com/estudia/server/domain/repositories"
)

type fakeTranscriber struct {
	transcript string
	calls      int
	lastMime   string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	f.calls++
	f.lastMime = mimeType
	return f.transcript, nil
}

type fakeSynthesizer struct {
	audio    []byte
	voices   []entities.Voice
	lastOpts repositories.SynthesisOptions
	lastLang string
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text string, opts repositories.SynthesisOptions) ([]byte, string, error) {
	f.lastOpts = opts
	return f.audio, "audio/ogg", nil
}

func (f *fakeSynthesizer) ListVoices(ctx context.Context, language string) ([]entities.Voice, error) {
	f.lastLang = language
	return f.voices, nil
}

func newSpeechService(t *testing.T, stt repositories.SpeechToText, tts repositories.TextToSpeech) *SpeechService {
	t.Helper()
	return NewSpeechService(stt, tts, "Diego", "es", zaptest.NewLogger(t))
}

func TestClampSpeed(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{-5, 0.5},
		{0.3, 0.5},
		{0.7, 0.7},
		{1.5, 1.5},
		{9, 1.5},
	}

	for _, tc := range cases {
		if got := clampSpeed(&tc.in); got != tc.want {
			t.Errorf("clampSpeed(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if got := clampSpeed(nil); got != defaultSpeed {
		t.Errorf("clampSpeed(nil) = %v, want %v", got, defaultSpeed)
	}
}

func TestTranscribeAudio(t *testing.T) {
	stt := &fakeTranscriber{transcript: "el perro corre"}
	service := newSpeechService(t, stt, nil)

	transcript, err := service.TranscribeAudio(context.Background(), []byte{1, 2, 3}, "audio/webm")
	if err != nil {
		t.Fatalf("Failed to transcribe: %v", err)
	}

	if transcript != "el perro corre" {
		t.Errorf("Expected transcript unmodified, got %q", transcript)
	}
	if stt.lastMime != "audio/webm" {
		t.Errorf("Expected mime type to pass through, got %q", stt.lastMime)
	}
}

func TestTranscribeAudioMissingAudio(t *testing.T) {
	stt := &fakeTranscriber{}
	service := newSpeechService(t, stt, nil)

	_, err := service.TranscribeAudio(context.Background(), nil, "audio/webm")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Expected invalid input, got %v", err)
	}
	if stt.calls != 0 {
		t.Error("Provider should not be reached for missing audio")
	}
}

func TestTranscribeAudioWithoutProvider(t *testing.T) {
	service := newSpeechService(t, nil, nil)

	_, err := service.TranscribeAudio(context.Background(), []byte{1}, "audio/webm")
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("Expected unavailable, got %v", err)
	}
}

func TestSynthesizeSpeech(t *testing.T) {
	tts := &fakeSynthesizer{audio: []byte("ogg-bytes")}
	service := newSpeechService(t, nil, tts)

	speed := 1.2
	audio, contentType, err := service.SynthesizeSpeech(context.Background(), "hola", "Lupita", &speed)
	if err != nil {
		t.Fatalf("Failed to synthesize: %v", err)
	}

	if string(audio) != "ogg-bytes" {
		t.Error("Expected raw audio bytes to pass through")
	}
	if contentType != "audio/ogg" {
		t.Errorf("Expected content type audio/ogg, got %q", contentType)
	}
	if tts.lastOpts.VoiceID != "Lupita" {
		t.Errorf("Expected requested voice, got %q", tts.lastOpts.VoiceID)
	}
	if tts.lastOpts.SpeakingRate != 1.2 {
		t.Errorf("Expected speaking rate 1.2, got %v", tts.lastOpts.SpeakingRate)
	}
}

func TestSynthesizeSpeechDefaults(t *testing.T) {
	tts := &fakeSynthesizer{audio: []byte("x")}
	service := newSpeechService(t, nil, tts)

	if _, _, err := service.SynthesizeSpeech(context.Background(), "hola", "", nil); err != nil {
		t.Fatalf("Failed to synthesize: %v", err)
	}

	if tts.lastOpts.VoiceID != "Diego" {
		t.Errorf("Expected default voice Diego, got %q", tts.lastOpts.VoiceID)
	}
	if tts.lastOpts.SpeakingRate != defaultSpeed {
		t.Errorf("Expected default speed %v, got %v", defaultSpeed, tts.lastOpts.SpeakingRate)
	}
}

func TestSynthesizeSpeechValidation(t *testing.T) {
	service := newSpeechService(t, nil, &fakeSynthesizer{})

	for _, text := range []string{"", "   "} {
		_, _, err := service.SynthesizeSpeech(context.Background(), text, "", nil)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("Expected invalid input for %q, got %v", text, err)
		}
	}
}

func TestSynthesizeSpeechWithoutProvider(t *testing.T) {
	service := newSpeechService(t, nil, nil)

	_, _, err := service.SynthesizeSpeech(context.Background(), "hola", "", nil)
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("Expected unavailable, got %v", err)
	}

	if _, err := service.ListSpanishVoices(context.Background()); !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("Expected unavailable for voice listing, got %v", err)
	}
}

func TestListSpanishVoices(t *testing.T) {
	tts := &fakeSynthesizer{voices: []entities.Voice{{VoiceID: "Diego", Name: "Diego", Languages: []string{"es"}}}}
	service := newSpeechService(t, nil, tts)

	voices, err := service.ListSpanishVoices(context.Background())
	if err != nil {
		t.Fatalf("Failed to list voices: %v", err)
	}

	if len(voices) != 1 {
		t.Fatalf("Expected 1 voice, got %d", len(voices))
	}
	if tts.lastLang != "es" {
		t.Errorf("Expected listing filtered to es, got %q", tts.lastLang)
	}
}
