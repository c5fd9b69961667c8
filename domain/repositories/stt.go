package repositories

import "context"

// SpeechToText abstracts speech recognition services.
type SpeechToText interface {
	// Transcribe converts recorded audio to text. mimeType identifies the
	// container the client recorded with (e.g. "audio/webm").
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}
