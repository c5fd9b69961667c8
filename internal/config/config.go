package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds process-level configuration. Provider-specific settings
// are read by each adapter's own FromEnv helper; this struct carries only
// what the wiring in main needs to decide.
type Config struct {
	Port string

	// LLMProvider selects the completion backend: "openai" (any
	// OpenAI-compatible endpoint, the default) or "gemini".
	LLMProvider string
	// STTProvider selects the transcription backend: "whisper" (default)
	// or "google".
	STTProvider string

	// MongoURI and DatabaseURL select the session store backend. Mongo
	// wins when both are set; when neither is set the session endpoints
	// degrade to 503 while everything else keeps working.
	MongoURI    string
	DatabaseURL string

	// DefaultVoiceID is applied when a synthesis request names no voice.
	DefaultVoiceID string
	// VoiceLanguage filters the voice listing ("es").
	VoiceLanguage string
}

// Load reads configuration from environment variables with sensible
// defaults. It loads a .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		LLMProvider:    getEnv("LLM_PROVIDER", "openai"),
		STTProvider:    getEnv("STT_PROVIDER", "whisper"),
		MongoURI:       os.Getenv("MONGODB_URI"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DefaultVoiceID: getEnv("TTS_DEFAULT_VOICE_ID", "Diego"),
		VoiceLanguage:  getEnv("VOICE_LANGUAGE", "es"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
