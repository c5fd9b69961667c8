package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/estudia/server/domain"
	"github.com/estudia/server/domain/entities"
	"github.com/estudia/server/domain/repositories"
	"github.com/estudia/server/internal/metrics"
)

const (
	defaultAPIBaseURL  = "https://api.inworld.ai"
	defaultModelID     = "inworld-tts-1"
	defaultEncoding    = "OGG_OPUS" // compressed speech format
	defaultSampleRate  = 48000
	defaultTemperature = 0.9

	synthesizeTimeout = 60 * time.Second
	listVoicesTimeout = 10 * time.Second
)

// InworldConfig holds configuration for the InworldTTS adapter.
// Required fields:
// - APIKey: the base64 credential for the speech synthesis API
// Optional fields with defaults:
// - APIBaseURL: the base URL for the API (default: "https://api.inworld.ai")
// - ModelID: the synthesis model (default: "inworld-tts-1")
type InworldConfig struct {
	APIKey     string
	APIBaseURL string
	ModelID    string
}

// NewInworldConfigFromEnv creates a new InworldConfig from environment
// variables.
func NewInworldConfigFromEnv() InworldConfig {
	return InworldConfig{
		APIKey:     os.Getenv("TTS_API_KEY"),
		APIBaseURL: os.Getenv("TTS_API_BASE_URL"),
		ModelID:    os.Getenv("TTS_MODEL_ID"),
	}
}

// InworldTTS implements the TextToSpeech interface against the Inworld
// voice API. The provider returns a JSON envelope carrying base64 audio;
// this adapter decodes it to raw bytes before returning.
type InworldTTS struct {
	apiKey     string
	apiBaseURL string
	modelID    string
	encoding   string
	sampleRate int

	// Long-lived clients so connections are reused across requests.
	// Synthesis gets a longer deadline than the voice listing.
	synthClient  *http.Client
	voicesClient *http.Client

	logger *zap.Logger
}

var _ repositories.TextToSpeech = (*InworldTTS)(nil)

type audioConfig struct {
	AudioEncoding   string  `json:"audioEncoding"`
	SampleRateHertz int     `json:"sampleRateHertz"`
	SpeakingRate    float64 `json:"speakingRate"`
}

type synthesizeRequest struct {
	Text        string      `json:"text"`
	VoiceID     string      `json:"voiceId"`
	ModelID     string      `json:"modelId"`
	AudioConfig audioConfig `json:"audioConfig"`
	Temperature float64     `json:"temperature"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

type voiceRecord struct {
	VoiceID     string   `json:"voiceId"`
	DisplayName string   `json:"displayName"`
	Languages   []string `json:"languages"`
	Description string   `json:"description"`
}

// NewInworldTTS creates a new Inworld TTS adapter.
func NewInworldTTS(config InworldConfig, logger *zap.Logger) (*InworldTTS, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("speech synthesis API key is required")
	}

	apiBaseURL := config.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}

	modelID := config.ModelID
	if modelID == "" {
		modelID = defaultModelID
	}

	return &InworldTTS{
		apiKey:       config.APIKey,
		apiBaseURL:   apiBaseURL,
		modelID:      modelID,
		encoding:     defaultEncoding,
		sampleRate:   defaultSampleRate,
		synthClient:  &http.Client{Timeout: synthesizeTimeout},
		voicesClient: &http.Client{Timeout: listVoicesTimeout},
		logger:       logger,
	}, nil
}

// Synthesize implements repositories.TextToSpeech. The encoding, sample
// rate and temperature are fixed policy; only voice and pace vary per
// request.
func (i *InworldTTS) Synthesize(ctx context.Context, text string, opts repositories.SynthesisOptions) ([]byte, string, error) {
	metrics.ProviderRequests.WithLabelValues("synthesis").Inc()

	request := synthesizeRequest{
		Text:    text,
		VoiceID: opts.VoiceID,
		ModelID: i.modelID,
		AudioConfig: audioConfig{
			AudioEncoding:   i.encoding,
			SampleRateHertz: i.sampleRate,
			SpeakingRate:    opts.SpeakingRate,
		},
		Temperature: defaultTemperature,
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/tts/v1/voice", i.apiBaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Basic "+i.apiKey)

	resp, err := i.synthClient.Do(httpReq)
	if err != nil {
		metrics.ProviderFailures.WithLabelValues("synthesis").Inc()
		i.logger.Error("synthesis request failed", zap.Error(err))
		return nil, "", fmt.Errorf("%w: synthesis", domain.ErrProvider)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderFailures.WithLabelValues("synthesis").Inc()
		errorBody, _ := io.ReadAll(resp.Body)
		i.logger.Error("synthesis provider returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(errorBody)))
		return nil, "", fmt.Errorf("%w: synthesis", domain.ErrProvider)
	}

	var envelope synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		metrics.ProviderFailures.WithLabelValues("synthesis").Inc()
		i.logger.Error("failed to decode synthesis response", zap.Error(err))
		return nil, "", fmt.Errorf("%w: synthesis envelope", domain.ErrProvider)
	}
	if envelope.AudioContent == "" {
		metrics.ProviderFailures.WithLabelValues("synthesis").Inc()
		i.logger.Error("synthesis response missing audio content")
		return nil, "", fmt.Errorf("%w: synthesis envelope missing audio", domain.ErrProvider)
	}

	audio, err := base64.StdEncoding.DecodeString(envelope.AudioContent)
	if err != nil {
		metrics.ProviderFailures.WithLabelValues("synthesis").Inc()
		i.logger.Error("failed to decode synthesis audio", zap.Error(err))
		return nil, "", fmt.Errorf("%w: synthesis audio encoding", domain.ErrProvider)
	}

	i.logger.Info("synthesized speech",
		zap.String("voiceID", opts.VoiceID),
		zap.Float64("speakingRate", opts.SpeakingRate),
		zap.Int("audioBytes", len(audio)))

	return audio, contentTypeFor(i.encoding), nil
}

// ListVoices implements repositories.TextToSpeech.
func (i *InworldTTS) ListVoices(ctx context.Context, language string) ([]entities.Voice, error) {
	metrics.ProviderRequests.WithLabelValues("synthesis").Inc()

	reqURL := fmt.Sprintf("%s/tts/v1/voices", i.apiBaseURL)
	if language != "" {
		reqURL += "?filter=" + url.QueryEscape("language="+language)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Basic "+i.apiKey)

	resp, err := i.voicesClient.Do(httpReq)
	if err != nil {
		metrics.ProviderFailures.WithLabelValues("synthesis").Inc()
		i.logger.Error("voice listing request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: voice listing", domain.ErrProvider)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderFailures.WithLabelValues("synthesis").Inc()
		errorBody, _ := io.ReadAll(resp.Body)
		i.logger.Error("voice listing provider returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(errorBody)))
		return nil, fmt.Errorf("%w: voice listing", domain.ErrProvider)
	}

	var voicesResponse struct {
		Voices []voiceRecord `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&voicesResponse); err != nil {
		metrics.ProviderFailures.WithLabelValues("synthesis").Inc()
		i.logger.Error("failed to decode voice listing", zap.Error(err))
		return nil, fmt.Errorf("%w: voice listing", domain.ErrProvider)
	}

	voices := make([]entities.Voice, 0, len(voicesResponse.Voices))
	for _, v := range voicesResponse.Voices {
		voices = append(voices, entities.Voice{
			VoiceID:     v.VoiceID,
			Name:        v.DisplayName,
			Languages:   v.Languages,
			Description: v.Description,
		})
	}

	i.logger.Info("retrieved available voices",
		zap.String("language", language),
		zap.Int("count", len(voices)))

	return voices, nil
}

// contentTypeFor maps the provider encoding to the HTTP content type the
// audio is served with.
func contentTypeFor(encoding string) string {
	switch encoding {
	case "OGG_OPUS":
		return "audio/ogg"
	case "MP3":
		return "audio/mpeg"
	case "LINEAR16":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}
