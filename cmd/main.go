package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/estudia/server/adapters/llm"
	mongostore "github.com/estudia/server/adapters/mongo"
	pgstore "github.com/estudia/server/adapters/postgres"
	"github.com/estudia/server/adapters/stt"
	"github.com/estudia/server/adapters/tts"
	"github.com/estudia/server/domain/repositories"
	"github.com/estudia/server/internal/api"
	"github.com/estudia/server/internal/config"
	"github.com/estudia/server/usecase"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize provider adapters. A missing credential is not fatal;
	// the matching endpoints degrade to 503 while the rest keep working.
	var languageModel repositories.LanguageModel
	switch cfg.LLMProvider {
	case "gemini":
		lm, err := llm.NewGeminiCompletion(logger)
		if err != nil {
			logger.Warn("gemini completion unavailable", zap.Error(err))
		} else {
			languageModel = lm
		}
	default:
		lm, err := llm.NewOpenAICompletion(llm.NewOpenAIConfigFromEnv(), logger)
		if err != nil {
			logger.Warn("completion provider unavailable", zap.Error(err))
		} else {
			languageModel = lm
		}
	}

	var transcriber repositories.SpeechToText
	switch cfg.STTProvider {
	case "google":
		tr, err := stt.NewGoogleTranscriber(context.Background(), os.Getenv("STT_LANGUAGE"), logger)
		if err != nil {
			logger.Warn("google transcription unavailable", zap.Error(err))
		} else {
			transcriber = tr
			defer tr.Close()
		}
	default:
		tr, err := stt.NewWhisperTranscriber(stt.NewWhisperConfigFromEnv(), logger)
		if err != nil {
			logger.Warn("transcription provider unavailable", zap.Error(err))
		} else {
			transcriber = tr
		}
	}

	var synthesizer repositories.TextToSpeech
	if ts, err := tts.NewInworldTTS(tts.NewInworldConfigFromEnv(), logger); err != nil {
		logger.Warn("speech synthesis unavailable", zap.Error(err))
	} else {
		synthesizer = ts
	}

	// Initialize the session store. Mongo is the default backend; a
	// Postgres URL selects the relational one. Neither set means the
	// session endpoints answer 503.
	var store repositories.SessionRepository
	switch {
	case cfg.MongoURI != "":
		client, err := mongostore.NewClient(cfg.MongoURI, logger)
		if err != nil {
			logger.Warn("mongo session store unavailable", zap.Error(err))
		} else {
			store = mongostore.NewSessionRepository(client.Database)
			defer client.Close(context.Background())
		}
	case cfg.DatabaseURL != "":
		repo, err := pgstore.NewSessionRepository(context.Background(), cfg.DatabaseURL, logger)
		if err != nil {
			logger.Warn("postgres session store unavailable", zap.Error(err))
		} else {
			store = repo
			defer repo.Close()
		}
	default:
		logger.Warn("no store connection string configured, session endpoints disabled")
	}

	// Initialize usecase services
	studyService := usecase.NewStudyService(languageModel, logger)
	speechService := usecase.NewSpeechService(transcriber, synthesizer, cfg.DefaultVoiceID, cfg.VoiceLanguage, logger)
	sessionService := usecase.NewSessionService(store, logger)

	// Initialize API routes
	handler := api.NewHandler(studyService, speechService, sessionService, logger)
	api.InitRoutes(e, handler)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
