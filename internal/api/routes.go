package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/estudia/server/domain"
	"github.com/estudia/server/domain/entities"
	"github.com/estudia/server/usecase"
)

// Handler holds the services every route delegates to.
type Handler struct {
	study    *usecase.StudyService
	speech   *usecase.SpeechService
	sessions *usecase.SessionService
	logger   *zap.Logger
}

// NewHandler creates the route handler.
func NewHandler(study *usecase.StudyService, speech *usecase.SpeechService, sessions *usecase.SessionService, logger *zap.Logger) *Handler {
	return &Handler{
		study:    study,
		speech:   speech,
		sessions: sessions,
		logger:   logger,
	}
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, h *Handler) {
	e.Validator = NewRequestValidator()

	e.GET("/health", h.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/extract-qa", h.extractQA)
	e.POST("/transcribe", h.transcribe)
	e.POST("/grade", h.grade)
	e.POST("/tts", h.synthesize)
	e.GET("/voices", h.listVoices)

	e.POST("/sessions", h.createSession)
	e.GET("/sessions", h.listSessions)
	e.GET("/sessions/:id", h.getSession)
	e.PATCH("/sessions/:id", h.patchSession)
	e.DELETE("/sessions/:id", h.deleteSession)
}

// fail maps an error kind onto the HTTP status and error envelope. The
// 5xx branches keep the caller-facing message generic; anything
// provider-specific was already logged where it happened.
func (h *Handler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidID):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUnavailable):
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrMalformedResponse):
		h.logger.Error("provider returned malformed response", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "provider returned a malformed response"})
	case errors.Is(err, domain.ErrProvider):
		h.logger.Error("provider request failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "provider request failed"})
	default:
		h.logger.Error("unhandled error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func (h *Handler) health(c echo.Context) error {
	connected, errMsg := h.sessions.Health(c.Request().Context())
	return c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Database: DatabaseHealth{
			Connected: connected,
			Error:     errMsg,
		},
	})
}

func (h *Handler) extractQA(c echo.Context) error {
	var req ExtractRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, err)
	}

	questions, err := h.study.ExtractQuestions(c.Request().Context(), req.RawText)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, ExtractResponse{Questions: questions})
}

func (h *Handler) transcribe(c echo.Context) error {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "audio is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return h.fail(c, err)
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		return h.fail(c, err)
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	transcript, err := h.speech.TranscribeAudio(c.Request().Context(), audio, mimeType)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, TranscribeResponse{Transcript: transcript})
}

func (h *Handler) grade(c echo.Context) error {
	var req GradeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, err)
	}

	result, err := h.study.GradeAnswer(c.Request().Context(),
		req.Question, req.ExpectedAnswer, req.StudentAnswer, req.AcceptableVariations)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *Handler) synthesize(c echo.Context) error {
	var req SynthesizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, err)
	}

	audio, contentType, err := h.speech.SynthesizeSpeech(c.Request().Context(), req.Text, req.VoiceID, req.Speed)
	if err != nil {
		return h.fail(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentLength, strconv.Itoa(len(audio)))
	return c.Blob(http.StatusOK, contentType, audio)
}

func (h *Handler) listVoices(c echo.Context) error {
	voices, err := h.speech.ListSpanishVoices(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, VoicesResponse{Voices: voices})
}

func (h *Handler) createSession(c echo.Context) error {
	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, err)
	}

	session, err := h.sessions.Create(c.Request().Context(), req.Name, req.Questions, req.Stats, req.RawText)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusCreated, CreateSessionResponse{
		Success:   true,
		SessionID: session.ID,
		Session:   session,
	})
}

func (h *Handler) listSessions(c echo.Context) error {
	summaries, err := h.sessions.List(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, ListSessionsResponse{Sessions: summaries})
}

func (h *Handler) getSession(c echo.Context) error {
	session, err := h.sessions.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, GetSessionResponse{Session: session})
}

func (h *Handler) patchSession(c echo.Context) error {
	var req PatchSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	err := h.sessions.Patch(c.Request().Context(), c.Param("id"), entities.SessionPatch{
		Name:  req.Name,
		Stats: req.Stats,
	})
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) deleteSession(c echo.Context) error {
	if err := h.sessions.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
