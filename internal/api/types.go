package api

import "github.com/estudia/server/domain/entities"

// ExtractRequest carries the raw study text to turn into questions.
type ExtractRequest struct {
	RawText string `json:"rawText" validate:"required"`
}

// ExtractResponse wraps the extracted question list.
type ExtractResponse struct {
	Questions []entities.Question `json:"questions"`
}

// TranscribeResponse wraps the provider's transcript.
type TranscribeResponse struct {
	Transcript string `json:"transcript"`
}

// GradeRequest carries one answer to grade.
type GradeRequest struct {
	Question             string   `json:"question" validate:"required"`
	ExpectedAnswer       string   `json:"expectedAnswer" validate:"required"`
	StudentAnswer        string   `json:"studentAnswer" validate:"required"`
	AcceptableVariations []string `json:"acceptableVariations"`
}

// SynthesizeRequest carries text to render as audio. Speed is a pointer
// so "absent" and "zero" stay distinguishable.
type SynthesizeRequest struct {
	Text    string   `json:"text" validate:"required"`
	VoiceID string   `json:"voiceId"`
	Speed   *float64 `json:"speed"`
}

// VoicesResponse wraps the normalized voice list.
type VoicesResponse struct {
	Voices []entities.Voice `json:"voices"`
}

// CreateSessionRequest carries a new session to persist.
type CreateSessionRequest struct {
	Name      string                 `json:"name"`
	Questions []entities.Question    `json:"questions" validate:"required,min=1"`
	Stats     *entities.SessionStats `json:"stats"`
	RawText   string                 `json:"rawText"`
}

// CreateSessionResponse confirms creation and echoes the saved session.
type CreateSessionResponse struct {
	Success   bool              `json:"success"`
	SessionID string            `json:"sessionId"`
	Session   *entities.Session `json:"session"`
}

// ListSessionsResponse wraps the session summaries.
type ListSessionsResponse struct {
	Sessions []entities.SessionSummary `json:"sessions"`
}

// GetSessionResponse wraps one full session.
type GetSessionResponse struct {
	Session *entities.Session `json:"session"`
}

// PatchSessionRequest carries the fields a partial update may change.
type PatchSessionRequest struct {
	Name  *string                `json:"name"`
	Stats *entities.SessionStats `json:"stats"`
}

// SuccessResponse is the bare confirmation envelope.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// HealthResponse reports process and store health.
type HealthResponse struct {
	Status   string         `json:"status"`
	Database DatabaseHealth `json:"database"`
}

// DatabaseHealth reports store connectivity.
type DatabaseHealth struct {
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
