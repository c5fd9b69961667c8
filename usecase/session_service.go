package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/estudia/server/domain"
	"github.com/estudia/server/domain/entities"
	"github.com/estudia/server/domain/repositories"
	"github.com/estudia/server/internal/metrics"
)

// SessionService orchestrates session persistence. The store may be nil
// when no connection string was configured; every operation then fails
// fast as unavailable instead of hanging.
type SessionService struct {
	store  repositories.SessionRepository
	logger *zap.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(store repositories.SessionRepository, logger *zap.Logger) *SessionService {
	return &SessionService{store: store, logger: logger}
}

func (s *SessionService) ready() error {
	if s.store == nil {
		return fmt.Errorf("%w: session store is not configured", domain.ErrUnavailable)
	}
	return nil
}

// Create validates and persists a new session. Input validation happens
// before the store is touched.
func (s *SessionService) Create(ctx context.Context, name string, questions []entities.Question, stats *entities.SessionStats, rawText string) (*entities.Session, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: questions are required", domain.ErrInvalidInput)
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	session := entities.NewSession(name, questions, stats, rawText)
	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	metrics.StoreOperations.WithLabelValues("create").Inc()
	if err := s.store.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("created session",
		zap.String("sessionID", session.ID),
		zap.Int("questions", len(session.Questions)))
	return session, nil
}

// List returns session summaries, newest first.
func (s *SessionService) List(ctx context.Context) ([]entities.SessionSummary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	metrics.StoreOperations.WithLabelValues("list").Inc()
	return s.store.List(ctx)
}

// Get fetches one session by its opaque id.
func (s *SessionService) Get(ctx context.Context, id string) (*entities.Session, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	metrics.StoreOperations.WithLabelValues("get").Inc()
	return s.store.GetByID(ctx, id)
}

// Patch applies a partial update. A patch that changes nothing is
// rejected rather than silently succeeding.
func (s *SessionService) Patch(ctx context.Context, id string, patch entities.SessionPatch) error {
	if patch.IsEmpty() {
		return fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	if err := s.ready(); err != nil {
		return err
	}
	metrics.StoreOperations.WithLabelValues("patch").Inc()
	return s.store.Patch(ctx, id, patch)
}

// Delete removes one session.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	metrics.StoreOperations.WithLabelValues("delete").Inc()
	return s.store.Delete(ctx, id)
}

// Health reports store connectivity for the health endpoint.
func (s *SessionService) Health(ctx context.Context) (bool, string) {
	if s.store == nil {
		return false, "session store is not configured"
	}
	if err := s.store.Ping(ctx); err != nil {
		return false, err.Error()
	}
	return true, ""
}
