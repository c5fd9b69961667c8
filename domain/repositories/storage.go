package repositories

import (
	"context"

	"github.com/estudia/server/domain/entities"
)

// SessionRepository defines data access methods for practice sessions.
// Each operation is a single-record store transaction. Implementations
// validate ids against their own concrete format and return
// domain.ErrInvalidID / domain.ErrNotFound accordingly.
type SessionRepository interface {
	// Create persists the session and assigns its ID.
	Create(ctx context.Context, session *entities.Session) error
	// List returns summaries ordered by creation time, newest first.
	List(ctx context.Context) ([]entities.SessionSummary, error)
	GetByID(ctx context.Context, id string) (*entities.Session, error)
	// Patch applies the supplied fields only and refreshes updatedAt.
	Patch(ctx context.Context, id string, patch entities.SessionPatch) error
	Delete(ctx context.Context, id string) error
	// Ping reports store connectivity so callers can fail fast instead of
	// attempting an operation that will hang.
	Ping(ctx context.Context) error
}
