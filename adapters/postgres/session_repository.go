package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/estudia/server/domain"
	"github.com/estudia/server/domain/entities"
	"github.com/estudia/server/domain/repositories"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	questions  JSONB NOT NULL,
	stats      JSONB NOT NULL,
	raw_text   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_created_at_idx ON sessions (created_at DESC);
`

// SessionRepository is the relational backend for practice sessions. Ids
// are UUID strings; questions and stats live in JSONB columns so the
// contract stays identical to the document backend.
type SessionRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

var _ repositories.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository connects a pool to the given database URL and
// ensures the sessions table exists.
func NewSessionRepository(ctx context.Context, databaseURL string, logger *zap.Logger) (*SessionRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	logger.Info("Successfully connected to Postgres")

	return &SessionRepository{pool: pool, logger: logger}, nil
}

// Close releases the connection pool.
func (r *SessionRepository) Close() {
	r.pool.Close()
}

func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	return uid, nil
}

// Create implements repositories.SessionRepository
func (r *SessionRepository) Create(ctx context.Context, session *entities.Session) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}

	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = now
	}

	questions, err := json.Marshal(session.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}
	stats, err := json.Marshal(session.Stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	id := uuid.New()
	_, err = r.pool.Exec(ctx,
		`INSERT INTO sessions (id, name, questions, stats, raw_text, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, session.Name, questions, stats, session.RawText, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	session.ID = id.String()
	return nil
}

// List implements repositories.SessionRepository
func (r *SessionRepository) List(ctx context.Context) ([]entities.SessionSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, stats, created_at, jsonb_array_length(questions)
		 FROM sessions
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	summaries := make([]entities.SessionSummary, 0)
	for rows.Next() {
		var (
			id        uuid.UUID
			summary   entities.SessionSummary
			statsJSON []byte
		)
		if err := rows.Scan(&id, &summary.Name, &statsJSON, &summary.CreatedAt, &summary.QuestionCount); err != nil {
			return nil, fmt.Errorf("failed to scan session summary: %w", err)
		}
		if err := json.Unmarshal(statsJSON, &summary.Stats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
		}
		summary.ID = id.String()
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return summaries, nil
}

// GetByID implements repositories.SessionRepository
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*entities.Session, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var (
		session       entities.Session
		questionsJSON []byte
		statsJSON     []byte
	)
	err = r.pool.QueryRow(ctx,
		`SELECT name, questions, stats, raw_text, created_at, updated_at
		 FROM sessions WHERE id = $1`,
		uid,
	).Scan(&session.Name, &questionsJSON, &statsJSON, &session.RawText, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}

	if err := json.Unmarshal(questionsJSON, &session.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	if err := json.Unmarshal(statsJSON, &session.Stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
	}

	session.ID = uid.String()
	return &session, nil
}

// Patch implements repositories.SessionRepository
func (r *SessionRepository) Patch(ctx context.Context, id string, patch entities.SessionPatch) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}

	set := "updated_at = $2"
	args := []any{uid, time.Now().UTC()}
	if patch.Name != nil {
		args = append(args, *patch.Name)
		set += fmt.Sprintf(", name = $%d", len(args))
	}
	if patch.Stats != nil {
		stats, err := json.Marshal(*patch.Stats)
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		args = append(args, stats)
		set += fmt.Sprintf(", stats = $%d", len(args))
	}

	tag, err := r.pool.Exec(ctx, "UPDATE sessions SET "+set+" WHERE id = $1", args...)
	if err != nil {
		return fmt.Errorf("failed to patch session %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	return nil
}

// Delete implements repositories.SessionRepository
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, "DELETE FROM sessions WHERE id = $1", uid)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	return nil
}

// Ping implements repositories.SessionRepository
func (r *SessionRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.pool.Ping(ctx)
}
