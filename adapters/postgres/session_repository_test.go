package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap/zaptest"

	"github.com/estudia/server/domain"
	"github.com/estudia/server/domain/entities"
)

func TestParseID(t *testing.T) {
	valid := uuid.NewString()
	if _, err := parseID(valid); err != nil {
		t.Errorf("Expected %q to parse, got %v", valid, err)
	}

	for _, id := range []string{"", "abc", "507f1f77bcf86cd799439011"} {
		_, err := parseID(id)
		if !errors.Is(err, domain.ErrInvalidID) {
			t.Errorf("Expected invalid id for %q, got %v", id, err)
		}
	}
}

// TestSessionRepository_Integration exercises the repository against a
// running Postgres instance (skipped if DATABASE_URL is not set).
func TestSessionRepository_Integration(t *testing.T) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("Skipping Postgres integration test - DATABASE_URL not set")
	}

	ctx := context.Background()

	repo, err := NewSessionRepository(ctx, databaseURL, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer repo.Close()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("Failed to create cleanup pool: %v", err)
	}
	defer pool.Close()
	if _, err := pool.Exec(ctx, "TRUNCATE sessions"); err != nil {
		t.Fatalf("Failed to truncate sessions: %v", err)
	}

	questions := []entities.Question{
		{ID: "q1", Question: "¿Cómo se dice dog?", ExpectedAnswer: "perro", Topic: entities.TopicVocabulary},
		{ID: "q2", Question: "Conjuga correr en yo", ExpectedAnswer: "corro", Topic: entities.TopicConjugation},
	}

	t.Run("CreateAndGet", func(t *testing.T) {
		session := entities.NewSession("", questions, nil, "dog = perro")
		if err := repo.Create(ctx, session); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if _, err := uuid.Parse(session.ID); err != nil {
			t.Fatalf("Expected a uuid id, got %q", session.ID)
		}

		retrieved, err := repo.GetByID(ctx, session.ID)
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if retrieved.RawText != "dog = perro" {
			t.Errorf("Expected raw text to survive, got %q", retrieved.RawText)
		}
		if len(retrieved.Questions) != 2 {
			t.Errorf("Expected 2 questions, got %d", len(retrieved.Questions))
		}
		if retrieved.Questions[0].ExpectedAnswer != "perro" {
			t.Errorf("Expected first answer perro, got %q", retrieved.Questions[0].ExpectedAnswer)
		}
	})

	t.Run("ListOrdering", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			session := entities.NewSession("", questions, nil, "texto")
			session.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
			if err := repo.Create(ctx, session); err != nil {
				t.Fatalf("Failed to create session %d: %v", i, err)
			}
		}

		summaries, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("Failed to list sessions: %v", err)
		}
		if len(summaries) < 3 {
			t.Fatalf("Expected at least 3 summaries, got %d", len(summaries))
		}
		for i := 1; i < len(summaries); i++ {
			if summaries[i].CreatedAt.After(summaries[i-1].CreatedAt) {
				t.Error("Expected summaries ordered by createdAt descending")
			}
		}
		for _, s := range summaries {
			if s.QuestionCount != 2 {
				t.Errorf("Expected question count 2, got %d", s.QuestionCount)
			}
		}
	})

	t.Run("Patch", func(t *testing.T) {
		session := entities.NewSession("original", questions, nil, "")
		if err := repo.Create(ctx, session); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}

		time.Sleep(10 * time.Millisecond)

		stats := entities.SessionStats{Correct: 2, Incorrect: 1}
		if err := repo.Patch(ctx, session.ID, entities.SessionPatch{Stats: &stats}); err != nil {
			t.Fatalf("Failed to patch session: %v", err)
		}

		patched, err := repo.GetByID(ctx, session.ID)
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if patched.Name != "original" {
			t.Errorf("Patching stats must leave name unchanged, got %q", patched.Name)
		}
		if patched.Stats != stats {
			t.Errorf("Expected patched stats, got %+v", patched.Stats)
		}
		if !patched.UpdatedAt.After(session.UpdatedAt) {
			t.Error("Expected updatedAt to increase")
		}
	})

	t.Run("DeleteTwice", func(t *testing.T) {
		session := entities.NewSession("", questions, nil, "")
		if err := repo.Create(ctx, session); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}

		if err := repo.Delete(ctx, session.ID); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if err := repo.Delete(ctx, session.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Expected not found on second delete, got %v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.NewString())
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Expected not found, got %v", err)
		}
	})
}
