package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/estudia/server/domain"
	"github.com/estudia/server/domain/entities"
)

// memoryStore is an in-memory SessionRepository honoring the store
// contract: uuid ids, createdAt-descending summaries, single-record ops.
type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]entities.Session
	pingErr  error
	creates  int
	patches  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: make(map[string]entities.Session)}
}

func (m *memoryStore) Create(ctx context.Context, session *entities.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	session.ID = uuid.NewString()
	m.sessions[session.ID] = *session
	return nil
}

func (m *memoryStore) List(ctx context.Context) ([]entities.SessionSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	summaries := make([]entities.SessionSummary, 0, len(m.sessions))
	for _, s := range m.sessions {
		summaries = append(summaries, entities.SessionSummary{
			ID:            s.ID,
			Name:          s.Name,
			Stats:         s.Stats,
			CreatedAt:     s.CreatedAt,
			QuestionCount: len(s.Questions),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func (m *memoryStore) GetByID(ctx context.Context, id string) (*entities.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return &s, nil
}

func (m *memoryStore) Patch(ctx context.Context, id string, patch entities.SessionPatch) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patches++
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if patch.Name != nil {
		s.Name = *patch.Name
	}
	if patch.Stats != nil {
		s.Stats = *patch.Stats
	}
	s.UpdatedAt = time.Now().UTC()
	m.sessions[id] = s
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

func (m *memoryStore) Ping(ctx context.Context) error {
	return m.pingErr
}

func sampleQuestions() []entities.Question {
	return []entities.Question{
		{ID: "q1", Question: "¿Cómo se dice dog?", ExpectedAnswer: "perro", Topic: entities.TopicVocabulary},
		{ID: "q2", Question: "Conjuga correr en yo", ExpectedAnswer: "corro", Topic: entities.TopicConjugation},
	}
}

func TestSessionRoundTrip(t *testing.T) {
	store := newMemoryStore()
	service := NewSessionService(store, zaptest.NewLogger(t))
	ctx := context.Background()

	created, err := service.Create(ctx, "", sampleQuestions(), nil, "dog = perro")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Expected store to assign an id")
	}

	fetched, err := service.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}

	if fetched.ID != created.ID {
		t.Errorf("Expected stable id, got %q and %q", created.ID, fetched.ID)
	}
	if fetched.RawText != "dog = perro" {
		t.Errorf("Expected raw text to survive the round trip, got %q", fetched.RawText)
	}
	if len(fetched.Questions) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(fetched.Questions))
	}
	for i, q := range fetched.Questions {
		if !reflect.DeepEqual(q, created.Questions[i]) {
			t.Errorf("Question %d changed across the round trip: %+v vs %+v", i, q, created.Questions[i])
		}
	}
}

func TestCreateSessionWithoutQuestions(t *testing.T) {
	store := newMemoryStore()
	service := NewSessionService(store, zaptest.NewLogger(t))

	_, err := service.Create(context.Background(), "vacía", nil, nil, "")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Expected invalid input, got %v", err)
	}
	if store.creates != 0 {
		t.Error("Store should not be reached for an empty question list")
	}
}

func TestPatchSession(t *testing.T) {
	store := newMemoryStore()
	service := NewSessionService(store, zaptest.NewLogger(t))
	ctx := context.Background()

	created, err := service.Create(ctx, "original", sampleQuestions(), nil, "")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	stats := entities.SessionStats{Correct: 1, Partial: 1}
	if err := service.Patch(ctx, created.ID, entities.SessionPatch{Stats: &stats}); err != nil {
		t.Fatalf("Failed to patch session: %v", err)
	}

	patched, err := service.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}

	if patched.Name != "original" {
		t.Errorf("Patching stats alone must leave name unchanged, got %q", patched.Name)
	}
	if patched.Stats != stats {
		t.Errorf("Expected patched stats, got %+v", patched.Stats)
	}
	if !patched.UpdatedAt.After(created.UpdatedAt) {
		t.Error("Expected updatedAt to strictly increase after a patch")
	}
}

func TestPatchSessionNothingToUpdate(t *testing.T) {
	store := newMemoryStore()
	service := NewSessionService(store, zaptest.NewLogger(t))

	err := service.Patch(context.Background(), uuid.NewString(), entities.SessionPatch{})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Expected invalid input for an empty patch, got %v", err)
	}
	if store.patches != 0 {
		t.Error("Store should not be reached for an empty patch")
	}
}

func TestListSessionsOrdering(t *testing.T) {
	store := newMemoryStore()
	service := NewSessionService(store, zaptest.NewLogger(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := service.Create(ctx, fmt.Sprintf("sesión %d", i), sampleQuestions(), nil, "texto"); err != nil {
			t.Fatalf("Failed to create session %d: %v", i, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	summaries, err := service.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}

	if len(summaries) != 3 {
		t.Fatalf("Expected 3 summaries, got %d", len(summaries))
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
}

func TestDeleteSessionTwice(t *testing.T) {
	store := newMemoryStore()
	service := NewSessionService(store, zaptest.NewLogger(t))
	ctx := context.Background()

	created, err := service.Create(ctx, "", sampleQuestions(), nil, "")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if err := service.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if err := service.Delete(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected not found on second delete, got %v", err)
	}
}

func TestSessionInvalidID(t *testing.T) {
	service := NewSessionService(newMemoryStore(), zaptest.NewLogger(t))

	if _, err := service.Get(context.Background(), "not-a-uuid"); !errors.Is(err, domain.ErrInvalidID) {
		t.Errorf("Expected invalid id, got %v", err)
	}
}

func TestSessionServiceWithoutStore(t *testing.T) {
	service := NewSessionService(nil, zaptest.NewLogger(t))
	ctx := context.Background()

	if _, err := service.Create(ctx, "", sampleQuestions(), nil, ""); !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("Expected unavailable on create, got %v", err)
	}
	if _, err := service.List(ctx); !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("Expected unavailable on list, got %v", err)
	}

	connected, msg := service.Health(ctx)
	if connected {
		t.Error("Expected health to report disconnected without a store")
	}
	if msg == "" {
		t.Error("Expected health to explain why the store is down")
	}
}

func TestSessionHealth(t *testing.T) {
	store := newMemoryStore()
	service := NewSessionService(store, zaptest.NewLogger(t))

	if connected, _ := service.Health(context.Background()); !connected {
		t.Error("Expected health to report connected")
	}

	store.pingErr = errors.New("connection refused")
	connected, msg := service.Health(context.Background())
	if connected {
		t.Error("Expected health to report disconnected when ping fails")
	}
	if msg != "connection refused" {
		t.Errorf("Expected ping error in health, got %q", msg)
	}
}
