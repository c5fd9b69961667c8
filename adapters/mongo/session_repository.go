package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/estudia/server/domain"
	"github.com/estudia/server/domain/entities"
	"github.com/estudia/server/domain/repositories"
)

// SessionRepository is the document-store backend for practice sessions.
// Ids are ObjectID hex strings.
type SessionRepository struct {
	collection *mongo.Collection
}

// NewSessionRepository creates a new MongoDB session repository
func NewSessionRepository(db *mongo.Database) repositories.SessionRepository {
	return &SessionRepository{
		collection: db.Collection("sessions"),
	}
}

// sessionDoc is the persisted representation. The entity keeps its id as
// an opaque string; only this adapter knows it is an ObjectID.
type sessionDoc struct {
	ID        primitive.ObjectID    `bson:"_id,omitempty"`
	Name      string                `bson:"name"`
	Questions []entities.Question   `bson:"questions"`
	Stats     entities.SessionStats `bson:"stats"`
	RawText   string                `bson:"raw_text"`
	CreatedAt time.Time             `bson:"created_at"`
	UpdatedAt time.Time             `bson:"updated_at"`
}

func (d *sessionDoc) toEntity() *entities.Session {
	return &entities.Session{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Questions: d.Questions,
		Stats:     d.Stats,
		RawText:   d.RawText,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// parseID validates the opaque id against the backend's concrete format.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	return oid, nil
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

	doc := bson.M{
		"name":       session.Name,
		"questions":  session.Questions,
		"stats":      session.Stats,
		"raw_text":   session.RawText,
		"created_at": session.CreatedAt,
		"updated_at": session.UpdatedAt,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	// Set the generated ID back on the session
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		session.ID = oid.Hex()
	}

	return nil
}

// List implements repositories.SessionRepository. Questions and raw text
// stay out of the projection; the question count is computed server-side.
func (r *SessionRepository) List(ctx context.Context) ([]entities.SessionSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.M{"created_at": -1}}},
		{{Key: "$project", Value: bson.M{
			"name":          1,
			"stats":         1,
			"created_at":    1,
			"questionCount": bson.M{"$size": "$questions"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID            primitive.ObjectID    `bson:"_id"`
		Name          string                `bson:"name"`
		Stats         entities.SessionStats `bson:"stats"`
		CreatedAt     time.Time             `bson:"created_at"`
		QuestionCount int                   `bson:"questionCount"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode session summaries: %w", err)
	}

	summaries := make([]entities.SessionSummary, 0, len(docs))
	for _, d := range docs {
		summaries = append(summaries, entities.SessionSummary{
			ID:            d.ID.Hex(),
			Name:          d.Name,
			Stats:         d.Stats,
			CreatedAt:     d.CreatedAt,
			QuestionCount: d.QuestionCount,
		})
	}

	return summaries, nil
}

// GetByID implements repositories.SessionRepository
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*entities.Session, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc sessionDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}

	return doc.toEntity(), nil
}

// Patch implements repositories.SessionRepository
func (r *SessionRepository) Patch(ctx context.Context, id string, patch entities.SessionPatch) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Stats != nil {
		set["stats"] = *patch.Stats
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to patch session %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	return nil
}

// Delete implements repositories.SessionRepository
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	return nil
}

// Ping implements repositories.SessionRepository
func (r *SessionRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.collection.Database().Client().Ping(ctx, nil)
}
