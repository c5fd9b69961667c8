package entities

import (
	"errors"
	"fmt"
	"time"
)

// Topic tags a question with the skill it exercises.
type Topic string

const (
	TopicVocabulary   Topic = "vocabulary"
	TopicConjugation  Topic = "conjugation"
	TopicTranslation  Topic = "translation"
	TopicConversation Topic = "conversation"
)

// Valid reports whether the topic is one of the fixed tag set.
func (t Topic) Valid() bool {
	switch t {
	case TopicVocabulary, TopicConjugation, TopicTranslation, TopicConversation:
		return true
	}
	return false
}

// Question is one oral-exam prompt with its reference answer.
type Question struct {
	ID                   string   `json:"id" bson:"id"`
	Question             string   `json:"question" bson:"question"`
	ExpectedAnswer       string   `json:"expectedAnswer" bson:"expected_answer"`
	AcceptableVariations []string `json:"acceptableVariations" bson:"acceptable_variations"`
	Topic                Topic    `json:"topic" bson:"topic"`
	Hint                 string   `json:"hint,omitempty" bson:"hint,omitempty"`
}

// Validate checks the question invariants: non-empty prompt, answer and
// variations, and a topic from the fixed set.
func (q *Question) Validate() error {
	if q.Question == "" {
		return errors.New("question text is required")
	}
	if q.ExpectedAnswer == "" {
		return errors.New("expected answer is required")
	}
	for i, v := range q.AcceptableVariations {
		if v == "" {
			return fmt.Errorf("acceptable variation %d is empty", i)
		}
	}
	if !q.Topic.Valid() {
		return fmt.Errorf("unknown topic %q", q.Topic)
	}
	return nil
}

// SessionStats holds running correctness counts for a practice session.
type SessionStats struct {
	Correct   int `json:"correct" bson:"correct"`
	Partial   int `json:"partial" bson:"partial"`
	Incorrect int `json:"incorrect" bson:"incorrect"`
}

// Session is a saved practice run. ID is assigned by the store on creation
// and treated as an opaque string everywhere above the store adapter.
type Session struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Questions []Question   `json:"questions"`
	Stats     SessionStats `json:"stats"`
	RawText   string       `json:"rawText"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// NewSession builds an unsaved session, defaulting the name to a
// date-stamped label and the stats to zero counts.
func NewSession(name string, questions []Question, stats *SessionStats, rawText string) *Session {
	now := time.Now().UTC()
	if name == "" {
		name = "Session " + now.Format("2006-01-02")
	}
	s := &Session{
		Name:      name,
		Questions: questions,
		RawText:   rawText,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if stats != nil {
		s.Stats = *stats
	}
	return s
}

// Validate checks the session invariants before it reaches the store.
func (s *Session) Validate() error {
	if len(s.Questions) == 0 {
		return errors.New("questions are required")
	}
	return nil
}

// SessionSummary is the listing projection: no questions, no raw text.
type SessionSummary struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Stats         SessionStats `json:"stats"`
	CreatedAt     time.Time    `json:"createdAt"`
	QuestionCount int          `json:"questionCount"`
}

// SessionPatch carries the fields a partial update may change. Nil means
// "leave unchanged".
type SessionPatch struct {
	Name  *string
	Stats *SessionStats
}

// IsEmpty reports whether the patch changes nothing.
func (p SessionPatch) IsEmpty() bool {
	return p.Name == nil && p.Stats == nil
}
