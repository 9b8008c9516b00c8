package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeFactStored is emitted after a fact is persisted.
	EventTypeFactStored = "engram.fact.stored"

	// EventTypeReviewRecorded is emitted after a review outcome is recorded.
	EventTypeReviewRecorded = "engram.review.recorded"

	// EventTypeChallengeCompleted is emitted after a challenge is completed.
	EventTypeChallengeCompleted = "engram.challenge.completed"

	// EventTypeStreakMarked is emitted the first time a day is marked active.
	EventTypeStreakMarked = "engram.streak.marked"
)

// Event is a transport-neutral notification that a knowledge mutation was
// persisted. Entity carries the subject when the event has one (a fact's
// entity, a skill name); Payload carries type-specific detail.
type Event struct {
	SchemaVersion int            `json:"schema_version"`
	EventType     string         `json:"event_type"`
	EventID       string         `json:"event_id"`
	OccurredAt    time.Time      `json:"occurred_at"`
	Entity        string         `json:"entity,omitempty"`
	Payload       map[string]any `json:"payload,omitempty"`
}

// NewEvent stamps an event with the current schema version, a fresh id, and
// the current time.
func NewEvent(eventType, entity string, payload map[string]any) *Event {
	return &Event{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		OccurredAt:    time.Now().UTC(),
		Entity:        entity,
		Payload:       payload,
	}
}
