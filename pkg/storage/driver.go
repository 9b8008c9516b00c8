// Package storage
package storage

import (
	"context"
	"time"
)

// Driver defines the interface for persisting and retrieving the knowledge
// tables: facts, conversations, and goals. Every method that touches the
// backing store returns an error wrapping ErrPersistence when the store is
// unreachable; callers must never swallow those.
type Driver interface {
	// CreateFact stores a new fact for the given entity and returns it with
	// its assigned id and creation time.
	CreateFact(ctx context.Context, entity, text string) (*Fact, error)

	// GetFact retrieves a fact by id.
	GetFact(ctx context.Context, id int64) (*Fact, error)

	// FactsByIDs retrieves the facts for the given ids, in the given order.
	// Missing ids are skipped, not errors.
	FactsByIDs(ctx context.Context, ids []int64) ([]*Fact, error)

	// RecentFacts returns the most recently created facts, newest first.
	RecentFacts(ctx context.Context, limit int) ([]*Fact, error)

	// SearchFacts returns facts whose entity or text contains the query,
	// case-insensitive, newest first.
	SearchFacts(ctx context.Context, query string, limit int) ([]*Fact, error)

	// CountFacts returns the total number of stored facts.
	CountFacts(ctx context.Context) (int, error)

	// SaveConversation persists a conversation transcript.
	SaveConversation(ctx context.Context, conv *Conversation) error

	// GetConversation retrieves a conversation by id.
	GetConversation(ctx context.Context, id string) (*Conversation, error)

	// RecentConversations returns the most recently saved conversations,
	// newest first.
	RecentConversations(ctx context.Context, limit int) ([]*Conversation, error)

	// CreateGoal stores a new active goal.
	CreateGoal(ctx context.Context, text string, targetDate *time.Time) (*Goal, error)

	// ActiveGoals returns active goals, most recently created first.
	ActiveGoals(ctx context.Context, limit int) ([]*Goal, error)

	// ListGoals returns all goals regardless of status, newest first.
	ListGoals(ctx context.Context) ([]*Goal, error)

	// CompleteGoal marks a goal done.
	CompleteGoal(ctx context.Context, id int64) error

	// Close closes the store and releases any resources.
	Close() error
}
