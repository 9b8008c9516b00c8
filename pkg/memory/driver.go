// Package memory provides the fact storage and recall layer for the engram
// system.
//
// Memory drivers persist durable facts about entities and recall them on
// demand. Facts are distilled, persistent knowledge — short declarative
// statements tied to the entity they describe — not raw conversation
// messages.
//
// The [Driver] interface is intentionally minimal: Store persists one fact,
// Recall retrieves facts relevant to a query, and Close releases resources.
// How much machinery sits behind those calls is a driver concern; the hybrid
// driver blends a relational store with a vector index and falls back to
// exact matching when the index is unavailable. Recall results carry the
// [Mode] that produced them so callers can tell a degraded answer from a
// full one.
//
// Drivers are pluggable via configuration:
//
//	[memory]
//	provider = "hybrid"   # or "local"
package memory

import (
	"context"

	"github.com/quietmindco/engram/pkg/storage"
)

// Mode reports which recall strategy a driver is currently using.
type Mode string

const (
	// ModeFullIndex means recall blends vector similarity with exact and
	// recent matches.
	ModeFullIndex Mode = "full_index"

	// ModeExactOnly means the vector index is unavailable and recall is
	// limited to exact and recent matches.
	ModeExactOnly Mode = "exact_only"
)

// RecallResult carries recalled facts plus the mode that produced them.
// Degraded recall is an answer, not an error; the mode is how callers
// surface the difference.
type RecallResult struct {
	Facts []*storage.Fact `json:"facts"`
	Mode  Mode            `json:"mode"`
}

// Driver handles storage and recall of facts.
type Driver interface {
	// Store persists a fact about an entity and returns the stored row.
	Store(ctx context.Context, entity, text string) (*storage.Fact, error)

	// Recall retrieves up to limit facts relevant to the query.
	Recall(ctx context.Context, query string, limit int) (*RecallResult, error)

	// Mode reports the recall strategy currently in effect.
	Mode() Mode

	// Close releases driver resources.
	Close() error
}
