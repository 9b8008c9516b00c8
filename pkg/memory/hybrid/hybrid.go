// Package hybrid implements memory.Driver over a relational fact store and
// an optional vector index.
//
// Store writes through to the relational store only; indexing is a separate
// step so one-shot commands can run it inline while the API server hands it
// to a background pool. Recall blends vector similarity, exact matches, and
// a handful of recent facts while the index is healthy. The first failure on
// the vector side permanently demotes the engine to exact-match recall; a
// restart is the only way back to full-index mode.
package hybrid

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/quietmindco/engram/pkg/embeddings"
	"github.com/quietmindco/engram/pkg/memory"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/vector"
)

const (
	// DefaultRecallLimit bounds recall when the caller passes no limit.
	DefaultRecallLimit = 10

	// recentCount is how many recent facts recall always folds in,
	// regardless of what the query matches.
	recentCount = 5
)

// Engine implements memory.Driver. Pass nil for vec and embedder when the
// vector index failed to initialize; the engine then starts in exact-match
// mode and stays there for the life of the process.
type Engine struct {
	store    storage.Driver
	vec      vector.VectorDriver
	embedder embeddings.Embedder
	logger   *zap.Logger

	mu   sync.RWMutex
	mode memory.Mode
}

// NewEngine creates a hybrid recall engine. The relational store is owned by
// the caller; the vector driver and embedder are owned by the engine and
// released on Close.
func NewEngine(store storage.Driver, vec vector.VectorDriver, embedder embeddings.Embedder, logger *zap.Logger) *Engine {
	mode := memory.ModeFullIndex
	if vec == nil || embedder == nil {
		mode = memory.ModeExactOnly
		logger.Info("recall engine starting in exact-match mode")
	}

	return &Engine{
		store:    store,
		vec:      vec,
		embedder: embedder,
		logger:   logger,
		mode:     mode,
	}
}

// Store persists a fact about an entity. Indexing is not part of Store; call
// Index afterwards, directly or through a worker pool, to make the fact
// vector-searchable.
func (e *Engine) Store(ctx context.Context, entity, text string) (*storage.Fact, error) {
	fact, err := e.store.CreateFact(ctx, entity, text)
	if err != nil {
		return nil, fmt.Errorf("storing fact: %w", err)
	}
	return fact, nil
}

// Index embeds a fact's text and upserts it into the vector index. In
// exact-match mode this is a no-op.
func (e *Engine) Index(ctx context.Context, fact *storage.Fact) error {
	if e.Mode() == memory.ModeExactOnly {
		return nil
	}

	embedding, err := e.embedder.Embed(ctx, fact.Text)
	if err != nil {
		return fmt.Errorf("embedding fact %d: %w", fact.ID, err)
	}

	err = e.vec.Add(ctx, []vector.Document{{
		ID:        strconv.FormatInt(fact.ID, 10),
		Entity:    fact.Entity,
		Embedding: embedding,
	}})
	if err != nil {
		return fmt.Errorf("indexing fact %d: %w", fact.ID, err)
	}

	return nil
}

// StoreFact persists and indexes a fact in one step. An index failure is
// logged and swallowed; the fact is already stored and exact recall still
// finds it. This satisfies the sink interfaces of the notes watcher and the
// fact extractor.
func (e *Engine) StoreFact(ctx context.Context, entity, text string) error {
	fact, err := e.Store(ctx, entity, text)
	if err != nil {
		return err
	}

	if err := e.Index(ctx, fact); err != nil {
		e.logger.Warn("fact stored but not indexed",
			zap.Int64("fact", fact.ID),
			zap.Error(err),
		)
	}

	return nil
}

// Recall retrieves up to limit facts relevant to the query. Vector hits lead
// when the index is healthy, followed by exact matches and recent facts;
// duplicates collapse on fact id. A failing vector side demotes the engine
// and the request is served exact-only instead of failing.
func (e *Engine) Recall(ctx context.Context, query string, limit int) (*memory.RecallResult, error) {
	if limit <= 0 {
		limit = DefaultRecallLimit
	}

	var ordered []*storage.Fact
	seen := make(map[int64]bool)
	merge := func(facts []*storage.Fact) {
		for _, f := range facts {
			if seen[f.ID] {
				continue
			}
			seen[f.ID] = true
			ordered = append(ordered, f)
		}
	}

	hits, err := e.vectorHits(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	merge(hits)

	exact, err := e.store.SearchFacts(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching facts: %w", err)
	}
	merge(exact)

	recent, err := e.store.RecentFacts(ctx, recentCount)
	if err != nil {
		return nil, fmt.Errorf("fetching recent facts: %w", err)
	}
	merge(recent)

	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	return &memory.RecallResult{
		Facts: ordered,
		Mode:  e.Mode(),
	}, nil
}

// vectorHits runs the similarity side of recall. Failures on the vector
// side demote the engine and report no hits; only relational store failures
// are returned as errors.
func (e *Engine) vectorHits(ctx context.Context, query string, limit int) ([]*storage.Fact, error) {
	if e.Mode() == memory.ModeExactOnly {
		return nil, nil
	}

	embedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		e.demote("embedding recall query", err)
		return nil, nil
	}

	results, err := e.vec.Query(ctx, embedding, limit)
	if err != nil {
		e.demote("querying vector index", err)
		return nil, nil
	}
	if len(results) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(results))
	for _, r := range results {
		// The index stores fact ids; anything else in there is not ours.
		id, err := strconv.ParseInt(r.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	facts, err := e.store.FactsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolving vector hits: %w", err)
	}

	return facts, nil
}

// Mode reports the recall strategy currently in effect.
func (e *Engine) Mode() memory.Mode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mode
}

// demote switches recall to exact-match mode for the rest of the process
// lifetime. The transition is logged once; repeat calls are no-ops.
func (e *Engine) demote(op string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode == memory.ModeExactOnly {
		return
	}
	e.mode = memory.ModeExactOnly

	e.logger.Warn("vector index unavailable, demoting to exact-match recall",
		zap.String("op", op),
		zap.Error(err),
	)
}

// Close releases the vector index and embedder. The relational store is
// owned by the caller and stays open.
func (e *Engine) Close() error {
	var firstErr error
	if e.embedder != nil {
		if err := e.embedder.Close(); err != nil {
			firstErr = err
		}
	}
	if e.vec != nil {
		if err := e.vec.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Ensure Engine implements memory.Driver
var _ memory.Driver = (*Engine)(nil)
