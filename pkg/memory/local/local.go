// Package local provides an in-memory implementation of the memory.Driver
// interface.
//
// Facts live in process memory and recall is substring matching, newest
// first. This is a test and local-dev story — real deployments use the
// hybrid driver over a relational store and vector index.
package local

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/quietmindco/engram/pkg/memory"
	"github.com/quietmindco/engram/pkg/storage"
)

// Driver implements memory.Driver using in-process data structures.
type Driver struct {
	mu     sync.RWMutex
	nextID int64
	facts  []*storage.Fact
}

// NewDriver creates a local in-memory memory driver.
func NewDriver() *Driver {
	return &Driver{}
}

// Store appends a fact and assigns it the next id.
func (d *Driver) Store(_ context.Context, entity, text string) (*storage.Fact, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	fact := &storage.Fact{
		ID:        d.nextID,
		Entity:    entity,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	d.facts = append(d.facts, fact)

	return fact, nil
}

// Recall returns facts whose entity or text contains the query,
// case-insensitive, newest first.
func (d *Driver) Recall(_ context.Context, query string, limit int) (*memory.RecallResult, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	needle := strings.ToLower(query)

	var matched []*storage.Fact
	for i := len(d.facts) - 1; i >= 0; i-- {
		f := d.facts[i]
		if !strings.Contains(strings.ToLower(f.Text), needle) && !strings.Contains(strings.ToLower(f.Entity), needle) {
			continue
		}
		matched = append(matched, f)
		if limit > 0 && len(matched) == limit {
			break
		}
	}

	return &memory.RecallResult{
		Facts: matched,
		Mode:  memory.ModeExactOnly,
	}, nil
}

// Mode always reports exact-match recall; there is no index here.
func (d *Driver) Mode() memory.Mode {
	return memory.ModeExactOnly
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

// Ensure Driver implements memory.Driver
var _ memory.Driver = (*Driver)(nil)
