package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/quietmindco/engram/pkg/storage"
)

// Options configures import behavior.
type Options struct {
	// DryRun parses and counts without writing anything.
	DryRun bool
	// Verbose prints per-file progress.
	Verbose bool
}

// Store is the conversation surface the importer writes through.
type Store interface {
	SaveConversation(ctx context.Context, conv *storage.Conversation) error
	GetConversation(ctx context.Context, id string) (*storage.Conversation, error)
}

// Importer replays archived conversation logs into the store.
type Importer struct {
	store   Store
	options Options
}

// NewImporter creates an importer over the given store.
func NewImporter(store Store, opts Options) *Importer {
	return &Importer{store: store, options: opts}
}

// Run scans dir for conversation logs and imports the ones not already
// stored. Malformed logs are counted and skipped, never fatal; store
// failures are.
func (i *Importer) Run(ctx context.Context, dir string) (*Result, error) {
	files, err := ScanArchiveDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan archive directory: %w", err)
	}

	result := &Result{Files: len(files)}

	for _, path := range files {
		conv, err := ParseLog(path)
		if err != nil {
			result.Malformed++
			if i.options.Verbose {
				fmt.Printf("  warning: skipping %s: %v\n", path, err)
			}
			continue
		}

		if _, err := i.store.GetConversation(ctx, conv.ID); err == nil {
			result.Skipped++
			if i.options.Verbose {
				fmt.Printf("  already stored: %s\n", conv.ID)
			}
			continue
		} else {
			var notFound storage.ErrNotFound
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to check conversation %s: %w", conv.ID, err)
			}
		}

		if i.options.Verbose {
			fmt.Printf("  import: %s (%d messages)\n", conv.ID, len(conv.Messages))
		}

		if !i.options.DryRun {
			if err := i.store.SaveConversation(ctx, &storage.Conversation{
				ID:         conv.ID,
				Topic:      conv.Topic,
				Transcript: conv.Messages,
				CreatedAt:  conv.OccurredAt,
			}); err != nil {
				return nil, fmt.Errorf("failed to save conversation %s: %w", conv.ID, err)
			}
		}

		result.Imported++
		result.Messages += len(conv.Messages)
	}

	return result, nil
}
