// Package watcher ingests dropped note files as facts. It watches a notes
// directory and turns each settled markdown or text file into one stored
// fact, summarized when a completion backend is available.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/quietmindco/engram/pkg/completion"
)

// NotesEntity groups ingested note facts under one entity.
const NotesEntity = "notes"

// DefaultSettle is how long a file must stay quiet before it is read.
// Editors and drag-and-drop both fire bursts of writes.
const DefaultSettle = time.Second

const (
	// summaryClampChars bounds how much of a note goes into the summary
	// prompt.
	summaryClampChars = 5000

	// fallbackHeadChars bounds the stored text when no summary is available.
	fallbackHeadChars = 300
)

const summarySystem = "You summarize personal notes. Reply with 2-3 plain sentences and nothing else."

// Sink stores one mined fact. The hybrid memory engine backs it so notes
// get indexed like any other fact.
type Sink interface {
	StoreFact(ctx context.Context, entity, text string) error
}

// Config is the configuration options for the notes watcher.
type Config struct {
	// Dir is the notes directory to watch. Created if missing.
	Dir string

	// Sink receives one fact per settled note file.
	Sink Sink

	// Call summarizes note content. Nil stores the head of the file instead.
	Call completion.CallFunc

	// Settle is the quiet window before a file is read (defaults to one
	// second).
	Settle time.Duration

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Watcher ingests note files from a watched directory.
type Watcher struct {
	dir    string
	sink   Sink
	call   completion.CallFunc
	settle time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New validates the config and creates a watcher. Run starts it.
func New(c Config) (*Watcher, error) {
	if c.Dir == "" {
		return nil, errors.New("no notes directory configured")
	}
	if c.Sink == nil {
		return nil, errors.New("no sink configured")
	}
	if c.Settle <= 0 {
		c.Settle = DefaultSettle
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	return &Watcher{
		dir:     c.Dir,
		sink:    c.Sink,
		call:    c.Call,
		settle:  c.Settle,
		logger:  c.Logger,
		pending: make(map[string]*time.Timer),
	}, nil
}

// Run watches the notes directory until ctx is cancelled. Watch errors are
// logged and the loop keeps going; only setup failures and cancellation end
// it.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating notes dir: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching notes dir: %w", err)
	}

	w.logger.Info("watching notes", zap.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			w.drainPending()
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !noteFile(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// schedule (re)arms the settle timer for a path, collapsing write bursts
// into one ingest.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}

	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.ingest(ctx, path)
	})
}

func (w *Watcher) drainPending() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

// ingest reads one settled note file and stores it as a fact. The file may
// be gone by now; that's not an error.
func (w *Watcher) ingest(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		w.logger.Warn("reading note failed", zap.String("file", path), zap.Error(err))
		return
	}

	content := strings.TrimSpace(string(raw))
	if content == "" {
		return
	}

	name := filepath.Base(path)
	text := name + ": " + w.condense(ctx, name, content)

	if err := w.sink.StoreFact(ctx, NotesEntity, text); err != nil {
		w.logger.Warn("storing note fact failed", zap.String("file", name), zap.Error(err))
		return
	}

	w.logger.Info("note ingested", zap.String("file", name))
}

// condense summarizes the note, falling back to its head when no backend is
// configured or the call fails.
func (w *Watcher) condense(ctx context.Context, name, content string) string {
	clamped := content
	if len(clamped) > summaryClampChars {
		clamped = clamped[:summaryClampChars]
	}

	if w.call != nil {
		prompt := fmt.Sprintf("Summarize this file (%s) in 2-3 sentences:\n\n%s", name, clamped)
		summary, err := w.call(ctx, summarySystem, prompt)
		if err != nil {
			w.logger.Warn("note summary unavailable, keeping the head of the file", zap.Error(err))
		} else if s := strings.TrimSpace(summary); s != "" {
			return s
		}
	}

	if len(clamped) > fallbackHeadChars {
		clamped = clamped[:fallbackHeadChars]
	}
	return clamped
}

func noteFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".txt":
		return true
	}
	return false
}
