package extract

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/quietmindco/engram/pkg/llm"
	"github.com/quietmindco/engram/pkg/storage"
)

// Turn is one user message paired with the assistant reply that followed it.
type Turn struct {
	User      string
	Assistant string
}

// Turns pairs each user message in a transcript with the assistant reply
// that follows it. A user message answered by another user message, or by
// nothing, still forms a turn with an empty reply.
func Turns(transcript []llm.Message) []Turn {
	var turns []Turn
	for i := range transcript {
		if transcript[i].Role != "user" {
			continue
		}
		turn := Turn{User: transcript[i].GetText()}
		for j := i + 1; j < len(transcript); j++ {
			if transcript[j].Role == "assistant" {
				turn.Assistant = transcript[j].GetText()
				break
			}
			if transcript[j].Role == "user" {
				break
			}
		}
		turns = append(turns, turn)
	}
	return turns
}

// Sink receives captured knowledge. The hybrid memory engine backs the fact
// half so mined facts get indexed like any other store.
type Sink interface {
	StoreFact(ctx context.Context, entity, text string) error
	AddGoal(ctx context.Context, text string) error
}

// Worker mines saved conversation transcripts for facts and goals in the
// background.
type Worker struct {
	extractor *Extractor
	sink      Sink

	done  atomic.Int64
	total atomic.Int64
}

// NewWorker creates a new Worker.
func NewWorker(extractor *Extractor, sink Sink) *Worker {
	return &Worker{
		extractor: extractor,
		sink:      sink,
	}
}

// Progress returns the number of conversations processed and total to process.
func (w *Worker) Progress() (done, total int) {
	return int(w.done.Load()), int(w.total.Load())
}

// Run mines the given conversations with bounded concurrency. It blocks
// until all conversations are processed or the context is cancelled.
func (w *Worker) Run(ctx context.Context, convs []*storage.Conversation) {
	w.total.Store(int64(len(convs)))
	w.done.Store(0)

	if len(convs) == 0 {
		return
	}

	// Process with bounded concurrency (2 workers to avoid rate limits)
	const maxConcurrency = 2
	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup

	for _, conv := range convs {
		if ctx.Err() != nil {
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(conv *storage.Conversation) {
			defer wg.Done()
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			w.mine(ctx, conv)
			w.done.Add(1)
		}(conv)
	}

	wg.Wait()
}

func (w *Worker) mine(ctx context.Context, conv *storage.Conversation) {
	for _, turn := range Turns(conv.Transcript) {
		if ctx.Err() != nil {
			return
		}

		extraction := w.extractor.Capture(ctx, turn.User, turn.Assistant)

		for _, fact := range extraction.Facts {
			if err := w.sink.StoreFact(ctx, fact.Entity, fact.Text); err != nil {
				slog.Warn("extract worker: store fact failed", "conversation", conv.ID, "error", err)
			}
		}
		for _, goal := range extraction.Goals {
			if err := w.sink.AddGoal(ctx, goal); err != nil {
				slog.Warn("extract worker: add goal failed", "conversation", conv.ID, "error", err)
			}
		}
	}
}
