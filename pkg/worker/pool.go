// Package worker provides an asynchronous worker pool for indexing stored
// facts into the vector index.
//
// The pool decouples embedding from the fact-store hot path: Store returns
// as soon as the relational write lands, and the index catches up in the
// background.
package worker

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/quietmindco/engram/pkg/storage"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Indexer makes one stored fact vector-searchable. The hybrid recall engine
// satisfies this.
type Indexer interface {
	Index(ctx context.Context, fact *storage.Fact) error
}

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Fact *storage.Fact
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Indexer receives every queued fact.
	Indexer Indexer

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Pool indexes facts asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a fact for background indexing.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("index job queued",
			zap.Int64("fact_id", job.Fact.ID),
			zap.String("entity", job.Fact.Entity),
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			zap.Int64("fact_id", job.Fact.ID),
			zap.String("entity", job.Fact.Entity),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the API server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", zap.Uint("worker_id", id))

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("index worker stopped", zap.Uint("worker_id", id))
}

// processJob indexes one fact. Errors are logged but not returned; the fact
// itself is already stored, only recall quality is affected.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	if err := p.config.Indexer.Index(ctx, job.Fact); err != nil {
		p.logger.Warn("async fact indexing failed",
			zap.Int64("fact_id", job.Fact.ID),
			zap.Error(err),
		)
		return
	}

	p.logger.Debug("fact indexed",
		zap.Int64("fact_id", job.Fact.ID),
		zap.String("entity", job.Fact.Entity),
	)
}
