// Package pool runs probe jobs on a fixed number of worker goroutines fed by
// a bounded queue.
package pool

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrInvalidSize = errors.New("pool: worker count must be at least 1")
	ErrClosed      = errors.New("pool: closed")
	ErrQueueFull   = errors.New("pool: queue full")
)

const DefaultQueueSize = 1024

// Job is an opaque unit of work. A panicking job is recovered and logged; the
// worker that ran it keeps serving.
type Job func()

type Pool struct {
	logger  *zap.Logger
	jobs    chan Job
	size    int
	onPanic func(any)

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type Option func(*Pool)

// WithQueueSize sets how many jobs may wait for a worker. Zero makes every
// submission hand off directly to an idle worker.
func WithQueueSize(n int) Option {
	return func(p *Pool) {
		if n >= 0 {
			p.jobs = make(chan Job, n)
		}
	}
}

// WithPanicHook is called after a job panic has been recovered and logged.
func WithPanicHook(fn func(recovered any)) Option {
	return func(p *Pool) { p.onPanic = fn }
}

func New(logger *zap.Logger, size int, opts ...Option) (*Pool, error) {
	if size < 1 {
		return nil, ErrInvalidSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pool{
		logger: logger,
		jobs:   make(chan Job, DefaultQueueSize),
		size:   size,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.wg.Add(size)
	for id := 0; id < size; id++ {
		go p.worker(id)
	}
	p.logger.Info("pool_started", zap.Int("workers", size), zap.Int("queue_size", cap(p.jobs)))
	return p, nil
}

// Submit queues job, waiting for a free slot while the queue is full. It
// gives up when ctx ends or the pool is shut down. A ctx that has already
// ended never queues the job.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySubmit queues job only if that can be done without waiting.
func (p *Pool) TrySubmit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting jobs and blocks until the workers have run every
// job already queued and exited. Calling it more than once is safe.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
		p.logger.Info("pool_shutdown", zap.Int("pending", len(p.jobs)))
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) Size() int { return p.size }

// QueueLen is the number of jobs waiting for a worker.
func (p *Pool) QueueLen() int { return len(p.jobs) }

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		p.run(id, job)
	}
	p.logger.Debug("pool_worker_stopped", zap.Int("worker", id))
}

func (p *Pool) run(id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pool_job_panic",
				zap.Int("worker", id),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			if p.onPanic != nil {
				p.onPanic(r)
			}
		}
	}()
	job()
}
