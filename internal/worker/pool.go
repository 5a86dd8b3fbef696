// Package worker provides the task-execution facility used to run background
// work off the interactive path.
package worker

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Errors returned by the pool.
var (
	ErrAlreadyRunning = errors.New("worker pool already running")
	ErrNotRunning     = errors.New("worker pool not running")
)

// PanicHandler is called when a task panics.
type PanicHandler func(recovered any, stack []byte)

// Handle tracks a submitted task.
type Handle struct {
	done chan struct{}
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// Wait blocks until the task has finished.
func (h *Handle) Wait() {
	<-h.done
}

// Done returns a channel that is closed when the task has finished.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Pool runs submitted tasks on a fixed set of goroutines.
// A pool with zero workers runs every task synchronously on the submitter.
type Pool struct {
	workerCount int
	queueSize   int

	mu      sync.Mutex // protects queue creation/destruction
	queue   chan task
	running atomic.Bool
	wg      sync.WaitGroup

	panicHandler PanicHandler

	// Stats
	submitted   atomic.Uint64
	completed   atomic.Uint64
	panicked    atomic.Uint64
	inline      atomic.Uint64
	totalTimeNs atomic.Int64
}

type task struct {
	fn     func()
	handle *Handle
}

// Option configures a Pool.
type Option func(*Pool)

// WithQueueSize sets the task queue size.
func WithQueueSize(size int) Option {
	return func(p *Pool) {
		if size > 0 {
			p.queueSize = size
		}
	}
}

// WithPanicHandler sets the panic handler.
func WithPanicHandler(h PanicHandler) Option {
	return func(p *Pool) {
		p.panicHandler = h
	}
}

// New creates a pool with the given number of workers.
// Negative counts are treated as zero.
func New(workers int, opts ...Option) *Pool {
	if workers < 0 {
		workers = 0
	}
	p := &Pool{
		workerCount: workers,
		queueSize:   64,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start starts the workers.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running.Load() {
		return ErrAlreadyRunning
	}

	p.queue = make(chan task, p.queueSize)
	p.running.Store(true)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return nil
}

// Stop stops the pool after queued tasks have run, or when ctx is done.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running.Load() {
		p.mu.Unlock()
		return ErrNotRunning
	}
	p.running.Store(false)
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit schedules fn and returns a handle for it.
//
// Tasks run inline when the pool has no workers or is not running, so a
// handle is always returned and Wait never blocks forever.
func (p *Pool) Submit(fn func()) *Handle {
	h := newHandle()
	p.submitted.Add(1)

	if p.workerCount == 0 || !p.running.Load() {
		p.inline.Add(1)
		p.run(task{fn: fn, handle: h})
		return h
	}

	// Holding mu while sending keeps Stop from closing the queue under us.
	p.mu.Lock()
	if !p.running.Load() {
		p.mu.Unlock()
		p.inline.Add(1)
		p.run(task{fn: fn, handle: h})
		return h
	}
	p.queue <- task{fn: fn, handle: h}
	p.mu.Unlock()
	return h
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.queue {
		p.run(t)
	}
}

// run executes a task with panic recovery and always releases its handle.
func (p *Pool) run(t task) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.panicked.Add(1)
			if p.panicHandler != nil {
				stack := debug.Stack()
				func() {
					defer func() { _ = recover() }()
					p.panicHandler(r, stack)
				}()
			}
		}
		p.completed.Add(1)
		p.totalTimeNs.Add(time.Since(start).Nanoseconds())
		close(t.handle.done)
	}()
	t.fn()
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int {
	return p.workerCount
}

// IsRunning returns true if the pool is running.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}

// Stats returns pool statistics.
func (p *Pool) Stats() Stats {
	completed := p.completed.Load()
	totalNs := p.totalTimeNs.Load()

	var avgNs int64
	if completed > 0 {
		avgNs = totalNs / int64(completed)
	}

	return Stats{
		Submitted:     p.submitted.Load(),
		Completed:     completed,
		Panicked:      p.panicked.Load(),
		Inline:        p.inline.Load(),
		TotalDuration: time.Duration(totalNs),
		AvgDuration:   time.Duration(avgNs),
	}
}

// Stats contains statistics for a pool.
type Stats struct {
	// Submitted is the total number of tasks submitted.
	Submitted uint64

	// Completed is the number of tasks that have finished, including panics.
	Completed uint64

	// Panicked is the number of tasks that panicked.
	Panicked uint64

	// Inline is the number of tasks run on the submitting goroutine.
	Inline uint64

	// TotalDuration is the cumulative time spent running tasks.
	TotalDuration time.Duration

	// AvgDuration is the average task run time.
	AvgDuration time.Duration
}
