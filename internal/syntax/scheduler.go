package syntax

import (
	"sync"
	"sync/atomic"

	"github.com/dshills/synstorm/internal/worker"
)

// Executor runs submitted work, possibly on another goroutine.
type Executor interface {
	Submit(fn func()) Handle
}

// Handle tracks one submitted task.
type Handle interface {
	// Wait blocks until the task has finished.
	Wait()
}

// Pool adapts a worker pool to Executor.
func Pool(p *worker.Pool) Executor {
	return poolExecutor{p}
}

type poolExecutor struct {
	pool *worker.Pool
}

func (e poolExecutor) Submit(fn func()) Handle {
	return e.pool.Submit(fn)
}

// Inline returns an Executor that runs every task on the submitting
// goroutine.
func Inline() Executor {
	return inlineExecutor{}
}

type inlineExecutor struct{}

type doneHandle struct{}

func (doneHandle) Wait() {}

func (inlineExecutor) Submit(fn func()) Handle {
	fn()
	return doneHandle{}
}

// scheduler keeps at most one task in flight and lets the owner stop it
// cooperatively.
type scheduler struct {
	exec Executor

	mu     sync.Mutex
	handle Handle

	stop       atomic.Bool
	interrupts atomic.Uint64
}

func newScheduler(exec Executor) *scheduler {
	if exec == nil {
		exec = Inline()
	}
	return &scheduler{exec: exec}
}

// submit launches fn. The caller must have interrupted any previous task.
func (s *scheduler) submit(fn func(stop func() bool)) {
	h := s.exec.Submit(func() { fn(s.stop.Load) })

	s.mu.Lock()
	s.handle = h
	s.mu.Unlock()
}

// wait blocks until the current task, if any, has finished.
func (s *scheduler) wait() {
	s.mu.Lock()
	h := s.handle
	s.mu.Unlock()

	if h != nil {
		h.Wait()
	}
}

// interrupt raises the stop flag, waits for the task to exit and lowers the
// flag again. No task is in flight when it returns.
func (s *scheduler) interrupt() {
	s.stop.Store(true)
	s.wait()
	s.stop.Store(false)
	s.interrupts.Add(1)
}
