package syntax

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/synstorm/internal/event"
	"github.com/dshills/synstorm/internal/logging"
	"github.com/dshills/synstorm/internal/syntax/adorn"
	"github.com/dshills/synstorm/internal/syntax/dirty"
	"github.com/dshills/synstorm/internal/syntax/store"
	"github.com/dshills/synstorm/internal/syntax/style"
	"github.com/dshills/synstorm/internal/syntax/tokenize"
)

const tracerName = "github.com/dshills/synstorm/internal/syntax"

// Text is the read access the engine needs to the buffer.
type Text interface {
	Len() int
	RuneAt(i int) rune
}

// Engine maintains the style classification of one buffer.
type Engine struct {
	id   string
	text Text

	// mu orders shape changes against lookups. Shape changes hold it
	// exclusively; lookups hold it shared while they wait for idle.
	mu      sync.RWMutex
	store   *store.Store
	tracker *dirty.Tracker
	tok     *tokenize.Tokenizer
	sched   *scheduler

	adornments adorn.List
	brackets   *adorn.Brackets

	logger *logging.Logger
	tracer trace.Tracer

	subMu sync.Mutex
	sub   *event.Subscription
	bus   *event.Bus

	closed    atomic.Bool
	passes    atomic.Uint64
	cancelled atomic.Uint64

	// construction settings
	keywords        []string
	identifiers     []string
	caseInsensitive bool
	rainbow         bool
	extra           []adorn.Adornment
}

// New creates an engine for text and launches the initial full pass on exec.
// A nil exec runs tasks inline.
func New(text Text, exec Executor, opts ...Option) *Engine {
	e := &Engine{
		id:      uuid.NewString(),
		text:    text,
		sched:   newScheduler(exec),
		logger:  logging.Null(),
		tracer:  otel.Tracer(tracerName),
		rainbow: true,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.logger = e.logger.WithComponent("syntax").WithField("engine", e.id[:8])
	e.tok = tokenize.New(e.keywords, e.identifiers, tokenize.WithCaseInsensitive(e.caseInsensitive))

	if e.rainbow {
		e.brackets = adorn.NewBrackets(text)
		e.adornments = append(e.adornments, e.brackets)
	}
	e.adornments = append(e.adornments, e.extra...)

	n := text.Len()
	e.store = store.New(n)
	e.tracker = dirty.NewTracker(n)

	if n > 0 {
		e.mu.Lock()
		e.recomputeLocked(0, n)
		e.mu.Unlock()
	}
	return e
}

// ID returns the unique engine ID.
func (e *Engine) ID() string {
	return e.id
}

// Adornments returns the registered overlays in lookup order.
func (e *Engine) Adornments() adorn.List {
	return e.adornments
}

// QueryStyleAt returns the style of the character at offset.
//
// It waits for the in-flight task, then consults the adornments, then the
// store. Offsets outside the buffer and offsets still waiting for
// classification get the default record.
func (e *Engine) QueryStyleAt(offset int) style.Record {
	e.mu.RLock()
	defer e.mu.RUnlock()

	e.sched.wait()
	return e.styleAtLocked(offset)
}

func (e *Engine) styleAtLocked(offset int) style.Record {
	if offset < 0 || offset >= e.store.Len() {
		return style.Default()
	}
	if r, ok := e.adornments.StyleAt(offset); ok {
		return r
	}
	if e.tracker.IsPending(offset) {
		return style.Default()
	}
	return e.store.At(offset)
}

// Styles returns the resolved style of every character, as QueryStyleAt
// would report them.
func (e *Engine) Styles() []style.Record {
	e.mu.RLock()
	defer e.mu.RUnlock()

	e.sched.wait()
	out := make([]style.Record, e.store.Len())
	for i := range out {
		out[i] = e.styleAtLocked(i)
	}
	return out
}

// Snapshot returns a copy of the base classification, without adornments.
func (e *Engine) Snapshot() []style.Record {
	e.mu.RLock()
	defer e.mu.RUnlock()

	e.sched.wait()
	return e.store.Snapshot()
}

// WaitForIdle blocks until no tokenizer task is running.
func (e *Engine) WaitForIdle() {
	e.sched.wait()
}

// Interrupt stops the running tokenizer task, if any, and waits for it to
// exit. Work it did not finish stays pending.
func (e *Engine) Interrupt() {
	e.sched.interrupt()
}

// IsClean returns true when nothing is waiting to be classified.
func (e *Engine) IsClean() bool {
	return e.tracker.IsClean()
}

// RequestRecompute marks [start, end) dirty and relaunches the tokenizer over
// the whole accumulated dirty range.
func (e *Engine) RequestRecompute(start, end int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sched.interrupt()
	e.store.Resize(e.text.Len())
	e.recomputeLocked(start, end)
}

// recomputeLocked widens the dirty range and submits one task. The caller
// holds mu and no task is in flight.
func (e *Engine) recomputeLocked(start, end int) {
	if start < 0 || end < start {
		panic(fmt.Sprintf("syntax: invalid recompute range [%d,%d)", start, end))
	}

	n := e.text.Len()
	if e.store.Len() != n {
		panic(fmt.Sprintf("syntax: store length %d does not match buffer length %d", e.store.Len(), n))
	}
	if n == 0 {
		e.tracker.Clamp(0)
		return
	}

	e.tracker.Mark(start, end)
	e.tracker.Clamp(n)

	if e.closed.Load() {
		return
	}
	e.sched.submit(e.pass)
}

// pass classifies the accumulated dirty range. It runs on the executor.
func (e *Engine) pass(stop func() bool) {
	if e.tracker.IsClean() {
		return
	}
	processed, target := e.tracker.Range()
	from, to := e.tok.Extent(e.text, processed, target)

	_, span := e.tracer.Start(context.Background(), "syntax.tokenize",
		trace.WithAttributes(
			attribute.String("engine.id", e.id),
			attribute.Int("from", from),
			attribute.Int("to", to),
		))
	defer span.End()

	e.tracker.Begin(from)
	e.logger.Debug("updating syntax start=%d end=%d", from, to)

	completed := e.tok.Scan(e.text, e.store, from, to, stop)
	span.SetAttributes(attribute.Bool("completed", completed))
	if !completed {
		e.cancelled.Add(1)
		e.logger.Debug("syntax pass interrupted start=%d end=%d", from, to)
		return
	}

	e.tracker.Reset(e.text.Len())
	e.passes.Add(1)
}

// Close stops background work and detaches from the bus. Lookups keep
// returning the last classification.
func (e *Engine) Close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	e.mu.Lock()
	e.sched.interrupt()
	e.mu.Unlock()
	e.Unsubscribe()
	e.logger.Debug("syntax engine closed")
}

// Stats returns statistics about the engine.
func (e *Engine) Stats() Stats {
	return Stats{
		ID:         e.id,
		Passes:     e.passes.Load(),
		Cancelled:  e.cancelled.Load(),
		Interrupts: e.sched.interrupts.Load(),
		Dirty:      e.tracker.Stats(),
	}
}

// Stats contains statistics for an engine.
type Stats struct {
	ID string

	// Passes is the number of completed tokenizer passes.
	Passes uint64

	// Cancelled is the number of passes abandoned after an interrupt.
	Cancelled uint64

	// Interrupts counts interrupt calls, including ones with nothing running.
	Interrupts uint64

	Dirty dirty.TrackerStats
}
