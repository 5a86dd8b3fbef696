package syntax

import (
	"fmt"

	"github.com/dshills/synstorm/internal/event"
	"github.com/dshills/synstorm/internal/logging"
)

// Notify applies a buffer event.
//
// Offsets follow the buffer's convention: TextDeleted and PreChange refer to
// the content before the edit, TextInserted and Loaded to the content after
// it. Adornments that track edits are notified once the engine has handled
// the event.
func (e *Engine) Notify(evt event.BufferEvent) {
	if e.closed.Load() {
		return
	}
	if evt.Start < 0 || evt.End < evt.Start {
		panic(fmt.Sprintf("syntax: invalid event range %s", evt))
	}
	if e.logger.Enabled(logging.LevelDebug) {
		e.logger.Debug("buffer event topic=%s start=%d end=%d source=%s",
			evt.Kind.Topic(), evt.Start, evt.End, evt.Source)
	}

	if !e.apply(evt) {
		return
	}
	e.adornments.Notify(evt)
}

// apply reshapes the store and relaunches the tokenizer for one event. It
// returns false for events it does not understand.
func (e *Engine) apply(evt event.BufferEvent) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch evt.Kind {
	case event.PreChange:
		e.sched.interrupt()

	case event.TextDeleted:
		e.sched.interrupt()
		e.store.Erase(evt.Start, evt.End)
		e.tracker.Shift(evt.Start, -evt.Len())
		e.recomputeLocked(evt.Start, evt.Start)

	case event.TextInserted, event.Loaded:
		e.sched.interrupt()
		e.store.Insert(evt.Start, evt.Len())
		e.tracker.Shift(evt.Start, evt.Len())
		e.recomputeLocked(evt.Start, evt.End)

	case event.TextChanged:
		e.sched.interrupt()
		e.recomputeLocked(evt.Start, evt.End)

	default:
		e.logger.Warn("ignoring unknown buffer event %s", evt)
		return false
	}
	return true
}

// Subscribe attaches the engine to bus ahead of every normal-priority
// subscriber, so classification data is reshaped before anyone else reacts
// to an edit. An engine is attached to at most one bus.
func (e *Engine) Subscribe(bus *event.Bus) error {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	if e.sub != nil {
		return fmt.Errorf("syntax: engine %s already subscribed", e.id)
	}
	sub, err := bus.Subscribe(e.Notify, event.WithPriority(event.PriorityCritical))
	if err != nil {
		return fmt.Errorf("subscribing syntax engine: %w", err)
	}
	e.sub = sub
	e.bus = bus
	return nil
}

// Unsubscribe detaches the engine from its bus. It is a no-op when the
// engine is not subscribed.
func (e *Engine) Unsubscribe() {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	if e.sub == nil {
		return
	}
	_ = e.bus.Unsubscribe(e.sub)
	e.sub = nil
	e.bus = nil
}
