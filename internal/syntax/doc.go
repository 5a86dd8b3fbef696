// Package syntax keeps a per-character style classification of a live text
// buffer up to date in the background.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - style: abstract color categories and style records
//   - store: the dense per-character classification
//   - dirty: the pending [processed, target] range
//   - tokenize: the line-aligned token classifier
//   - adorn: overlay classifiers consulted before the store
//
// # Edits
//
// Buffer events reach the engine through Notify, usually by subscribing it to
// the buffer's event bus with Subscribe. Every structural event first
// interrupts the running tokenizer task, then resizes the store on the
// caller's goroutine, then launches one task covering the accumulated dirty
// range. A task therefore never observes a store whose shape changed under
// it.
//
// # Lookups
//
// QueryStyleAt waits for the in-flight task, then consults the adornments in
// order, then the store:
//
//	buf := textbuf.New("if x { return 1 }")
//	pool := worker.New(1)
//	_ = pool.Start()
//
//	eng := syntax.New(buf, syntax.Pool(pool),
//	    syntax.WithKeywords("if", "return"),
//	)
//	defer eng.Close()
//	_ = eng.Subscribe(buf.Bus())
//
//	rec := eng.QueryStyleAt(0) // {keyword, none}
//
// # Thread Safety
//
// Engine methods are safe for concurrent use. Edits are expected to arrive
// from a single writer, in the order the buffer applied them.
package syntax
