// Package textbuf provides a rune-indexed text buffer that announces its
// edits on an event bus.
package textbuf

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dshills/synstorm/internal/event"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// Buffer is an editable sequence of runes.
//
// Every edit publishes PreChange before the content changes and a
// TextDeleted, TextInserted, TextChanged or Loaded event afterwards. Events
// are published without holding the buffer lock, so handlers may read the
// buffer.
type Buffer struct {
	mu     sync.RWMutex
	runes  []rune
	bus    *event.Bus
	source string

	// editMu serializes edits so event pairs never interleave.
	editMu sync.Mutex
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithBus publishes events on bus instead of a private bus.
func WithBus(bus *event.Bus) Option {
	return func(b *Buffer) {
		if bus != nil {
			b.bus = bus
		}
	}
}

// WithSource sets the source name attached to published events.
func WithSource(name string) Option {
	return func(b *Buffer) {
		b.source = name
	}
}

// New creates a buffer holding s. No events are published for the initial
// content.
func New(s string, opts ...Option) *Buffer {
	b := &Buffer{
		runes:  []rune(s),
		source: "textbuf",
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.bus == nil {
		b.bus = event.NewBus()
	}
	return b
}

// Bus returns the bus events are published on.
func (b *Buffer) Bus() *event.Bus {
	return b.bus
}

// Len returns the number of runes.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.runes)
}

// RuneAt returns the rune at offset i.
func (b *Buffer) RuneAt(i int) rune {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.runes[i]
}

// String returns the full content.
func (b *Buffer) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.runes)
}

// Slice returns the text in [start, end).
func (b *Buffer) Slice(start, end int) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkRange(start, end); err != nil {
		return "", err
	}
	return string(b.runes[start:end]), nil
}

// Insert inserts s at offset at.
func (b *Buffer) Insert(at int, s string) error {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return nil
	}

	b.editMu.Lock()
	defer b.editMu.Unlock()

	if err := b.checkOffset(at); err != nil {
		return err
	}

	b.publish(event.PreChange, at, at)

	b.mu.Lock()
	ins := []rune(s)
	grown := make([]rune, 0, len(b.runes)+n)
	grown = append(grown, b.runes[:at]...)
	grown = append(grown, ins...)
	grown = append(grown, b.runes[at:]...)
	b.runes = grown
	b.mu.Unlock()

	b.publish(event.TextInserted, at, at+n)
	return nil
}

// Delete removes the runes in [start, end).
func (b *Buffer) Delete(start, end int) error {
	b.editMu.Lock()
	defer b.editMu.Unlock()

	if err := b.checkRangeLocked(start, end); err != nil {
		return err
	}
	if start == end {
		return nil
	}

	b.publish(event.PreChange, start, end)

	b.mu.Lock()
	b.runes = append(b.runes[:start], b.runes[end:]...)
	b.mu.Unlock()

	b.publish(event.TextDeleted, start, end)
	return nil
}

// Replace replaces [start, end) with s. A replacement of equal length is
// reported as TextChanged; anything else is a delete followed by an insert.
func (b *Buffer) Replace(start, end int, s string) error {
	ins := []rune(s)

	b.editMu.Lock()
	if err := b.checkRangeLocked(start, end); err != nil {
		b.editMu.Unlock()
		return err
	}
	if len(ins) != end-start {
		b.editMu.Unlock()
		if err := b.Delete(start, end); err != nil {
			return err
		}
		return b.Insert(start, s)
	}
	defer b.editMu.Unlock()

	if len(ins) == 0 {
		return nil
	}

	b.publish(event.PreChange, start, end)

	b.mu.Lock()
	copy(b.runes[start:end], ins)
	b.mu.Unlock()

	b.publish(event.TextChanged, start, end)
	return nil
}

// Load replaces the whole content with s.
func (b *Buffer) Load(s string) {
	b.editMu.Lock()
	defer b.editMu.Unlock()

	old := b.Len()
	b.publish(event.PreChange, 0, old)

	b.mu.Lock()
	b.runes = b.runes[:0]
	b.mu.Unlock()
	if old > 0 {
		b.publish(event.TextDeleted, 0, old)
	}

	b.mu.Lock()
	b.runes = []rune(s)
	n := len(b.runes)
	b.mu.Unlock()

	b.publish(event.Loaded, 0, n)
}

// Lines returns the content split on newlines.
func (b *Buffer) Lines() []string {
	return strings.Split(b.String(), "\n")
}

func (b *Buffer) publish(kind event.Kind, start, end int) {
	b.bus.Publish(event.BufferEvent{
		Kind:   kind,
		Start:  start,
		End:    end,
		Source: b.source,
	})
}

func (b *Buffer) checkOffset(at int) error {
	n := b.Len()
	if at < 0 || at > n {
		return fmt.Errorf("%w: %d not in [0,%d]", ErrOffsetOutOfRange, at, n)
	}
	return nil
}

func (b *Buffer) checkRangeLocked(start, end int) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.checkRange(start, end)
}

func (b *Buffer) checkRange(start, end int) error {
	if start > end {
		return fmt.Errorf("%w: [%d,%d)", ErrRangeInvalid, start, end)
	}
	if start < 0 || end > len(b.runes) {
		return fmt.Errorf("%w: [%d,%d) not in [0,%d]", ErrOffsetOutOfRange, start, end, len(b.runes))
	}
	return nil
}
