// Package adorn provides overlay classifiers that take precedence over the
// base tokenizer.
//
// An adornment answers StyleAt for the offsets it cares about and reports
// false everywhere else. Adornments read buffer text directly and never wait
// for the tokenizer, so they can be queried while a tokenization pass is
// pending.
package adorn

import (
	"fmt"
	"strings"

	"github.com/dshills/synstorm/internal/event"
	"github.com/dshills/synstorm/internal/syntax/style"
)

// Text is read-only, rune-indexed access to buffer content.
type Text interface {
	Len() int
	RuneAt(i int) rune
}

// Adornment overrides the base classification at specific offsets.
type Adornment interface {
	// Name identifies the adornment in logs.
	Name() string

	// StyleAt returns the overriding record for offset, if any.
	StyleAt(offset int) (style.Record, bool)
}

// Notifiable is implemented by adornments that keep their own state in step
// with buffer edits. Notify is called after the engine has handled the event.
type Notifiable interface {
	Notify(evt event.BufferEvent)
}

// List is an ordered set of adornments. The first adornment that returns a
// record wins.
type List []Adornment

// StyleAt consults every adornment in order.
func (l List) StyleAt(offset int) (style.Record, bool) {
	for _, a := range l {
		if r, ok := a.StyleAt(offset); ok {
			return r, true
		}
	}
	return style.Record{}, false
}

// Notify forwards evt to every Notifiable adornment.
func (l List) Notify(evt event.BufferEvent) {
	for _, a := range l {
		if n, ok := a.(Notifiable); ok {
			n.Notify(evt)
		}
	}
}

// Names returns the adornment names in order.
func (l List) Names() []string {
	names := make([]string, len(l))
	for i, a := range l {
		names[i] = a.Name()
	}
	return names
}

// textString returns the content of text as a string.
func textString(text Text) string {
	if s, ok := text.(fmt.Stringer); ok {
		return s.String()
	}
	var sb strings.Builder
	n := text.Len()
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteRune(text.RuneAt(i))
	}
	return sb.String()
}

// Fixed is an adornment with a static offset to record mapping.
type Fixed struct {
	name    string
	records map[int]style.Record
}

// NewFixed creates a static adornment.
func NewFixed(name string, records map[int]style.Record) *Fixed {
	m := make(map[int]style.Record, len(records))
	for k, v := range records {
		m[k] = v
	}
	return &Fixed{name: name, records: m}
}

// Name returns the adornment name.
func (f *Fixed) Name() string { return f.name }

// StyleAt returns the fixed record for offset.
func (f *Fixed) StyleAt(offset int) (style.Record, bool) {
	r, ok := f.records[offset]
	return r, ok
}
