// Package event delivers buffer lifecycle notifications to interested
// components.
//
// Delivery is synchronous and ordered: Publish returns only after every
// matching handler has run, in priority order. Buffer edits depend on this,
// since a PreChange handler must finish before the buffer mutates.
package event

import "fmt"

// Kind identifies a buffer lifecycle event.
type Kind uint8

const (
	// PreChange is published before the buffer mutates.
	PreChange Kind = iota

	// TextDeleted is published after [Start, End) was removed.
	// Offsets refer to the buffer before the deletion.
	TextDeleted

	// TextInserted is published after [Start, End) was inserted.
	// Offsets refer to the buffer after the insertion.
	TextInserted

	// Loaded is published after the buffer content was replaced wholesale.
	Loaded

	// TextChanged is published after [Start, End) was rewritten in place.
	TextChanged
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case PreChange:
		return "pre-change"
	case TextDeleted:
		return "deleted"
	case TextInserted:
		return "inserted"
	case Loaded:
		return "loaded"
	case TextChanged:
		return "changed"
	default:
		return "unknown"
	}
}

// Topic returns the hierarchical topic name of the kind.
func (k Kind) Topic() string {
	switch k {
	case PreChange:
		return "buffer.change.pending"
	case TextDeleted:
		return "buffer.content.deleted"
	case TextInserted:
		return "buffer.content.inserted"
	case Loaded:
		return "buffer.loaded"
	case TextChanged:
		return "buffer.content.changed"
	default:
		return "buffer.unknown"
	}
}

// BufferEvent describes a change to a buffer in rune offsets.
type BufferEvent struct {
	Kind  Kind
	Start int
	End   int

	// Source identifies the publisher, for logging.
	Source string
}

// String returns a human-readable representation of the event.
func (e BufferEvent) String() string {
	return fmt.Sprintf("%s[%d,%d)", e.Kind, e.Start, e.End)
}

// Len returns the number of runes covered by the event.
func (e BufferEvent) Len() int {
	return e.End - e.Start
}
