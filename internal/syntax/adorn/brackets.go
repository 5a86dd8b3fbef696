package adorn

import (
	"sync"

	"github.com/dshills/synstorm/internal/event"
	"github.com/dshills/synstorm/internal/syntax/style"
)

// bracket records the nesting state of one bracket character.
type bracket struct {
	depth int
	valid bool
}

// Brackets colors matching brackets by nesting depth.
//
// Each of (), [] and {} must close in order; a closer that does not match the
// innermost open bracket, and any bracket left open at the end of the
// buffer, is marked with the Error background.
type Brackets struct {
	mu    sync.RWMutex
	text  Text
	marks map[int]bracket

	refreshes uint64
}

// NewBrackets creates a bracket adornment and computes its initial state.
func NewBrackets(text Text) *Brackets {
	b := &Brackets{text: text}
	b.Refresh()
	return b
}

// Name returns "rainbow-brackets".
func (b *Brackets) Name() string { return "rainbow-brackets" }

// StyleAt returns the bracket color at offset.
func (b *Brackets) StyleAt(offset int) (style.Record, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	m, ok := b.marks[offset]
	if !ok {
		return style.Record{}, false
	}
	if !m.valid {
		return style.Record{Foreground: style.Normal, Background: style.Error}, true
	}
	return style.Fg(style.Rainbow(m.depth)), true
}

// Notify rescans the buffer after every content change.
func (b *Brackets) Notify(evt event.BufferEvent) {
	if evt.Kind == event.PreChange {
		return
	}
	b.Refresh()
}

// Refresh recomputes bracket depths from the buffer text.
func (b *Brackets) Refresh() {
	type open struct {
		offset int
		closer rune
	}

	n := b.text.Len()
	marks := make(map[int]bracket)
	var stack []open

	for i := 0; i < n; i++ {
		r := b.text.RuneAt(i)
		switch r {
		case '(', '[', '{':
			stack = append(stack, open{offset: i, closer: closerFor(r)})
			marks[i] = bracket{depth: len(stack) - 1}
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1].closer != r {
				marks[i] = bracket{}
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			depth := len(stack)
			marks[top.offset] = bracket{depth: depth, valid: true}
			marks[i] = bracket{depth: depth, valid: true}
		}
	}

	b.mu.Lock()
	b.marks = marks
	b.refreshes++
	b.mu.Unlock()
}

// Refreshes returns how many times the bracket state was recomputed.
func (b *Brackets) Refreshes() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.refreshes
}

func closerFor(r rune) rune {
	switch r {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}
