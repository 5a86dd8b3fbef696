// Package tokenize classifies buffer characters with a flat, delimiter-based
// token scanner.
//
// The scanner is line oriented: a scan always starts at a line start and
// stops at a line end, so single-line strings and comments are never cut in
// half. Multi-line constructs are not recognized.
package tokenize

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/dshills/synstorm/internal/syntax/style"
)

// Text is read-only, rune-indexed access to buffer content.
type Text interface {
	Len() int
	RuneAt(i int) rune
}

// Sink receives classifications.
type Sink interface {
	Fill(from, to int, r style.Record)
}

// delimiters separate tokens.
const delimiters = " \t.\n;(){}=:"

// parens are the characters that make a token a Parenthesis token.
const parens = "{}()[]"

func isDelim(r rune) bool {
	return strings.ContainsRune(delimiters, r)
}

// Tokenizer classifies tokens against keyword and identifier sets.
// A Tokenizer is immutable after construction and safe for concurrent use.
type Tokenizer struct {
	keywords        map[string]struct{}
	identifiers     map[string]struct{}
	caseInsensitive bool
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithCaseInsensitive makes keyword and identifier matching case-insensitive.
func WithCaseInsensitive(on bool) Option {
	return func(t *Tokenizer) {
		t.caseInsensitive = on
	}
}

// New creates a tokenizer for the given keyword and identifier sets.
func New(keywords, identifiers []string, opts ...Option) *Tokenizer {
	t := &Tokenizer{}
	for _, opt := range opts {
		opt(t)
	}
	t.keywords = t.buildSet(keywords)
	t.identifiers = t.buildSet(identifiers)
	return t
}

func (t *Tokenizer) buildSet(words []string) map[string]struct{} {
	var caser cases.Caser
	if t.caseInsensitive {
		caser = cases.Fold()
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if t.caseInsensitive {
			w = caser.String(w)
		}
		set[w] = struct{}{}
	}
	return set
}

// CaseInsensitive reports whether matching folds case.
func (t *Tokenizer) CaseInsensitive() bool {
	return t.caseInsensitive
}

// Extent widens [start, end] to whole lines.
//
// from is found by walking back from the character before start over its
// token to the previous delimiter and then back to the end of the previous
// line. Starting one character early catches a newline inserted inside a
// token, which shortens the token to its left. to is the next newline at or
// after end, or the buffer length.
func (t *Tokenizer) Extent(text Text, start, end int) (from, to int) {
	n := text.Len()
	if n == 0 {
		return 0, 0
	}

	from = min(max(start-1, 0), n-1)
	for from > 0 && !isDelim(text.RuneAt(from)) {
		from--
	}
	for from > 0 && text.RuneAt(from) != '\n' {
		from--
	}

	to = min(max(end, from), n)
	for to < n && text.RuneAt(to) != '\n' {
		to++
	}
	return from, to
}

// Scan classifies every character in [from, to) and writes the result to out.
// stop is polled once per token; when it returns true Scan abandons the pass
// and returns false. Scan returns true when the range was fully classified.
//
// from and to are expected to come from Extent.
func (t *Tokenizer) Scan(text Text, out Sink, from, to int, stop func() bool) bool {
	n := text.Len()
	to = min(to, n)

	var caser cases.Caser
	if t.caseInsensitive {
		caser = cases.Fold()
	}

	var sb strings.Builder
	cur := from
	for cur < to {
		if stop != nil && stop() {
			return false
		}

		first := cur
		for first < n && isDelim(text.RuneAt(first)) {
			first++
		}
		if first >= to {
			markDelimiters(text, out, cur, to)
			break
		}

		last := first
		for last < n && !isDelim(text.RuneAt(last)) {
			last++
		}

		markDelimiters(text, out, cur, first)

		sb.Reset()
		for i := first; i < last; i++ {
			sb.WriteRune(text.RuneAt(i))
		}
		token := sb.String()
		if t.caseInsensitive {
			token = caser.String(token)
		}
		out.Fill(first, last, style.Fg(t.Classify(token)))

		if end, ok := matchString(text, first); ok {
			out.Fill(first, end, style.Fg(style.String))
			cur = end
			continue
		}

		if start, ok := findComment(text, first, last); ok {
			eol := lineEnd(text, start)
			out.Fill(start, eol, style.Fg(style.Comment))
			cur = eol
			continue
		}

		cur = last
	}
	return true
}

// Classify returns the category of an already case-folded token.
func (t *Tokenizer) Classify(token string) style.Category {
	if _, ok := t.keywords[token]; ok {
		return style.Keyword
	}
	if _, ok := t.identifiers[token]; ok {
		return style.Identifier
	}
	if token == "" {
		return style.Normal
	}
	if allIn(token, "0123456789") {
		return style.Number
	}
	if allIn(token, parens) {
		return style.Parenthesis
	}
	return style.Normal
}

func allIn(s, set string) bool {
	for _, r := range s {
		if !strings.ContainsRune(set, r) {
			return false
		}
	}
	return true
}

// markDelimiters classifies the delimiter run [from, to): spaces become
// Whitespace and everything else goes back to the default record.
func markDelimiters(text Text, out Sink, from, to int) {
	for i := from; i < to; i++ {
		if text.RuneAt(i) == ' ' {
			out.Fill(i, i+1, style.Fg(style.Whitespace))
		} else {
			out.Fill(i, i+1, style.Default())
		}
	}
}

// matchString returns the offset just past the closing quote when the token at
// first opens a string. A backslash directly before the quote character
// escapes it. Strings do not span lines.
func matchString(text Text, first int) (int, bool) {
	q := text.RuneAt(first)
	if q != '"' && q != '\'' {
		return 0, false
	}

	n := text.Len()
	for i := first + 1; i < n; i++ {
		r := text.RuneAt(i)
		switch {
		case r == '\n':
			return 0, false
		case r == q:
			return i + 1, true
		case r == '\\' && i+1 < n && text.RuneAt(i+1) == q:
			i++
		}
	}
	return 0, false
}

// findComment looks for the first '/' inside the token and reports a comment
// when it is directly followed by another '/'. A token such as "a/b//c" is not
// a comment because only the first slash is considered.
func findComment(text Text, first, last int) (int, bool) {
	for i := first; i < last; i++ {
		if text.RuneAt(i) != '/' {
			continue
		}
		if i+1 < text.Len() && text.RuneAt(i+1) == '/' {
			return i, true
		}
		return 0, false
	}
	return 0, false
}

// lineEnd returns the offset of the newline at or after i, or the text length.
func lineEnd(text Text, i int) int {
	n := text.Len()
	for i < n && text.RuneAt(i) != '\n' {
		i++
	}
	return i
}
