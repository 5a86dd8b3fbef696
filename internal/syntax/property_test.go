package syntax

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/dshills/synstorm/internal/syntax/adorn"
	"github.com/dshills/synstorm/internal/syntax/style"
	"github.com/dshills/synstorm/internal/textbuf"
)

var alphabet = []rune("ab if x 12\"'/\\ \t\n.;(){}[]=:")

func drawText(t *rapid.T, label string, minLen, maxLen int) string {
	return string(rapid.SliceOfN(rapid.SampledFrom(alphabet), minLen, maxLen).Draw(t, label))
}

// applyRandomEdit performs one random edit through the buffer API.
func applyRandomEdit(t *rapid.T, buf *textbuf.Buffer) {
	n := buf.Len()
	switch rapid.IntRange(0, 3).Draw(t, "op") {
	case 0:
		at := rapid.IntRange(0, n).Draw(t, "insertAt")
		if err := buf.Insert(at, drawText(t, "insert", 1, 8)); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	case 1:
		if n == 0 {
			return
		}
		start := rapid.IntRange(0, n-1).Draw(t, "deleteStart")
		end := rapid.IntRange(start, min(n, start+8)).Draw(t, "deleteEnd")
		if err := buf.Delete(start, end); err != nil {
			t.Fatalf("Delete: %v", err)
		}
	case 2:
		if n == 0 {
			return
		}
		start := rapid.IntRange(0, n-1).Draw(t, "replaceStart")
		end := rapid.IntRange(start, min(n, start+4)).Draw(t, "replaceEnd")
		if err := buf.Replace(start, end, drawText(t, "replace", 0, 4)); err != nil {
			t.Fatalf("Replace: %v", err)
		}
	case 3:
		buf.Load(drawText(t, "load", 0, 30))
	}
}

func engineOptions() []Option {
	return []Option{
		WithKeywords("if", "ab"),
		WithIdentifiers("x", "a"),
	}
}

// After any sequence of edits the incremental classification matches a full
// pass over the final text and the store tracks the buffer length.
func TestEngineIncrementalMatchesFullPass(t *testing.T) {
	pool := startPool(t, 2)

	rapid.Check(t, func(rt *rapid.T) {
		buf := textbuf.New(drawText(rt, "initial", 0, 40))
		e := New(buf, Pool(pool), engineOptions()...)
		defer e.Close()
		if err := e.Subscribe(buf.Bus()); err != nil {
			rt.Fatal(err)
		}

		steps := rapid.IntRange(1, 12).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			applyRandomEdit(rt, buf)
		}

		e.WaitForIdle()
		got := e.Snapshot()
		if len(got) != buf.Len() {
			rt.Fatalf("store length %d, buffer length %d", len(got), buf.Len())
		}

		fresh := New(textbuf.New(buf.String()), Inline(), engineOptions()...)
		defer fresh.Close()
		want := fresh.Snapshot()

		for i := range want {
			if got[i] != want[i] {
				rt.Fatalf("offset %d in %q = %v, want %v", i, buf.String(), got[i], want[i])
			}
		}
	})
}

func TestEngineFullRecomputeIsDeterministic(t *testing.T) {
	pool := startPool(t, 1)

	rapid.Check(t, func(rt *rapid.T) {
		content := drawText(rt, "content", 0, 60)

		a := New(textbuf.New(content), Inline(), engineOptions()...)
		defer a.Close()
		b := New(textbuf.New(content), Pool(pool), engineOptions()...)
		defer b.Close()

		first := a.Styles()
		a.RequestRecompute(0, len([]rune(content)))
		second := a.Styles()
		third := b.Styles()

		for i := range first {
			if first[i] != second[i] || first[i] != third[i] {
				rt.Fatalf("offset %d: %v, %v, %v", i, first[i], second[i], third[i])
			}
		}
	})
}

// An adornment covering offset 10 wins over every base classification.
func TestEngineAdornmentAlwaysWins(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		content := drawText(rt, "content", 11, 40)
		fg := style.Category(rapid.IntRange(0, style.Count()-1).Draw(rt, "fg"))
		bg := style.Category(rapid.IntRange(0, style.Count()-1).Draw(rt, "bg"))
		want := style.Record{Foreground: fg, Background: bg}

		e := New(textbuf.New(content), Inline(),
			append(engineOptions(),
				WithRainbowBrackets(false),
				WithAdornment(adorn.NewFixed("pin", map[int]style.Record{10: want})),
			)...)
		defer e.Close()

		if got := e.QueryStyleAt(10); got != want {
			rt.Fatalf("QueryStyleAt(10) = %v, want %v", got, want)
		}
	})
}
