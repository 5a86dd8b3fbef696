// Package report renders classified buffer text as style runs.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/muesli/termenv"
	"github.com/rivo/uniseg"
	"github.com/tidwall/sjson"

	"github.com/dshills/synstorm/internal/syntax/style"
	"github.com/dshills/synstorm/internal/theme"
)

// Run is a maximal stretch of characters on one line sharing a style.
type Run struct {
	// Start and End are rune offsets into the buffer.
	Start int
	End   int

	// Line and Col are 1-based. Col counts display cells, so wide
	// characters advance it by two.
	Line int
	Col  int

	Text  string
	Style style.Record
}

// Runs splits text into style runs. Newlines end a run and are not part of
// any run. styles must hold one record per rune of text.
func Runs(text string, styles []style.Record) ([]Run, error) {
	rs := []rune(text)
	if len(rs) != len(styles) {
		return nil, fmt.Errorf("report: %d styles for %d characters", len(styles), len(rs))
	}

	var (
		runs      []Run
		line      = 1
		lineStart = 0
	)
	for i := 0; i < len(rs); {
		if rs[i] == '\n' {
			line++
			i++
			lineStart = i
			continue
		}

		j := i + 1
		for j < len(rs) && rs[j] != '\n' && styles[j] == styles[i] {
			j++
		}
		runs = append(runs, Run{
			Start: i,
			End:   j,
			Line:  line,
			Col:   uniseg.StringWidth(string(rs[lineStart:i])) + 1,
			Text:  string(rs[i:j]),
			Style: styles[i],
		})
		i = j
	}
	return runs, nil
}

// WriteText writes one run per line as "line:col fg/bg "text"".
// Whitespace-only runs are omitted.
func WriteText(w io.Writer, runs []Run) error {
	for _, r := range runs {
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%d:%d\t%s\t%q\n", r.Line, r.Col, r.Style, r.Text); err != nil {
			return err
		}
	}
	return nil
}

// JSON encodes runs as {"length": n, "runs": [...], "counts": {...}}.
// counts holds the number of characters per foreground category.
func JSON(length int, runs []Run) (string, error) {
	doc := `{"runs":[]}`
	doc, err := sjson.Set(doc, "length", length)
	if err != nil {
		return "", err
	}

	counts := make(map[style.Category]int)
	for _, r := range runs {
		obj := `{}`
		fields := []struct {
			key string
			val any
		}{
			{"start", r.Start},
			{"end", r.End},
			{"line", r.Line},
			{"col", r.Col},
			{"fg", r.Style.Foreground.String()},
			{"bg", r.Style.Background.String()},
			{"text", r.Text},
		}
		for _, f := range fields {
			if obj, err = sjson.Set(obj, f.key, f.val); err != nil {
				return "", err
			}
		}
		if doc, err = sjson.SetRaw(doc, "runs.-1", obj); err != nil {
			return "", err
		}
		counts[r.Style.Foreground] += r.End - r.Start
	}

	for i := 0; i < style.Count(); i++ {
		c := style.Category(i)
		if counts[c] == 0 {
			continue
		}
		if doc, err = sjson.Set(doc, "counts."+c.String(), counts[c]); err != nil {
			return "", err
		}
	}
	return doc, nil
}

// WriteANSI writes text colored for the given terminal color profile.
// Colors are downsampled when the profile has fewer than 24 bits; the Ascii
// profile writes plain text. Newlines are written uncolored.
func WriteANSI(w io.Writer, text string, runs []Run, th *theme.Theme, profile termenv.Profile) error {
	rs := []rune(text)
	pos := 0
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(string(rs[pos:r.Start]))
		sb.WriteString(styled(profile, th.Style(r.Style), r.Text))
		pos = r.End
	}
	sb.WriteString(string(rs[pos:]))
	_, err := io.WriteString(w, sb.String())
	return err
}

func styled(profile termenv.Profile, s tcell.Style, text string) string {
	fg, bg, _ := s.Decompose()
	out := profile.String(text)
	if fg != tcell.ColorDefault {
		out = out.Foreground(profile.Color(hexColor(fg)))
	}
	if bg != tcell.ColorDefault {
		out = out.Background(profile.Color(hexColor(bg)))
	}
	return out.String()
}

func hexColor(c tcell.Color) string {
	return fmt.Sprintf("#%06x", c.Hex())
}
