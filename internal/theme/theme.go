// Package theme resolves abstract style categories to concrete colors.
package theme

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/synstorm/internal/syntax/style"
)

// Errors returned by theme construction.
var (
	ErrUnknownTheme    = errors.New("unknown theme")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidColor    = errors.New("invalid color")
)

// Theme maps every category to a color. Categories without a color, and the
// None category, render with the terminal default.
type Theme struct {
	// Name is the display name of the theme.
	Name string

	colors map[style.Category]colorful.Color
}

// Names returns the names of the built-in themes.
func Names() []string {
	return []string{"dark", "light"}
}

// ByName returns a built-in theme.
func ByName(name string) (*Theme, error) {
	switch strings.ToLower(name) {
	case "", "dark":
		return Dark(), nil
	case "light":
		return Light(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
}

// Dark returns the default dark theme.
func Dark() *Theme {
	t := &Theme{
		Name: "dark",
		colors: map[style.Category]colorful.Color{
			style.Normal:      mustHex("#d4d4d4"),
			style.Whitespace:  mustHex("#3b3b3b"),
			style.Keyword:     mustHex("#569cd6"),
			style.Identifier:  mustHex("#4ec9b0"),
			style.Number:      mustHex("#b5cea8"),
			style.String:      mustHex("#ce9178"),
			style.Comment:     mustHex("#6a9955"),
			style.Parenthesis: mustHex("#ffd700"),
			style.Error:       mustHex("#f44747"),
		},
	}
	t.setRainbow(0.55, 0.95)
	return t
}

// Light returns a light theme.
func Light() *Theme {
	t := &Theme{
		Name: "light",
		colors: map[style.Category]colorful.Color{
			style.Normal:      mustHex("#000000"),
			style.Whitespace:  mustHex("#d0d0d0"),
			style.Keyword:     mustHex("#0000ff"),
			style.Identifier:  mustHex("#267f99"),
			style.Number:      mustHex("#098658"),
			style.String:      mustHex("#a31515"),
			style.Comment:     mustHex("#008000"),
			style.Parenthesis: mustHex("#795e26"),
			style.Error:       mustHex("#cd3131"),
		},
	}
	t.setRainbow(0.8, 0.65)
	return t
}

// setRainbow spreads the rainbow categories evenly around the hue circle.
func (t *Theme) setRainbow(saturation, value float64) {
	step := 360.0 / float64(style.RainbowCount)
	for i := 0; i < style.RainbowCount; i++ {
		t.colors[style.Rainbow(i)] = colorful.Hsv(float64(i)*step, saturation, value)
	}
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Override replaces the colors of named categories with hex colors such as
// "#ff8800". The theme is left unchanged when any entry is invalid.
func (t *Theme) Override(colors map[string]string) error {
	parsed := make(map[style.Category]colorful.Color, len(colors))

	names := make([]string, 0, len(colors))
	for name := range colors {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cat, ok := style.ParseCategory(strings.ToLower(name))
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, name)
		}
		c, err := colorful.Hex(colors[name])
		if err != nil {
			return fmt.Errorf("%w for %s: %q", ErrInvalidColor, name, colors[name])
		}
		parsed[cat] = c
	}

	for cat, c := range parsed {
		t.colors[cat] = c
	}
	return nil
}

// Color returns the color of a category and whether one is defined.
func (t *Theme) Color(c style.Category) (colorful.Color, bool) {
	if c == style.None {
		return colorful.Color{}, false
	}
	col, ok := t.colors[c]
	return col, ok
}

// Hex returns the "#rrggbb" color of a category, or "" for the terminal
// default.
func (t *Theme) Hex(c style.Category) string {
	col, ok := t.Color(c)
	if !ok {
		return ""
	}
	return col.Clamped().Hex()
}

// Style returns the terminal style for a record.
func (t *Theme) Style(r style.Record) tcell.Style {
	return tcell.StyleDefault.
		Foreground(t.tcellColor(r.Foreground)).
		Background(t.tcellColor(r.Background))
}

func (t *Theme) tcellColor(c style.Category) tcell.Color {
	col, ok := t.Color(c)
	if !ok {
		return tcell.ColorDefault
	}
	r, g, b := col.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
