// Package style defines the abstract color roles assigned to buffer characters.
//
// Categories are resolved to concrete colors by a theme; nothing in the
// syntax engine knows about pixels or terminal attributes.
package style

// Category is an abstract color role.
type Category uint8

// Color categories.
const (
	Normal Category = iota
	Whitespace
	Keyword
	Identifier
	Number
	String
	Comment
	Parenthesis
	None

	// Error marks text an adornment considers invalid (e.g. an unmatched bracket).
	Error

	// Rainbow categories are used by depth-colored adornments.
	Rainbow0
	Rainbow1
	Rainbow2
	Rainbow3
	Rainbow4
	Rainbow5
	Rainbow6
	Rainbow7

	// Sentinel for iteration
	categoryCount
)

// RainbowCount is the number of distinct rainbow categories.
const RainbowCount = int(Rainbow7-Rainbow0) + 1

// Count returns the number of defined categories.
func Count() int {
	return int(categoryCount)
}

// Rainbow returns the rainbow category for a nesting depth, cycling through
// the available rainbow categories.
func Rainbow(depth int) Category {
	if depth < 0 {
		depth = -depth
	}
	return Rainbow0 + Category(depth%RainbowCount)
}

// IsRainbow returns true if this is one of the rainbow categories.
func (c Category) IsRainbow() bool {
	return c >= Rainbow0 && c <= Rainbow7
}

// String returns the string representation of a category.
func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// ParseCategory converts a category name to a Category.
func ParseCategory(name string) (Category, bool) {
	c, ok := nameToCategory[name]
	return c, ok
}

var categoryNames = []string{
	Normal:      "normal",
	Whitespace:  "whitespace",
	Keyword:     "keyword",
	Identifier:  "identifier",
	Number:      "number",
	String:      "string",
	Comment:     "comment",
	Parenthesis: "parenthesis",
	None:        "none",
	Error:       "error",
	Rainbow0:    "rainbow0",
	Rainbow1:    "rainbow1",
	Rainbow2:    "rainbow2",
	Rainbow3:    "rainbow3",
	Rainbow4:    "rainbow4",
	Rainbow5:    "rainbow5",
	Rainbow6:    "rainbow6",
	Rainbow7:    "rainbow7",
}

var nameToCategory = func() map[string]Category {
	m := make(map[string]Category, len(categoryNames))
	for i, name := range categoryNames {
		m[name] = Category(i)
	}
	return m
}()

// Record is the classification of a single character.
type Record struct {
	Foreground Category
	Background Category
}

// Default returns the record used for characters that have not been classified.
func Default() Record {
	return Record{Foreground: Normal, Background: None}
}

// Fg returns a record with the given foreground and no background.
func Fg(c Category) Record {
	return Record{Foreground: c, Background: None}
}

// String returns "fg/bg".
func (r Record) String() string {
	return r.Foreground.String() + "/" + r.Background.String()
}
