// Package editscript describes buffer edit sequences: parsed from YAML or
// JSON scripts, or derived by diffing two revisions of a file.
package editscript

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/dshills/synstorm/internal/textbuf"
)

// Errors returned by script parsing.
var (
	ErrInvalidScript = errors.New("invalid edit script")
	ErrUnknownOp     = errors.New("unknown edit operation")
)

// Op is an edit operation.
type Op string

// Edit operations.
const (
	OpInsert  Op = "insert"
	OpDelete  Op = "delete"
	OpReplace Op = "replace"
	OpLoad    Op = "load"
)

// Edit is one buffer edit in rune offsets.
//
// insert uses At and Text; delete uses Start and End; replace uses all three
// of Start, End and Text; load replaces the whole buffer with Text.
type Edit struct {
	Op    Op     `yaml:"op"`
	At    int    `yaml:"at,omitempty"`
	Start int    `yaml:"start,omitempty"`
	End   int    `yaml:"end,omitempty"`
	Text  string `yaml:"text,omitempty"`
}

// String returns a short description of the edit.
func (e Edit) String() string {
	switch e.Op {
	case OpInsert:
		return fmt.Sprintf("insert %q at %d", e.Text, e.At)
	case OpDelete:
		return fmt.Sprintf("delete [%d,%d)", e.Start, e.End)
	case OpReplace:
		return fmt.Sprintf("replace [%d,%d) with %q", e.Start, e.End, e.Text)
	case OpLoad:
		return fmt.Sprintf("load %d runes", utf8.RuneCountInString(e.Text))
	default:
		return string(e.Op)
	}
}

// Validate checks that the edit is well formed. Offsets are checked against
// the buffer when the edit is applied.
func (e Edit) Validate() error {
	switch e.Op {
	case OpInsert:
		if e.At < 0 {
			return fmt.Errorf("%w: insert at %d", ErrInvalidScript, e.At)
		}
	case OpDelete, OpReplace:
		if e.Start < 0 || e.End < e.Start {
			return fmt.Errorf("%w: %s range [%d,%d)", ErrInvalidScript, e.Op, e.Start, e.End)
		}
	case OpLoad:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, e.Op)
	}
	return nil
}

// Apply performs the edit on buf.
func (e Edit) Apply(buf *textbuf.Buffer) error {
	var err error
	switch e.Op {
	case OpInsert:
		err = buf.Insert(e.At, e.Text)
	case OpDelete:
		err = buf.Delete(e.Start, e.End)
	case OpReplace:
		err = buf.Replace(e.Start, e.End, e.Text)
	case OpLoad:
		buf.Load(e.Text)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownOp, e.Op)
	}
	if err != nil {
		return fmt.Errorf("applying %s: %w", e, err)
	}
	return nil
}

// Script is an initial buffer content followed by edits.
type Script struct {
	Name  string `yaml:"name,omitempty"`
	Text  string `yaml:"text"`
	Edits []Edit `yaml:"edits"`
}

// ParseYAML parses a YAML script.
func ParseYAML(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseJSON parses a JSON script with the same fields as the YAML form.
func ParseJSON(data []byte) (*Script, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidScript)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidScript)
	}

	s := Script{
		Name: root.Get("name").String(),
		Text: root.Get("text").String(),
	}
	edits := root.Get("edits")
	if edits.Exists() && !edits.IsArray() {
		return nil, fmt.Errorf("%w: edits must be an array", ErrInvalidScript)
	}
	for _, item := range edits.Array() {
		s.Edits = append(s.Edits, Edit{
			Op:    Op(item.Get("op").String()),
			At:    int(item.Get("at").Int()),
			Start: int(item.Get("start").Int()),
			End:   int(item.Get("end").Int()),
			Text:  item.Get("text").String(),
		})
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseFile parses a script file. Files ending in .json are JSON; anything
// else is YAML.
func ParseFile(path string) (*Script, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the user
	if err != nil {
		return nil, fmt.Errorf("reading edit script: %w", err)
	}

	var s *Script
	if strings.EqualFold(filepath.Ext(path), ".json") {
		s, err = ParseJSON(data)
	} else {
		s, err = ParseYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = filepath.Base(path)
	}
	return s, nil
}

func (s *Script) validate() error {
	for i, e := range s.Edits {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("edit %d: %w", i+1, err)
		}
	}
	return nil
}

// Diff returns the edits that turn oldText into newText, in the order they
// must be applied. Offsets account for the edits before them.
func Diff(oldText, newText string) []Edit {
	if oldText == newText {
		return nil
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCleanupEfficiency(diffs)

	var (
		edits []Edit
		pos   int
	)
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			pos += n
		case diffmatchpatch.DiffDelete:
			edits = append(edits, Edit{Op: OpDelete, Start: pos, End: pos + n})
		case diffmatchpatch.DiffInsert:
			edits = append(edits, Edit{Op: OpInsert, At: pos, Text: d.Text})
			pos += n
		}
	}
	return edits
}
