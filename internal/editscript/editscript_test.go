package editscript

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dshills/synstorm/internal/textbuf"
)

const yamlScript = `
name: typing
text: "x = 1"
edits:
  - op: insert
    at: 0
    text: "if "
  - op: delete
    start: 0
    end: 3
  - op: replace
    start: 4
    end: 5
    text: "42"
  - op: load
    text: "done"
`

const jsonScript = `{
  "text": "x = 1",
  "edits": [
    {"op": "insert", "at": 0, "text": "if "},
    {"op": "delete", "start": 0, "end": 3},
    {"op": "replace", "start": 4, "end": 5, "text": "42"},
    {"op": "load", "text": "done"}
  ]
}`

func TestParseFormatsAgree(t *testing.T) {
	fromYAML, err := ParseYAML([]byte(yamlScript))
	require.NoError(t, err)
	fromJSON, err := ParseJSON([]byte(jsonScript))
	require.NoError(t, err)

	assert.Equal(t, "typing", fromYAML.Name)
	assert.Equal(t, fromYAML.Text, fromJSON.Text)
	assert.Equal(t, fromYAML.Edits, fromJSON.Edits)
	require.Len(t, fromYAML.Edits, 4)
	assert.Equal(t, Edit{Op: OpReplace, Start: 4, End: 5, Text: "42"}, fromYAML.Edits[2])
}

func TestApplyScript(t *testing.T) {
	s, err := ParseYAML([]byte(yamlScript))
	require.NoError(t, err)

	buf := textbuf.New(s.Text)
	want := []string{"if x = 1", "x = 1", "x = 42", "done"}
	for i, e := range s.Edits {
		require.NoError(t, e.Apply(buf), "edit %d", i)
		assert.Equal(t, want[i], buf.String(), "after %s", e)
	}
}

func TestApplyOutOfRange(t *testing.T) {
	buf := textbuf.New("abc")
	err := Edit{Op: OpDelete, Start: 2, End: 9}.Apply(buf)
	assert.ErrorIs(t, err, textbuf.ErrOffsetOutOfRange)
	assert.Equal(t, "abc", buf.String())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		parse func([]byte) (*Script, error)
		data  string
		want  error
	}{
		{"yaml syntax", ParseYAML, "edits: [", ErrInvalidScript},
		{"yaml unknown op", ParseYAML, "edits:\n  - op: shuffle\n", ErrUnknownOp},
		{"yaml bad range", ParseYAML, "edits:\n  - op: delete\n    start: 4\n    end: 2\n", ErrInvalidScript},
		{"json malformed", ParseJSON, `{"edits": [`, ErrInvalidScript},
		{"json not object", ParseJSON, `[1, 2]`, ErrInvalidScript},
		{"json edits not array", ParseJSON, `{"edits": 3}`, ErrInvalidScript},
		{"json negative insert", ParseJSON, `{"edits": [{"op": "insert", "at": -1}]}`, ErrInvalidScript},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parse([]byte(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "edits.yaml")
	jsonPath := filepath.Join(dir, "edits.JSON")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlScript), 0o600))
	require.NoError(t, os.WriteFile(jsonPath, []byte(jsonScript), 0o600))

	s, err := ParseFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "typing", s.Name)

	s, err = ParseFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "edits.JSON", s.Name)
	assert.Len(t, s.Edits, 4)

	_, err = ParseFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestDiff(t *testing.T) {
	assert.Nil(t, Diff("same", "same"))

	edits := Diff("func main() {}", "func main() { return }")
	buf := textbuf.New("func main() {}")
	for _, e := range edits {
		require.NoError(t, e.Apply(buf))
	}
	assert.Equal(t, "func main() { return }", buf.String())
}

func TestDiffReplaysToTarget(t *testing.T) {
	alphabet := []rune("abc 日\n")
	rapid.Check(t, func(rt *rapid.T) {
		oldText := string(rapid.SliceOfN(rapid.SampledFrom(alphabet), 0, 30).Draw(rt, "old"))
		newText := string(rapid.SliceOfN(rapid.SampledFrom(alphabet), 0, 30).Draw(rt, "new"))

		buf := textbuf.New(oldText)
		for _, e := range Diff(oldText, newText) {
			if err := e.Apply(buf); err != nil {
				rt.Fatalf("%s: %v", e, err)
			}
		}
		if buf.String() != newText {
			rt.Fatalf("got %q, want %q", buf.String(), newText)
		}
	})
}
