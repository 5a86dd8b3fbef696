package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestClassifyJSON(t *testing.T) {
	path := writeFile(t, "main.go", "func main() {\n\treturn 42\n}\n")

	out, _, err := execute(t, "classify", path, "--format", "json", "--workers", "2")
	require.NoError(t, err)
	require.True(t, gjson.Valid(out), out)

	doc := gjson.Parse(out)
	assert.Equal(t, int64(27), doc.Get("length").Int())
	assert.Equal(t, "keyword", doc.Get(`runs.#(text=="func").fg`).String())
	assert.Equal(t, "keyword", doc.Get(`runs.#(text=="return").fg`).String())
	assert.Equal(t, int64(2), doc.Get(`runs.#(text=="return").line`).Int())
	assert.Equal(t, int64(10), doc.Get("counts.keyword").Int())
}

func TestClassifyText(t *testing.T) {
	path := writeFile(t, "main.go", "var x = \"hi\"")

	out, _, err := execute(t, "classify", path, "--workers", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "1:1\tkeyword/none\t\"var\"\n")
	assert.Contains(t, out, "string/none")
}

func TestClassifyLanguageFlag(t *testing.T) {
	path := writeFile(t, "init.lua", "local x = nil")

	out, _, err := execute(t, "classify", path, "--format", "json", "--language", "lua")
	require.NoError(t, err)
	assert.Equal(t, "keyword", gjson.Get(out, `runs.#(text=="local").fg`).String())

	out, _, err = execute(t, "classify", path, "--format", "json", "--language", "go")
	require.NoError(t, err)
	assert.NotEqual(t, "keyword", gjson.Get(out, `runs.#(text=="local").fg`).String())
}

func TestClassifyANSI(t *testing.T) {
	path := writeFile(t, "main.go", "if x {}")

	out, _, err := execute(t, "classify", path, "--format", "ansi")
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b[38;2;")
	assert.Contains(t, out, "\x1b[0m")
}

func TestClassifyColorProfiles(t *testing.T) {
	path := writeFile(t, "main.go", "if x {}")

	out, _, err := execute(t, "classify", path, "--format", "ansi", "--color", "none")
	require.NoError(t, err)
	assert.Equal(t, "if x {}\n", out)

	out, _, err = execute(t, "classify", path, "--format", "ansi", "--color", "256")
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b[38;5;")

	_, _, err = execute(t, "classify", path, "--format", "ansi", "--color", "sepia")
	assert.ErrorContains(t, err, "unknown color profile")
}

func TestClassifyTrace(t *testing.T) {
	path := writeFile(t, "main.go", "func main() {}")

	_, stderr, err := execute(t, "classify", path, "--trace")
	require.NoError(t, err)
	assert.Contains(t, stderr, "syntax.tokenize")

	_, _, err = execute(t, "classify", path, "--trace=zipkin")
	assert.Error(t, err)
}

func TestClassifyErrors(t *testing.T) {
	path := writeFile(t, "main.go", "x")

	_, _, err := execute(t, "classify", path, "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, _, err = execute(t, "classify", filepath.Join(t.TempDir(), "missing.go"))
	assert.Error(t, err)

	_, _, err = execute(t, "classify", path, "--language", "cobol")
	assert.Error(t, err)

	_, _, err = execute(t, "classify")
	assert.Error(t, err)
}

func TestClassifyWithScriptAdornment(t *testing.T) {
	script := writeFile(t, "marks.lua", `function adorn(text) return { { from = 1, to = 1, fg = "error" } } end`)
	cfg := writeFile(t, "synstorm.yaml", "adornments:\n  scripts:\n    - "+script+"\n")
	path := writeFile(t, "main.go", "func f() {}")

	out, _, err := execute(t, "classify", path, "--config", cfg, "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, "error", gjson.Get(out, "runs.0.fg").String())
	assert.Equal(t, "f", gjson.Get(out, "runs.0.text").String())
}

func TestReplay(t *testing.T) {
	script := writeFile(t, "typing.yaml", `
text: "x = 1"
edits:
  - op: insert
    at: 0
    text: "if "
  - op: replace
    start: 7
    end: 8
    text: "42"
`)

	out, _, err := execute(t, "replay", script)
	require.NoError(t, err)
	assert.Equal(t, "1:1\tkeyword/none\t\"if\"", strings.SplitN(out, "\n", 2)[0])
	assert.Contains(t, out, "\"42\"")
	assert.NotContains(t, out, "# final")
}

func TestReplayEach(t *testing.T) {
	script := writeFile(t, "typing.json", `{
  "text": "a",
  "edits": [
    {"op": "insert", "at": 1, "text": " b"},
    {"op": "load", "text": "for"}
  ]
}`)

	out, _, err := execute(t, "replay", script, "--each")
	require.NoError(t, err)
	assert.Contains(t, out, "# 1: insert \" b\" at 1\n")
	assert.Contains(t, out, "# 2: load 3 runes\n")
	assert.Contains(t, out, "# final\n1:1\tkeyword/none\t\"for\"\n")
}

func TestReplayBadEdit(t *testing.T) {
	script := writeFile(t, "bad.yaml", "text: abc\nedits:\n  - op: delete\n    start: 1\n    end: 9\n")

	_, _, err := execute(t, "replay", script)
	assert.ErrorContains(t, err, "edit 1")
}

func TestReload(t *testing.T) {
	path := writeFile(t, "main.go", "x := 1")

	opts := &globalOptions{workers: 1}
	cmd := newRootCmd()
	cmd.SetErr(&bytes.Buffer{})
	s, err := newSession(cmd, opts, "x := 1")
	require.NoError(t, err)
	defer s.Close()

	n, err := reload(s, path)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, os.WriteFile(path, []byte("for x := 1"), 0o600))
	n, err = reload(s, path)
	require.NoError(t, err)
	assert.Positive(t, n)
	assert.Equal(t, "for x := 1", s.buf.String())

	runs, err := s.runs()
	require.NoError(t, err)
	require.NotEmpty(t, runs)
	assert.Equal(t, "for", runs[0].Text)
	assert.Equal(t, "keyword", runs[0].Style.Foreground.String())
}
