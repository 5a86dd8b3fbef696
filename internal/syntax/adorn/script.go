package adorn

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	gocache "github.com/patrickmn/go-cache"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/synstorm/internal/event"
	"github.com/dshills/synstorm/internal/syntax/style"
)

// Errors returned by script adornments.
var (
	ErrScriptInvalid = errors.New("invalid adornment script")
	ErrScriptFailed  = errors.New("adornment script failed")
)

// DefaultScriptTimeout bounds a single run of a script's adorn function.
const DefaultScriptTimeout = 2 * time.Second

// DefaultResultTTL is how long a script's spans for a given buffer content
// are reused before the script runs again.
const DefaultResultTTL = 5 * time.Minute

// Script is an adornment implemented in Lua.
//
// The script must define a global function adorn(text) that returns an
// array of spans:
//
//	function adorn(text)
//	    local s, e = string.find(text, "TODO", 1, true)
//	    if not s then return {} end
//	    return { { from = s, to = e, fg = "error", bg = "none" } }
//	end
//
// from and to are the inclusive 1-based byte positions string.find returns.
// fg and bg are category names; bg defaults to "none". Earlier spans win
// where spans overlap.
//
// A gopher-lua state is single-threaded, so every call into the script is
// serialized. Only the base, table, string and math libraries are available.
//
// Results are cached by buffer content, so adorn must be a pure function of
// its argument.
type Script struct {
	name    string
	text    Text
	timeout time.Duration
	ttl     time.Duration
	results *gocache.Cache
	calls   atomic.Uint64

	mu      sync.Mutex
	L       *lua.LState
	fn      lua.LValue
	records map[int]style.Record
	lastErr error
	closed  bool
}

// ScriptOption configures a Script.
type ScriptOption func(*Script)

// WithScriptTimeout sets the timeout for one adorn call.
func WithScriptTimeout(d time.Duration) ScriptOption {
	return func(s *Script) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithResultTTL sets how long spans are reused for unchanged content.
// Zero or negative disables the cache.
func WithResultTTL(d time.Duration) ScriptOption {
	return func(s *Script) {
		s.ttl = d
	}
}

// LoadScript compiles src and runs it once over text.
func LoadScript(name, src string, text Text, opts ...ScriptOption) (*Script, error) {
	s := &Script{
		name:    name,
		text:    text,
		timeout: DefaultScriptTimeout,
		ttl:     DefaultResultTTL,
		records: map[int]style.Record{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ttl > 0 {
		s.results = gocache.New(s.ttl, 2*s.ttl)
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	if err := openSafeLibraries(s.L); err != nil {
		s.L.Close()
		return nil, err
	}

	if err := s.L.DoString(src); err != nil {
		s.L.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrScriptInvalid, name, err)
	}

	fn := s.L.GetGlobal("adorn")
	if fn.Type() != lua.LTFunction {
		s.L.Close()
		return nil, fmt.Errorf("%w: %s: adorn function not defined", ErrScriptInvalid, name)
	}
	s.fn = fn

	if err := s.Refresh(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// LoadScriptFile loads a script from disk. The adornment is named after the
// file.
func LoadScriptFile(path string, text Text, opts ...ScriptOption) (*Script, error) {
	src, err := os.ReadFile(path) //nolint:gosec // path comes from user configuration
	if err != nil {
		return nil, fmt.Errorf("reading adornment script: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return LoadScript(name, string(src), text, opts...)
}

// openSafeLibraries opens only libraries without file system or process access.
func openSafeLibraries(L *lua.LState) error {
	libs := []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
	for _, lib := range libs {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			return fmt.Errorf("opening lua library %s: %w", lib.name, err)
		}
	}

	// The base library can still reach the file system.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
	return nil
}

// Name returns the script name.
func (s *Script) Name() string { return s.name }

// StyleAt returns the record the script assigned to offset.
func (s *Script) StyleAt(offset int) (style.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[offset]
	return r, ok
}

// Notify reruns the script after every content change. Failures are kept
// and reported by Err; the previous spans are dropped.
func (s *Script) Notify(evt event.BufferEvent) {
	if evt.Kind == event.PreChange {
		return
	}
	_ = s.Refresh()
}

// Err returns the error from the most recent run, if any.
func (s *Script) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Refresh runs the script over the current buffer text.
func (s *Script) Refresh() error {
	src := textString(s.text)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("%w: %s: closed", ErrScriptFailed, s.name)
	}

	var key string
	if s.results != nil {
		key = contentKey(src)
		if cached, ok := s.results.Get(key); ok {
			s.records = cached.(map[int]style.Record)
			s.lastErr = nil
			return nil
		}
	}

	records, err := s.run(src)
	if err != nil {
		s.records = map[int]style.Record{}
		s.lastErr = err
		return err
	}
	if s.results != nil {
		s.results.SetDefault(key, records)
	}
	s.records = records
	s.lastErr = nil
	return nil
}

// Calls returns how many times the adorn function has run.
func (s *Script) Calls() uint64 {
	return s.calls.Load()
}

func contentKey(src string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(src))
	return strconv.Itoa(len(src)) + ":" + strconv.FormatUint(h.Sum64(), 16)
}

func (s *Script) run(src string) (map[int]style.Record, error) {
	s.calls.Add(1)
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	if err := s.L.CallByParam(lua.P{
		Fn:      s.fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(src)); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrScriptFailed, s.name, err)
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)

	records := map[int]style.Record{}
	if ret == lua.LNil {
		return records, nil
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: %s: adorn returned %s, want table", ErrScriptFailed, s.name, ret.Type())
	}

	offsets := byteToRune(src)
	for i := 1; i <= tbl.Len(); i++ {
		entry, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("%w: %s: span %d is not a table", ErrScriptFailed, s.name, i)
		}
		rec, err := parseSpanStyle(entry)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: span %d: %v", ErrScriptFailed, s.name, i, err)
		}

		from := int(lua.LVAsNumber(entry.RawGetString("from")))
		to := int(lua.LVAsNumber(entry.RawGetString("to")))
		from = max(from, 1)
		to = min(to, len(src))
		if from > to {
			continue
		}

		for r := offsets[from-1]; r <= offsets[to-1]; r++ {
			if _, taken := records[r]; !taken {
				records[r] = rec
			}
		}
	}
	return records, nil
}

func parseSpanStyle(entry *lua.LTable) (style.Record, error) {
	fgName := lua.LVAsString(entry.RawGetString("fg"))
	fg, ok := style.ParseCategory(fgName)
	if !ok {
		return style.Record{}, fmt.Errorf("unknown fg category %q", fgName)
	}
	bg := style.None
	if bgName := lua.LVAsString(entry.RawGetString("bg")); bgName != "" {
		if bg, ok = style.ParseCategory(bgName); !ok {
			return style.Record{}, fmt.Errorf("unknown bg category %q", bgName)
		}
	}
	return style.Record{Foreground: fg, Background: bg}, nil
}

// byteToRune maps every byte offset of s to the index of the rune containing
// it. Invalid bytes count as one rune each, as in []rune(s).
func byteToRune(s string) []int {
	out := make([]int, len(s))
	k := 0
	for i := 0; i < len(s); k++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		for j := 0; j < size; j++ {
			out[i+j] = k
		}
		i += size
	}
	return out
}

// Close releases the Lua state.
func (s *Script) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
	if s.results != nil {
		s.results.Flush()
	}
}
