package store

import (
	"testing"

	"github.com/dshills/synstorm/internal/syntax/style"
)

func TestNewStoreDefaults(t *testing.T) {
	s := New(4)
	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", s.Len())
	}
	for i := 0; i < s.Len(); i++ {
		if s.At(i) != style.Default() {
			t.Errorf("At(%d) = %v, want default", i, s.At(i))
		}
	}
}

func TestStoreInsert(t *testing.T) {
	s := New(3)
	s.Fill(0, 3, style.Fg(style.Keyword))

	s.Insert(1, 2)

	if s.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", s.Len())
	}
	want := []style.Category{style.Keyword, style.Normal, style.Normal, style.Keyword, style.Keyword}
	for i, c := range want {
		if s.At(i).Foreground != c {
			t.Errorf("At(%d).Foreground = %v, want %v", i, s.At(i).Foreground, c)
		}
	}
}

func TestStoreInsertAtEnd(t *testing.T) {
	s := New(2)
	s.Insert(2, 3)
	if s.Len() != 5 {
		t.Errorf("Len() = %d, want 5", s.Len())
	}
}

func TestStoreErase(t *testing.T) {
	s := New(5)
	s.Set(0, style.Fg(style.Number))
	s.Set(4, style.Fg(style.Comment))

	s.Erase(1, 4)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if s.At(0).Foreground != style.Number {
		t.Errorf("At(0) = %v, want number", s.At(0))
	}
	if s.At(1).Foreground != style.Comment {
		t.Errorf("At(1) = %v, want comment", s.At(1))
	}
}

func TestStoreResize(t *testing.T) {
	s := New(2)
	s.Fill(0, 2, style.Fg(style.String))

	s.Resize(4)
	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", s.Len())
	}
	if s.At(3) != style.Default() {
		t.Errorf("grown record = %v, want default", s.At(3))
	}

	s.Resize(1)
	if s.Len() != 1 || s.At(0).Foreground != style.String {
		t.Errorf("after shrink: len %d, At(0) %v", s.Len(), s.At(0))
	}
}

func TestStoreFillClamps(t *testing.T) {
	s := New(3)
	s.Fill(-2, 10, style.Fg(style.Identifier))
	for i := 0; i < 3; i++ {
		if s.At(i).Foreground != style.Identifier {
			t.Errorf("At(%d) = %v, want identifier", i, s.At(i))
		}
	}
}

func TestStoreSnapshotIsCopy(t *testing.T) {
	s := New(2)
	snap := s.Snapshot()
	snap[0] = style.Fg(style.Keyword)
	if s.At(0) != style.Default() {
		t.Error("Snapshot should not alias the store")
	}
}

func TestStorePanicsOnBadRange(t *testing.T) {
	tests := []struct {
		name string
		fn   func(s *Store)
	}{
		{"insert past end", func(s *Store) { s.Insert(4, 1) }},
		{"erase inverted", func(s *Store) { s.Erase(2, 1) }},
		{"erase past end", func(s *Store) { s.Erase(0, 9) }},
		{"negative resize", func(s *Store) { s.Resize(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn(New(3))
		})
	}
}
