// Package store holds the per-character classification of a buffer.
package store

import (
	"fmt"

	"github.com/dshills/synstorm/internal/syntax/style"
)

// Store is a dense sequence of style records, one per buffer character.
//
// Store is not safe for concurrent use. The engine guarantees that shape
// changes (Insert, Erase, Resize) never overlap a running tokenizer task and
// that reads only happen once the task is idle.
type Store struct {
	records []style.Record
}

// New creates a store of n default records.
func New(n int) *Store {
	if n < 0 {
		panic(fmt.Sprintf("store: negative size %d", n))
	}
	s := &Store{records: make([]style.Record, n)}
	fillDefault(s.records)
	return s
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// At returns the record at offset i.
func (s *Store) At(i int) style.Record {
	return s.records[i]
}

// Set replaces the record at offset i.
func (s *Store) Set(i int, r style.Record) {
	s.records[i] = r
}

// Fill sets every record in [from, to) to r.
func (s *Store) Fill(from, to int, r style.Record) {
	if from < 0 {
		from = 0
	}
	if to > len(s.records) {
		to = len(s.records)
	}
	for i := from; i < to; i++ {
		s.records[i] = r
	}
}

// Insert inserts n default records at offset at.
func (s *Store) Insert(at, n int) {
	if at < 0 || at > len(s.records) || n < 0 {
		panic(fmt.Sprintf("store: insert %d records at %d out of range [0,%d]", n, at, len(s.records)))
	}
	if n == 0 {
		return
	}
	grown := make([]style.Record, len(s.records)+n)
	copy(grown, s.records[:at])
	fillDefault(grown[at : at+n])
	copy(grown[at+n:], s.records[at:])
	s.records = grown
}

// Erase removes the records in [from, to).
func (s *Store) Erase(from, to int) {
	if from < 0 || to < from || to > len(s.records) {
		panic(fmt.Sprintf("store: erase [%d,%d) out of range [0,%d)", from, to, len(s.records)))
	}
	s.records = append(s.records[:from], s.records[to:]...)
}

// Resize grows the store with default records or truncates it to n.
func (s *Store) Resize(n int) {
	if n < 0 {
		panic(fmt.Sprintf("store: negative size %d", n))
	}
	switch {
	case n < len(s.records):
		s.records = s.records[:n]
	case n > len(s.records):
		old := len(s.records)
		s.records = append(s.records, make([]style.Record, n-old)...)
		fillDefault(s.records[old:])
	}
}

// Snapshot returns a copy of all records.
func (s *Store) Snapshot() []style.Record {
	out := make([]style.Record, len(s.records))
	copy(out, s.records)
	return out
}

func fillDefault(rs []style.Record) {
	d := style.Default()
	for i := range rs {
		rs[i] = d
	}
}
