// Package table implements an insertion-ordered record collection with
// first-match predicate scans.
//
// The table enforces no payload invariants and performs no validation; that
// is the façade's job. Its contract is purely structural:
//   - records keep insertion order, observable via All()
//   - Find/Position/Remove resolve ties as "first inserted wins"
//   - removal shifts later records down; indices are not stable across
//     removals, order is
//   - All() returns a deep snapshot safe to hold across mutations
//
// A key→position index accelerates exact-key lookups. It is a pure
// optimization: ordering always derives from the underlying sequence.
package table

import (
	"errors"

	"github.com/roach88/strata/internal/record"
)

// Sentinel errors. The table never wraps or translates these; the façade is
// the only layer that turns them into caller-facing typed errors.
var (
	// ErrDuplicateKey is returned by Append when an explicit key exists.
	ErrDuplicateKey = errors.New("table: duplicate key")

	// ErrNoMatch is returned by Remove when no record satisfies the predicate.
	ErrNoMatch = errors.New("table: no matching record")
)

// Predicate reports whether a record matches. Predicates must be pure:
// they are evaluated in insertion order and must not mutate the record.
type Predicate func(record.Record) bool

// ByKey returns a predicate matching the natural key exactly.
// No normalization: comparison is byte-exact per the key encoding contract.
func ByKey(key string) Predicate {
	return func(r record.Record) bool { return r.Key == key }
}

// Table is an insertion-ordered sequence of records.
// Not safe for concurrent use; the owning façade serializes access.
type Table struct {
	recs  []record.Record
	byKey map[string]int // key → position, optimization only
}

// New creates an empty table.
func New() *Table {
	return &Table{byKey: make(map[string]int)}
}

// Append inserts a record at the end.
// Returns ErrDuplicateKey when the record's key is already present.
func (t *Table) Append(rec record.Record) error {
	if _, exists := t.byKey[rec.Key]; exists {
		return ErrDuplicateKey
	}
	t.byKey[rec.Key] = len(t.recs)
	t.recs = append(t.recs, rec.Clone())
	return nil
}

// Has reports whether a record with the given key exists.
func (t *Table) Has(key string) bool {
	_, ok := t.byKey[key]
	return ok
}

// Get returns a copy of the record with the given key.
// This is the indexed fast path; it observes the same records the ordered
// scan would find.
func (t *Table) Get(key string) (record.Record, bool) {
	pos, ok := t.byKey[key]
	if !ok {
		return record.Record{}, false
	}
	return t.recs[pos].Clone(), true
}

// Find returns a copy of the first record (in insertion order) for which
// pred holds. The second return value is false when nothing matches.
func (t *Table) Find(pred Predicate) (record.Record, bool) {
	pos, ok := t.Position(pred)
	if !ok {
		return record.Record{}, false
	}
	return t.recs[pos].Clone(), true
}

// Position returns the index of the first matching record.
// Same ordering and tie-break rule as Find.
func (t *Table) Position(pred Predicate) (int, bool) {
	for i, rec := range t.recs {
		if pred(rec) {
			return i, true
		}
	}
	return 0, false
}

// Remove deletes the first matching record and returns a copy of it.
// Records after the removed one shift down by one position; insertion order
// of the remainder is preserved. Returns ErrNoMatch when nothing matches.
func (t *Table) Remove(pred Predicate) (record.Record, error) {
	pos, ok := t.Position(pred)
	if !ok {
		return record.Record{}, ErrNoMatch
	}

	removed := t.recs[pos]
	t.recs = append(t.recs[:pos], t.recs[pos+1:]...)

	// Positions after the removal point all shifted; rebuild the index.
	delete(t.byKey, removed.Key)
	for i := pos; i < len(t.recs); i++ {
		t.byKey[t.recs[i].Key] = i
	}

	return removed, nil
}

// Replace overwrites the record stored under key with rec, preserving its
// position in insertion order. The caller guarantees rec.Key == key.
func (t *Table) Replace(key string, rec record.Record) bool {
	pos, ok := t.byKey[key]
	if !ok {
		return false
	}
	t.recs[pos] = rec.Clone()
	return true
}

// All returns a deep-copied snapshot in insertion order.
// The snapshot is safe to iterate and serialize independently of later
// table mutation. Always returns a non-nil slice.
func (t *Table) All() []record.Record {
	out := make([]record.Record, len(t.recs))
	for i, rec := range t.recs {
		out[i] = rec.Clone()
	}
	return out
}

// Len returns the number of live records.
// Invariant: Len() == len(All()) at every observation point.
func (t *Table) Len() int {
	return len(t.recs)
}
