// Package cell implements a single named value slot with explicit presence.
//
// Absence is a first-class state, not an error: a read on a never-written
// cell returns the caller-supplied default. All operations are total over
// the domain of representable values; nothing here can fail.
package cell

import "github.com/roach88/strata/internal/record"

// Cell holds one scalar value and whether it has ever been written.
// The zero value is an absent cell, ready to use.
// Not safe for concurrent use; the owning façade serializes access.
type Cell struct {
	val     record.Value
	present bool
}

// Get returns the stored value if present, else def. Never fails.
func (c *Cell) Get(def record.Value) record.Value {
	if !c.present {
		return def
	}
	return c.val
}

// Present reports whether the cell has ever been written.
func (c *Cell) Present() bool {
	return c.present
}

// Set overwrites the value unconditionally and marks the cell present.
func (c *Cell) Set(v record.Value) {
	c.val = v
	c.present = true
}

// Reset is Set under a name that documents intent (e.g. returning a counter
// to zero). Behaviorally identical to Set.
func (c *Cell) Reset(v record.Value) {
	c.Set(v)
}

// AddInt reads the cell as an integer (def when absent or non-integer),
// adds delta, writes the sum back, and returns it. The read-modify-write is
// a single operation from the caller's perspective: the call-at-a-time
// execution model guarantees no interleaved write can be observed.
func (c *Cell) AddInt(delta, def int64) int64 {
	cur := def
	if c.present {
		if n, ok := c.val.(record.Int); ok {
			cur = int64(n)
		}
	}
	next := cur + delta
	c.Set(record.Int(next))
	return next
}
