package engine

import "sync/atomic"

// Clock is the monotonic logical clock stamping every write.
//
// All journal rows carry a seq from this clock, so ordering is
// deterministic and never depends on wall time. The clock doubles as the
// lifecycle tick source: expiry horizons are measured in write ticks.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// though the engine's call-at-a-time model means only one operation
// advances it at a time.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific sequence number.
// Used when rehydrating to resume from the journal's last position.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and advances the clock.
// Each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without advancing.
// Satisfies lifecycle.TickSource.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
