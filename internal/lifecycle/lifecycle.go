// Package lifecycle tracks expiry horizons for stored entries.
//
// Horizons are measured in logical ticks (the store's write clock), not wall
// time: the host environment owns real elapsed time and is the collaborator
// that actually collects lapsed entries. The manager's contract is purely
// arithmetic and advisory:
//   - a horizon only ever moves forward
//   - a touch happens after, and only after, the owning write succeeded,
//     so expiry bookkeeping can never mask a failed write
//   - reads and writes never fail because of lifecycle state
package lifecycle

import "fmt"

// TickSource supplies the current logical tick.
type TickSource interface {
	Current() int64
}

// Touch records one expiry refresh, kept so tests can assert that every
// mutating call refreshed expiry.
type Touch struct {
	Ref     string
	Tick    int64
	Horizon int64
}

// Manager tracks one expiry horizon per entry ref.
// Refs are path-like ("cell/<name>", "table/<collection>/<key>").
// Not safe for concurrent use; the owning façade serializes access.
type Manager struct {
	clock    TickSource
	horizons map[string]int64
	touches  []Touch
}

// NewManager creates a manager over the given tick source.
func NewManager(clock TickSource) *Manager {
	return &Manager{
		clock:    clock,
		horizons: make(map[string]int64),
	}
}

// TouchEntry extends the horizon for ref so the entry will not lapse before
// minTTL ticks from now, extending up to extendTo ticks from now.
// Requires extendTo >= minTTL. The horizon never moves backward: if it
// already lies at or beyond now+extendTo, the touch is recorded but the
// horizon is unchanged.
func (m *Manager) TouchEntry(ref string, minTTL, extendTo int64) error {
	if minTTL < 0 || extendTo < 0 {
		return fmt.Errorf("lifecycle: negative ttl (min=%d, extend=%d)", minTTL, extendTo)
	}
	if extendTo < minTTL {
		return fmt.Errorf("lifecycle: extendTo %d below minTTL %d", extendTo, minTTL)
	}

	now := m.clock.Current()
	horizon, tracked := m.horizons[ref]

	// Refresh only when the entry would otherwise lapse inside the minTTL
	// window; extend straight to the full horizon when it does.
	if !tracked || horizon < now+minTTL {
		if target := now + extendTo; target > horizon {
			horizon = target
		}
	}

	m.horizons[ref] = horizon
	m.touches = append(m.touches, Touch{Ref: ref, Tick: now, Horizon: horizon})
	return nil
}

// Drop forgets the horizon for ref. Called after an entry is removed.
func (m *Manager) Drop(ref string) {
	delete(m.horizons, ref)
}

// Horizon returns the tracked horizon for ref.
func (m *Manager) Horizon(ref string) (int64, bool) {
	h, ok := m.horizons[ref]
	return h, ok
}

// SetHorizon seeds a horizon directly, used when rehydrating from the
// journal. Forward-only like TouchEntry.
func (m *Manager) SetHorizon(ref string, horizon int64) {
	if cur, ok := m.horizons[ref]; ok && cur >= horizon {
		return
	}
	m.horizons[ref] = horizon
}

// Touches returns the recorded refresh log in call order.
func (m *Manager) Touches() []Touch {
	out := make([]Touch, len(m.touches))
	copy(out, m.touches)
	return out
}
