// Package engine is the validated façade over the record store.
//
// The engine composes the structural layers (tables, cells), the journal,
// the schema catalog, and the lifecycle manager into the public operation
// set. It is the only layer that:
//   - validates and normalizes payloads against collection schemas
//   - translates structural sentinel errors into typed OpErrors
//   - stamps writes with the logical clock
//   - journals mutations and refreshes expiry horizons
//
// Every successful mutation follows the same ordering: journal write,
// in-memory apply, lifecycle touch, metrics, log. A failed journal write
// aborts before memory or lifecycle are touched, so observable state never
// diverges from the journal.
//
// Concurrency model is call-at-a-time: a mutex serializes operations so
// each runs to completion before the next begins. Read operations take the
// same lock but never mutate.
package engine
