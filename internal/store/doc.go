// Package store provides SQLite-backed durable storage for the record store.
//
// The store is a write-through journal beneath the engine façade:
//   - Records: one row per live record, keyed by (collection, natural key)
//   - Cells: one row per named value cell
//   - Meta: initialization marker and schema bookkeeping
//
// # Critical Patterns
//
// Logical time only: all ordering uses seq INTEGER (the engine's logical
// clock), never timestamps. Collection reads are deterministic:
// ORDER BY seq ASC, key ASC COLLATE BINARY.
//
// Forward-only expiry: expire_at updates go through MAX(expire_at, ?), so a
// horizon can never move backward regardless of caller ordering.
//
// Canonical payloads: record fields and cell values are stored as RFC 8785
// canonical JSON, so the journal bytes are stable across rewrites.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
