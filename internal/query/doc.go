// Package query defines a small declarative predicate form and its two
// compilers.
//
// A Pred compares one field against a literal value with one of six
// operators (eq, ne, lt, le, gt, ge). The reserved field name "key"
// addresses a record's natural key instead of a payload field.
//
// Two backends:
//   - Compile produces an in-memory predicate closure for ordered scans.
//     This is the authoritative path: list order always comes from the
//     in-memory sequence, never from SQL.
//   - CompileSQL produces a parameterized WHERE fragment for journal-side
//     lookups. Values are never interpolated into the SQL text.
//
// Validate checks a predicate against a collection schema before either
// compiler runs.
package query
