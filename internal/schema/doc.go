// Package schema defines collection schemas and compiles them from CUE.
//
// A Definition names a collection, its natural-key field, and the typed
// fields a record may carry. Definitions also carry normalization defaults:
// a placeholder for empty string fields and a floor clamp for numeric
// fields. Validation and normalization are pure functions over payloads;
// the engine decides when each applies.
//
// Schemas are authored in CUE and compiled with the CUE Go SDK (never the
// CLI). A built-in catalog is embedded so the store works out of the box;
// external schema files use the same compiler.
package schema
