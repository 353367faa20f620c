package engine

import (
	"context"
	"fmt"

	"github.com/roach88/strata/internal/query"
	"github.com/roach88/strata/internal/record"
	"github.com/roach88/strata/internal/table"
)

// Initialize creates the empty store. Fails ALREADY_INITIALIZED when the
// journal is already marked; every other operation on an unmarked store
// fails UNINITIALIZED.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	if e.initialized {
		opErrorsTotal.Inc()
		return alreadyInitialized()
	}

	already, err := e.journal.MarkInitialized()
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if already {
		// Journal was marked by a previous process; memory just lagged.
		e.initialized = true
		opErrorsTotal.Inc()
		return alreadyInitialized()
	}

	e.initialized = true
	initializeTotal.Inc()
	e.logger.Info("store initialized", "op", e.tokens.Generate())
	return nil
}

// Add validates, normalizes, and appends a record to a collection.
//
// Normalization: an empty string field with a schema placeholder takes the
// placeholder, a numeric field below its floor is clamped. The natural key
// is read from the normalized payload, so an empty key field lands under
// its placeholder. An existing key fails DUPLICATE_KEY.
func (e *Engine) Add(ctx context.Context, collection string, fields record.Fields) (record.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return record.Record{}, err
	}
	if err := e.requireInitialized(); err != nil {
		return record.Record{}, err
	}
	def, err := e.definitionFor(collection)
	if err != nil {
		return record.Record{}, err
	}

	if err := def.ValidateTypes(fields); err != nil {
		opErrorsTotal.Inc()
		return record.Record{}, invalidState(collection, "", err.Error())
	}
	normalized := def.Normalize(fields)

	keyVal, ok := normalized[def.KeyField].(record.String)
	if !ok {
		opErrorsTotal.Inc()
		return record.Record{}, invalidState(collection, "", "key field is not a string")
	}
	key := string(keyVal)

	tbl := e.tableFor(collection)
	if tbl.Has(key) {
		opErrorsTotal.Inc()
		return record.Record{}, duplicateKey(collection, key)
	}

	rec := record.Record{
		Key:    key,
		Seq:    e.clock.Next(),
		Fields: normalized,
	}

	if err := e.journal.UpsertRecord(collection, rec); err != nil {
		return record.Record{}, fmt.Errorf("add: %w", err)
	}
	if err := tbl.Append(rec); err != nil {
		// Unreachable after the Has check under the held lock. If it ever
		// fires, the journal row is authoritative and the next Load
		// reconciles memory to it, so surface an infrastructure failure
		// rather than a typed code.
		return record.Record{}, fmt.Errorf("add %s/%s: memory diverged from journal: %w", collection, key, err)
	}

	e.touchRecord(collection, key)
	addTotal.Inc()
	e.logger.Info("record added",
		"op", e.tokens.Generate(),
		"collection", collection,
		"key", key,
		"seq", rec.Seq)
	return rec, nil
}

// FindByKey returns the record with the given natural key.
// Fails NOT_FOUND when absent.
func (e *Engine) FindByKey(ctx context.Context, collection, key string) (record.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return record.Record{}, err
	}
	if err := e.requireInitialized(); err != nil {
		return record.Record{}, err
	}

	tbl, ok := e.tables[collection]
	if !ok {
		opErrorsTotal.Inc()
		return record.Record{}, notFound(collection, key)
	}
	rec, ok := tbl.Find(table.ByKey(key))
	if !ok {
		opErrorsTotal.Inc()
		return record.Record{}, notFound(collection, key)
	}
	return rec, nil
}

// Find returns the first record in insertion order matching pred.
// Fails NOT_FOUND when nothing matches.
func (e *Engine) Find(ctx context.Context, collection string, pred table.Predicate) (record.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return record.Record{}, err
	}
	if err := e.requireInitialized(); err != nil {
		return record.Record{}, err
	}

	tbl, ok := e.tables[collection]
	if !ok {
		opErrorsTotal.Inc()
		return record.Record{}, notFound(collection, "")
	}
	rec, ok := tbl.Find(pred)
	if !ok {
		opErrorsTotal.Inc()
		return record.Record{}, notFound(collection, "")
	}
	return rec, nil
}

// RemoveByKey deletes the record with the given natural key and returns a
// copy of it. Fails NOT_FOUND when absent; later records keep their order.
func (e *Engine) RemoveByKey(ctx context.Context, collection, key string) (record.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return record.Record{}, err
	}
	if err := e.requireInitialized(); err != nil {
		return record.Record{}, err
	}

	tbl, ok := e.tables[collection]
	if !ok || !tbl.Has(key) {
		opErrorsTotal.Inc()
		return record.Record{}, notFound(collection, key)
	}

	if err := e.journal.DeleteRecord(collection, key); err != nil {
		return record.Record{}, fmt.Errorf("remove: %w", err)
	}
	removed, err := tbl.Remove(table.ByKey(key))
	if err != nil {
		// Unreachable after the Has check under the held lock; the journal
		// delete already landed and the next Load reconciles memory to it.
		return record.Record{}, fmt.Errorf("remove %s/%s: memory diverged from journal: %w", collection, key, err)
	}

	e.life.Drop(recordRef(collection, key))
	removeTotal.Inc()
	e.logger.Info("record removed",
		"op", e.tokens.Generate(),
		"collection", collection,
		"key", key)
	return removed, nil
}

// List returns a deep-copied snapshot of a collection in insertion order.
// An unknown collection lists empty, never errors.
func (e *Engine) List(ctx context.Context, collection string) ([]record.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.requireInitialized(); err != nil {
		return nil, err
	}

	tbl, ok := e.tables[collection]
	if !ok {
		return []record.Record{}, nil
	}
	return tbl.All(), nil
}

// Count returns the number of live records in a collection.
// Invariant: Count == len(List) at every observation point.
func (e *Engine) Count(ctx context.Context, collection string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := e.requireInitialized(); err != nil {
		return 0, err
	}

	tbl, ok := e.tables[collection]
	if !ok {
		return 0, nil
	}
	return tbl.Len(), nil
}

// Query returns the records matching every predicate, in insertion order.
// The match is evaluated journal-side through a compiled WHERE fragment;
// an empty predicate list matches the whole collection. Result ordering
// still comes from the persisted sequence, so Query and List agree.
func (e *Engine) Query(ctx context.Context, collection string, preds []query.Pred) ([]record.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.requireInitialized(); err != nil {
		return nil, err
	}

	where, params, err := query.CompileSQLAll(preds)
	if err != nil {
		opErrorsTotal.Inc()
		return nil, invalidState(collection, "", err.Error())
	}
	recs, err := e.journal.SearchCollection(collection, where, params)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if recs == nil {
		recs = []record.Record{}
	}
	return recs, nil
}

// Adjust loads a record, applies a pure transform to a copy of its fields,
// re-validates, and writes back.
//
// The transform never sees live state. Any failure - transform error, type
// violation, invariant violation, key change, journal error - leaves the
// record byte-for-byte unchanged: no partial mutation, no expiry touch.
func (e *Engine) Adjust(ctx context.Context, collection, key string, mutation func(record.Fields) error) (record.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return record.Record{}, err
	}
	if err := e.requireInitialized(); err != nil {
		return record.Record{}, err
	}
	def, err := e.definitionFor(collection)
	if err != nil {
		return record.Record{}, err
	}

	tbl, ok := e.tables[collection]
	if !ok {
		opErrorsTotal.Inc()
		return record.Record{}, notFound(collection, key)
	}
	rec, ok := tbl.Get(key)
	if !ok {
		opErrorsTotal.Inc()
		return record.Record{}, notFound(collection, key)
	}

	work := rec.Fields.Clone()
	if err := mutation(work); err != nil {
		opErrorsTotal.Inc()
		return record.Record{}, invalidState(collection, key, err.Error())
	}

	if keyVal, ok := work[def.KeyField].(record.String); !ok || string(keyVal) != key {
		opErrorsTotal.Inc()
		return record.Record{}, invalidState(collection, key, "adjustment cannot change the key field")
	}
	if err := def.ValidateTypes(work); err != nil {
		opErrorsTotal.Inc()
		return record.Record{}, invalidState(collection, key, err.Error())
	}
	if err := def.Check(work); err != nil {
		opErrorsTotal.Inc()
		return record.Record{}, invalidState(collection, key, err.Error())
	}

	updated := record.Record{Key: key, Seq: rec.Seq, Fields: work}
	if err := e.journal.UpsertRecord(collection, updated); err != nil {
		return record.Record{}, fmt.Errorf("adjust: %w", err)
	}
	tbl.Replace(key, updated)

	e.touchRecord(collection, key)
	adjustTotal.Inc()
	e.logger.Info("record adjusted",
		"op", e.tokens.Generate(),
		"collection", collection,
		"key", key)
	return updated, nil
}
