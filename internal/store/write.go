package store

import (
	"database/sql"
	"fmt"

	"github.com/roach88/strata/internal/record"
)

// MarkInitialized records that the store has been initialized.
// Returns the previous state so callers can detect double-initialization.
func (s *Store) MarkInitialized() (already bool, err error) {
	initialized, err := s.Initialized()
	if err != nil {
		return false, err
	}
	if initialized {
		return true, nil
	}

	_, err = s.db.Exec(
		`INSERT INTO meta (k, v) VALUES (?, 'true')
		 ON CONFLICT(k) DO UPDATE SET v = 'true'`,
		metaKeyInitialized,
	)
	if err != nil {
		return false, fmt.Errorf("mark initialized: %w", err)
	}
	return false, nil
}

// UpsertRecord writes a record row. On key conflict the payload is replaced
// but seq is preserved: a record's position in the collection is fixed at
// first insertion.
func (s *Store) UpsertRecord(collection string, rec record.Record) error {
	fields, err := marshalFields(rec.Fields)
	if err != nil {
		return fmt.Errorf("record %s/%s: %w", collection, rec.Key, err)
	}

	_, err = s.db.Exec(
		`INSERT INTO records (collection, key, fields, seq) VALUES (?, ?, ?, ?)
		 ON CONFLICT(collection, key) DO UPDATE SET fields = excluded.fields`,
		collection, rec.Key, fields, rec.Seq,
	)
	if err != nil {
		return fmt.Errorf("upsert record %s/%s: %w", collection, rec.Key, err)
	}
	return nil
}

// DeleteRecord removes a record row. Deleting a missing row is not an error;
// the engine decides what a miss means.
func (s *Store) DeleteRecord(collection, key string) error {
	_, err := s.db.Exec(
		`DELETE FROM records WHERE collection = ? AND key = ?`,
		collection, key,
	)
	if err != nil {
		return fmt.Errorf("delete record %s/%s: %w", collection, key, err)
	}
	return nil
}

// UpsertCell writes a cell row, replacing any previous value.
func (s *Store) UpsertCell(name string, value record.Value, seq int64) error {
	encoded, err := marshalCellValue(value)
	if err != nil {
		return fmt.Errorf("cell %s: %w", name, err)
	}

	_, err = s.db.Exec(
		`INSERT INTO cells (name, value, seq) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, seq = excluded.seq`,
		name, encoded, seq,
	)
	if err != nil {
		return fmt.Errorf("upsert cell %s: %w", name, err)
	}
	return nil
}

// DeleteCell removes a cell row. Missing rows are ignored.
func (s *Store) DeleteCell(name string) error {
	_, err := s.db.Exec(`DELETE FROM cells WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete cell %s: %w", name, err)
	}
	return nil
}

// TouchRecordExpiry raises a record's expiry horizon. MAX() keeps the horizon
// forward-only no matter what order touches arrive in.
func (s *Store) TouchRecordExpiry(collection, key string, expireAt int64) error {
	res, err := s.db.Exec(
		`UPDATE records SET expire_at = MAX(expire_at, ?)
		 WHERE collection = ? AND key = ?`,
		expireAt, collection, key,
	)
	if err != nil {
		return fmt.Errorf("touch record %s/%s: %w", collection, key, err)
	}
	return requireRow(res, fmt.Sprintf("record %s/%s", collection, key))
}

// TouchCellExpiry raises a cell's expiry horizon, forward-only.
func (s *Store) TouchCellExpiry(name string, expireAt int64) error {
	res, err := s.db.Exec(
		`UPDATE cells SET expire_at = MAX(expire_at, ?) WHERE name = ?`,
		expireAt, name,
	)
	if err != nil {
		return fmt.Errorf("touch cell %s: %w", name, err)
	}
	return requireRow(res, fmt.Sprintf("cell %s", name))
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: no such row", what)
	}
	return nil
}
