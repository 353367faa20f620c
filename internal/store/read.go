package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/strata/internal/record"
)

// Initialized reports whether the store has been marked initialized.
func (s *Store) Initialized() (bool, error) {
	var v string
	err := s.db.QueryRow(
		`SELECT v FROM meta WHERE k = ?`, metaKeyInitialized,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read initialized marker: %w", err)
	}
	return v == "true", nil
}

// ReadCollection returns all records in a collection in deterministic order:
// insertion order first (seq), binary key order as tiebreak.
func (s *Store) ReadCollection(collection string) ([]record.Record, error) {
	rows, err := s.db.Query(
		`SELECT key, fields, seq FROM records
		 WHERE collection = ?
		 ORDER BY seq ASC, key COLLATE BINARY ASC`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", collection, err)
	}
	defer rows.Close()
	return scanRecords(rows, collection)
}

// SearchCollection returns the records of a collection matching an extra
// WHERE fragment, in the same deterministic order as ReadCollection. The
// fragment and its parameters come from the query compiler; it sees the
// key and fields columns.
func (s *Store) SearchCollection(collection, where string, params []any) ([]record.Record, error) {
	args := append([]any{collection}, params...)
	rows, err := s.db.Query(
		`SELECT key, fields, seq FROM records
		 WHERE collection = ? AND (`+where+`)
		 ORDER BY seq ASC, key COLLATE BINARY ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("search collection %s: %w", collection, err)
	}
	defer rows.Close()
	return scanRecords(rows, collection)
}

func scanRecords(rows *sql.Rows, collection string) ([]record.Record, error) {
	var out []record.Record
	for rows.Next() {
		var (
			rec    record.Record
			fields string
		)
		if err := rows.Scan(&rec.Key, &fields, &rec.Seq); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		decoded, err := unmarshalFields(fields)
		if err != nil {
			return nil, fmt.Errorf("record %s/%s: %w", collection, rec.Key, err)
		}
		rec.Fields = decoded
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collection %s: %w", collection, err)
	}
	return out, nil
}

// Collections returns the distinct collection names present in the journal,
// in binary name order.
func (s *Store) Collections() ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT collection FROM records
		 ORDER BY collection COLLATE BINARY ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("read collections: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan collection name: %w", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return out, nil
}

// ReadRecord fetches a single record. Returns found=false on miss.
func (s *Store) ReadRecord(collection, key string) (rec record.Record, found bool, err error) {
	var fields string
	err = s.db.QueryRow(
		`SELECT key, fields, seq FROM records WHERE collection = ? AND key = ?`,
		collection, key,
	).Scan(&rec.Key, &fields, &rec.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Record{}, false, nil
	}
	if err != nil {
		return record.Record{}, false, fmt.Errorf("read record %s/%s: %w", collection, key, err)
	}
	rec.Fields, err = unmarshalFields(fields)
	if err != nil {
		return record.Record{}, false, fmt.Errorf("record %s/%s: %w", collection, key, err)
	}
	return rec, true, nil
}

// CellRow is one persisted value cell.
type CellRow struct {
	Name     string
	Value    record.Value
	Seq      int64
	ExpireAt int64
}

// ReadCells returns all cells ordered by seq, name.
func (s *Store) ReadCells() ([]CellRow, error) {
	rows, err := s.db.Query(
		`SELECT name, value, seq, expire_at FROM cells
		 ORDER BY seq ASC, name COLLATE BINARY ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("read cells: %w", err)
	}
	defer rows.Close()

	var out []CellRow
	for rows.Next() {
		var (
			row     CellRow
			encoded string
		)
		if err := rows.Scan(&row.Name, &encoded, &row.Seq, &row.ExpireAt); err != nil {
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		row.Value, err = unmarshalCellValue(encoded)
		if err != nil {
			return nil, fmt.Errorf("cell %s: %w", row.Name, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cells: %w", err)
	}
	return out, nil
}

// RecordExpiries returns the persisted expiry horizon per key for one
// collection. Keys with a zero horizon are omitted.
func (s *Store) RecordExpiries(collection string) (map[string]int64, error) {
	rows, err := s.db.Query(
		`SELECT key, expire_at FROM records
		 WHERE collection = ? AND expire_at > 0`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("read record expiries %s: %w", collection, err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			key      string
			expireAt int64
		)
		if err := rows.Scan(&key, &expireAt); err != nil {
			return nil, fmt.Errorf("scan record expiry: %w", err)
		}
		out[key] = expireAt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record expiries %s: %w", collection, err)
	}
	return out, nil
}

// MaxSeq returns the highest seq across records and cells, for rehydrating
// the logical clock. Returns 0 for an empty journal.
func (s *Store) MaxSeq() (int64, error) {
	var maxSeq int64
	err := s.db.QueryRow(
		`SELECT COALESCE(MAX(seq), 0) FROM (
			SELECT seq FROM records
			UNION ALL
			SELECT seq FROM cells
		)`,
	).Scan(&maxSeq)
	if err != nil {
		return 0, fmt.Errorf("read max seq: %w", err)
	}
	return maxSeq, nil
}
