package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/strata/internal/record"
)

// createTestStore creates a fresh on-disk store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord creates a record with a small payload.
func createTestRecord(key string, seq int64) record.Record {
	return record.Record{
		Key: key,
		Seq: seq,
		Fields: record.Fields{
			"title": record.String("t-" + key),
			"count": record.Int(seq),
		},
	}
}
