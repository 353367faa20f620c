package store

import (
	"testing"

	"github.com/roach88/strata/internal/record"
)

func TestReadCollection_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)

	// Insert out of seq order; reads must come back in seq order.
	for _, seq := range []int64{3, 1, 2} {
		rec := createTestRecord(string(rune('a'+seq)), seq)
		if err := s.UpsertRecord("books", rec); err != nil {
			t.Fatalf("upsert seq %d failed: %v", seq, err)
		}
	}

	recs, err := s.ReadCollection("books")
	if err != nil {
		t.Fatalf("ReadCollection() failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, expected 3", len(recs))
	}
	for i, rec := range recs {
		if rec.Seq != int64(i+1) {
			t.Errorf("position %d has seq %d, expected %d", i, rec.Seq, i+1)
		}
	}
}

func TestReadCollection_KeyTiebreakIsBinary(t *testing.T) {
	s := createTestStore(t)

	// Same seq: key order decides, byte-wise ("Z" < "a").
	for _, key := range []string{"a", "Z"} {
		rec := record.Record{Key: key, Seq: 1, Fields: record.Fields{"x": record.Int(1)}}
		if err := s.UpsertRecord("books", rec); err != nil {
			t.Fatalf("upsert %q failed: %v", key, err)
		}
	}

	recs, err := s.ReadCollection("books")
	if err != nil {
		t.Fatalf("ReadCollection() failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, expected 2", len(recs))
	}
	if recs[0].Key != "Z" || recs[1].Key != "a" {
		t.Errorf("order = [%q, %q], expected [Z, a]", recs[0].Key, recs[1].Key)
	}
}

func TestReadCollection_Empty(t *testing.T) {
	s := createTestStore(t)

	recs, err := s.ReadCollection("books")
	if err != nil {
		t.Fatalf("ReadCollection() failed: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("got %d records, expected 0", len(recs))
	}
}

func TestCollections_DistinctNames(t *testing.T) {
	s := createTestStore(t)

	for _, c := range []string{"employees", "books", "books"} {
		if err := s.UpsertRecord(c, createTestRecord(c+"-key", 1)); err != nil {
			t.Fatalf("upsert into %q failed: %v", c, err)
		}
	}

	names, err := s.Collections()
	if err != nil {
		t.Fatalf("Collections() failed: %v", err)
	}
	if len(names) != 2 || names[0] != "books" || names[1] != "employees" {
		t.Errorf("Collections() = %v, expected [books employees]", names)
	}
}

func TestReadRecord_Miss(t *testing.T) {
	s := createTestStore(t)

	_, found, err := s.ReadRecord("books", "ghost")
	if err != nil {
		t.Fatalf("ReadRecord() failed: %v", err)
	}
	if found {
		t.Error("found=true for missing record")
	}
}

func TestReadCells_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)

	if err := s.UpsertCell("b", record.Int(2), 2); err != nil {
		t.Fatalf("UpsertCell() failed: %v", err)
	}
	if err := s.UpsertCell("a", record.String("x"), 5); err != nil {
		t.Fatalf("UpsertCell() failed: %v", err)
	}

	cells, err := s.ReadCells()
	if err != nil {
		t.Fatalf("ReadCells() failed: %v", err)
	}
	if len(cells) != 2 {
		t.Fatalf("got %d cells, expected 2", len(cells))
	}
	if cells[0].Name != "b" || cells[1].Name != "a" {
		t.Errorf("order = [%q, %q], expected [b, a]", cells[0].Name, cells[1].Name)
	}
	if cells[1].Value != record.String("x") {
		t.Errorf("cell a value = %v, expected x", cells[1].Value)
	}
}

func TestMaxSeq_EmptyJournal(t *testing.T) {
	s := createTestStore(t)

	maxSeq, err := s.MaxSeq()
	if err != nil {
		t.Fatalf("MaxSeq() failed: %v", err)
	}
	if maxSeq != 0 {
		t.Errorf("MaxSeq() = %d, expected 0", maxSeq)
	}
}

func TestMaxSeq_SpansRecordsAndCells(t *testing.T) {
	s := createTestStore(t)

	if err := s.UpsertRecord("books", createTestRecord("alpha", 3)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := s.UpsertCell("sequence", record.Int(1), 7); err != nil {
		t.Fatalf("UpsertCell() failed: %v", err)
	}

	maxSeq, err := s.MaxSeq()
	if err != nil {
		t.Fatalf("MaxSeq() failed: %v", err)
	}
	if maxSeq != 7 {
		t.Errorf("MaxSeq() = %d, expected 7", maxSeq)
	}
}

// Round-trip through canonical payloads.

func TestReadRecord_PayloadRoundTrip(t *testing.T) {
	s := createTestStore(t)

	rec := record.Record{
		Key: "mixed",
		Seq: 1,
		Fields: record.Fields{
			"name":   record.String("café"),
			"count":  record.Int(-3),
			"ratio":  record.Float(0.5),
			"active": record.Bool(true),
		},
	}
	if err := s.UpsertRecord("books", rec); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	got, found, err := s.ReadRecord("books", "mixed")
	if err != nil {
		t.Fatalf("ReadRecord() failed: %v", err)
	}
	if !found {
		t.Fatal("record not found")
	}
	if !got.Fields.Equal(rec.Fields) {
		t.Errorf("round-trip mismatch: got %+v, expected %+v", got.Fields, rec.Fields)
	}
}

func TestSearchCollection_PayloadFilter(t *testing.T) {
	s := createTestStore(t)

	for i, key := range []string{"gamma", "alpha", "beta"} {
		if err := s.UpsertRecord("books", createTestRecord(key, int64(i+1))); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	// createTestRecord stores count = seq.
	recs, err := s.SearchCollection("books",
		"json_extract(fields, ?) >= ?", []any{"$.count", int64(2)})
	if err != nil {
		t.Fatalf("SearchCollection() failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("SearchCollection() returned %d records, expected 2", len(recs))
	}
	// Insertion order is preserved.
	if recs[0].Key != "alpha" || recs[1].Key != "beta" {
		t.Errorf("order = [%s, %s], expected [alpha, beta]", recs[0].Key, recs[1].Key)
	}
}

func TestSearchCollection_KeyColumn(t *testing.T) {
	s := createTestStore(t)

	if err := s.UpsertRecord("books", createTestRecord("alpha", 1)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := s.UpsertRecord("books", createTestRecord("beta", 2)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	recs, err := s.SearchCollection("books", "key = ?", []any{"beta"})
	if err != nil {
		t.Fatalf("SearchCollection() failed: %v", err)
	}
	if len(recs) != 1 || recs[0].Key != "beta" {
		t.Errorf("SearchCollection() = %+v, expected only beta", recs)
	}
}

func TestSearchCollection_NoMatches(t *testing.T) {
	s := createTestStore(t)

	if err := s.UpsertRecord("books", createTestRecord("alpha", 1)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	recs, err := s.SearchCollection("books", "key = ?", []any{"ghost"})
	if err != nil {
		t.Fatalf("SearchCollection() failed: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("SearchCollection() returned %d records, expected 0", len(recs))
	}
}
