package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	tables := []string{"meta", "records", "cells"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := createTestStore(t)

	db := s.DB()
	if db == nil {
		t.Fatal("DB() returned nil")
	}
	if err := db.Ping(); err != nil {
		t.Errorf("DB() connection not usable: %v", err)
	}
}

// Pragma tests

func TestPragma_JournalMode(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	s := createTestStore(t)
	// NORMAL = 1
	if err := s.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestPragma_ForeignKeys(t *testing.T) {
	s := createTestStore(t)
	// ON = 1
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
}

// Migration tests

func TestMigrations_SetUserVersion(t *testing.T) {
	s := createTestStore(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("query user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, expected %d", version, currentSchemaVersion)
	}
}

func TestMigrations_CellsSeqIndex(t *testing.T) {
	s := createTestStore(t)

	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_cells_seq'",
	).Scan(&name)
	if err != nil {
		t.Errorf("idx_cells_seq not found: %v", err)
	}
}

// Initialization marker

func TestMarkInitialized_FreshStore(t *testing.T) {
	s := createTestStore(t)

	initialized, err := s.Initialized()
	if err != nil {
		t.Fatalf("Initialized() failed: %v", err)
	}
	if initialized {
		t.Error("fresh store should not be initialized")
	}

	already, err := s.MarkInitialized()
	if err != nil {
		t.Fatalf("MarkInitialized() failed: %v", err)
	}
	if already {
		t.Error("first MarkInitialized() reported already=true")
	}

	initialized, err = s.Initialized()
	if err != nil {
		t.Fatalf("Initialized() failed: %v", err)
	}
	if !initialized {
		t.Error("store not initialized after MarkInitialized()")
	}
}

func TestMarkInitialized_Twice(t *testing.T) {
	s := createTestStore(t)

	if _, err := s.MarkInitialized(); err != nil {
		t.Fatalf("first MarkInitialized() failed: %v", err)
	}

	already, err := s.MarkInitialized()
	if err != nil {
		t.Fatalf("second MarkInitialized() failed: %v", err)
	}
	if !already {
		t.Error("second MarkInitialized() should report already=true")
	}
}

func TestMarkInitialized_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := s1.MarkInitialized(); err != nil {
		t.Fatalf("MarkInitialized() failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	initialized, err := s2.Initialized()
	if err != nil {
		t.Fatalf("Initialized() failed: %v", err)
	}
	if !initialized {
		t.Error("initialization marker lost across reopen")
	}
}
