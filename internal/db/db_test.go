package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

const failedToInitDB = "Failed to initialize database: %v"

const insertAutosave = `INSERT INTO autosaves (owner_id, kind, record_id, content) VALUES (?, ?, ?, ?)`

func newTestDB(t *testing.T) *SQLite {
	t.Helper()
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))

	db := NewSQLite(":memory:")
	if err := db.InitDB(); err != nil {
		t.Fatalf(failedToInitDB, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewSQLite(t *testing.T) {
	db := NewSQLite(":memory:")
	if db == nil {
		t.Fatal("Expected non-nil SQLite instance")
	}
	if db.Get() != nil {
		t.Error("Expected connection to be nil before InitDB")
	}
}

func TestAutosavesTable(t *testing.T) {
	db := newTestDB(t)

	t.Run("Insert and read back", func(t *testing.T) {
		if _, err := db.Exec(insertAutosave, "u1", "blog", "", []byte("draft")); err != nil {
			t.Fatalf("Failed to insert: %v", err)
		}

		var content []byte
		err := db.QueryRow(`SELECT content FROM autosaves WHERE owner_id = ? AND kind = ?`, "u1", "blog").Scan(&content)
		if err != nil {
			t.Fatalf("Failed to query: %v", err)
		}
		if string(content) != "draft" {
			t.Errorf("Expected %q, got %q", "draft", content)
		}
	})

	t.Run("One autosave per owner, kind and record", func(t *testing.T) {
		if _, err := db.Exec(insertAutosave, "u1", "blog", "", []byte("again")); err == nil {
			t.Error("Expected primary key violation")
		}
		if _, err := db.Exec(insertAutosave, "u1", "blog", "b1", []byte("edit")); err != nil {
			t.Errorf("Expected a different record to be accepted, got %v", err)
		}
	})

	t.Run("Query rows", func(t *testing.T) {
		rows, err := db.Query(`SELECT record_id FROM autosaves WHERE owner_id = ? ORDER BY record_id`, "u1")
		if err != nil {
			t.Fatalf("Failed to query: %v", err)
		}
		defer rows.Close()

		var ids []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				t.Fatalf("Failed to scan: %v", err)
			}
			ids = append(ids, id)
		}
		if len(ids) != 2 || ids[0] != "" || ids[1] != "b1" {
			t.Errorf("Expected [\"\" b1], got %q", ids)
		}
	})
}

func TestInitDBIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.db")

	for i := 0; i < 2; i++ {
		db := NewSQLite(path)
		if err := db.InitDB(); err != nil {
			t.Fatalf(failedToInitDB, err)
		}
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected database file to exist: %v", err)
	}
}

func TestSQLiteClose(t *testing.T) {
	t.Run("Close uninitialized database", func(t *testing.T) {
		if err := NewSQLite(":memory:").Close(); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("Close twice", func(t *testing.T) {
		db := NewSQLite(":memory:")
		if err := db.InitDB(); err != nil {
			t.Fatalf(failedToInitDB, err)
		}
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database first time: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database second time: %v", err)
		}
		if err := db.Get().Ping(); err == nil {
			t.Error("Expected connection to be closed")
		}
	})
}

func TestDBInterface(t *testing.T) {
	var _ DB = (*SQLite)(nil)
}
