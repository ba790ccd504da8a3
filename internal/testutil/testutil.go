package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"vulnDemo/internal/db"
)

// NewDBPath creates a SQLite file with the schema applied in a per-test temp
// dir and returns its path. Handlers open their own connections to it.
func NewDBPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	defer d.Close()
	if err := db.EnsureSchema(d); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return path
}

// OpenDB opens path and closes it on cleanup.
func OpenDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// InsertUser writes a plaintext user row directly.
func InsertUser(t *testing.T, path, username, password string) int64 {
	t.Helper()
	d := OpenDB(t, path)
	res, err := d.Exec(`INSERT INTO users (username, password) VALUES (?, ?)`, username, password)
	if err != nil {
		t.Fatalf("insert user %q: %v", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}
	return id
}
