package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "users.db")
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	d, err := Open(openTemp(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	require.NoError(t, EnsureSchema(d))
	require.NoError(t, EnsureSchema(d))

	tables, err := Tables(d)
	require.NoError(t, err)
	assert.Equal(t, []string{"schema_migrations", "users"}, tables)

	cols, err := Columns(d, "users")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "username", "password"}, cols)
}

func TestEnsureSchema_SurvivesReopen(t *testing.T) {
	path := openTemp(t)

	d, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, EnsureSchema(d))
	_, err = d.Exec(`INSERT INTO users (username, password) VALUES ('admin', 'admin123')`)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	d, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	require.NoError(t, EnsureSchema(d))

	var n int
	require.NoError(t, d.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Equal(t, 1, n, "existing rows must be kept")
}

func TestRollbackLast_DropsUsers(t *testing.T) {
	d, err := Open(openTemp(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	require.NoError(t, EnsureSchema(d))
	require.NoError(t, RollbackLast(d))

	tables, err := Tables(d)
	require.NoError(t, err)
	assert.NotContains(t, tables, "users")

	// Nothing left to roll back.
	require.NoError(t, RollbackLast(d))

	require.NoError(t, EnsureSchema(d))
	tables, err = Tables(d)
	require.NoError(t, err)
	assert.Contains(t, tables, "users")
}

func TestEnsureSchema_NilDB(t *testing.T) {
	assert.Error(t, EnsureSchema(nil))
	assert.Error(t, RollbackLast(nil))
}
