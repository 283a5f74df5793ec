package sqlitedb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

func TestOpenAppliesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	pool, err := Open(Config{
		Path:   path,
		Schema: `CREATE TABLE IF NOT EXISTS kv (k TEXT PRIMARY KEY, v TEXT);`,
	})
	require.NoError(t, err)
	defer pool.Close()
	assert.Equal(t, path, pool.Path())

	conn, err := pool.Take(context.Background())
	require.NoError(t, err)
	defer pool.Put(conn)

	require.NoError(t, sqlitex.Execute(conn, "INSERT INTO kv (k, v) VALUES (?, ?)", &sqlitex.ExecOptions{
		Args: []any{"a", "b"},
	}))

	var got string
	err = sqlitex.Execute(conn, "SELECT v FROM kv WHERE k = ?", &sqlitex.ExecOptions{
		Args: []any{"a"},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			got = stmt.ColumnText(0)
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "b", got)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.EqualError(t, err, "sqlitedb: Path is required")
}
