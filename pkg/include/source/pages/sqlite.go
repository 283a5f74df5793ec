package pages

import (
	"context"
	"fmt"
	"strconv"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/benjaminschreck/go-include/pkg/include/source/sqlitedb"
)

// Schema creates the versioned page table.
const Schema = `
CREATE TABLE IF NOT EXISTS wiki_pages (
	name    TEXT    NOT NULL,
	version INTEGER NOT NULL,
	text    TEXT    NOT NULL,
	PRIMARY KEY (name, version)
);`

// SQLiteStore keeps versioned pages in SQLite.
type SQLiteStore struct {
	pool *sqlitedb.Pool
}

// NewSQLiteStore uses pool, which must have been opened with Schema.
func NewSQLiteStore(pool *sqlitedb.Pool) *SQLiteStore {
	return &SQLiteStore{pool: pool}
}

// Put stores text as the next version of name.
func (s *SQLiteStore) Put(ctx context.Context, name, text string) (version int, err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("pages: put %s: %w", name, err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return 0, fmt.Errorf("pages: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	err = sqlitex.Execute(conn, "SELECT COALESCE(MAX(version), 0) + 1 FROM wiki_pages WHERE name = ?", &sqlitex.ExecOptions{
		Args: []any{name},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			version = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("pages: next version of %s: %w", name, err)
	}

	err = sqlitex.Execute(conn, "INSERT INTO wiki_pages (name, version, text) VALUES (?, ?, ?)", &sqlitex.ExecOptions{
		Args: []any{name, version, text},
	})
	if err != nil {
		return 0, fmt.Errorf("pages: insert %s: %w", name, err)
	}
	return version, nil
}

func (s *SQLiteStore) Get(ctx context.Context, name, version string) (*Page, error) {
	query := "SELECT version, text FROM wiki_pages WHERE name = ? ORDER BY version DESC LIMIT 1"
	args := []any{name}
	if version != "" {
		v, err := strconv.Atoi(version)
		if err != nil {
			return nil, nil
		}
		query = "SELECT version, text FROM wiki_pages WHERE name = ? AND version = ?"
		args = append(args, v)
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("pages: get %s: %w", name, err)
	}
	defer s.pool.Put(conn)

	var page *Page
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			page = &Page{Name: name, Version: stmt.ColumnInt(0), Text: stmt.ColumnText(1)}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pages: get %s: %w", name, err)
	}
	return page, nil
}

func (s *SQLiteStore) Exists(ctx context.Context, name string) (bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return false, fmt.Errorf("pages: exists %s: %w", name, err)
	}
	defer s.pool.Put(conn)

	exists := false
	err = sqlitex.Execute(conn, "SELECT 1 FROM wiki_pages WHERE name = ? LIMIT 1", &sqlitex.ExecOptions{
		Args: []any{name},
		ResultFunc: func(*sqlite.Stmt) error {
			exists = true
			return nil
		},
	})
	if err != nil {
		return false, fmt.Errorf("pages: exists %s: %w", name, err)
	}
	return exists, nil
}

func (s *SQLiteStore) Names(ctx context.Context) ([]string, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("pages: names: %w", err)
	}
	defer s.pool.Put(conn)

	var names []string
	err = sqlitex.Execute(conn, "SELECT DISTINCT name FROM wiki_pages ORDER BY name", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			names = append(names, stmt.ColumnText(0))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pages: names: %w", err)
	}
	return names, nil
}
