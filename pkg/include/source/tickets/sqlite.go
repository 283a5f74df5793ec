package tickets

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/benjaminschreck/go-include/pkg/include/source/sqlitedb"
)

// Schema creates the ticket tables.
const Schema = `
CREATE TABLE IF NOT EXISTS tickets (
	id      INTEGER PRIMARY KEY,
	summary TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS ticket_comments (
	ticket INTEGER NOT NULL,
	seq    INTEGER NOT NULL,
	number TEXT    NOT NULL,
	author TEXT    NOT NULL DEFAULT '',
	text   TEXT    NOT NULL,
	PRIMARY KEY (ticket, seq)
);`

// SQLiteStore keeps tickets in SQLite.
type SQLiteStore struct {
	pool *sqlitedb.Pool
}

// NewSQLiteStore uses pool, which must have been opened with Schema.
func NewSQLiteStore(pool *sqlitedb.Pool) *SQLiteStore {
	return &SQLiteStore{pool: pool}
}

// Save replaces the ticket and its comments.
func (s *SQLiteStore) Save(ctx context.Context, t Ticket) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("tickets: save #%d: %w", t.ID, err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("tickets: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	err = sqlitex.Execute(conn, "INSERT OR REPLACE INTO tickets (id, summary) VALUES (?, ?)", &sqlitex.ExecOptions{
		Args: []any{t.ID, t.Summary},
	})
	if err != nil {
		return fmt.Errorf("tickets: save #%d: %w", t.ID, err)
	}
	err = sqlitex.Execute(conn, "DELETE FROM ticket_comments WHERE ticket = ?", &sqlitex.ExecOptions{
		Args: []any{t.ID},
	})
	if err != nil {
		return fmt.Errorf("tickets: clear comments of #%d: %w", t.ID, err)
	}
	for i, c := range t.Comments {
		err = sqlitex.Execute(conn, "INSERT INTO ticket_comments (ticket, seq, number, author, text) VALUES (?, ?, ?, ?, ?)", &sqlitex.ExecOptions{
			Args: []any{t.ID, i, c.Number, c.Author, c.Text},
		})
		if err != nil {
			return fmt.Errorf("tickets: insert comment %s of #%d: %w", c.Number, t.ID, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Ticket(ctx context.Context, id int) (*Ticket, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("tickets: get #%d: %w", id, err)
	}
	defer s.pool.Put(conn)

	var t *Ticket
	err = sqlitex.Execute(conn, "SELECT id, summary FROM tickets WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			t = &Ticket{ID: stmt.ColumnInt(0), Summary: stmt.ColumnText(1)}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("tickets: get #%d: %w", id, err)
	}
	if t == nil {
		return nil, nil
	}

	err = sqlitex.Execute(conn, "SELECT number, author, text FROM ticket_comments WHERE ticket = ? ORDER BY seq", &sqlitex.ExecOptions{
		Args: []any{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			t.Comments = append(t.Comments, Comment{
				Number: stmt.ColumnText(0),
				Author: stmt.ColumnText(1),
				Text:   stmt.ColumnText(2),
			})
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("tickets: comments of #%d: %w", id, err)
	}
	return t, nil
}
