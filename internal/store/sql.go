package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Dialect selects the SQL flavour used by the SQL medium. The values match
// the database/sql driver names.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

const createCollectionTable = `
	CREATE TABLE IF NOT EXISTS task_collection (
		id      INTEGER PRIMARY KEY,
		content TEXT NOT NULL
	)`

// SQL keeps the collection document in a single row of task_collection.
type SQL struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQL ensures the backing table exists.
func NewSQL(ctx context.Context, db *sql.DB, dialect Dialect) (*SQL, error) {
	switch dialect {
	case Postgres, SQLite:
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	if _, err := db.ExecContext(ctx, createCollectionTable); err != nil {
		return nil, fmt.Errorf("create task_collection: %w", err)
	}
	return &SQL{db: db, dialect: dialect}, nil
}

func (s *SQL) Read(ctx context.Context) ([]byte, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `SELECT content FROM task_collection WHERE id = 1`).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(content), nil
}

func (s *SQL) Write(ctx context.Context, doc []byte) error {
	_, err := s.db.ExecContext(ctx, s.upsertQuery(), string(doc))
	return err
}

func (s *SQL) upsertQuery() string {
	if s.dialect == Postgres {
		return `
			INSERT INTO task_collection (id, content)
			VALUES (1, $1)
			ON CONFLICT (id) DO UPDATE SET content = EXCLUDED.content`
	}
	return `
		INSERT INTO task_collection (id, content)
		VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET content = excluded.content`
}
