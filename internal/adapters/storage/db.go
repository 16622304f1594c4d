package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// schema holds every table the lesson server owns.
const schema = `
CREATE TABLE IF NOT EXISTS kv_entry (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS contact_submission (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	message TEXT NOT NULL DEFAULT '',
	submitted_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contact_submission_submitted_at
	ON contact_submission (submitted_at);
`

// DSN builds the SQLite connection string with WAL mode and a busy timeout.
// PRE: path is a file path or ":memory:"
// POST: returns a modernc.org/sqlite DSN
func DSN(path string) string {
	if path == ":memory:" {
		return path
	}
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
}

// InitDB creates the schema.
// PRE: db is a valid, open database connection
// POST: all tables exist; calling it again is a no-op
func InitDB(ctx context.Context, db SQLDB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Open opens the SQLite database at path and creates the schema.
// PRE: the "sqlite" driver is registered (import modernc.org/sqlite)
// POST: returns a pinged, migrated *sql.DB
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Every new connection would get its own empty in-memory database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	if err := InitDB(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
