package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"lessons/internal/adapters/http/perf"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQuery is the default threshold for slow query warnings.
const DefaultSlowQuery = 50 * time.Millisecond

// TimedDB wraps a *sql.DB to log slow statements and record them to a collector.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold time.Duration
}

var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps db with timing instrumentation.
// PRE: db is a valid database connection; collector may be nil
// POST: statements slower than threshold log at WARN (threshold <= 0 uses DefaultSlowQuery)
func NewTimedDB(db *sql.DB, collector *perf.Collector, threshold time.Duration) *TimedDB {
	if threshold <= 0 {
		threshold = DefaultSlowQuery
	}
	return &TimedDB{db: db, collector: collector, threshold: threshold}
}

// statementLabel reduces a statement to "VERB table", e.g. "SELECT kv_entry".
func statementLabel(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "EMPTY"
	}
	verb := strings.ToUpper(fields[0])
	for i, f := range fields {
		if i+1 >= len(fields) {
			break
		}
		next := fields[i+1]
		switch strings.ToUpper(f) {
		case "FROM", "INTO", "EXISTS":
			return verb + " " + strings.Trim(next, "(;")
		case "TABLE", "INDEX":
			if !strings.EqualFold(next, "IF") {
				return verb + " " + strings.Trim(next, "(;")
			}
		case "UPDATE":
			if i == 0 {
				return verb + " " + next
			}
		}
	}
	return verb
}

func (t *TimedDB) observe(query string, start time.Time) {
	elapsed := time.Since(start)
	label := statementLabel(query)
	durationMs := float64(elapsed.Microseconds()) / 1000.0
	if elapsed >= t.threshold {
		slog.Warn("slow_query", "statement", label, "duration_ms", durationMs)
	} else {
		slog.Debug("query", "statement", label, "duration_ms", durationMs)
	}
	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Label:      label,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// ExecContext wraps sql.DB.ExecContext with timing.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	defer t.observe(query, start)
	return t.db.ExecContext(ctx, query, args...)
}

// QueryContext wraps sql.DB.QueryContext with timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	defer t.observe(query, start)
	return t.db.QueryContext(ctx, query, args...)
}

// QueryRowContext wraps sql.DB.QueryRowContext with timing.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	defer t.observe(query, start)
	return t.db.QueryRowContext(ctx, query, args...)
}

// Close closes the underlying database.
func (t *TimedDB) Close() error {
	return t.db.Close()
}
