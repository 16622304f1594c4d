package contact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lessons/internal/adapters/storage"
	domain "lessons/internal/domain/contact"
)

// ErrNotFound is returned by GetByID for an unknown submission.
var ErrNotFound = errors.New("contact submission not found")

type sqliteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore returns a Store backed by SQLite.
func NewSQLiteStore(db storage.SQLDB) Store {
	return &sqliteStore{db: db}
}

// Save persists a Submission.
// PRE: s.ID is non-empty and unique
// POST: row inserted into contact_submission
func (st *sqliteStore) Save(ctx context.Context, s domain.Submission) error {
	_, err := st.db.ExecContext(ctx,
		`INSERT INTO contact_submission (id, name, email, message, submitted_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Email, s.Message, s.SubmittedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("contact save: %w", err)
	}
	return nil
}

// GetByID retrieves a Submission by its ID.
// PRE: id is non-empty
// POST: returns the submission or an error wrapping ErrNotFound
func (st *sqliteStore) GetByID(ctx context.Context, id string) (domain.Submission, error) {
	row := st.db.QueryRowContext(ctx,
		`SELECT id, name, email, message, submitted_at FROM contact_submission WHERE id = ?`, id)
	s, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Submission{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return domain.Submission{}, fmt.Errorf("contact get: %w", err)
	}
	return s, nil
}

// ListRecent returns the newest submissions first.
// PRE: limit > 0
// POST: returns at most limit submissions
func (st *sqliteStore) ListRecent(ctx context.Context, limit int) ([]domain.Submission, error) {
	rows, err := st.db.QueryContext(ctx,
		`SELECT id, name, email, message, submitted_at FROM contact_submission
		 ORDER BY submitted_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("contact list: %w", err)
	}
	defer rows.Close()
	var list []domain.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("contact list: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (domain.Submission, error) {
	var s domain.Submission
	var submittedAt string
	if err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Message, &submittedAt); err != nil {
		return domain.Submission{}, err
	}
	s.SubmittedAt, _ = time.Parse(time.RFC3339Nano, submittedAt)
	return s, nil
}
