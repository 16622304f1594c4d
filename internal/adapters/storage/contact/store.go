package contact

import (
	"context"

	domain "lessons/internal/domain/contact"
)

// Store persists contact form submissions.
type Store interface {
	Save(ctx context.Context, s domain.Submission) error
	GetByID(ctx context.Context, id string) (domain.Submission, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Submission, error)
}
