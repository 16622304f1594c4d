package email

import (
	"context"
	"time"
)

// SendRequest contains the data needed to send one email.
type SendRequest struct {
	To      []string
	From    string // empty uses the sender's default
	Subject string
	HTML    string
	ReplyTo string
}

// SendResult is the provider's acknowledgement.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email through an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
