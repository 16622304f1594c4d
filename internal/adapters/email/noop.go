package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NoopSender logs instead of delivering. Used when no provider key is configured.
type NoopSender struct {
	now func() time.Time
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{now: time.Now}
}

// Send logs the email and reports success.
// PRE: none
// POST: nothing is delivered; returns a synthetic message ID
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	now := s.now()
	slog.Info("noop_email_send", "to", req.To, "subject", req.Subject)
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", now.UnixNano()),
		SentAt:    now,
	}, nil
}
