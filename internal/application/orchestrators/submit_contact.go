package orchestrators

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"lessons/internal/adapters/email"
	contactStore "lessons/internal/adapters/storage/contact"
	domain "lessons/internal/domain/contact"
)

// SubmitContactInput holds the raw form fields.
type SubmitContactInput struct {
	Name    string
	Email   string
	Message string
}

// SubmitContactDeps are the external dependencies for this orchestrator.
// Inbox is where notifications go; an empty Inbox disables them.
type SubmitContactDeps struct {
	ContactStore contactStore.Store
	Sender       email.Sender
	Inbox        string
	GenerateID   func() string
	Now          func() time.Time
}

// SubmitContactResult holds the outcome of a submission.
type SubmitContactResult struct {
	SubmissionID string
	Notified     bool
}

// ExecuteSubmitContact persists a contact form submission and forwards a
// notification. Fields are not validated.
// PRE: deps.ContactStore, deps.GenerateID and deps.Now are set
// POST: the submission is saved; a failed notification is logged and reported
// through Notified, never as an error
func ExecuteSubmitContact(ctx context.Context, input SubmitContactInput, deps SubmitContactDeps) (SubmitContactResult, error) {
	sub := domain.Submission{
		ID:          deps.GenerateID(),
		Name:        input.Name,
		Email:       input.Email,
		Message:     input.Message,
		SubmittedAt: deps.Now().UTC(),
	}.Trimmed()

	if err := deps.ContactStore.Save(ctx, sub); err != nil {
		return SubmitContactResult{}, fmt.Errorf("save contact submission: %w", err)
	}
	slog.Info("contact_submitted", "submission_id", sub.ID, "blank", sub.IsBlank())

	res := SubmitContactResult{SubmissionID: sub.ID}
	if deps.Sender == nil || deps.Inbox == "" {
		return res, nil
	}

	sent, err := deps.Sender.Send(ctx, email.SendRequest{
		To:      []string{deps.Inbox},
		Subject: contactSubject(sub),
		HTML:    contactBody(sub),
		ReplyTo: sub.Email,
	})
	if err != nil {
		slog.Warn("contact_notification_failed", "submission_id", sub.ID, "error", err)
		return res, nil
	}
	slog.Info("contact_notification_sent", "submission_id", sub.ID, "message_id", sent.MessageID)
	res.Notified = true
	return res, nil
}

func contactSubject(s domain.Submission) string {
	if s.IsBlank() {
		return "Empty contact form submission"
	}
	name := s.Name
	if name == "" {
		name = "anonymous"
	}
	return "Contact form: " + name
}

func contactBody(s domain.Submission) string {
	var b strings.Builder
	b.WriteString("<p><strong>Name:</strong> ")
	b.WriteString(template.HTMLEscapeString(s.Name))
	b.WriteString("</p>\n<p><strong>Email:</strong> ")
	b.WriteString(template.HTMLEscapeString(s.Email))
	b.WriteString("</p>\n<p><strong>Message:</strong></p>\n<pre>")
	b.WriteString(template.HTMLEscapeString(s.Message))
	b.WriteString("</pre>\n<p><small>")
	b.WriteString(s.SubmittedAt.Format(time.RFC1123))
	b.WriteString("</small></p>\n")
	return b.String()
}
