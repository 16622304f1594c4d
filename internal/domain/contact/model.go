package contact

import (
	"strings"
	"time"
)

// Submission is a message left through the lesson 06 contact form.
// All fields are free text; the form sink does not validate them.
type Submission struct {
	ID          string
	Name        string
	Email       string
	Message     string
	SubmittedAt time.Time
}

// Trimmed returns a copy with surrounding whitespace removed from the text fields.
// PRE: none
// POST: ID and SubmittedAt are unchanged
func (s Submission) Trimmed() Submission {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Message = strings.TrimSpace(s.Message)
	return s
}

// IsBlank reports whether every text field is empty. Blank submissions are
// still accepted; the flag only changes how the notification is worded.
func (s Submission) IsBlank() bool {
	return s.Name == "" && s.Email == "" && s.Message == ""
}
