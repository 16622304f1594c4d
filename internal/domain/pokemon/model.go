package pokemon

import (
	"errors"
	"strings"
)

// Sentinel errors returned by remote sources.
var (
	// ErrNotFound means the remote source answered that the record does not exist.
	ErrNotFound = errors.New("pokemon not found")
	// ErrUnavailable means the record could not be retrieved (network failure,
	// non-2xx other than 404, undecodable body).
	ErrUnavailable = errors.New("pokemon source unavailable")
	// ErrEmptyID is returned when no identifier was supplied.
	ErrEmptyID = errors.New("pokemon id is required")
)

// Pokemon is the detail record shown on the lesson 04 detail page.
// INVARIANT: immutable once fetched; never cached.
type Pokemon struct {
	ID        string // identifier as requested (name or number)
	Name      string
	SpriteURL string // front_default sprite, may be empty
}

// NormalizeID trims an identifier and rejects an empty one.
// The identifier is otherwise opaque: numbers and names are both accepted.
// PRE: none
// POST: returns the trimmed id or ErrEmptyID
func NormalizeID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", ErrEmptyID
	}
	return id, nil
}
