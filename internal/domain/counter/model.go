package counter

import (
	"errors"
	"strconv"
	"strings"
)

// PersistKey is the key-value store key the persistent counter is mirrored under.
const PersistKey = "persistent-counter"

// Domain errors.
var (
	ErrNegative  = errors.New("counter value cannot be negative")
	ErrMalformed = errors.New("malformed persisted counter value")
)

// Counter is a non-negative click counter.
// INVARIANT: value >= 0. The zero Counter is a valid counter at zero.
type Counter struct {
	value int
}

// FromValue builds a counter holding n.
// PRE: none
// POST: returns ErrNegative if n < 0
func FromValue(n int) (Counter, error) {
	if n < 0 {
		return Counter{}, ErrNegative
	}
	return Counter{value: n}, nil
}

// Parse decodes the persisted decimal form of a counter.
// PRE: none
// POST: returns a Counter, or an error wrapping ErrMalformed for anything that
// is not a non-negative base-10 integer
func Parse(raw string) (Counter, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return Counter{}, errors.Join(ErrMalformed, err)
	}
	c, err := FromValue(n)
	if err != nil {
		return Counter{}, errors.Join(ErrMalformed, err)
	}
	return c, nil
}

// Value returns the current count.
func (c Counter) Value() int {
	return c.value
}

// Format returns the persisted decimal form.
func (c Counter) Format() string {
	return strconv.Itoa(c.value)
}

// Increment raises the count by one. There is no upper bound.
func (c *Counter) Increment() {
	c.value++
}

// CanReset reports whether Reset would change anything.
func (c Counter) CanReset() bool {
	return c.value != 0
}

// Reset sets the count back to zero.
// PRE: none
// POST: value == 0; returns false (and does nothing) when the count was already zero
func (c *Counter) Reset() bool {
	if !c.CanReset() {
		return false
	}
	c.value = 0
	return true
}
