package theme

import "errors"

// Theme is the two-valued colour scheme shared through a provider scope.
// INVARIANT: a valid Theme is Light or Dark; there is no third state.
type Theme string

// Light is the initial theme of every provider scope.
const Light Theme = "light"

// Dark is the only other theme.
const Dark Theme = "dark"

// Default is the theme a new provider scope starts with.
const Default = Light

// ErrUnknown is returned when a value is neither light nor dark.
var ErrUnknown = errors.New("theme must be 'light' or 'dark'")

// Validate checks the theme invariant.
// PRE: none
// POST: returns nil for Light and Dark, ErrUnknown otherwise
func (t Theme) Validate() error {
	if t != Light && t != Dark {
		return ErrUnknown
	}
	return nil
}

// Toggle returns the other theme. The transition graph is a 2-cycle.
// PRE: t is valid
// POST: Light -> Dark, Dark -> Light
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// String implements fmt.Stringer.
func (t Theme) String() string {
	return string(t)
}
