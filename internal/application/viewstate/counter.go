// Package viewstate holds the per-visitor state units that the lesson pages
// render: the counters, the effect demo and the theme provider.
//
// Units are not safe for concurrent use on their own. A Tree owns them and
// serializes every trigger behind one mutex.
package viewstate

import (
	"lessons/internal/domain/counter"
)

// CounterState is what a counter view renders.
type CounterState struct {
	Value    int
	Display  string
	CanReset bool
}

func stateOf(c counter.Counter) CounterState {
	return CounterState{Value: c.Value(), Display: c.Format(), CanReset: c.CanReset()}
}

// CounterUnit is an in-memory counter that lives as long as its tree.
type CounterUnit struct {
	c counter.Counter
}

// NewCounterUnit returns a counter mounted at zero.
func NewCounterUnit() *CounterUnit {
	return &CounterUnit{}
}

// Increment raises the value by one.
func (u *CounterUnit) Increment() CounterState {
	u.c.Increment()
	return stateOf(u.c)
}

// Reset sets the value to zero. It reports false, and changes nothing, when
// the value already was zero.
func (u *CounterUnit) Reset() (CounterState, bool) {
	changed := u.c.Reset()
	return stateOf(u.c), changed
}

// State returns the current value.
func (u *CounterUnit) State() CounterState {
	return stateOf(u.c)
}
