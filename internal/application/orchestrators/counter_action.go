package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lessons/internal/application/viewstate"
)

// ErrUnknownAction is returned for an action name no unit understands.
var ErrUnknownAction = errors.New("unknown action")

// CounterAction is a trigger on one of the counter units.
type CounterAction string

const (
	ActionIncrement CounterAction = "increment"
	ActionReset     CounterAction = "reset"
)

// ParseCounterAction validates an action taken from a route.
// PRE: none
// POST: returns an error wrapping ErrUnknownAction for anything but increment or reset
func ParseCounterAction(s string) (CounterAction, error) {
	switch a := CounterAction(s); a {
	case ActionIncrement, ActionReset:
		return a, nil
	}
	return "", fmt.Errorf("counter action %q: %w", s, ErrUnknownAction)
}

// CounterActionInput carries one trigger.
type CounterActionInput struct {
	Action CounterAction
}

// CounterActionDeps are the dependencies of the counter orchestrators.
type CounterActionDeps struct {
	Tree *viewstate.Tree
}

// CounterActionResult is the state after the trigger.
// Changed is false when a reset hit a counter already at zero.
type CounterActionResult struct {
	State   viewstate.CounterState
	Changed bool
}

// ExecuteCounterAction applies one trigger to the in-memory counter.
// PRE: input.Action is valid; deps.Tree is non-nil
// POST: Increment always changes the value; Reset at zero changes nothing
func ExecuteCounterAction(_ context.Context, input CounterActionInput, deps CounterActionDeps) (CounterActionResult, error) {
	var res CounterActionResult
	err := deps.Tree.WithCounter(func(u *viewstate.CounterUnit) {
		switch input.Action {
		case ActionIncrement:
			res.State, res.Changed = u.Increment(), true
		case ActionReset:
			res.State, res.Changed = u.Reset()
		}
	})
	if err != nil {
		return CounterActionResult{}, fmt.Errorf("counter %s: %w", input.Action, err)
	}
	if !res.Changed {
		slog.Debug("counter_action_unchanged", "action", input.Action)
	}
	return res, nil
}

// PersistentCounterActionResult is the persistent counter state after the trigger.
type PersistentCounterActionResult struct {
	State   viewstate.PersistentCounterState
	Changed bool
}

// ExecutePersistentCounterAction applies one trigger to the persistent counter,
// mounting it first if this visitor has not seen it yet.
// PRE: input.Action is valid; deps.Tree is non-nil
// POST: a changed value has been handed to the store; store failures are logged, not returned
func ExecutePersistentCounterAction(ctx context.Context, input CounterActionInput, deps CounterActionDeps) (PersistentCounterActionResult, error) {
	var res PersistentCounterActionResult
	err := deps.Tree.WithPersistentCounter(ctx, func(u *viewstate.PersistentCounterUnit) {
		switch input.Action {
		case ActionIncrement:
			res.State, res.Changed = u.Increment(ctx), true
		case ActionReset:
			res.State, res.Changed = u.Reset(ctx)
		}
	})
	if err != nil {
		return PersistentCounterActionResult{}, fmt.Errorf("persistent counter %s: %w", input.Action, err)
	}
	return res, nil
}
