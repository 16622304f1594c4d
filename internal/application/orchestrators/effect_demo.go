package orchestrators

import (
	"context"
	"fmt"

	"lessons/internal/application/viewstate"
)

// DemoAction is a trigger on the effect demo.
type DemoAction string

const (
	DemoToggle DemoAction = "toggle"
	DemoClick  DemoAction = "click"
)

// ParseDemoAction validates an action taken from a route.
func ParseDemoAction(s string) (DemoAction, error) {
	switch a := DemoAction(s); a {
	case DemoToggle, DemoClick:
		return a, nil
	}
	return "", fmt.Errorf("demo action %q: %w", s, ErrUnknownAction)
}

// EffectDemoInput carries one trigger.
type EffectDemoInput struct {
	Action DemoAction
}

// ExecuteEffectDemoAction shows, hides or clicks the effect demo component.
// PRE: input.Action is valid; deps.Tree is non-nil
// POST: effects and cleanups for the trigger have run before this returns
func ExecuteEffectDemoAction(ctx context.Context, input EffectDemoInput, deps CounterActionDeps) (viewstate.EffectDemoState, error) {
	var state viewstate.EffectDemoState
	err := deps.Tree.WithEffectDemo(func(u *viewstate.EffectDemoUnit) {
		switch input.Action {
		case DemoToggle:
			state = u.Toggle(ctx)
		case DemoClick:
			state = u.Click(ctx)
		}
	})
	if err != nil {
		return viewstate.EffectDemoState{}, fmt.Errorf("effect demo %s: %w", input.Action, err)
	}
	return state, nil
}
