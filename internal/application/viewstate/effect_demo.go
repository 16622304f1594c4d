package viewstate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lessons/internal/application/lifecycle"
)

// maxDemoEvents is how many recent effect events the demo keeps for display.
const maxDemoEvents = 20

// DemoEvent is one logged effect event.
type DemoEvent struct {
	Seq     int
	At      time.Time
	Message string
}

// EffectDemoState is what the effect demo view renders.
type EffectDemoState struct {
	Visible bool
	Clicks  int
	Events  []DemoEvent
}

// EffectDemoUnit shows and hides a demo component whose effects log every
// lifecycle step.
type EffectDemoUnit struct {
	now     func() time.Time
	inner   *demoComponent
	events  []DemoEvent
	nextSeq int
}

// demoComponent is the mountable part of the demo.
type demoComponent struct {
	host   *lifecycle.Host
	clicks int
}

// NewEffectDemoUnit returns a demo with the component hidden.
func NewEffectDemoUnit(now func() time.Time) *EffectDemoUnit {
	if now == nil {
		now = time.Now
	}
	return &EffectDemoUnit{now: now}
}

// Toggle mounts the demo component when hidden and tears it down when shown.
func (u *EffectDemoUnit) Toggle(ctx context.Context) EffectDemoState {
	if u.inner != nil {
		u.inner.host.Teardown()
		u.inner = nil
		return u.State()
	}
	u.inner = u.newComponent()
	u.inner.host.Commit(ctx)
	return u.State()
}

// Click bumps the demo component's counter. It does nothing while hidden.
func (u *EffectDemoUnit) Click(ctx context.Context) EffectDemoState {
	if u.inner == nil {
		return u.State()
	}
	u.inner.clicks++
	u.inner.host.Commit(ctx)
	return u.State()
}

// State returns visibility, the click count and the recent events, newest last.
func (u *EffectDemoUnit) State() EffectDemoState {
	s := EffectDemoState{Events: append([]DemoEvent(nil), u.events...)}
	if u.inner != nil {
		s.Visible = true
		s.Clicks = u.inner.clicks
	}
	return s
}

// Teardown unmounts the demo component if it is shown.
func (u *EffectDemoUnit) Teardown() {
	if u.inner != nil {
		u.inner.host.Teardown()
		u.inner = nil
	}
}

func (u *EffectDemoUnit) newComponent() *demoComponent {
	d := &demoComponent{host: lifecycle.NewHost("effect_demo")}
	d.host.OnCommit("render", func(context.Context) lifecycle.Cleanup {
		u.record("render finished")
		return nil
	})
	d.host.OnMount("mount", func(context.Context) lifecycle.Cleanup {
		u.record("mounted")
		return func() { u.record("unmounted") }
	})
	d.host.OnChange("clicks", func() []any { return []any{d.clicks} }, func(context.Context) lifecycle.Cleanup {
		n := d.clicks
		u.record(fmt.Sprintf("count changed to %d", n))
		return func() { u.record(fmt.Sprintf("cleanup for count %d", n)) }
	})
	return d
}

func (u *EffectDemoUnit) record(msg string) {
	u.nextSeq++
	u.events = append(u.events, DemoEvent{Seq: u.nextSeq, At: u.now(), Message: msg})
	if len(u.events) > maxDemoEvents {
		u.events = u.events[len(u.events)-maxDemoEvents:]
	}
	slog.Info("effect_demo_event", "seq", u.nextSeq, "event", msg)
}
