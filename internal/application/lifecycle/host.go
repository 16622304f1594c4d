// Package lifecycle runs a component's side effects at explicit lifecycle points:
// once after the first commit, whenever a dependency list changes, after every
// commit, and at teardown.
//
// A Host is not safe for concurrent use. The owner serializes Commit and
// Teardown, which gives every component a single-threaded, run-to-completion
// view of its own triggers.
package lifecycle

import (
	"context"
	"log/slog"
)

// Cleanup undoes an effect. It runs before the effect runs again and at teardown.
type Cleanup func()

// EffectFunc performs a side effect and optionally returns its cleanup.
type EffectFunc func(ctx context.Context) Cleanup

// maxPasses bounds how many times one Commit re-runs effects after an
// effect called Invalidate.
const maxPasses = 8

type effectKind uint8

const (
	kindMount effectKind = iota
	kindChange
	kindCommit
)

type effect struct {
	name     string
	kind     effectKind
	deps     func() []any
	run      EffectFunc
	ran      bool
	prevDeps []any
	cleanup  Cleanup
}

// Host owns the registered effects of one mounted component.
type Host struct {
	name     string
	effects  []*effect
	commits  int
	dirty    bool
	tornDown bool
}

// NewHost creates a host for the named component.
func NewHost(name string) *Host {
	return &Host{name: name}
}

// OnMount registers fn to run after the first commit only. Its cleanup runs at teardown.
// PRE: called before the first Commit
func (h *Host) OnMount(name string, fn EffectFunc) {
	h.effects = append(h.effects, &effect{name: name, kind: kindMount, run: fn})
}

// OnChange registers fn to run after the first commit and after every commit in
// which deps() differs from the previous commit's deps(). The previous run's
// cleanup runs first, so a cleanup always sees the values its own run saw.
// PRE: called before the first Commit; deps returns comparable values
func (h *Host) OnChange(name string, deps func() []any, fn EffectFunc) {
	h.effects = append(h.effects, &effect{name: name, kind: kindChange, deps: deps, run: fn})
}

// OnCommit registers fn to run after every commit.
// PRE: called before the first Commit
func (h *Host) OnCommit(name string, fn EffectFunc) {
	h.effects = append(h.effects, &effect{name: name, kind: kindCommit, run: fn})
}

// Invalidate asks the running Commit for another pass, e.g. because an effect
// changed state that other effects depend on.
func (h *Host) Invalidate() {
	h.dirty = true
}

// Commit runs the effects due after a state change.
// Dependencies are captured at the start of each pass. All cleanups of the
// effects due in a pass run (in registration order) before any of them re-run.
// PRE: none
// POST: no-op after Teardown
func (h *Host) Commit(ctx context.Context) {
	if h.tornDown {
		return
	}
	for pass := 0; ; pass++ {
		h.dirty = false
		h.commitPass(ctx)
		h.commits++
		if !h.dirty {
			return
		}
		if pass+1 >= maxPasses {
			slog.Warn("effect_commit_unsettled", "component", h.name, "passes", maxPasses)
			return
		}
	}
}

func (h *Host) commitPass(ctx context.Context) {
	due := make([]*effect, 0, len(h.effects))
	captured := make(map[*effect][]any)
	for _, e := range h.effects {
		switch e.kind {
		case kindMount:
			if !e.ran {
				due = append(due, e)
			}
		case kindChange:
			deps := e.deps()
			if !e.ran || depsChanged(e.prevDeps, deps) {
				due = append(due, e)
				captured[e] = deps
			}
		case kindCommit:
			due = append(due, e)
		}
	}

	for _, e := range due {
		if e.cleanup != nil {
			c := e.cleanup
			e.cleanup = nil
			c()
		}
	}
	for _, e := range due {
		slog.Debug("effect_run", "component", h.name, "effect", e.name)
		e.cleanup = e.run(ctx)
		e.ran = true
		if e.kind == kindChange {
			e.prevDeps = captured[e]
		}
	}
}

// Teardown runs every outstanding cleanup in reverse registration order and
// makes the host inert.
// PRE: none
// POST: Mounted() is false; further Commit and Teardown calls do nothing
func (h *Host) Teardown() {
	if h.tornDown {
		return
	}
	h.tornDown = true
	for i := len(h.effects) - 1; i >= 0; i-- {
		e := h.effects[i]
		if e.cleanup != nil {
			c := e.cleanup
			e.cleanup = nil
			c()
		}
	}
	slog.Debug("component_unmounted", "component", h.name, "commits", h.commits)
}

// Mounted reports whether the host has committed at least once and has not been torn down.
func (h *Host) Mounted() bool {
	return h.commits > 0 && !h.tornDown
}

// Commits returns the number of completed commit passes.
func (h *Host) Commits() int {
	return h.commits
}

func depsChanged(prev, next []any) bool {
	if len(prev) != len(next) {
		return true
	}
	for i := range prev {
		if prev[i] != next[i] {
			return true
		}
	}
	return false
}
