package viewstate

import (
	"context"
	"errors"
	"sync"
	"time"

	"lessons/internal/adapters/storage/kv"
)

// ErrTornDown is returned when a trigger reaches a tree that has already been torn down.
var ErrTornDown = errors.New("view tree torn down")

// Tree is one visitor's mounted units. Every trigger holds the tree's lock
// until it completes, so units never see interleaved triggers.
type Tree struct {
	mu         sync.Mutex
	store      kv.Store
	now        func() time.Time
	theme      *ThemeProvider
	counter    *CounterUnit
	persistent *PersistentCounterUnit
	demo       *EffectDemoUnit
	tornDown   bool
}

// NewTree builds an empty tree. Units mount lazily on first use.
func NewTree(store kv.Store, now func() time.Time) *Tree {
	if now == nil {
		now = time.Now
	}
	return &Tree{store: store, now: now, theme: NewThemeProvider()}
}

// ThemeProvider returns the tree's theme provider.
func (t *Tree) ThemeProvider() *ThemeProvider {
	return t.theme
}

// WithCounter runs fn against the lesson 02 counter.
func (t *Tree) WithCounter(fn func(*CounterUnit)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tornDown {
		return ErrTornDown
	}
	if t.counter == nil {
		t.counter = NewCounterUnit()
	}
	fn(t.counter)
	return nil
}

// WithPersistentCounter runs fn against the lesson 03 persistent counter,
// mounting it (and so running its load phase) first if needed.
func (t *Tree) WithPersistentCounter(ctx context.Context, fn func(*PersistentCounterUnit)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tornDown {
		return ErrTornDown
	}
	if t.persistent == nil {
		t.persistent = NewPersistentCounterUnit(t.store)
		t.persistent.Mount(ctx)
	}
	fn(t.persistent)
	return nil
}

// WithEffectDemo runs fn against the lesson 03 effect demo.
func (t *Tree) WithEffectDemo(fn func(*EffectDemoUnit)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tornDown {
		return ErrTornDown
	}
	if t.demo == nil {
		t.demo = NewEffectDemoUnit(t.now)
	}
	fn(t.demo)
	return nil
}

// Teardown unmounts every unit, running their outstanding cleanups.
// PRE: none
// POST: later With* calls return ErrTornDown; repeated calls do nothing
func (t *Tree) Teardown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tornDown {
		return
	}
	t.tornDown = true
	if t.demo != nil {
		t.demo.Teardown()
	}
	if t.persistent != nil {
		t.persistent.Teardown()
	}
}
