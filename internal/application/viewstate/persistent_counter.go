package viewstate

import (
	"context"
	"log/slog"

	"lessons/internal/adapters/storage/kv"
	"lessons/internal/application/lifecycle"
	"lessons/internal/domain/counter"
)

// LoadOutcome describes how the load phase of a persistent counter ended.
type LoadOutcome string

const (
	LoadPending   LoadOutcome = ""
	LoadRestored  LoadOutcome = "restored"
	LoadAbsent    LoadOutcome = "absent"
	LoadMalformed LoadOutcome = "malformed"
	LoadSkipped   LoadOutcome = "skipped"
)

// PersistentCounterState is the counter state plus how it was loaded.
type PersistentCounterState struct {
	CounterState
	Load LoadOutcome
}

// PersistentCounterUnit mirrors a counter into a key-value store.
//
// Mounting runs the load phase exactly once: a stored value initializes the
// counter, anything else leaves it at zero. After load, every mutation that
// changes the value is written back under counter.PersistKey. Nothing is
// written before the load phase has finished, so mounting on an empty store
// leaves the store empty.
type PersistentCounterUnit struct {
	store   kv.Store
	host    *lifecycle.Host
	c       counter.Counter
	load    LoadOutcome
	mutated bool
}

// NewPersistentCounterUnit builds an unmounted unit backed by store.
func NewPersistentCounterUnit(store kv.Store) *PersistentCounterUnit {
	u := &PersistentCounterUnit{
		store: store,
		host:  lifecycle.NewHost("persistent_counter"),
	}
	u.host.OnMount("load", u.loadPhase)
	u.host.OnChange("sync", func() []any { return []any{u.c.Value()} }, u.syncPhase)
	return u
}

// Mount runs the first commit, which performs the load phase.
// PRE: none
// POST: Loaded() is true; calling Mount again does nothing
func (u *PersistentCounterUnit) Mount(ctx context.Context) {
	if u.host.Mounted() {
		return
	}
	u.host.Commit(ctx)
}

// Increment raises the value by one and syncs it to the store.
// PRE: Mount was called
func (u *PersistentCounterUnit) Increment(ctx context.Context) PersistentCounterState {
	u.c.Increment()
	u.mutated = true
	u.host.Commit(ctx)
	return u.State()
}

// Reset sets the value to zero and syncs it to the store. It reports false,
// and writes nothing, when the value already was zero.
// PRE: Mount was called
func (u *PersistentCounterUnit) Reset(ctx context.Context) (PersistentCounterState, bool) {
	if !u.c.Reset() {
		return u.State(), false
	}
	u.mutated = true
	u.host.Commit(ctx)
	return u.State(), true
}

// State returns the current value.
func (u *PersistentCounterUnit) State() PersistentCounterState {
	return PersistentCounterState{CounterState: stateOf(u.c), Load: u.load}
}

// Loaded reports whether the load phase has completed or been skipped.
func (u *PersistentCounterUnit) Loaded() bool {
	return u.load != LoadPending
}

// Teardown unmounts the unit. The stored value is left in place.
func (u *PersistentCounterUnit) Teardown() {
	u.host.Teardown()
}

func (u *PersistentCounterUnit) loadPhase(ctx context.Context) lifecycle.Cleanup {
	raw, ok, err := u.store.Get(ctx, counter.PersistKey)
	switch {
	case err != nil:
		slog.Warn("persistent_counter_load_failed", "key", counter.PersistKey, "error", err)
		u.load = LoadSkipped
	case !ok:
		u.load = LoadAbsent
	default:
		c, perr := counter.Parse(raw)
		if perr != nil {
			slog.Warn("persistent_counter_malformed", "key", counter.PersistKey, "raw", raw, "error", perr)
			u.load = LoadMalformed
			break
		}
		u.c = c
		u.load = LoadRestored
		u.host.Invalidate()
	}
	return nil
}

func (u *PersistentCounterUnit) syncPhase(ctx context.Context) lifecycle.Cleanup {
	if !u.Loaded() || !u.mutated {
		return nil
	}
	// The write outlives the request that triggered it.
	if err := u.store.Set(context.WithoutCancel(ctx), counter.PersistKey, u.c.Format()); err != nil {
		slog.Warn("persistent_counter_sync_failed", "key", counter.PersistKey, "value", u.c.Value(), "error", err)
		return nil
	}
	slog.Debug("persistent_counter_synced", "key", counter.PersistKey, "value", u.c.Value())
	return nil
}
