package contact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"

	"lessons/internal/adapters/storage"
	domain "lessons/internal/domain/contact"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	db, err := storage.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db)
}

// TestSQLiteStore_SaveAndGet verifies a saved submission round-trips.
func TestSQLiteStore_SaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sub := domain.Submission{
		ID:          "sub-1",
		Name:        "Ana",
		Email:       "ana@example.com",
		Message:     "¿Hay clase el viernes?",
		SubmittedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := s.Save(ctx, sub); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.GetByID(ctx, "sub-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if diff := cmp.Diff(sub, got); diff != "" {
		t.Errorf("submission mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStore_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

// TestSQLiteStore_ListRecent verifies newest-first ordering and the limit.
func TestSQLiteStore_ListRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		sub := domain.Submission{ID: id, SubmittedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := s.Save(ctx, sub); err != nil {
			t.Fatalf("Save(%s): %v", id, err)
		}
	}
	list, err := s.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	var ids []string
	for _, sub := range list {
		ids = append(ids, sub.ID)
	}
	if diff := cmp.Diff([]string{"c", "b"}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}
