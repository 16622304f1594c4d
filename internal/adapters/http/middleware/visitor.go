package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lessons/internal/application/viewstate"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const visitorContextKey contextKey = "visitor"

const visitorCookieName = "lessons_visitor"

// DefaultVisitorTTL is how long a visitor's view tree survives without requests.
const DefaultVisitorTTL = 30 * time.Minute

// Visitor is an anonymous browser session and the view tree it owns.
type Visitor struct {
	ID        string
	CreatedAt time.Time
	Tree      *viewstate.Tree

	lastSeen time.Time
}

// VisitorStore is an in-memory visitor session store.
// Expired visitors have their trees torn down.
type VisitorStore struct {
	mu       sync.Mutex
	visitors map[string]*Visitor
	ttl      time.Duration
	newTree  func() *viewstate.Tree
	now      func() time.Time
}

// NewVisitorStore creates a store whose visitors expire after ttl of inactivity.
// PRE: newTree is non-nil
func NewVisitorStore(ttl time.Duration, newTree func() *viewstate.Tree) *VisitorStore {
	if ttl <= 0 {
		ttl = DefaultVisitorTTL
	}
	return &VisitorStore{
		visitors: make(map[string]*Visitor),
		ttl:      ttl,
		newTree:  newTree,
		now:      time.Now,
	}
}

// Create starts a new visitor with a fresh tree.
// POST: the visitor is stored under a random ID
func (vs *VisitorStore) Create() *Visitor {
	now := vs.now()
	v := &Visitor{ID: uuid.NewString(), CreatedAt: now, Tree: vs.newTree(), lastSeen: now}
	vs.mu.Lock()
	vs.visitors[v.ID] = v
	vs.mu.Unlock()
	slog.Debug("visitor_created", "visitor_id", v.ID)
	return v
}

// Get retrieves a live visitor and marks it as seen.
// PRE: id is non-empty
// POST: returns false for unknown or expired visitors; an expired visitor's tree is torn down
func (vs *VisitorStore) Get(id string) (*Visitor, bool) {
	now := vs.now()
	vs.mu.Lock()
	v, ok := vs.visitors[id]
	if !ok {
		vs.mu.Unlock()
		return nil, false
	}
	if now.Sub(v.lastSeen) > vs.ttl {
		delete(vs.visitors, id)
		vs.mu.Unlock()
		v.Tree.Teardown()
		slog.Debug("visitor_expired", "visitor_id", id)
		return nil, false
	}
	v.lastSeen = now
	vs.mu.Unlock()
	return v, true
}

// Len returns the number of stored visitors.
func (vs *VisitorStore) Len() int {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return len(vs.visitors)
}

// Sweep removes expired visitors, tears down their trees and returns how many were removed.
func (vs *VisitorStore) Sweep() int {
	now := vs.now()
	var expired []*Visitor
	vs.mu.Lock()
	for id, v := range vs.visitors {
		if now.Sub(v.lastSeen) > vs.ttl {
			delete(vs.visitors, id)
			expired = append(expired, v)
		}
	}
	vs.mu.Unlock()

	// Teardown takes each tree's lock, so it runs outside the store lock.
	for _, v := range expired {
		v.Tree.Teardown()
	}
	return len(expired)
}

// Close tears down every remaining tree. Used at shutdown.
func (vs *VisitorStore) Close() {
	vs.mu.Lock()
	all := make([]*Visitor, 0, len(vs.visitors))
	for id, v := range vs.visitors {
		all = append(all, v)
		delete(vs.visitors, id)
	}
	vs.mu.Unlock()
	for _, v := range all {
		v.Tree.Teardown()
	}
}

// Run sweeps expired visitors every interval until ctx is done.
func (vs *VisitorStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := vs.Sweep(); n > 0 {
				slog.Info("visitors_swept", "expired", n, "remaining", vs.Len())
			}
		}
	}
}

// Visitors returns middleware that resolves the visitor cookie, creating a
// visitor when the cookie is missing or stale, and stores it in the context.
func Visitors(vs *VisitorStore, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !needsVisitor(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			var v *Visitor
			if cookie, err := r.Cookie(visitorCookieName); err == nil && cookie.Value != "" {
				v, _ = vs.Get(cookie.Value)
			}
			if v == nil {
				v = vs.Create()
				http.SetCookie(w, &http.Cookie{
					Name:     visitorCookieName,
					Value:    v.ID,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
					Path:     "/",
				})
			}
			next.ServeHTTP(w, r.WithContext(WithVisitor(r.Context(), v)))
		})
	}
}

// needsVisitor reports whether path renders visitor state. Health checks and
// static assets never do, so they must not create trees.
func needsVisitor(path string) bool {
	return path != "/healthz" && !strings.HasPrefix(path, "/static/")
}

// WithVisitor returns a context carrying v.
func WithVisitor(ctx context.Context, v *Visitor) context.Context {
	return context.WithValue(ctx, visitorContextKey, v)
}

// VisitorFromContext extracts the visitor from the request context.
func VisitorFromContext(ctx context.Context) (*Visitor, bool) {
	v, ok := ctx.Value(visitorContextKey).(*Visitor)
	return v, ok && v != nil
}

// ThemeScope installs the visitor's theme provider for everything below it.
// Requests without a visitor pass through unchanged, so a theme read there
// fails with viewstate.ErrNoThemeProvider.
func ThemeScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v, ok := VisitorFromContext(r.Context()); ok {
			r = r.WithContext(viewstate.WithThemeProvider(r.Context(), v.Tree.ThemeProvider()))
		}
		next.ServeHTTP(w, r)
	})
}
