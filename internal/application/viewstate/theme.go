package viewstate

import (
	"context"
	"errors"
	"sync"

	"lessons/internal/domain/theme"
)

// ErrNoThemeProvider is returned when the theme is read from a context that no
// ThemeProvider was installed in.
var ErrNoThemeProvider = errors.New("theme read outside a theme provider: install one with viewstate.WithThemeProvider (the ThemeScope middleware does this)")

type themeProviderKey struct{}

// ThemeProvider owns one theme value shared by every consumer in its scope.
type ThemeProvider struct {
	mu      sync.Mutex
	current theme.Theme
}

// NewThemeProvider returns a provider starting at theme.Default.
func NewThemeProvider() *ThemeProvider {
	return &ThemeProvider{current: theme.Default}
}

// ThemeHandle is a consumer's view of a provider. It can read and toggle the
// theme but never replace the provider.
type ThemeHandle struct {
	p *ThemeProvider
}

// Theme returns the current theme.
func (h *ThemeHandle) Theme() theme.Theme {
	h.p.mu.Lock()
	defer h.p.mu.Unlock()
	return h.p.current
}

// Toggle flips the theme and returns the new value. Every consumer of the same
// provider observes the change.
func (h *ThemeHandle) Toggle() theme.Theme {
	h.p.mu.Lock()
	defer h.p.mu.Unlock()
	h.p.current = h.p.current.Toggle()
	return h.p.current
}

// WithThemeProvider returns a context whose consumers share p.
func WithThemeProvider(ctx context.Context, p *ThemeProvider) context.Context {
	return context.WithValue(ctx, themeProviderKey{}, p)
}

// UseTheme returns a handle on the nearest installed provider.
// PRE: none
// POST: returns ErrNoThemeProvider when ctx carries no provider; never falls back to a default theme
func UseTheme(ctx context.Context) (*ThemeHandle, error) {
	p, ok := ctx.Value(themeProviderKey{}).(*ThemeProvider)
	if !ok || p == nil {
		return nil, ErrNoThemeProvider
	}
	return &ThemeHandle{p: p}, nil
}

// MustUseTheme is UseTheme for callers that treat a missing provider as a
// programming error. It panics with ErrNoThemeProvider.
func MustUseTheme(ctx context.Context) *ThemeHandle {
	h, err := UseTheme(ctx)
	if err != nil {
		panic(err)
	}
	return h
}
