package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"lessons/internal/application/viewstate"
	"lessons/internal/domain/theme"
)

// ExecuteToggleTheme flips the theme of the provider installed in ctx.
// PRE: ctx carries a theme provider
// POST: returns the new theme; returns an error wrapping viewstate.ErrNoThemeProvider otherwise
func ExecuteToggleTheme(ctx context.Context) (theme.Theme, error) {
	h, err := viewstate.UseTheme(ctx)
	if err != nil {
		return "", fmt.Errorf("toggle theme: %w", err)
	}
	next := h.Toggle()
	slog.Debug("theme_toggled", "theme", next)
	return next, nil
}
