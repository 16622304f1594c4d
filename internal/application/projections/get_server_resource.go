package projections

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ServerResourceFallback is rendered instead of the file contents when the read fails.
const ServerResourceFallback = "Error reading file"

// ServerResourceDeps are the dependencies for this projection.
type ServerResourceDeps struct {
	ReadFile ReadFileFunc
	Path     string
	Delay    time.Duration
	Now      func() time.Time
}

// ServerResourceResult is what the server-only component renders.
type ServerResourceResult struct {
	Content    string
	Failed     bool
	RenderedAt time.Time
}

// QueryServerResource waits deps.Delay (simulated latency) and reads deps.Path.
// PRE: deps.ReadFile and deps.Now are set
// POST: a read failure yields ServerResourceFallback with Failed=true; returns an
// error only when ctx is cancelled during the wait
func QueryServerResource(ctx context.Context, deps ServerResourceDeps) (ServerResourceResult, error) {
	if deps.Delay > 0 {
		timer := time.NewTimer(deps.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ServerResourceResult{}, fmt.Errorf("server resource: %w", ctx.Err())
		case <-timer.C:
		}
	}

	data, err := deps.ReadFile(deps.Path)
	if err != nil {
		slog.Error("server_resource_read_failed", "path", deps.Path, "error", err)
		return ServerResourceResult{Content: ServerResourceFallback, Failed: true, RenderedAt: deps.Now()}, nil
	}
	return ServerResourceResult{Content: string(data), RenderedAt: deps.Now()}, nil
}
