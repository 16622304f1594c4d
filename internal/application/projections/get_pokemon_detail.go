package projections

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lessons/internal/domain/pokemon"
)

// ErrResultDropped is returned when the visitor left before the fetch finished.
// The caller must not render anything.
var ErrResultDropped = errors.New("fetch result dropped: request cancelled")

// PokemonDetailQuery asks for one record.
type PokemonDetailQuery struct {
	ID string
}

// PokemonDetailDeps are the dependencies for this projection.
type PokemonDetailDeps struct {
	Source PokemonSource
}

// PokemonDetailResult is either a record or the terminal not-found state.
// Reason carries the underlying cause of a not-found result for logging only.
type PokemonDetailResult struct {
	Pokemon pokemon.Pokemon
	Found   bool
	Reason  error
}

// QueryPokemonDetail performs one fetch for q.ID.
// PRE: deps.Source is set
// POST: every failure of the source collapses to Found=false; returns ErrResultDropped
// (and no result) when ctx was cancelled
func QueryPokemonDetail(ctx context.Context, q PokemonDetailQuery, deps PokemonDetailDeps) (PokemonDetailResult, error) {
	id, err := pokemon.NormalizeID(q.ID)
	if err != nil {
		return PokemonDetailResult{Reason: err}, nil
	}

	p, err := deps.Source.Fetch(ctx, id)
	if ctx.Err() != nil {
		slog.Debug("pokemon_fetch_dropped", "id", id, "error", ctx.Err())
		return PokemonDetailResult{}, fmt.Errorf("pokemon %s: %w", id, errors.Join(ErrResultDropped, ctx.Err()))
	}
	if err != nil {
		if errors.Is(err, pokemon.ErrNotFound) {
			slog.Info("pokemon_not_found", "id", id)
		} else {
			slog.Warn("pokemon_fetch_failed", "id", id, "error", err)
		}
		return PokemonDetailResult{Reason: err}, nil
	}
	return PokemonDetailResult{Pokemon: p, Found: true}, nil
}
