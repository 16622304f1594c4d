package projections

import (
	"context"

	"lessons/internal/domain/pokemon"
)

// PokemonSource fetches one record by identifier.
type PokemonSource interface {
	Fetch(ctx context.Context, id string) (pokemon.Pokemon, error)
}

// ReadFileFunc reads a whole file. os.ReadFile satisfies it.
type ReadFileFunc func(name string) ([]byte, error)
