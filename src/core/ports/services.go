package ports

import (
	"context"

	"pokedex/src/core/domain"
)

// ExternalService is the base interface for external service adapters.
type ExternalService interface {
	// Health checks if the external service is reachable.
	Health(ctx context.Context) error
}

// SpeciesSource fetches Pokemon records from a third-party species catalogue.
type SpeciesSource interface {
	FetchSpecies(ctx context.Context, limit int) ([]domain.PokemonInput, error)
}
