// Package ports defines interfaces (ports) that connect core domain to infrastructure.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern.
//
// Ports are defined here in the core layer, while implementations (adapters)
// live in src/infra/repo. This ensures the core has no dependency on infrastructure.
package ports

import (
	"context"

	"pokedex/src/core/domain"
)

// Repository is the base interface for all repositories.
// Concrete repositories should embed this and add entity-specific methods.
type Repository interface {
	// Health checks if the underlying storage is reachable.
	Health(ctx context.Context) error
}

// PokemonRepository is the persistence gateway for the Pokemon collection.
//
// Implementations translate driver errors into domain errors:
//   - missing document     -> domain.KindNotFound
//   - malformed identifier -> domain.KindInvalidID
//   - duplicate name       -> domain.KindBadRequest (domain.NewDuplicateNameError)
//   - field validation     -> domain.KindValidation
//
// Anything else is returned wrapped and surfaces as an internal error.
type PokemonRepository interface {
	Repository

	// FindMany returns the list projection of matching records in storage order.
	FindMany(ctx context.Context, filter domain.PokemonFilter, page domain.Page) ([]domain.PokemonSummary, error)

	// Count returns the number of records matching filter.
	Count(ctx context.Context, filter domain.PokemonFilter) (int64, error)

	// FindByID returns the full record.
	FindByID(ctx context.Context, id string) (*domain.Pokemon, error)

	// FindByName returns the record with exactly this name, ignoring excludeID
	// when it is non-empty. A missing record is a KindNotFound error.
	FindByName(ctx context.Context, name, excludeID string) (*domain.Pokemon, error)

	// Create inserts a new record. The storage uniqueness constraint on name
	// is authoritative.
	Create(ctx context.Context, in domain.PokemonInput) (*domain.Pokemon, error)

	// InsertMany bulk-inserts records and returns how many were stored.
	InsertMany(ctx context.Context, in []domain.PokemonInput) (int, error)

	// UpdateByID merges the supplied fields and returns the updated record.
	UpdateByID(ctx context.Context, id string, patch domain.PokemonPatch) (*domain.Pokemon, error)

	// DeleteByID removes the record.
	DeleteByID(ctx context.Context, id string) error
}
