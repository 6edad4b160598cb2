package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"pokedex/src/core/domain"
	"pokedex/src/core/ports"
	"pokedex/src/core/validation"
)

// SeedService fills an empty collection from a species source at boot.
type SeedService struct {
	repo   ports.PokemonRepository
	source ports.SpeciesSource
	limit  int
	log    *slog.Logger
}

func NewSeedService(repo ports.PokemonRepository, source ports.SpeciesSource, limit int, log *slog.Logger) *SeedService {
	return &SeedService{repo: repo, source: source, limit: limit, log: log}
}

// SeedIfEmpty inserts up to limit records when the collection holds none.
// Records that fail validation are skipped. It returns the number inserted.
func (s *SeedService) SeedIfEmpty(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx, domain.PokemonFilter{})
	if err != nil {
		return 0, fmt.Errorf("count existing pokemon: %w", err)
	}
	if count > 0 {
		s.log.Info("seed skipped, collection not empty", "count", count)
		return 0, nil
	}

	fetched, err := s.source.FetchSpecies(ctx, s.limit)
	if err != nil {
		return 0, fmt.Errorf("fetch species: %w", err)
	}

	valid := make([]domain.PokemonInput, 0, len(fetched))
	for _, in := range fetched {
		in = domain.NormalizeInput(in)
		pk := domain.Pokemon{
			Name:          in.Name,
			ThumbnailURL:  in.ThumbnailURL,
			LargeImageURL: in.LargeImageURL,
			Types:         in.Types,
			Abilities:     in.Abilities,
			Stats:         in.Stats,
		}
		if err := validation.ValidatePokemon(pk); err != nil {
			s.log.Warn("skipping invalid species", "name", in.Name, "error", err)
			continue
		}
		valid = append(valid, in)
	}
	if len(valid) == 0 {
		return 0, nil
	}

	n, err := s.repo.InsertMany(ctx, valid)
	if err != nil {
		return n, fmt.Errorf("insert species: %w", err)
	}
	s.log.Info("database seeded", "inserted", n)
	return n, nil
}
