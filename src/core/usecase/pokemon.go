package usecase

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"pokedex/src/core/domain"
	"pokedex/src/core/ports"
)

const deletedMessage = "Pokemon deleted successfully"

// PokemonService holds the business rules for the Pokemon resource:
// duplicate-name checks, normalization, and id parsing.
type PokemonService struct {
	repo ports.PokemonRepository
	log  *slog.Logger
}

func NewPokemonService(repo ports.PokemonRepository, log *slog.Logger) *PokemonService {
	return &PokemonService{repo: repo, log: log}
}

// List returns one page of list projections and the pagination descriptor.
// The page read and the count run concurrently.
func (s *PokemonService) List(ctx context.Context, q domain.ListQuery) (*domain.PokemonList, error) {
	filter := domain.BuildFilter(q.Types, q.Abilities)
	page := domain.NewPage(q.Page, q.Limit)

	var (
		data  []domain.PokemonSummary
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data, err = s.repo.FindMany(gctx, filter, page)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if data == nil {
		data = []domain.PokemonSummary{}
	}
	return &domain.PokemonList{
		Data:       data,
		Pagination: domain.BuildPagination(total, page),
	}, nil
}

func (s *PokemonService) GetByID(ctx context.Context, id string) (*domain.Pokemon, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// Create rejects a taken name before inserting. The check is best effort;
// the storage unique index decides concurrent races.
func (s *PokemonService) Create(ctx context.Context, in domain.PokemonInput) (*domain.Pokemon, error) {
	in = domain.NormalizeInput(in)
	if err := s.checkDuplicateName(ctx, in.Name, ""); err != nil {
		return nil, err
	}

	pk, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Debug("pokemon created", "id", pk.ID, "name", pk.Name)
	return pk, nil
}

func (s *PokemonService) Update(ctx context.Context, id string, patch domain.PokemonPatch) (*domain.Pokemon, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	patch = domain.NormalizePatch(patch)
	if patch.Name != nil {
		if err := s.checkDuplicateName(ctx, *patch.Name, id); err != nil {
			return nil, err
		}
	}

	if patch.IsEmpty() {
		return s.repo.FindByID(ctx, id)
	}
	return s.repo.UpdateByID(ctx, id, patch)
}

func (s *PokemonService) Remove(ctx context.Context, id string) (*domain.DeleteResult, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return nil, err
	}
	s.log.Debug("pokemon deleted", "id", id)
	return &domain.DeleteResult{Message: deletedMessage}, nil
}

func (s *PokemonService) checkDuplicateName(ctx context.Context, name, excludeID string) error {
	_, err := s.repo.FindByName(ctx, name, excludeID)
	switch {
	case err == nil:
		return domain.NewDuplicateNameError()
	case domain.IsNotFound(err):
		return nil
	default:
		return err
	}
}

// checkID accepts only 24-character hex object ids.
func checkID(id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return domain.NewInvalidIDError()
	}
	return nil
}
