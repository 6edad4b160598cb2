package usecase_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"pokedex/src/core/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockPokemonRepository struct {
	mock.Mock
}

func (m *MockPokemonRepository) Health(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockPokemonRepository) FindMany(ctx context.Context, filter domain.PokemonFilter, page domain.Page) ([]domain.PokemonSummary, error) {
	args := m.Called(ctx, filter, page)
	var out []domain.PokemonSummary
	if v := args.Get(0); v != nil {
		out = v.([]domain.PokemonSummary)
	}
	return out, args.Error(1)
}

func (m *MockPokemonRepository) Count(ctx context.Context, filter domain.PokemonFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPokemonRepository) FindByID(ctx context.Context, id string) (*domain.Pokemon, error) {
	args := m.Called(ctx, id)
	return pokemonArg(args), args.Error(1)
}

func (m *MockPokemonRepository) FindByName(ctx context.Context, name, excludeID string) (*domain.Pokemon, error) {
	args := m.Called(ctx, name, excludeID)
	return pokemonArg(args), args.Error(1)
}

func (m *MockPokemonRepository) Create(ctx context.Context, in domain.PokemonInput) (*domain.Pokemon, error) {
	args := m.Called(ctx, in)
	return pokemonArg(args), args.Error(1)
}

func (m *MockPokemonRepository) InsertMany(ctx context.Context, in []domain.PokemonInput) (int, error) {
	args := m.Called(ctx, in)
	return args.Int(0), args.Error(1)
}

func (m *MockPokemonRepository) UpdateByID(ctx context.Context, id string, patch domain.PokemonPatch) (*domain.Pokemon, error) {
	args := m.Called(ctx, id, patch)
	return pokemonArg(args), args.Error(1)
}

func (m *MockPokemonRepository) DeleteByID(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func pokemonArg(args mock.Arguments) *domain.Pokemon {
	if v := args.Get(0); v != nil {
		return v.(*domain.Pokemon)
	}
	return nil
}

type stubSource struct {
	species []domain.PokemonInput
	err     error
	calls   int
}

func (s *stubSource) FetchSpecies(ctx context.Context, limit int) ([]domain.PokemonInput, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if len(s.species) > limit {
		return s.species[:limit], nil
	}
	return s.species, nil
}
