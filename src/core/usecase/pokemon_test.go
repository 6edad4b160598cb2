package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pokedex/src/core/domain"
	"pokedex/src/core/usecase"
)

const validID = "65a1f0c2e4b0a1b2c3d4e5f6"

func sampleInput(name string) domain.PokemonInput {
	return domain.PokemonInput{
		Name:          name,
		ThumbnailURL:  "https://img.example/" + name + ".png",
		LargeImageURL: "https://img.example/" + name + "-large.png",
		Types:         []string{"fire"},
		Abilities:     []string{"blaze"},
		Stats:         domain.Stats{HP: 39, Attack: 52, Defense: 43, SpecialAttack: 60, SpecialDefense: 50, Speed: 65},
	}
}

func intPtr(n int) *int { return &n }

func TestListBuildsFilterAndPagination(t *testing.T) {
	repo := new(MockPokemonRepository)
	svc := usecase.NewPokemonService(repo, discardLogger())

	filter := domain.PokemonFilter{Types: []string{"fire", "water"}}
	page := domain.Page{Number: 2, Limit: 5}
	summaries := []domain.PokemonSummary{{ID: validID, Name: "charmander", Types: []string{"fire"}}}

	repo.On("FindMany", mock.Anything, filter, page).Return(summaries, nil)
	repo.On("Count", mock.Anything, filter).Return(int64(12), nil)

	list, err := svc.List(context.Background(), domain.ListQuery{Types: "Fire, water", Page: intPtr(2), Limit: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, summaries, list.Data)
	assert.Equal(t, domain.Pagination{CurrentPage: 2, TotalPages: 3, TotalItems: 12, Limit: 5}, list.Pagination)
	repo.AssertExpectations(t)
}

func TestListEmptyDataIsNotNil(t *testing.T) {
	repo := new(MockPokemonRepository)
	svc := usecase.NewPokemonService(repo, discardLogger())

	repo.On("FindMany", mock.Anything, mock.Anything, domain.Page{Number: 1, Limit: 10}).Return(nil, nil)
	repo.On("Count", mock.Anything, mock.Anything).Return(int64(0), nil)

	list, err := svc.List(context.Background(), domain.ListQuery{})
	require.NoError(t, err)
	assert.NotNil(t, list.Data)
	assert.Empty(t, list.Data)
	assert.Equal(t, int64(0), list.Pagination.TotalPages)
}

func TestListPropagatesStorageError(t *testing.T) {
	repo := new(MockPokemonRepository)
	svc := usecase.NewPokemonService(repo, discardLogger())

	boom := errors.New("connection reset")
	repo.On("FindMany", mock.Anything, mock.Anything, mock.Anything).Return(nil, boom)
	repo.On("Count", mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()

	_, err := svc.List(context.Background(), domain.ListQuery{})
	assert.ErrorIs(t, err, boom)
}

func TestInvalidIDNeverReachesStorage(t *testing.T) {
	repo := new(MockPokemonRepository)
	svc := usecase.NewPokemonService(repo, discardLogger())
	ctx := context.Background()

	for _, id := range []string{"123", "zzzzzzzzzzzzzzzzzzzzzzzz", validID + "0", ""} {
		_, err := svc.GetByID(ctx, id)
		assert.True(t, domain.IsInvalidID(err), id)

		_, err = svc.Update(ctx, id, domain.PokemonPatch{})
		assert.True(t, domain.IsInvalidID(err), id)

		_, err = svc.Remove(ctx, id)
		assert.True(t, domain.IsInvalidID(err), id)
	}
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}

func TestCreate(t *testing.T) {
	t.Run("normalizes and inserts", func(t *testing.T) {
		repo := new(MockPokemonRepository)
		svc := usecase.NewPokemonService(repo, discardLogger())

		in := sampleInput("  Charmander ")
		in.Types = []string{"FIRE"}
		want := sampleInput("Charmander")

		repo.On("FindByName", mock.Anything, "Charmander", "").Return(nil, domain.NewNotFoundError("Pokemon"))
		repo.On("Create", mock.Anything, want).Return(&domain.Pokemon{ID: validID, Name: "Charmander"}, nil)

		pk, err := svc.Create(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, validID, pk.ID)
		repo.AssertExpectations(t)
	})

	t.Run("rejects a taken name", func(t *testing.T) {
		repo := new(MockPokemonRepository)
		svc := usecase.NewPokemonService(repo, discardLogger())

		repo.On("FindByName", mock.Anything, "charmander", "").Return(&domain.Pokemon{ID: validID}, nil)

		_, err := svc.Create(context.Background(), sampleInput("charmander"))
		require.Error(t, err)
		assert.True(t, domain.IsBadRequest(err))
		assert.Equal(t, "A Pokémon with this name already exists", err.Error())
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("name lookup failure is not a duplicate", func(t *testing.T) {
		repo := new(MockPokemonRepository)
		svc := usecase.NewPokemonService(repo, discardLogger())

		boom := errors.New("timeout")
		repo.On("FindByName", mock.Anything, "charmander", "").Return(nil, boom)

		_, err := svc.Create(context.Background(), sampleInput("charmander"))
		assert.ErrorIs(t, err, boom)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("empty patch returns current record", func(t *testing.T) {
		repo := new(MockPokemonRepository)
		svc := usecase.NewPokemonService(repo, discardLogger())

		current := &domain.Pokemon{ID: validID, Name: "squirtle"}
		repo.On("FindByID", mock.Anything, validID).Return(current, nil)

		pk, err := svc.Update(context.Background(), validID, domain.PokemonPatch{})
		require.NoError(t, err)
		assert.Equal(t, current, pk)
		repo.AssertNotCalled(t, "UpdateByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rename checks other records only", func(t *testing.T) {
		repo := new(MockPokemonRepository)
		svc := usecase.NewPokemonService(repo, discardLogger())

		name := " Wartortle "
		trimmed := "Wartortle"
		repo.On("FindByName", mock.Anything, trimmed, validID).Return(nil, domain.NewNotFoundError("Pokemon"))
		repo.On("UpdateByID", mock.Anything, validID, domain.PokemonPatch{Name: &trimmed}).
			Return(&domain.Pokemon{ID: validID, Name: trimmed}, nil)

		pk, err := svc.Update(context.Background(), validID, domain.PokemonPatch{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, trimmed, pk.Name)
		repo.AssertExpectations(t)
	})

	t.Run("rename onto another record", func(t *testing.T) {
		repo := new(MockPokemonRepository)
		svc := usecase.NewPokemonService(repo, discardLogger())

		name := "blastoise"
		repo.On("FindByName", mock.Anything, name, validID).Return(&domain.Pokemon{ID: "65a1f0c2e4b0a1b2c3d4e5f7"}, nil)

		_, err := svc.Update(context.Background(), validID, domain.PokemonPatch{Name: &name})
		assert.True(t, domain.IsBadRequest(err))
	})

	t.Run("missing record", func(t *testing.T) {
		repo := new(MockPokemonRepository)
		svc := usecase.NewPokemonService(repo, discardLogger())

		patch := domain.PokemonPatch{Types: []string{"water"}}
		repo.On("UpdateByID", mock.Anything, validID, patch).Return(nil, domain.NewNotFoundError("Pokemon"))

		_, err := svc.Update(context.Background(), validID, patch)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestRemove(t *testing.T) {
	repo := new(MockPokemonRepository)
	svc := usecase.NewPokemonService(repo, discardLogger())

	repo.On("DeleteByID", mock.Anything, validID).Return(nil).Once()
	repo.On("DeleteByID", mock.Anything, validID).Return(domain.NewNotFoundError("Pokemon")).Once()

	res, err := svc.Remove(context.Background(), validID)
	require.NoError(t, err)
	assert.Equal(t, "Pokemon deleted successfully", res.Message)

	_, err = svc.Remove(context.Background(), validID)
	assert.True(t, domain.IsNotFound(err))
	repo.AssertExpectations(t)
}
