package repo

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pokedex/src/core/domain"
	"pokedex/src/core/ports"
	"pokedex/src/core/validation"
)

var _ ports.PokemonRepository = (*MemoryRepository)(nil)

// MemoryRepository is an in-memory implementation for quick start and tests.
// Records keep insertion order. The name index under the mutex plays the
// role of a storage unique constraint.
type MemoryRepository struct {
	mu     sync.RWMutex
	order  []string
	byID   map[string]domain.Pokemon
	byName map[string]string
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[string]domain.Pokemon),
		byName: make(map[string]string),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryRepository) Health(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryRepository) FindMany(ctx context.Context, filter domain.PokemonFilter, page domain.Page) ([]domain.PokemonSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	skip := page.Skip()
	out := []domain.PokemonSummary{}
	var matched int64
	for _, id := range m.order {
		pk := m.byID[id]
		if !filter.Matches(pk) {
			continue
		}
		matched++
		if matched <= skip {
			continue
		}
		if len(out) >= page.Limit {
			break
		}
		out = append(out, domain.PokemonSummary{
			ID:           pk.ID,
			Name:         pk.Name,
			Types:        append([]string(nil), pk.Types...),
			ThumbnailURL: pk.ThumbnailURL,
		})
	}
	return out, nil
}

func (m *MemoryRepository) Count(ctx context.Context, filter domain.PokemonFilter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, id := range m.order {
		if filter.Matches(m.byID[id]) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepository) FindByID(ctx context.Context, id string) (*domain.Pokemon, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, domain.NewInvalidIDError()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	pk, ok := m.byID[id]
	if !ok {
		return nil, domain.NewNotFoundError("Pokemon")
	}
	return clonePokemon(pk), nil
}

func (m *MemoryRepository) FindByName(ctx context.Context, name, excludeID string) (*domain.Pokemon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byName[name]
	if !ok || id == excludeID {
		return nil, domain.NewNotFoundError("Pokemon")
	}
	return clonePokemon(m.byID[id]), nil
}

func (m *MemoryRepository) Create(ctx context.Context, in domain.PokemonInput) (*domain.Pokemon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pk, err := m.insertLocked(in)
	if err != nil {
		return nil, err
	}
	return clonePokemon(pk), nil
}

// InsertMany skips records whose name is taken or that fail validation.
func (m *MemoryRepository) InsertMany(ctx context.Context, in []domain.PokemonInput) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inserted := 0
	for _, pk := range in {
		if _, err := m.insertLocked(pk); err != nil {
			continue
		}
		inserted++
	}
	return inserted, nil
}

func (m *MemoryRepository) insertLocked(in domain.PokemonInput) (domain.Pokemon, error) {
	if _, taken := m.byName[in.Name]; taken {
		return domain.Pokemon{}, domain.NewDuplicateNameError()
	}
	now := m.now()
	pk := domain.Pokemon{
		ID:            primitive.NewObjectID().Hex(),
		Name:          in.Name,
		ThumbnailURL:  in.ThumbnailURL,
		LargeImageURL: in.LargeImageURL,
		Types:         append([]string(nil), in.Types...),
		Abilities:     append([]string(nil), in.Abilities...),
		Stats:         in.Stats,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := validation.ValidatePokemon(pk); err != nil {
		return domain.Pokemon{}, err
	}
	m.byID[pk.ID] = pk
	m.byName[pk.Name] = pk.ID
	m.order = append(m.order, pk.ID)
	return pk, nil
}

func (m *MemoryRepository) UpdateByID(ctx context.Context, id string, patch domain.PokemonPatch) (*domain.Pokemon, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, domain.NewInvalidIDError()
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.byID[id]
	if !ok {
		return nil, domain.NewNotFoundError("Pokemon")
	}
	next := patch.Apply(current)
	if next.Name != current.Name {
		if owner, taken := m.byName[next.Name]; taken && owner != id {
			return nil, domain.NewDuplicateNameError()
		}
	}
	if err := validation.ValidatePokemon(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = m.now()

	delete(m.byName, current.Name)
	m.byName[next.Name] = id
	m.byID[id] = next
	return clonePokemon(next), nil
}

func (m *MemoryRepository) DeleteByID(ctx context.Context, id string) error {
	if !primitive.IsValidObjectID(id) {
		return domain.NewInvalidIDError()
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	pk, ok := m.byID[id]
	if !ok {
		return domain.NewNotFoundError("Pokemon")
	}
	delete(m.byID, id)
	delete(m.byName, pk.Name)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func clonePokemon(pk domain.Pokemon) *domain.Pokemon {
	pk.Types = append([]string(nil), pk.Types...)
	pk.Abilities = append([]string(nil), pk.Abilities...)
	return &pk
}
