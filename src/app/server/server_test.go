package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokedex/src/core/domain"
	"pokedex/src/core/ports"
	"pokedex/src/infra/config"
	"pokedex/src/infra/repo"
)

const pokemonPath = "/api/v1/pokemon"

type failingHealth struct{}

func (failingHealth) Health(context.Context) error { return errors.New("down") }

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	store := repo.NewMemoryRepository()
	return newTestServerWith(t, store, map[string]ports.Repository{"database": store})
}

func newTestServerWith(t *testing.T, store ports.PokemonRepository, deps map[string]ports.Repository) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, BasePath: "/api/v1", MaxBodyBytes: 1 << 20},
		Log:    config.LogConfig{Level: "error", Format: "json"},
	}
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return New(cfg, log, store, deps).Router()
}

func request(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func pokemonBody(name string, types ...string) map[string]any {
	return map[string]any{
		"name":          name,
		"thumbnailUrl":  "https://img.example/" + name + ".png",
		"largeImageUrl": "https://img.example/" + name + "-large.png",
		"types":         types,
		"abilities":     []string{"Blaze"},
		"stats": map[string]int{
			"hp": 39, "attack": 52, "defense": 43,
			"specialAttack": 60, "specialDefense": 50, "speed": 65,
		},
	}
}

func create(t *testing.T, h http.Handler, name string, types ...string) map[string]any {
	t.Helper()
	w, out := request(t, h, http.MethodPost, pokemonPath, pokemonBody(name, types...))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return out["data"].(map[string]any)
}

func TestCreateAndGet(t *testing.T) {
	h := newTestServer(t)

	created := create(t, h, "Charmander", "FIRE")
	id := created["id"].(string)
	assert.Len(t, id, 24)
	assert.Equal(t, "Charmander", created["name"])
	assert.Equal(t, []any{"fire"}, created["types"])
	assert.Equal(t, []any{"blaze"}, created["abilities"])
	assert.NotEmpty(t, created["createdAt"])
	assert.NotEmpty(t, created["updatedAt"])

	w, out := request(t, h, http.MethodGet, pokemonPath+"/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, out["data"])
}

func TestCreateNormalizesPikachu(t *testing.T) {
	h := newTestServer(t)
	body := pokemonBody("Pikachu", "Electric")
	body["abilities"] = []string{"Static", " Lightning Rod "}

	w, out := request(t, h, http.MethodPost, pokemonPath, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := out["data"].(map[string]any)
	assert.Equal(t, []any{"electric"}, data["types"])
	assert.Equal(t, []any{"static", "lightning rod"}, data["abilities"])
}

func TestCreateValidation(t *testing.T) {
	h := newTestServer(t)

	w, out := request(t, h, http.MethodPost, pokemonPath, "{}")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Name is required, Thumbnail URL is required, Large image URL is required, Types are required, Abilities are required, Stats are required", out["error"])

	body := pokemonBody("mew", "psychic")
	body["types"] = []string{"cosmic"}
	w, out = request(t, h, http.MethodPost, pokemonPath, body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Invalid Pokemon type: cosmic", out["error"])

	w, out = request(t, h, http.MethodPost, pokemonPath, "{not json")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Invalid JSON body", out["error"])
}

func TestCreateDuplicateName(t *testing.T) {
	h := newTestServer(t)
	create(t, h, "pikachu", "electric")

	w, out := request(t, h, http.MethodPost, pokemonPath, pokemonBody("  pikachu ", "electric"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "A Pokémon with this name already exists", out["error"])
}

func TestConcurrentDuplicateCreate(t *testing.T) {
	h := newTestServer(t)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes = map[int]int{}
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			raw, _ := json.Marshal(pokemonBody("ditto", "normal"))
			req := httptest.NewRequest(http.MethodPost, pokemonPath, bytes.NewReader(raw))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			mu.Lock()
			codes[w.Code]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, codes[http.StatusCreated])
	assert.Equal(t, 9, codes[http.StatusBadRequest])
}

func TestGetErrors(t *testing.T) {
	h := newTestServer(t)

	w, out := request(t, h, http.MethodGet, pokemonPath+"/123", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Invalid ID format", out["error"])

	w, out = request(t, h, http.MethodGet, pokemonPath+"/65a1f0c2e4b0a1b2c3d4e5f6", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Pokemon not found", out["error"])
}

func TestListFilteringAndPagination(t *testing.T) {
	h := newTestServer(t)
	create(t, h, "charmander", "fire")
	create(t, h, "squirtle", "water")
	create(t, h, "charizard", "fire", "flying")
	create(t, h, "bulbasaur", "grass", "poison")

	w, out := request(t, h, http.MethodGet, pokemonPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out["data"], 4)
	assert.Equal(t, map[string]any{
		"currentPage": float64(1), "totalPages": float64(1), "totalItems": float64(4), "limit": float64(10),
	}, out["pagination"])

	first := out["data"].([]any)[0].(map[string]any)
	assert.ElementsMatch(t, []string{"id", "name", "types", "thumbnailUrl"}, keys(first))

	w, out = request(t, h, http.MethodGet, pokemonPath+"?types=FIRE", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"charmander", "charizard"}, names(out))

	w, out = request(t, h, http.MethodGet, pokemonPath+"?types=water,flying", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"squirtle", "charizard"}, names(out))

	w, out = request(t, h, http.MethodGet, pokemonPath+"?types=fire&abilities=overgrow", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, out["data"])
	assert.Equal(t, float64(0), out["pagination"].(map[string]any)["totalPages"])

	w, out = request(t, h, http.MethodGet, pokemonPath+"?page=2&limit=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"bulbasaur"}, names(out))
	assert.Equal(t, float64(2), out["pagination"].(map[string]any)["totalPages"])

	w, out = request(t, h, http.MethodGet, pokemonPath+"?page=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, out["data"])
}

func TestListHugePageIsEmpty(t *testing.T) {
	h := newTestServer(t)
	create(t, h, "charmander", "fire")
	create(t, h, "squirtle", "water")

	w, out := request(t, h, http.MethodGet, pokemonPath+"?page=9223372036854775807&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, out["data"])
	assert.Equal(t, float64(2), out["pagination"].(map[string]any)["totalItems"])
	assert.Equal(t, float64(1), out["pagination"].(map[string]any)["totalPages"])
}

func TestListRejectsBadQuery(t *testing.T) {
	h := newTestServer(t)

	w, out := request(t, h, http.MethodGet, fmt.Sprintf("%s?limit=%d", pokemonPath, domain.MaxLimit+1), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Limit must be less than or equal to 100", out["error"])

	w, out = request(t, h, http.MethodGet, pokemonPath+"?sort=name", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Unknown query parameter: sort", out["error"])
}

func TestUpdate(t *testing.T) {
	h := newTestServer(t)
	created := create(t, h, "charmander", "fire")
	create(t, h, "charmeleon", "fire")
	id := created["id"].(string)

	w, out := request(t, h, http.MethodPut, pokemonPath+"/"+id, map[string]any{"abilities": []string{"Solar-Power"}})
	require.Equal(t, http.StatusOK, w.Code)
	data := out["data"].(map[string]any)
	assert.Equal(t, []any{"solar-power"}, data["abilities"])
	assert.Equal(t, "charmander", data["name"])
	assert.Equal(t, created["createdAt"], data["createdAt"])

	w, out = request(t, h, http.MethodPut, pokemonPath+"/"+id, map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, data, out["data"])

	w, out = request(t, h, http.MethodPut, pokemonPath+"/"+id, map[string]any{"name": "charmeleon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "A Pokémon with this name already exists", out["error"])

	w, out = request(t, h, http.MethodPut, pokemonPath+"/"+id, map[string]any{"name": "charmander"})
	assert.Equal(t, http.StatusOK, w.Code, "keeping its own name is not a duplicate")

	w, out = request(t, h, http.MethodPut, pokemonPath+"/"+id, map[string]any{"stats": map[string]int{"hp": 0}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, out["error"], "HP must be greater than or equal to 1")

	w, _ = request(t, h, http.MethodPut, pokemonPath+"/65a1f0c2e4b0a1b2c3d4e5f6", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteTwice(t *testing.T) {
	h := newTestServer(t)
	id := create(t, h, "gastly", "ghost", "poison")["id"].(string)

	w, out := request(t, h, http.MethodDelete, pokemonPath+"/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"message": "Pokemon deleted successfully"}, out["data"])

	w, out = request(t, h, http.MethodDelete, pokemonPath+"/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Pokemon not found", out["error"])

	w, _ = request(t, h, http.MethodGet, pokemonPath+"/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouteNotFound(t *testing.T) {
	h := newTestServer(t)

	w, out := request(t, h, http.MethodGet, "/api/v2/pokemon", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", out["error"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, _ = request(t, h, http.MethodPatch, pokemonPath+"/65a1f0c2e4b0a1b2c3d4e5f6", map[string]any{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)

	w, out := request(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", out["status"])

	w, out = request(t, h, http.MethodGet, "/health/detailed", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", out["components"].(map[string]any)["database"].(map[string]any)["status"])

	down := newTestServerWith(t, repo.NewMemoryRepository(), map[string]ports.Repository{"database": failingHealth{}})
	w, out = request(t, down, http.MethodGet, "/health/detailed", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", out["status"])
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func names(body map[string]any) []string {
	var out []string
	for _, item := range body["data"].([]any) {
		out = append(out, fmt.Sprint(item.(map[string]any)["name"]))
	}
	return out
}
