package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pokedex/src/app/http/response"
	"pokedex/src/core/domain"
	"pokedex/src/core/usecase"
	"pokedex/src/core/validation"
)

// PokemonHandler serves the /pokemon resource.
type PokemonHandler struct {
	svc *usecase.PokemonService
}

func NewPokemonHandler(svc *usecase.PokemonService) *PokemonHandler {
	return &PokemonHandler{svc: svc}
}

// List returns a filtered page of summaries.
// GET /pokemon?types=fire,water&abilities=blaze&page=1&limit=10
func (h *PokemonHandler) List(c *gin.Context) {
	q, err := validation.ParseListQuery(c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}
	list, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, list)
}

// Get returns one Pokemon.
// GET /pokemon/:id
func (h *PokemonHandler) Get(c *gin.Context) {
	pk, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, pk)
}

// Create stores a new Pokemon.
// POST /pokemon
func (h *PokemonHandler) Create(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	in, err := validation.DecodeCreate(body)
	if err != nil {
		_ = c.Error(err)
		return
	}
	pk, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Created(c, pk)
}

// Update applies a partial update.
// PUT /pokemon/:id
func (h *PokemonHandler) Update(c *gin.Context) {
	id := c.Param("id")
	body, err := readBody(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	patch, err := validation.DecodeUpdate(body)
	if err != nil {
		_ = c.Error(err)
		return
	}
	pk, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, pk)
}

// Delete removes a Pokemon.
// DELETE /pokemon/:id
func (h *PokemonHandler) Delete(c *gin.Context) {
	res, err := h.svc.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, res)
}

func readBody(c *gin.Context) ([]byte, error) {
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.NewBadRequestError("Request body too large")
		}
		return nil, domain.NewBadRequestError("Invalid request body")
	}
	return body, nil
}
