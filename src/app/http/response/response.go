// Package response defines consistent HTTP response structures.
// All API responses should use these types for consistency.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pokedex/src/core/domain"
)

// InternalMessage is the only message a client sees for unclassified failures.
const InternalMessage = "Internal server error"

// Success represents a successful response with data.
type Success struct {
	Data any `json:"data"`
}

// Error represents an error response.
type Error struct {
	Error string `json:"error"`
}

// Paginated represents a paginated list response.
type Paginated struct {
	Data       []domain.PokemonSummary `json:"data"`
	Pagination domain.Pagination       `json:"pagination"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Success{Data: data})
}

// Created sends a 201 response with the created resource.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Success{Data: data})
}

// List sends a 200 response with a page of results.
func List(c *gin.Context, list *domain.PokemonList) {
	data := list.Data
	if data == nil {
		data = []domain.PokemonSummary{}
	}
	c.JSON(http.StatusOK, Paginated{Data: data, Pagination: list.Pagination})
}

// Fail aborts the request with the given status and message.
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Error{Error: message})
}

// StatusFor returns the HTTP status for err and the message safe to show.
// ok is false when err is not a domain error and must be treated as internal.
func StatusFor(err error) (status int, message string, ok bool) {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound, err.Error(), true
	case domain.KindBadRequest:
		return http.StatusBadRequest, err.Error(), true
	case domain.KindValidation, domain.KindInvalidID:
		return http.StatusUnprocessableEntity, err.Error(), true
	default:
		return http.StatusInternalServerError, InternalMessage, false
	}
}

// FromDomainError converts a domain error to an appropriate HTTP response.
// It reports whether err was classified.
func FromDomainError(c *gin.Context, err error) bool {
	status, message, ok := StatusFor(err)
	Fail(c, status, message)
	return ok
}
