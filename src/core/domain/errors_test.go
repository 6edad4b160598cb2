package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"pokedex/src/core/domain"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    domain.Kind
		message string
		check   func(error) bool
	}{
		{"not found", domain.NewNotFoundError("Pokemon"), domain.KindNotFound, "Pokemon not found", domain.IsNotFound},
		{"bad request", domain.NewBadRequestError("nope"), domain.KindBadRequest, "nope", domain.IsBadRequest},
		{"validation", domain.NewValidationError("Name is required"), domain.KindValidation, "Name is required", domain.IsValidationError},
		{"invalid id", domain.NewInvalidIDError(), domain.KindInvalidID, "Invalid ID format", domain.IsInvalidID},
		{"duplicate name", domain.NewDuplicateNameError(), domain.KindBadRequest, "A Pokémon with this name already exists", domain.IsBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, domain.KindOf(tt.err))
			assert.Equal(t, tt.message, tt.err.Error())
			assert.True(t, tt.check(tt.err))

			wrapped := fmt.Errorf("layer: %w", tt.err)
			assert.Equal(t, tt.kind, domain.KindOf(wrapped))
			assert.True(t, tt.check(wrapped))
		})
	}
}

func TestValidationErrorJoinsViolations(t *testing.T) {
	err := domain.NewValidationError("Name is required", "Types are required")
	assert.Equal(t, "Name is required, Types are required", err.Error())
	assert.Equal(t, []string{"Name is required", "Types are required"}, err.Violations)

	assert.Equal(t, "Validation failed", domain.NewValidationError().Error())
}

func TestKindOfPlainError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, domain.Kind(0), domain.KindOf(err))
	assert.False(t, domain.IsNotFound(err))
	assert.False(t, domain.IsValidationError(err))
	assert.False(t, domain.IsBadRequest(err))
	assert.False(t, domain.IsInvalidID(err))
}

func TestKindsDoNotCrossMatch(t *testing.T) {
	err := domain.NewInvalidIDError()
	assert.False(t, domain.IsValidationError(err))
	assert.False(t, domain.IsNotFound(err))
	assert.False(t, errors.Is(err, domain.ErrBadRequest))
}
