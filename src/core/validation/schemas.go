// Package validation holds the request schemas for the Pokemon API and turns
// raw request bodies and query strings into validated domain values.
//
// Schemas are declared as go-playground/validator struct tags. A failed
// validation reports every violated field at once as a single
// domain.KindValidation error whose message joins the individual messages.
package validation

// StatsRequest is the stats object of a create or update body. When present,
// all six stats are required.
type StatsRequest struct {
	HP             *int `json:"hp" validate:"required,min=1"`
	Attack         *int `json:"attack" validate:"required,min=1"`
	Defense        *int `json:"defense" validate:"required,min=1"`
	SpecialAttack  *int `json:"specialAttack" validate:"required,min=1"`
	SpecialDefense *int `json:"specialDefense" validate:"required,min=1"`
	Speed          *int `json:"speed" validate:"required,min=1"`
}

// CreatePokemonRequest is the create body. Every field is required.
type CreatePokemonRequest struct {
	Name          *string       `json:"name" validate:"required,min=1"`
	ThumbnailURL  *string       `json:"thumbnailUrl" validate:"required,min=1,httpurl"`
	LargeImageURL *string       `json:"largeImageUrl" validate:"required,min=1,httpurl"`
	Types         []string      `json:"types" validate:"required,min=1,dive,pokemontype"`
	Abilities     []string      `json:"abilities" validate:"required,min=1,dive,required"`
	Stats         *StatsRequest `json:"stats" validate:"required"`
}

// UpdatePokemonRequest is the partial update body. Absent fields are left
// untouched; present fields obey the same rules as on create.
type UpdatePokemonRequest struct {
	Name          *string       `json:"name" validate:"omitempty,min=1"`
	ThumbnailURL  *string       `json:"thumbnailUrl" validate:"omitempty,min=1,httpurl"`
	LargeImageURL *string       `json:"largeImageUrl" validate:"omitempty,min=1,httpurl"`
	Types         *[]string     `json:"types" validate:"omitempty,min=1,dive,pokemontype"`
	Abilities     *[]string     `json:"abilities" validate:"omitempty,min=1,dive,required"`
	Stats         *StatsRequest `json:"stats" validate:"omitempty"`
}

// ListQueryRequest is the list query after integer parsing.
type ListQueryRequest struct {
	Types     string `json:"types"`
	Abilities string `json:"abilities"`
	Page      *int   `json:"page" validate:"omitempty,min=1"`
	Limit     *int   `json:"limit" validate:"omitempty,min=1,max=100"`
}

// allowedQueryParams lists the only query keys accepted by the list endpoint.
var allowedQueryParams = map[string]bool{
	"types":     true,
	"abilities": true,
	"page":      true,
	"limit":     true,
}

// labels gives each field path the name used in client-facing messages.
var labels = map[string]string{
	"name":                 "Name",
	"thumbnailUrl":         "Thumbnail URL",
	"largeImageUrl":        "Large image URL",
	"types":                "Types",
	"abilities":            "Abilities",
	"stats":                "Stats",
	"stats.hp":             "HP",
	"stats.attack":         "Attack",
	"stats.defense":        "Defense",
	"stats.specialAttack":  "Special Attack",
	"stats.specialDefense": "Special Defense",
	"stats.speed":          "Speed",
	"page":                 "Page",
	"limit":                "Limit",
}

func label(path string) string {
	if l, ok := labels[path]; ok {
		return l
	}
	return path
}
