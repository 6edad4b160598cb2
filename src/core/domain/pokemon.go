package domain

import (
	"strings"
	"time"
)

// PokemonTypes is the closed set of valid elemental types.
var PokemonTypes = []string{
	"normal", "fire", "water", "electric", "grass", "ice", "fighting", "poison",
	"ground", "flying", "psychic", "bug", "rock", "ghost", "dragon", "dark",
	"steel", "fairy",
}

// IsValidType reports whether t (already lowercased) is one of PokemonTypes.
func IsValidType(t string) bool {
	for _, v := range PokemonTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Stats holds the six base stats. Every value must be at least 1.
type Stats struct {
	HP             int `json:"hp"`
	Attack         int `json:"attack"`
	Defense        int `json:"defense"`
	SpecialAttack  int `json:"specialAttack"`
	SpecialDefense int `json:"specialDefense"`
	Speed          int `json:"speed"`
}

// Pokemon is the stored resource.
type Pokemon struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ThumbnailURL  string    `json:"thumbnailUrl"`
	LargeImageURL string    `json:"largeImageUrl"`
	Types         []string  `json:"types"`
	Abilities     []string  `json:"abilities"`
	Stats         Stats     `json:"stats"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PokemonSummary is the projection returned by list queries.
type PokemonSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Types        []string `json:"types"`
	ThumbnailURL string   `json:"thumbnailUrl"`
}

// PokemonInput carries every field needed to create a Pokemon.
type PokemonInput struct {
	Name          string
	ThumbnailURL  string
	LargeImageURL string
	Types         []string
	Abilities     []string
	Stats         Stats
}

// PokemonPatch carries a partial update. Nil fields are left untouched.
type PokemonPatch struct {
	Name          *string
	ThumbnailURL  *string
	LargeImageURL *string
	Types         []string
	Abilities     []string
	Stats         *Stats
}

// IsEmpty reports whether the patch changes nothing.
func (p PokemonPatch) IsEmpty() bool {
	return p.Name == nil && p.ThumbnailURL == nil && p.LargeImageURL == nil &&
		p.Types == nil && p.Abilities == nil && p.Stats == nil
}

// Apply returns a copy of pk with the patch merged in.
func (p PokemonPatch) Apply(pk Pokemon) Pokemon {
	if p.Name != nil {
		pk.Name = *p.Name
	}
	if p.ThumbnailURL != nil {
		pk.ThumbnailURL = *p.ThumbnailURL
	}
	if p.LargeImageURL != nil {
		pk.LargeImageURL = *p.LargeImageURL
	}
	if p.Types != nil {
		pk.Types = append([]string(nil), p.Types...)
	}
	if p.Abilities != nil {
		pk.Abilities = append([]string(nil), p.Abilities...)
	}
	if p.Stats != nil {
		pk.Stats = *p.Stats
	}
	return pk
}

// NormalizeTypes lowercases every type.
func NormalizeTypes(types []string) []string {
	if types == nil {
		return nil
	}
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = strings.ToLower(strings.TrimSpace(t))
	}
	return out
}

// NormalizeAbilities trims and lowercases every ability.
func NormalizeAbilities(abilities []string) []string {
	if abilities == nil {
		return nil
	}
	out := make([]string, len(abilities))
	for i, a := range abilities {
		out[i] = strings.ToLower(strings.TrimSpace(a))
	}
	return out
}

// NormalizeInput applies name trimming and array lowercasing to a create input.
func NormalizeInput(in PokemonInput) PokemonInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Types = NormalizeTypes(in.Types)
	in.Abilities = NormalizeAbilities(in.Abilities)
	return in
}

// NormalizePatch applies the same rules as NormalizeInput to supplied fields only.
func NormalizePatch(p PokemonPatch) PokemonPatch {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	p.Types = NormalizeTypes(p.Types)
	p.Abilities = NormalizeAbilities(p.Abilities)
	return p
}

// DeleteResult is returned after a successful delete.
type DeleteResult struct {
	Message string `json:"message"`
}
