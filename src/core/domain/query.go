package domain

import (
	"math"
	"strings"
)

const (
	// DefaultPage is used when a list request omits page.
	DefaultPage = 1

	// DefaultLimit is used when a list request omits limit.
	DefaultLimit = 10

	// MaxLimit is the largest page size a client may request.
	MaxLimit = 100
)

// PokemonFilter is a storage-neutral predicate. Within a field the values are
// OR-ed; the two fields are AND-ed when both are set.
type PokemonFilter struct {
	Types     []string
	Abilities []string
}

// IsEmpty reports whether the filter matches everything.
func (f PokemonFilter) IsEmpty() bool {
	return len(f.Types) == 0 && len(f.Abilities) == 0
}

// Matches evaluates the filter against a stored record.
func (f PokemonFilter) Matches(pk Pokemon) bool {
	if len(f.Types) > 0 && !containsAny(pk.Types, f.Types) {
		return false
	}
	if len(f.Abilities) > 0 && !containsAny(pk.Abilities, f.Abilities) {
		return false
	}
	return true
}

func containsAny(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// BuildFilter turns the comma-joined types and abilities query values into a
// filter. Values are trimmed and lowercased; empty segments are dropped.
func BuildFilter(types, abilities string) PokemonFilter {
	return PokemonFilter{
		Types:     splitLower(types),
		Abilities: splitLower(abilities),
	}
}

func splitLower(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Page is a resolved page request.
type Page struct {
	Number int
	Limit  int
}

// NewPage resolves optional page and limit values, applying defaults.
// Callers validate ranges beforehand.
func NewPage(page, limit *int) Page {
	p := Page{Number: DefaultPage, Limit: DefaultLimit}
	if page != nil {
		p.Number = *page
	}
	if limit != nil {
		p.Limit = *limit
	}
	return p
}

// Skip is the number of records preceding this page. It saturates at
// math.MaxInt64 so a huge page number yields an empty page, not a wrapped offset.
func (p Page) Skip() int64 {
	if p.Number <= 1 || p.Limit <= 0 {
		return 0
	}
	n, l := int64(p.Number-1), int64(p.Limit)
	if n > math.MaxInt64/l {
		return math.MaxInt64
	}
	return n * l
}

// Pagination describes a page of results.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	Limit       int   `json:"limit"`
}

// BuildPagination computes the descriptor with totalPages = ceil(totalItems/limit).
func BuildPagination(totalItems int64, page Page) Pagination {
	var totalPages int64
	if page.Limit > 0 {
		limit := int64(page.Limit)
		totalPages = (totalItems + limit - 1) / limit
	}
	return Pagination{
		CurrentPage: page.Number,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		Limit:       page.Limit,
	}
}

// ListQuery is a validated list request.
type ListQuery struct {
	Types     string
	Abilities string
	Page      *int
	Limit     *int
}

// PokemonList is the result of a list request.
type PokemonList struct {
	Data       []PokemonSummary `json:"data"`
	Pagination Pagination       `json:"pagination"`
}
