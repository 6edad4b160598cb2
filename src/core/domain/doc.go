// Package domain contains the core domain model for the application.
//
// This package defines:
//   - Entities: the Pokemon resource and its stats
//   - Inputs: create payloads and partial update patches
//   - Query values: filters, page requests and pagination descriptors
//   - Domain Errors: a closed set of error kinds mapped to HTTP by the app layer
//
// Rules for this package:
//   - No external dependencies except the standard library
//   - No infrastructure concerns (database, HTTP, etc.)
//   - Normalization is explicit: callers invoke NormalizeInput / NormalizePatch
//     before persisting
//
// Example:
//
//	in := domain.NormalizeInput(domain.PokemonInput{
//	    Name:  "Pikachu",
//	    Types: []string{"Electric"},
//	})
//	// in.Types == []string{"electric"}
package domain
