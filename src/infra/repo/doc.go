// Package repo contains storage implementations of the repository ports.
//
// This package implements ports.PokemonRepository three ways:
//   - MongoRepository: the primary document store (one collection)
//   - PostgresRepository: the same contract on a JSONB table
//   - MemoryRepository: an in-process store for quick start and tests
//
// All repositories receive their connection via constructor injection and
// translate driver errors into domain errors, so the service and HTTP layers
// never see driver types.
//
// Example:
//
//	mg, err := db.NewMongo(ctx, cfg.Database, log)
//	if err != nil {
//	    return err
//	}
//	pokemonRepo := repo.NewMongoRepository(mg, cfg.Database.Collection, log)
//	if err := pokemonRepo.EnsureSchema(ctx); err != nil {
//	    return err
//	}
package repo
