// Package db provides storage connection management.
//
// This package is responsible for:
//   - MongoDB client initialization (primary document store)
//   - PostgreSQL connection pool initialization (alternate JSONB store)
//   - Connection health checks
//
// Connections are opened once in main and closed during shutdown; repositories
// receive them by constructor injection.
//
// Example usage:
//
//	mg, err := db.NewMongo(ctx, cfg.Database, log)
//	if err != nil {
//	    return err
//	}
//	defer mg.Close(context.Background())
package db
