// Package main is the entry point for the Pokedex API server.
// It initializes all dependencies and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"pokedex/src/app/server"
	"pokedex/src/core/ports"
	"pokedex/src/core/usecase"
	"pokedex/src/infra/config"
	"pokedex/src/infra/db"
	"pokedex/src/infra/logger"
	"pokedex/src/infra/pokeapi"
	"pokedex/src/infra/repo"
)

func main() {
	if err := run(); err != nil {
		log.Printf("fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log)
	log.Info("starting application",
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
		"log_level", cfg.Log.Level,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pokemonRepo, deps, closeDB, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	if cfg.Seed.Enabled {
		go seed(ctx, cfg.Seed, pokemonRepo, logger.WithComponent(log, "seed"))
	}

	srv := server.New(cfg, log, pokemonRepo, deps)

	// Run blocks until shutdown signal is received
	return srv.Run()
}

// openStorage connects the configured backend and prepares its schema.
func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (ports.PokemonRepository, map[string]ports.Repository, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		mg, err := db.NewMongo(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, nil, err
		}
		r := repo.NewMongoRepository(mg, cfg.Database.Collection, log)
		if err := r.EnsureSchema(ctx); err != nil {
			mg.Close(context.Background())
			return nil, nil, nil, err
		}
		return r, map[string]ports.Repository{"database": mg}, func() { mg.Close(context.Background()) }, nil

	case config.DriverPostgres:
		pg, err := db.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, nil, err
		}
		r := repo.NewPostgresRepository(pg, cfg.Database.Collection, log)
		if err := r.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, nil, err
		}
		return r, map[string]ports.Repository{"database": pg}, pg.Close, nil

	case config.DriverMemory:
		r := repo.NewMemoryRepository()
		return r, map[string]ports.Repository{"database": r}, func() {}, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

// seed fills an empty collection in the background. Failures are logged and
// never stop the server.
func seed(ctx context.Context, cfg config.SeedConfig, r ports.PokemonRepository, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	svc := usecase.NewSeedService(r, pokeapi.New(cfg, log), cfg.Limit, log)
	if _, err := svc.SeedIfEmpty(ctx); err != nil {
		log.Error("seeding failed", "error", err)
	}
}
