package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"pokedex/src/infra/config"
)

const defaultConnectTimeout = 10 * time.Second

// Mongo wraps a mongo client and the application database.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
	log    *slog.Logger
}

// NewMongo connects to cfg.URI and verifies the connection with a ping.
func NewMongo(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout(cfg))
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(uint64(cfg.MaxPoolSize)).
		SetMinPoolSize(uint64(cfg.MinPoolSize)).
		SetConnectTimeout(connectTimeout(cfg))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	log.Info("database connection established",
		"driver", config.DriverMongo,
		"database", cfg.Name,
	)

	return &Mongo{
		Client: client,
		DB:     client.Database(cfg.Name),
		log:    log,
	}, nil
}

func connectTimeout(cfg config.DatabaseConfig) time.Duration {
	if cfg.ConnectTimeout <= 0 {
		return defaultConnectTimeout
	}
	return cfg.ConnectTimeout
}

// Close disconnects the client.
// Call this during graceful shutdown.
func (m *Mongo) Close(ctx context.Context) {
	if m.Client == nil {
		return
	}
	if err := m.Client.Disconnect(ctx); err != nil {
		m.log.Error("failed to close database connection", "error", err)
		return
	}
	m.log.Info("database connection closed")
}

// Health checks if the primary is reachable.
func (m *Mongo) Health(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}
