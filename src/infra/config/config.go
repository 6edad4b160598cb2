// Package config handles application configuration via environment variables.
// It uses kelseyhightower/envconfig for parsing and provides sensible defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Supported storage drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all application configuration.
// Values are loaded from environment variables with the prefix "APP".
// Example: APP_PORT=8080, APP_DB_URI=mongodb://localhost:27017
type Config struct {
	// Server configuration (embedded to flatten env vars)
	Server ServerConfig

	// Database configuration (embedded to flatten env vars)
	Database DatabaseConfig

	// Logging configuration (embedded to flatten env vars)
	Log LogConfig

	// Seed configuration
	Seed SeedConfig

	// RateLimit configuration
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// Host is the HTTP server host (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// BasePath prefixes every API route (default: /api/v1)
	BasePath string `envconfig:"BASE_PATH" default:"/api/v1"`

	// ReadTimeout is the maximum duration for reading the entire request (default: 10s)
	ReadTimeout time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`

	// WriteTimeout is the maximum duration before timing out writes of the response (default: 30s)
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`

	// ShutdownTimeout is the maximum duration to wait for active connections to finish (default: 30s)
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	// MaxBodyBytes caps request bodies (default: 10MiB)
	MaxBodyBytes int64 `envconfig:"MAX_BODY_BYTES" default:"10485760"`
}

// DatabaseConfig holds storage connection settings.
type DatabaseConfig struct {
	// Driver selects the storage backend: mongo, postgres or memory (default: mongo)
	Driver string `envconfig:"DB_DRIVER" default:"mongo"`

	// URI is the connection string for the selected driver
	URI string `envconfig:"DB_URI" default:"mongodb://localhost:27017"`

	// Name is the database name used by the mongo driver (default: pokedex)
	Name string `envconfig:"DB_NAME" default:"pokedex"`

	// Collection is the collection (mongo) or table (postgres) name (default: pokemons)
	Collection string `envconfig:"DB_COLLECTION" default:"pokemons"`

	// ConnectTimeout bounds the initial connect and ping (default: 10s)
	ConnectTimeout time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"10s"`

	// MaxPoolSize is the maximum number of open connections (default: 25)
	MaxPoolSize int `envconfig:"DB_MAX_POOL_SIZE" default:"25"`

	// MinPoolSize is the number of idle connections kept open (default: 2)
	MinPoolSize int `envconfig:"DB_MIN_POOL_SIZE" default:"2"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is the log level: debug, info, warn, error (default: info)
	Level string `envconfig:"LOG_LEVEL" default:"info"`

	// Format is the log format: json, text, plain (default: json)
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// SeedConfig controls seeding an empty collection from PokeAPI at boot.
type SeedConfig struct {
	// Enabled turns boot-time seeding on (default: true)
	Enabled bool `envconfig:"SEED_ENABLED" default:"true"`

	// BaseURL is the PokeAPI root (default: https://pokeapi.co/api/v2)
	BaseURL string `envconfig:"SEED_BASE_URL" default:"https://pokeapi.co/api/v2"`

	// Limit is how many species to fetch (default: 150)
	Limit int `envconfig:"SEED_LIMIT" default:"150"`

	// Concurrency bounds parallel detail requests (default: 10)
	Concurrency int `envconfig:"SEED_CONCURRENCY" default:"10"`

	// Timeout bounds the whole seed run (default: 2m)
	Timeout time.Duration `envconfig:"SEED_TIMEOUT" default:"2m"`
}

// RateLimitConfig configures per-client request throttling.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client; 0 disables limiting (default: 0)
	RequestsPerSecond float64 `envconfig:"RATE_LIMIT_RPS" default:"0"`

	// Burst is the bucket size (default: 20)
	Burst int `envconfig:"RATE_LIMIT_BURST" default:"20"`
}

// Enabled reports whether rate limiting is active.
func (c RateLimitConfig) Enabled() bool {
	return c.RequestsPerSecond > 0 && c.Burst > 0
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case DriverMongo, DriverPostgres:
		if c.Database.URI == "" {
			return fmt.Errorf("APP_DB_URI is required for driver %q", c.Database.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Seed.Enabled && c.Seed.Limit <= 0 {
		return fmt.Errorf("seed limit must be positive, got %d", c.Seed.Limit)
	}
	return nil
}

// Load reads configuration from environment variables.
// It returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	var cfg Config

	// Load each config section separately to flatten env var names
	// This allows env vars like APP_PORT instead of APP_SERVER_PORT
	if err := envconfig.Process("APP", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to load log config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Seed); err != nil {
		return nil, fmt.Errorf("failed to load seed config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.RateLimit); err != nil {
		return nil, fmt.Errorf("failed to load rate limit config: %w", err)
	}

	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
