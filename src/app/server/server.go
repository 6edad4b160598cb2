// Package server provides HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"pokedex/src/app/http/handler"
	"pokedex/src/app/http/response"
	"pokedex/src/app/middleware"
	"pokedex/src/core/ports"
	"pokedex/src/core/usecase"
	"pokedex/src/infra/config"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg    *config.Config
	log    *slog.Logger
	router *gin.Engine
	http   *http.Server

	// Handlers
	healthHandler  *handler.HealthHandler
	pokemonHandler *handler.PokemonHandler
}

// New creates a new Server with all dependencies wired up. deps lists the
// components reported by /health/detailed.
func New(cfg *config.Config, log *slog.Logger, repo ports.PokemonRepository, deps map[string]ports.Repository) *Server {
	// Set Gin mode based on log level
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	router := gin.New()

	s := &Server{
		cfg:            cfg,
		log:            log,
		router:         router,
		healthHandler:  handler.NewHealthHandler(usecase.NewHealthService(log, deps)),
		pokemonHandler: handler.NewPokemonHandler(usecase.NewPokemonService(repo, log)),
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.setupHTTPServer()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	// Recovery first so it sees panics from everything below it
	s.router.Use(middleware.Recovery(s.log))
	s.router.Use(middleware.RequestID(s.log))
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.Logging(s.log))
	if s.cfg.RateLimit.Enabled() {
		limiter := middleware.NewRateLimiter(s.cfg.RateLimit.RequestsPerSecond, s.cfg.RateLimit.Burst, 10*time.Minute)
		s.router.Use(middleware.RateLimit(limiter))
	}
	s.router.Use(middleware.BodyLimit(s.cfg.Server.MaxBodyBytes))
	// Last, so it runs right after the handler
	s.router.Use(middleware.ErrorHandler(s.log))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler.Health)
	s.router.GET("/health/detailed", s.healthHandler.DetailedHealth)

	api := s.router.Group("/" + strings.Trim(s.cfg.Server.BasePath, "/"))
	{
		pokemon := api.Group("/pokemon")
		pokemon.GET("", s.pokemonHandler.List)
		pokemon.POST("", s.pokemonHandler.Create)
		pokemon.GET("/:id", s.pokemonHandler.Get)
		pokemon.PUT("/:id", s.pokemonHandler.Update)
		pokemon.DELETE("/:id", s.pokemonHandler.Delete)
	}

	s.router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, "Route not found")
	})
}

// setupHTTPServer configures the underlying HTTP server.
func (s *Server) setupHTTPServer() {
	s.http = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
}

// Run starts the HTTP server and blocks until shutdown.
// It handles graceful shutdown on SIGINT/SIGTERM.
func (s *Server) Run() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	errCh := make(chan error, 1)

	go func() {
		s.log.Info("starting HTTP server",
			"addr", s.cfg.Server.Addr(),
			"base_path", s.cfg.Server.BasePath,
		)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		s.log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		return err
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	s.log.Info("shutting down server", "timeout", s.cfg.Server.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("server stopped gracefully")
	return nil
}

// Router returns the Gin router for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}
