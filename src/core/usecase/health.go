package usecase

import (
	"context"
	"log/slog"

	"pokedex/src/core/ports"
)

// HealthService reports the health of the application and its storage.
type HealthService struct {
	log  *slog.Logger
	deps map[string]ports.Repository
}

// NewHealthService creates a new HealthService. deps maps a component name
// (e.g. "database") to something that can report its health.
func NewHealthService(log *slog.Logger, deps map[string]ports.Repository) *HealthService {
	return &HealthService{
		log:  log,
		deps: deps,
	}
}

// HealthStatus represents the health of the application.
type HealthStatus struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// ComponentHealth represents the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Check performs a health check of all application components.
// Returns the overall health status.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:     "ok",
		Components: make(map[string]ComponentHealth),
	}

	for name, dep := range s.deps {
		if err := dep.Health(ctx); err != nil {
			s.log.Warn("health check failed", "component", name, "error", err)
			status.Status = "degraded"
			status.Components[name] = ComponentHealth{
				Status:  "unhealthy",
				Message: "unreachable",
			}
			continue
		}
		status.Components[name] = ComponentHealth{Status: "healthy"}
	}

	return status
}
