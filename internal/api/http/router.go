package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-status-exporter/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Progress *handlers.ProgressHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/progress", cfg.Progress.Get)
	app.Get("/progress/counts", cfg.Progress.Counts)
}
