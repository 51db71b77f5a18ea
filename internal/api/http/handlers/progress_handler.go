package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-status-exporter/internal/api/dto"
	"github.com/spec-kit/ticket-status-exporter/internal/observability"
	"github.com/spec-kit/ticket-status-exporter/internal/service"
)

// ProgressSource exposes the state of the running export.
type ProgressSource interface {
	Progress() service.Progress
}

// ProgressHandler serves the export progress.
type ProgressHandler struct {
	source  ProgressSource
	metrics *observability.Metrics
}

// NewProgressHandler returns a new handler instance.
func NewProgressHandler(source ProgressSource, metrics *observability.Metrics) *ProgressHandler {
	return &ProgressHandler{source: source, metrics: metrics}
}

// Get returns counters and status tallies for the run.
func (h *ProgressHandler) Get(c *fiber.Ctx) error {
	return c.JSON(dto.NewProgressResponse(h.source.Progress(), h.metrics.FetchStats()))
}

// Counts returns only the status tally, in first-seen order.
func (h *ProgressHandler) Counts(c *fiber.Ctx) error {
	resp := dto.NewProgressResponse(h.source.Progress(), observability.FetchStats{})
	return c.JSON(resp.StatusCounts)
}
