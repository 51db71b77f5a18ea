package dto

import (
	"github.com/spec-kit/ticket-status-exporter/internal/observability"
	"github.com/spec-kit/ticket-status-exporter/internal/service"
)

// StatusCountResponse is one row of the status tally.
type StatusCountResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// ProgressResponse describes the running export.
type ProgressResponse struct {
	RunID        string                   `json:"run_id"`
	Requested    int                      `json:"requested"`
	Fetched      int                      `json:"fetched"`
	Failed       int                      `json:"failed"`
	Remaining    int                      `json:"remaining"`
	Drained      bool                     `json:"drained"`
	StatusCounts []StatusCountResponse    `json:"status_counts"`
	Fetches      observability.FetchStats `json:"fetches"`
}

// NewProgressResponse maps service progress into the API shape.
func NewProgressResponse(p service.Progress, stats observability.FetchStats) ProgressResponse {
	counts := make([]StatusCountResponse, 0, len(p.StatusCounts))
	for _, sc := range p.StatusCounts {
		counts = append(counts, StatusCountResponse{Status: sc.Status, Count: sc.Count})
	}
	return ProgressResponse{
		RunID:        p.RunID,
		Requested:    p.Requested,
		Fetched:      p.Fetched,
		Failed:       p.Failed,
		Remaining:    p.Requested - p.Fetched - p.Failed,
		Drained:      p.Drained,
		StatusCounts: counts,
		Fetches:      stats,
	}
}
