package service

import (
	"context"

	"github.com/spec-kit/ticket-status-exporter/internal/domain"
	"github.com/spec-kit/ticket-status-exporter/internal/repository"
)

// SnapshotSink receives the finished snapshot in addition to the CSV files.
// Sink failures are logged and never fail the run.
type SnapshotSink interface {
	Name() string
	Save(ctx context.Context, snap domain.Snapshot) error
}

type postgresSink struct {
	repo repository.SnapshotRepository
}

// NewPostgresSink stores snapshots through a SnapshotRepository.
func NewPostgresSink(repo repository.SnapshotRepository) SnapshotSink {
	return &postgresSink{repo: repo}
}

func (p *postgresSink) Name() string { return "postgres" }

func (p *postgresSink) Save(ctx context.Context, snap domain.Snapshot) error {
	return p.repo.Save(ctx, snap)
}

type redisSink struct {
	repo repository.StatusCacheRepository
}

// NewRedisSink publishes status counts through a StatusCacheRepository.
func NewRedisSink(repo repository.StatusCacheRepository) SnapshotSink {
	return &redisSink{repo: repo}
}

func (r *redisSink) Name() string { return "redis" }

func (r *redisSink) Save(ctx context.Context, snap domain.Snapshot) error {
	return r.repo.SaveCounts(ctx, snap.RunID, snap.StatusCounts)
}
