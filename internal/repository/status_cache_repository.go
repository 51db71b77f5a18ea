package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ticket-status-exporter/internal/domain"
)

// LatestRunKey points at the run id of the most recent export.
const LatestRunKey = "ticket-status:latest"

// StatusCacheRepository publishes status counts for other consumers.
type StatusCacheRepository interface {
	SaveCounts(ctx context.Context, runID string, counts []domain.StatusCount) error
	LoadCounts(ctx context.Context, runID string) (map[string]int, error)
}

type statusCacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatusCacheRepository instantiates repository. A zero ttl keeps keys forever.
func NewStatusCacheRepository(client *redis.Client, ttl time.Duration) StatusCacheRepository {
	return &statusCacheRepository{client: client, ttl: ttl}
}

// CountsKey returns the hash key holding the counts of a run.
func CountsKey(runID string) string {
	return fmt.Sprintf("ticket-status:%s:counts", runID)
}

func (r *statusCacheRepository) SaveCounts(ctx context.Context, runID string, counts []domain.StatusCount) error {
	key := CountsKey(runID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(counts) > 0 {
			values := make([]any, 0, len(counts)*2)
			for _, sc := range counts {
				values = append(values, sc.Status, sc.Count)
			}
			pipe.HSet(ctx, key, values...)
			if r.ttl > 0 {
				pipe.Expire(ctx, key, r.ttl)
			}
		}
		pipe.Set(ctx, LatestRunKey, runID, r.ttl)
		return nil
	})
	return err
}

func (r *statusCacheRepository) LoadCounts(ctx context.Context, runID string) (map[string]int, error) {
	raw, err := r.client.HGetAll(ctx, CountsKey(runID)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(raw))
	for status, v := range raw {
		var n int
		if _, err := fmt.Sscan(v, &n); err != nil {
			return nil, fmt.Errorf("parse count for %q: %w", status, err)
		}
		out[status] = n
	}
	return out, nil
}
