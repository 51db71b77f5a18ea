package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-status-exporter/internal/domain"
)

// SnapshotRepository stores the results of an export run.
type SnapshotRepository interface {
	Save(ctx context.Context, snap domain.Snapshot) error
}

type snapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository instantiates repository.
func NewSnapshotRepository(pool *pgxpool.Pool) SnapshotRepository {
	return &snapshotRepository{pool: pool}
}

func (r *snapshotRepository) Save(ctx context.Context, snap domain.Snapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const runQuery = `
        INSERT INTO export_runs (run_id, requested, fetched, failed, started_at, finished_at)
        VALUES ($1,$2,$3,$4,$5,$6)`
	if _, err := tx.Exec(ctx, runQuery,
		snap.RunID,
		snap.Requested,
		snap.Fetched(),
		snap.Failed,
		snap.StartedAt,
		snap.FinishedAt,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	ticketRows, err := TicketRows(snap)
	if err != nil {
		return err
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"ticket_statuses"},
		[]string{"run_id", "position", "ticket_id", "status", "payload"},
		pgx.CopyFromRows(ticketRows),
	); err != nil {
		return fmt.Errorf("copy ticket statuses: %w", err)
	}

	batch := &pgx.Batch{}
	for _, sc := range snap.StatusCounts {
		batch.Queue(`INSERT INTO status_counts (run_id, status, count) VALUES ($1,$2,$3)`, snap.RunID, sc.Status, sc.Count)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert status counts: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// TicketRows converts the snapshot tickets into ticket_statuses rows.
func TicketRows(snap domain.Snapshot) ([][]any, error) {
	rows := make([][]any, 0, len(snap.Tickets))
	for i, t := range snap.Tickets {
		payload, err := json.Marshal(t.Fields)
		if err != nil {
			return nil, fmt.Errorf("encode payload for ticket %s: %w", t.ID, err)
		}
		rows = append(rows, []any{snap.RunID, i, t.ID, t.Status, payload})
	}
	return rows, nil
}
