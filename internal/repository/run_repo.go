package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solar-catalog-api/internal/model"
	"solar-catalog-api/internal/pipeline"
)

// RunRepo persists whole pipeline runs and serves their price reports.
type RunRepo struct {
	db *pgxpool.Pool
}

func NewRunRepo(db *pgxpool.Pool) *RunRepo {
	return &RunRepo{db: db}
}

// SaveRun writes the run's SKUs, kits, manufacturers, rejects and registry in
// a single transaction.
func (r *RunRepo) SaveRun(ctx context.Context, out *pipeline.Output, registry *model.SkuRegistry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO pipeline_run (run_id, started_at, finished_at, stats, report)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id) DO UPDATE SET
			finished_at = EXCLUDED.finished_at,
			stats = EXCLUDED.stats,
			report = EXCLUDED.report
	`, out.RunID, out.Stats.StartedAt, out.Stats.FinishedAt, out.Stats, out.Report)

	for _, m := range out.Manufacturers {
		queueManufacturerUpsert(batch, m)
	}
	for _, s := range out.Skus {
		queueSkuUpsert(batch, s, out.RunID)
	}
	for _, k := range out.Kits {
		queueKitUpsert(batch, k, out.RunID)
	}
	for _, rj := range out.Rejects {
		queueReject(batch, out.RunID, rj)
	}
	if registry != nil {
		queueRegistry(batch, registry)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to persist run %s: %w", out.RunID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", out.RunID, err)
	}
	return nil
}

// LatestReport returns the price report of the most recent run, or nil when
// no run has been stored.
func (r *RunRepo) LatestReport(ctx context.Context) (*model.PriceComparisonReport, error) {
	query := `
		SELECT report
		FROM pipeline_run
		ORDER BY finished_at DESC
		LIMIT 1
	`

	var report model.PriceComparisonReport
	err := r.db.QueryRow(ctx, query).Scan(&report)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
