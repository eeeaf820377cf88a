package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solar-catalog-api/internal/model"
)

// RejectRepo handles database operations for ingest rejects
type RejectRepo struct {
	db *pgxpool.Pool
}

// NewRejectRepo creates a new ingest reject repository
func NewRejectRepo(db *pgxpool.Pool) *RejectRepo {
	return &RejectRepo{db: db}
}

// CountByReason returns the number of rejects per reason for a run.
func (r *RejectRepo) CountByReason(ctx context.Context, runID string) (map[string]int, error) {
	query := `
		SELECT reason, COUNT(*)
		FROM ingest_reject
		WHERE run_id = $1
		GROUP BY reason
	`

	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count rejects: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var reason string
		var n int
		if err := rows.Scan(&reason, &n); err != nil {
			return nil, fmt.Errorf("failed to scan reject count: %w", err)
		}
		counts[reason] = n
	}

	return counts, rows.Err()
}

func queueReject(batch *pgx.Batch, runID string, rj model.IngestReject) {
	batch.Queue(`
		INSERT INTO ingest_reject (run_id, category, product_id, distributor, reason, detail)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
	`, runID, string(rj.Category), rj.ProductID, rj.Distributor, rj.Reason, rj.Detail)
}
