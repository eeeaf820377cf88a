package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solar-catalog-api/internal/model"
)

// RegistryRepo persists the {category, original_id} -> SKU registry.
type RegistryRepo struct {
	db *pgxpool.Pool
}

func NewRegistryRepo(db *pgxpool.Pool) *RegistryRepo {
	return &RegistryRepo{db: db}
}

// Load reads the whole registry.
func (r *RegistryRepo) Load(ctx context.Context) (*model.SkuRegistry, error) {
	rows, err := r.db.Query(ctx, `SELECT category, original_id, sku FROM sku_registry`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.RegistryEntry
	for rows.Next() {
		var e model.RegistryEntry
		if err := rows.Scan(&e.Category, &e.OriginalID, &e.SkuID); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return model.NewSkuRegistry(entries), nil
}

// Save upserts every registry entry.
func (r *RegistryRepo) Save(ctx context.Context, registry *model.SkuRegistry) error {
	batch := &pgx.Batch{}
	queueRegistry(batch, registry)
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save sku registry: %w", err)
	}
	return nil
}

// Bind returns a context-bound view usable as the pipeline's registry store.
func (r *RegistryRepo) Bind(ctx context.Context) *BoundRegistry {
	return &BoundRegistry{repo: r, ctx: ctx}
}

// BoundRegistry adapts RegistryRepo to a context-free Load/Save interface.
type BoundRegistry struct {
	repo *RegistryRepo
	ctx  context.Context
}

func (b *BoundRegistry) Load() (*model.SkuRegistry, error) {
	return b.repo.Load(b.ctx)
}

func (b *BoundRegistry) Save(registry *model.SkuRegistry, runID string) error {
	return b.repo.Save(b.ctx, registry)
}

func queueRegistry(batch *pgx.Batch, registry *model.SkuRegistry) {
	for _, e := range registry.Entries() {
		batch.Queue(`
			INSERT INTO sku_registry (category, original_id, sku, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (category, original_id) DO UPDATE SET
				sku = EXCLUDED.sku,
				updated_at = NOW()
		`, string(e.Category), e.OriginalID, e.SkuID)
	}
}
