package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solar-catalog-api/internal/model"
)

type KitRepo struct {
	db *pgxpool.Pool
}

func NewKitRepo(db *pgxpool.Pool) *KitRepo {
	return &KitRepo{db: db}
}

// List returns every normalized kit ordered by capacity.
func (r *KitRepo) List(ctx context.Context) ([]model.NormalizedKit, error) {
	query := `
		SELECT data
		FROM normalized_kit
		ORDER BY system_capacity_kwp, id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var kits []model.NormalizedKit
	for rows.Next() {
		var k model.NormalizedKit
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		kits = append(kits, k)
	}

	return kits, rows.Err()
}

func queueKitUpsert(batch *pgx.Batch, k model.NormalizedKit, runID string) {
	batch.Queue(`
		INSERT INTO normalized_kit (id, name, system_capacity_kwp, panel_manufacturer, inverter_manufacturer, data, run_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			system_capacity_kwp = EXCLUDED.system_capacity_kwp,
			panel_manufacturer = EXCLUDED.panel_manufacturer,
			inverter_manufacturer = EXCLUDED.inverter_manufacturer,
			data = EXCLUDED.data,
			run_id = EXCLUDED.run_id,
			updated_at = NOW()
	`, k.ID, k.Name, k.SystemCapacityKWp, k.PanelManufacturer, k.InverterManufacturer, k, runID)
}
