package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solar-catalog-api/internal/model"
)

type ManufacturerRepo struct {
	db *pgxpool.Pool
}

func NewManufacturerRepo(db *pgxpool.Pool) *ManufacturerRepo {
	return &ManufacturerRepo{db: db}
}

// List returns every manufacturer ordered by name.
func (r *ManufacturerRepo) List(ctx context.Context) ([]model.Manufacturer, error) {
	query := `
		SELECT name, aliases, tier, COALESCE(country, ''), product_counts
		FROM manufacturer
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var manufacturers []model.Manufacturer
	for rows.Next() {
		var m model.Manufacturer
		if err := rows.Scan(&m.Name, &m.Aliases, &m.Tier, &m.Country, &m.ProductCounts); err != nil {
			return nil, err
		}
		manufacturers = append(manufacturers, m)
	}

	return manufacturers, rows.Err()
}

// queueManufacturerUpsert merges aliases into the stored set; product
// counts are replaced by the latest run's.
func queueManufacturerUpsert(batch *pgx.Batch, m model.Manufacturer) {
	counts := m.ProductCounts
	if counts == nil {
		counts = map[model.Category]int{}
	}
	aliases := m.Aliases
	if aliases == nil {
		aliases = []string{}
	}

	batch.Queue(`
		INSERT INTO manufacturer (name, aliases, tier, country, product_counts, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NOW())
		ON CONFLICT (name) DO UPDATE SET
			aliases = ARRAY(
				SELECT DISTINCT a FROM unnest(manufacturer.aliases || EXCLUDED.aliases) AS a ORDER BY a
			),
			tier = EXCLUDED.tier,
			country = COALESCE(EXCLUDED.country, manufacturer.country),
			product_counts = EXCLUDED.product_counts,
			updated_at = NOW()
	`, m.Name, aliases, string(m.Tier), m.Country, counts)
}
