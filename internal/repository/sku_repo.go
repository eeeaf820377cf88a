package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solar-catalog-api/internal/model"
)

type SkuRepo struct {
	db *pgxpool.Pool
}

func NewSkuRepo(db *pgxpool.Pool) *SkuRepo {
	return &SkuRepo{db: db}
}

// List returns the SKUs of category with their offers, or every SKU when
// category is empty.
func (r *SkuRepo) List(ctx context.Context, category model.Category) ([]model.CanonicalSku, error) {
	query := `
		SELECT sku, manufacturer, model_number, name, category, technical_specs, pricing_summary
		FROM canonical_sku
		WHERE $1 = '' OR category = $1
		ORDER BY category, sku
	`

	rows, err := r.db.Query(ctx, query, string(category))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skus []model.CanonicalSku
	for rows.Next() {
		var s model.CanonicalSku
		if err := rows.Scan(&s.ID, &s.Manufacturer, &s.ModelNumber, &s.Name, &s.Category, &s.TechnicalSpecs, &s.PricingSummary); err != nil {
			return nil, err
		}
		skus = append(skus, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachOffers(ctx, skus); err != nil {
		return nil, err
	}
	return skus, nil
}

func (r *SkuRepo) attachOffers(ctx context.Context, skus []model.CanonicalSku) error {
	if len(skus) == 0 {
		return nil
	}

	ids := make([]string, len(skus))
	index := make(map[string]int, len(skus))
	for i, s := range skus {
		ids[i] = s.ID
		index[s.ID] = i
	}

	query := `
		SELECT sku, distributor, product_id, price, available, COALESCE(warehouse, ''), COALESCE(lead_time_days, 0)
		FROM distributor_offer
		WHERE sku = ANY($1)
		ORDER BY sku, position
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sku string
		var o model.DistributorOffer
		if err := rows.Scan(&sku, &o.Distributor, &o.ProductID, &o.Price, &o.Available, &o.Warehouse, &o.LeadTimeDays); err != nil {
			return err
		}
		i := index[sku]
		skus[i].DistributorOffers = append(skus[i].DistributorOffers, o)
	}
	return rows.Err()
}

// queueUpsert adds the SKU and a full replacement of its offers to batch.
func queueSkuUpsert(batch *pgx.Batch, s model.CanonicalSku, runID string) {
	batch.Queue(`
		INSERT INTO canonical_sku (sku, manufacturer, model_number, name, category, technical_specs, pricing_summary, run_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (sku) DO UPDATE SET
			manufacturer = EXCLUDED.manufacturer,
			model_number = EXCLUDED.model_number,
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			technical_specs = EXCLUDED.technical_specs,
			pricing_summary = EXCLUDED.pricing_summary,
			run_id = EXCLUDED.run_id,
			updated_at = NOW()
	`, s.ID, s.Manufacturer, s.ModelNumber, s.Name, string(s.Category), specsOrEmpty(s.TechnicalSpecs), s.PricingSummary, runID)

	batch.Queue(`DELETE FROM distributor_offer WHERE sku = $1`, s.ID)
	for i, o := range s.DistributorOffers {
		batch.Queue(`
			INSERT INTO distributor_offer (sku, distributor, product_id, price, available, warehouse, lead_time_days, position)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, 0), $8)
			ON CONFLICT (sku, distributor, product_id) DO UPDATE SET
				price = EXCLUDED.price,
				available = EXCLUDED.available,
				warehouse = EXCLUDED.warehouse,
				lead_time_days = EXCLUDED.lead_time_days,
				position = EXCLUDED.position
		`, s.ID, o.Distributor, o.ProductID, o.Price, o.Available, o.Warehouse, o.LeadTimeDays, i)
	}
}

func specsOrEmpty(s model.SpecSet) model.SpecSet {
	if s == nil {
		return model.SpecSet{}
	}
	return s
}
