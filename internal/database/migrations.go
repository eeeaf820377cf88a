package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// migration is one idempotent DDL statement
type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{"create pipeline_run", `
		CREATE TABLE IF NOT EXISTS pipeline_run (
			run_id VARCHAR(36) PRIMARY KEY,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL,
			stats JSONB NOT NULL,
			report JSONB NOT NULL
		)`},
	{"create manufacturer", `
		CREATE TABLE IF NOT EXISTS manufacturer (
			name VARCHAR(120) PRIMARY KEY,
			aliases TEXT[] NOT NULL DEFAULT '{}',
			tier VARCHAR(16) NOT NULL DEFAULT 'unknown',
			country VARCHAR(60),
			product_counts JSONB NOT NULL DEFAULT '{}',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"create canonical_sku", `
		CREATE TABLE IF NOT EXISTS canonical_sku (
			sku VARCHAR(160) PRIMARY KEY,
			manufacturer VARCHAR(120) NOT NULL,
			model_number VARCHAR(160) NOT NULL,
			name TEXT NOT NULL,
			category VARCHAR(32) NOT NULL,
			technical_specs JSONB NOT NULL DEFAULT '{}',
			pricing_summary JSONB NOT NULL DEFAULT '{}',
			run_id VARCHAR(36),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"index canonical_sku category", `
		CREATE INDEX IF NOT EXISTS idx_canonical_sku_category ON canonical_sku (category)`},
	{"index canonical_sku manufacturer", `
		CREATE INDEX IF NOT EXISTS idx_canonical_sku_manufacturer ON canonical_sku (manufacturer)`},
	{"create distributor_offer", `
		CREATE TABLE IF NOT EXISTS distributor_offer (
			sku VARCHAR(160) NOT NULL REFERENCES canonical_sku (sku) ON DELETE CASCADE,
			distributor VARCHAR(120) NOT NULL,
			product_id VARCHAR(160) NOT NULL,
			price NUMERIC(14,2),
			available BOOLEAN NOT NULL DEFAULT FALSE,
			warehouse VARCHAR(120),
			lead_time_days INTEGER,
			position INTEGER NOT NULL,
			PRIMARY KEY (sku, distributor, product_id)
		)`},
	{"create normalized_kit", `
		CREATE TABLE IF NOT EXISTS normalized_kit (
			id VARCHAR(200) PRIMARY KEY,
			name TEXT NOT NULL,
			system_capacity_kwp NUMERIC(8,2) NOT NULL,
			panel_manufacturer VARCHAR(120) NOT NULL,
			inverter_manufacturer VARCHAR(120) NOT NULL,
			data JSONB NOT NULL,
			run_id VARCHAR(36),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"index normalized_kit capacity", `
		CREATE INDEX IF NOT EXISTS idx_normalized_kit_capacity ON normalized_kit (system_capacity_kwp)`},
	{"create sku_registry", `
		CREATE TABLE IF NOT EXISTS sku_registry (
			category VARCHAR(32) NOT NULL,
			original_id VARCHAR(160) NOT NULL,
			sku VARCHAR(160) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (category, original_id)
		)`},
	{"create ingest_reject", `
		CREATE TABLE IF NOT EXISTS ingest_reject (
			id BIGSERIAL PRIMARY KEY,
			run_id VARCHAR(36) NOT NULL,
			category VARCHAR(32) NOT NULL,
			product_id VARCHAR(160) NOT NULL,
			distributor VARCHAR(120) NOT NULL,
			reason VARCHAR(40) NOT NULL,
			detail TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"index ingest_reject run", `
		CREATE INDEX IF NOT EXISTS idx_ingest_reject_run ON ingest_reject (run_id, reason)`},
}

// RunMigrations executes all database migrations
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %q failed: %w", m.name, err)
		}
	}
	return nil
}
