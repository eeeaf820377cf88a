package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"solar-catalog-api/internal/config"
)

func TestConnectionConfig_DSN(t *testing.T) {
	cfg := FromConfig(config.DatabaseConfig{
		Host:     "db",
		Port:     5433,
		Name:     "solar_catalog",
		User:     "solar",
		Password: "p@ss/word",
		SSLMode:  "require",
	})

	assert.Equal(t, "postgres://solar:p%40ss%2Fword@db:5433/solar_catalog?sslmode=require", cfg.DSN())
}

func TestMigrationsAreIdempotent(t *testing.T) {
	for _, m := range migrations {
		assert.Contains(t, m.sql, "IF NOT EXISTS", m.name)
	}
}
