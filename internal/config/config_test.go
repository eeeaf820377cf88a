package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_ENABLED", "")

	cfg := Load()

	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "8080", cfg.APIPort)
	assert.Equal(t, 0.85, cfg.Pipeline.DedupConfidenceThreshold)
	assert.Equal(t, 0.05, cfg.Pipeline.DedupSpecTolerance)
	assert.Equal(t, "default", cfg.Pipeline.RatioProfile)
	assert.Equal(t, -10.0, cfg.Pipeline.CellTempMin)
	assert.Equal(t, 70.0, cfg.Pipeline.CellTempMax)
	assert.Equal(t, 0.10, cfg.Pipeline.SafetyMargin)
	assert.Equal(t, 10, cfg.Pipeline.KitMatchLimit)
	assert.Equal(t, 0.15, cfg.Pipeline.KitCapacityTolerance)
	assert.Empty(t, cfg.Pipeline.ManufacturerAliases)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DEDUP_CONFIDENCE_THRESHOLD", "0.9")
	t.Setenv("KIT_MATCH_LIMIT", "25")
	t.Setenv("RATIO_PROFILE", "strict")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("MANUFACTURER_ALIASES", "ZNSHINE=ZNSHINE SOLAR; bad ;SUNOVA=SUNOVA SOLAR")
	t.Setenv("DB_PORT", "not-a-number")

	cfg := Load()

	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 0.9, cfg.Pipeline.DedupConfidenceThreshold)
	assert.Equal(t, 25, cfg.Pipeline.KitMatchLimit)
	assert.Equal(t, "strict", cfg.Pipeline.RatioProfile)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, map[string]string{
		"ZNSHINE": "ZNSHINE SOLAR",
		"SUNOVA":  "SUNOVA SOLAR",
	}, cfg.Pipeline.ManufacturerAliases)
}
