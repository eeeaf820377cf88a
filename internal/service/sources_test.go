package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar-catalog-api/internal/model"
	"solar-catalog-api/internal/pipeline"
)

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	out := &pipeline.Output{
		RunID:         "run-42",
		Skus:          catalogSkus(),
		Kits:          []model.NormalizedKit{catalogKit(growattSku, "GROWATT")},
		Manufacturers: []model.Manufacturer{{Name: "GROWATT", Aliases: []string{"Growatt"}}},
		Report:        model.PriceComparisonReport{RunID: "run-42", GeneratedAt: time.Now()},
	}
	require.NoError(t, pipeline.NewOutputWriter(dir, false).Write(out))

	source := NewDirSource(dir)
	ctx := context.Background()

	all, err := source.ListSkus(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	inverters, err := source.ListSkus(ctx, model.CategoryInverters)
	require.NoError(t, err)
	assert.Len(t, inverters, 2)

	kitList, err := source.ListKits(ctx)
	require.NoError(t, err)
	require.Len(t, kitList, 1)
	assert.Equal(t, "KIT-5.50KWP-JINKO-SOLAR-GROWATT", kitList[0].ID)

	manufacturers, err := source.ListManufacturers(ctx)
	require.NoError(t, err)
	assert.Equal(t, "GROWATT", manufacturers[0].Name)

	report, err := source.LatestReport(ctx)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, "run-42", report.RunID)
}

func TestDirSource_MissingCatalog(t *testing.T) {
	source := NewDirSource(t.TempDir())

	_, err := source.ListKits(context.Background())

	require.Error(t, err)
}

func TestDirSource_NoStoredReport(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, pipeline.NewOutputWriter(dir, false).Write(&pipeline.Output{RunID: "r", Skus: catalogSkus()}))

	report, err := NewDirSource(dir).LatestReport(context.Background())

	require.NoError(t, err)
	assert.Nil(t, report)
}
