package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar-catalog-api/internal/catalog"
	"solar-catalog-api/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeInput(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "aldo", "panels.json"), `[
		{"id": "A1", "name": "Painel Solar Jinko Tiger Pro 550W", "brand": "Jinko", "model": "JKM550M-72HL4",
		 "price": "R$ 800,00", "available": true,
		 "specs": {"power_w": 550, "vmp": 40, "voc": 48, "beta_voc": -0.12}}
	]`)
	writeFile(t, filepath.Join(dir, "edeltec", "panels.json"), `[
		{"id": "E7", "name": "Modulo JinkoSolar 550W", "brand": "JinkoSolar", "model": "JKM550M-72HL4",
		 "price": "760,00", "stock": 3, "specs": {"power": "550 W"}},
		{"id": "E8", "name": "Painel sem marca 400W", "price": "500"}
	]`)
	writeFile(t, filepath.Join(dir, "aldo", "inverters.json"), `[
		{"id": "I1", "name": "Inversor Growatt MIN 5000TL-X", "brand": "Growatt", "model": "MIN 5000TL-X",
		 "price": "4.000,00", "available": true,
		 "specs": {"power_kw": 5, "mppt_low": 150, "mppt_high": 600, "mppt_count": 1, "phases": 1}}
	]`)
	writeFile(t, filepath.Join(dir, "aldo", "kits.json"), `[
		{"id": "K1", "name": "Kit Solar 5,5 kWp On Grid",
		 "description": "10x Painel Solar Jinko 550W + 1x Inversor Growatt MIN 5000TL-X 5kW",
		 "price": "15.000,00", "available": true}
	]`)
	return dir
}

type recordingSink struct {
	runs     []*Output
	registry *model.SkuRegistry
}

func (s *recordingSink) SaveRun(ctx context.Context, out *Output, registry *model.SkuRegistry) error {
	s.runs = append(s.runs, out)
	s.registry = registry
	return nil
}

func newTestService(t *testing.T, input, output string) *Service {
	t.Helper()
	cfg := DefaultConfig()
	cfg.InputDir = input
	cfg.OutputDir = output
	cfg.WriteXLSX = true
	return NewService(cfg, catalog.NewRegistryStore(filepath.Join(output, "sku_registry.json")), testLogger())
}

func TestService_Run(t *testing.T) {
	input := writeInput(t)
	output := t.TempDir()
	svc := newTestService(t, input, output)
	sink := &recordingSink{}
	svc.SetSink(sink)

	out, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, out.Skus, 2)
	panel := out.Skus[0]
	assert.Equal(t, model.CategoryPanels, panel.Category)
	assert.Equal(t, "JINKO SOLAR", panel.Manufacturer)
	assert.Len(t, panel.DistributorOffers, 2)
	assert.Equal(t, 760.0, panel.PricingSummary.LowestPrice)
	assert.Equal(t, 780.0, panel.PricingSummary.MedianPrice)
	assert.Equal(t, model.CategoryInverters, out.Skus[1].Category)

	require.Len(t, out.Kits, 1)
	kit := out.Kits[0]
	assert.Equal(t, "KIT-5.50KWP-JINKO-SOLAR-GROWATT", kit.ID)
	assert.Equal(t, model.SystemOnGrid, kit.SystemType)
	assert.Equal(t, model.PhaseMono, kit.Phase)
	require.Len(t, kit.Offers, 1)
	assert.Equal(t, 11800.0, kit.Offers[0].ComponentsTotal)

	require.Len(t, out.Rejects, 1)
	assert.Equal(t, "E8", out.Rejects[0].ProductID)
	assert.Equal(t, model.RejectMissingManufacturer, out.Rejects[0].Reason)

	names := make([]string, 0, len(out.Manufacturers))
	for _, m := range out.Manufacturers {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"GROWATT", "JINKO SOLAR"}, names)
	assert.ElementsMatch(t, []string{"Jinko", "JinkoSolar"}, out.Manufacturers[1].Aliases)

	assert.Equal(t, out.RunID, out.Report.RunID)
	assert.Equal(t, 2, out.Report.Summary.TotalSkus)
	assert.Equal(t, 5, out.Stats.TotalProducts)
	assert.Len(t, out.Stats.Categories, 2)

	for _, name := range []string{SkusFile, KitsFile, ManufacturersFile, RejectsFile, ReportFile, ReportXLSXFile, StatsFile, "sku_registry.json"} {
		assert.FileExists(t, filepath.Join(output, name))
	}

	require.Len(t, sink.runs, 1)
	assert.Equal(t, 3, sink.registry.Len())

	snapshot := svc.Progress().GetSnapshot()
	assert.Equal(t, PhaseDone, snapshot.Status)
	assert.Equal(t, 5, snapshot.Processed)
	assert.Equal(t, 1, snapshot.KitsNormalized)
}

func TestService_RerunKeepsSkuIdentity(t *testing.T) {
	input := writeInput(t)
	output := t.TempDir()

	first, err := newTestService(t, input, output).Run(context.Background())
	require.NoError(t, err)
	second, err := newTestService(t, input, output).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, second.Skus, len(first.Skus))
	for i := range first.Skus {
		assert.Equal(t, first.Skus[i].ID, second.Skus[i].ID)
	}
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestService_DryRunWritesNothing(t *testing.T) {
	input := writeInput(t)
	output := filepath.Join(t.TempDir(), "out")
	svc := newTestService(t, input, output)
	svc.config.DryRun = true

	out, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, out.Skus, 2)
	assert.NoDirExists(t, output)
}

func TestService_RunFailsOnMissingInput(t *testing.T) {
	svc := newTestService(t, filepath.Join(t.TempDir(), "missing"), t.TempDir())

	_, err := svc.Run(context.Background())

	require.Error(t, err)
	snapshot := svc.Progress().GetSnapshot()
	assert.Equal(t, PhaseFailed, snapshot.Status)
	assert.NotEmpty(t, snapshot.LastError)
}

func TestService_ProcessCancelled(t *testing.T) {
	input := writeInput(t)
	snapshot, err := catalog.NewLoader(testLogger()).LoadDirectory(context.Background(), input)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newTestService(t, input, t.TempDir()).Process(ctx, "run-1", snapshot, model.NewSkuRegistry(nil))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadOutput(t *testing.T) {
	input := writeInput(t)
	output := t.TempDir()
	out, err := newTestService(t, input, output).Run(context.Background())
	require.NoError(t, err)

	read, err := ReadOutput(output)
	require.NoError(t, err)

	assert.Equal(t, out.RunID, read.RunID)
	assert.Len(t, read.Skus, 2)
	assert.Len(t, read.Kits, 1)
	assert.Len(t, read.Manufacturers, 2)
	assert.Len(t, read.Rejects, 1)
	assert.Equal(t, out.Report.Summary, read.Report.Summary)
}

func TestReadOutput_RequiresSkus(t *testing.T) {
	_, err := ReadOutput(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
