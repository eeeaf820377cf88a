package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"solar-catalog-api/internal/dedup"
	"solar-catalog-api/internal/kits"
	"solar-catalog-api/internal/model"
	"solar-catalog-api/internal/pricing"
)

// Output file names inside the output directory.
const (
	SkusFile          = "canonical_skus.json"
	KitsFile          = "normalized_kits.json"
	ManufacturersFile = "manufacturers.json"
	RejectsFile       = "ingest_rejects.json"
	ReportFile        = "price_report.json"
	ReportXLSXFile    = "price_report.xlsx"
	StatsFile         = "run_stats.json"
)

// Output is everything one pipeline run produces.
type Output struct {
	RunID         string
	Skus          []model.CanonicalSku
	Kits          []model.NormalizedKit
	Manufacturers []model.Manufacturer
	Rejects       []model.IngestReject
	Report        model.PriceComparisonReport
	Stats         RunStats
}

// RunStats summarizes a run.
type RunStats struct {
	RunID         string        `json:"run_id"`
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    time.Time     `json:"finished_at"`
	Duration      string        `json:"duration"`
	InputFiles    int           `json:"input_files"`
	TotalProducts int           `json:"total_products"`
	TotalSkus     int           `json:"total_skus"`
	TotalKits     int           `json:"total_kits"`
	Manufacturers int           `json:"manufacturers"`
	Rejects       int           `json:"rejects"`
	Categories    []dedup.Stats `json:"categories"`
	Kits          kits.Stats    `json:"kits"`
}

// envelope wraps each JSON output with its run id
type envelope[T any] struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Count       int       `json:"count"`
	Items       []T       `json:"items"`
}

// OutputWriter writes run outputs to a directory
type OutputWriter struct {
	dir  string
	xlsx bool
}

// NewOutputWriter creates a writer. With xlsx set the price report is also
// written as a workbook.
func NewOutputWriter(dir string, xlsx bool) *OutputWriter {
	return &OutputWriter{dir: dir, xlsx: xlsx}
}

// Write saves every output file, creating the directory when needed.
func (w *OutputWriter) Write(out *Output) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	now := time.Now()
	files := map[string]any{
		SkusFile:          envelope[model.CanonicalSku]{out.RunID, now, len(out.Skus), out.Skus},
		KitsFile:          envelope[model.NormalizedKit]{out.RunID, now, len(out.Kits), out.Kits},
		ManufacturersFile: envelope[model.Manufacturer]{out.RunID, now, len(out.Manufacturers), out.Manufacturers},
		RejectsFile:       envelope[model.IngestReject]{out.RunID, now, len(out.Rejects), out.Rejects},
		ReportFile:        out.Report,
		StatsFile:         out.Stats,
	}
	for name, v := range files {
		if err := writeJSON(filepath.Join(w.dir, name), v); err != nil {
			return err
		}
	}

	if w.xlsx {
		var buf bytes.Buffer
		if err := pricing.WriteReportXLSX(out.Report, &buf); err != nil {
			return fmt.Errorf("failed to build xlsx report: %w", err)
		}
		if err := os.WriteFile(filepath.Join(w.dir, ReportXLSXFile), buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write xlsx report: %w", err)
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadOutput loads the outputs of a previous run from dir. Missing kit,
// manufacturer, reject and report files are tolerated; the SKU file is
// required.
func ReadOutput(dir string) (*Output, error) {
	out := &Output{}

	var skus envelope[model.CanonicalSku]
	if err := readJSON(filepath.Join(dir, SkusFile), &skus); err != nil {
		return nil, err
	}
	out.RunID = skus.RunID
	out.Skus = skus.Items

	var kitList envelope[model.NormalizedKit]
	var manufacturers envelope[model.Manufacturer]
	var rejects envelope[model.IngestReject]
	optional := map[string]any{
		KitsFile:          &kitList,
		ManufacturersFile: &manufacturers,
		RejectsFile:       &rejects,
		ReportFile:        &out.Report,
		StatsFile:         &out.Stats,
	}
	for name, v := range optional {
		if err := readJSON(filepath.Join(dir, name), v); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	out.Kits = kitList.Items
	out.Manufacturers = manufacturers.Items
	out.Rejects = rejects.Items
	return out, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filepath.Base(path), err)
	}
	return nil
}
