package service

import (
	"context"
	"fmt"
	"sync"

	"solar-catalog-api/internal/model"
	"solar-catalog-api/internal/pipeline"
)

// CatalogSource reads a normalized catalog produced by a pipeline run.
type CatalogSource interface {
	ListSkus(ctx context.Context, category model.Category) ([]model.CanonicalSku, error)
	ListKits(ctx context.Context) ([]model.NormalizedKit, error)
	ListManufacturers(ctx context.Context) ([]model.Manufacturer, error)
	LatestReport(ctx context.Context) (*model.PriceComparisonReport, error)
}

type skuLister interface {
	List(ctx context.Context, category model.Category) ([]model.CanonicalSku, error)
}

type kitLister interface {
	List(ctx context.Context) ([]model.NormalizedKit, error)
}

type manufacturerLister interface {
	List(ctx context.Context) ([]model.Manufacturer, error)
}

type reportReader interface {
	LatestReport(ctx context.Context) (*model.PriceComparisonReport, error)
}

// RepoSource serves the catalog from PostgreSQL repositories.
type RepoSource struct {
	skus          skuLister
	kits          kitLister
	manufacturers manufacturerLister
	reports       reportReader
}

func NewRepoSource(skus skuLister, kits kitLister, manufacturers manufacturerLister, reports reportReader) *RepoSource {
	return &RepoSource{
		skus:          skus,
		kits:          kits,
		manufacturers: manufacturers,
		reports:       reports,
	}
}

func (s *RepoSource) ListSkus(ctx context.Context, category model.Category) ([]model.CanonicalSku, error) {
	return s.skus.List(ctx, category)
}

func (s *RepoSource) ListKits(ctx context.Context) ([]model.NormalizedKit, error) {
	return s.kits.List(ctx)
}

func (s *RepoSource) ListManufacturers(ctx context.Context) ([]model.Manufacturer, error) {
	return s.manufacturers.List(ctx)
}

func (s *RepoSource) LatestReport(ctx context.Context) (*model.PriceComparisonReport, error) {
	return s.reports.LatestReport(ctx)
}

// DirSource serves the catalog from the JSON outputs of the batch driver.
// The directory is read on first use and again after Reload.
type DirSource struct {
	dir string

	mu  sync.RWMutex
	out *pipeline.Output
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Reload re-reads the output directory.
func (s *DirSource) Reload() error {
	out, err := pipeline.ReadOutput(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read catalog from %s: %w", s.dir, err)
	}
	s.mu.Lock()
	s.out = out
	s.mu.Unlock()
	return nil
}

func (s *DirSource) output() (*pipeline.Output, error) {
	s.mu.RLock()
	out := s.out
	s.mu.RUnlock()
	if out != nil {
		return out, nil
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.out, nil
}

func (s *DirSource) ListSkus(ctx context.Context, category model.Category) ([]model.CanonicalSku, error) {
	out, err := s.output()
	if err != nil {
		return nil, err
	}
	if category == "" {
		return out.Skus, nil
	}
	var skus []model.CanonicalSku
	for _, sku := range out.Skus {
		if sku.Category == category {
			skus = append(skus, sku)
		}
	}
	return skus, nil
}

func (s *DirSource) ListKits(ctx context.Context) ([]model.NormalizedKit, error) {
	out, err := s.output()
	if err != nil {
		return nil, err
	}
	return out.Kits, nil
}

func (s *DirSource) ListManufacturers(ctx context.Context) ([]model.Manufacturer, error) {
	out, err := s.output()
	if err != nil {
		return nil, err
	}
	return out.Manufacturers, nil
}

func (s *DirSource) LatestReport(ctx context.Context) (*model.PriceComparisonReport, error) {
	out, err := s.output()
	if err != nil {
		return nil, err
	}
	if out.Report.GeneratedAt.IsZero() {
		return nil, nil
	}
	report := out.Report
	return &report, nil
}
