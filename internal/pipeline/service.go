package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"solar-catalog-api/internal/catalog"
	"solar-catalog-api/internal/dedup"
	"solar-catalog-api/internal/kits"
	"solar-catalog-api/internal/matching"
	"solar-catalog-api/internal/model"
	"solar-catalog-api/internal/observability"
	"solar-catalog-api/internal/pricing"
)

// Sink persists the output of a run, e.g. to PostgreSQL.
type Sink interface {
	SaveRun(ctx context.Context, out *Output, registry *model.SkuRegistry) error
}

// RegistryStore loads and saves the SKU registry between runs.
type RegistryStore interface {
	Load() (*model.SkuRegistry, error)
	Save(registry *model.SkuRegistry, runID string) error
}

// Config holds configuration for a pipeline run
type Config struct {
	InputDir         string
	OutputDir        string
	Workers          int
	Dedup            dedup.Config
	ExtraAliases     map[string]string
	WriteXLSX        bool
	DryRun           bool
	HTTPMonitorPort  int
	EnableMonitoring bool
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		InputDir:         "data/input",
		OutputDir:        "data/output",
		Workers:          4,
		Dedup:            dedup.DefaultConfig(),
		HTTPMonitorPort:  9090,
		EnableMonitoring: false,
	}
}

// Service orchestrates a batch run: load exports, deduplicate each
// category in parallel, normalize kits against the merged SKU set, build
// the price report and write everything out.
type Service struct {
	config     Config
	loader     *catalog.Loader
	normalizer *matching.ManufacturerNormalizer
	registry   RegistryStore
	sink       Sink
	progress   *ProgressTracker
	monitor    *HTTPMonitor
	logger     *slog.Logger
}

// NewService creates a new pipeline service
func NewService(config Config, registry RegistryStore, logger *slog.Logger) *Service {
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Service{
		config:     config,
		loader:     catalog.NewLoader(logger),
		normalizer: matching.NewManufacturerNormalizer(config.ExtraAliases),
		registry:   registry,
		logger:     logger,
	}
}

// SetSink sets the optional persistence target
func (s *Service) SetSink(sink Sink) {
	s.sink = sink
}

// Progress returns the tracker of the current or last run.
func (s *Service) Progress() *ProgressTracker {
	return s.progress
}

// Run executes the whole batch.
func (s *Service) Run(ctx context.Context) (*Output, error) {
	runID := uuid.NewString()
	s.progress = NewProgressTracker(runID)

	s.logger.Info("starting pipeline",
		"run_id", runID,
		"input_dir", s.config.InputDir,
		"workers", s.config.Workers,
		"dry_run", s.config.DryRun,
	)

	if s.config.EnableMonitoring {
		s.monitor = NewHTTPMonitor(s.config.HTTPMonitorPort, s.progress, s.logger)
		s.monitor.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.monitor.Stop(shutdownCtx)
		}()
	}

	out, err := s.run(ctx, runID)
	if err != nil {
		s.progress.Fail(err)
		return nil, err
	}
	s.progress.SetPhase(PhaseDone)
	s.printFinalStats(out)
	return out, nil
}

func (s *Service) run(ctx context.Context, runID string) (*Output, error) {
	start := time.Now()
	snapshot, err := s.loader.LoadDirectory(ctx, s.config.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load input: %w", err)
	}
	observability.ObservePhase(PhaseLoading, start)
	s.progress.SetTotal(snapshot.Total())
	s.logger.Info("loaded input", "files", snapshot.Files, "products", snapshot.Total(), "rejects", len(snapshot.Rejects))

	registry := model.NewSkuRegistry(nil)
	if s.registry != nil {
		registry, err = s.registry.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load sku registry: %w", err)
		}
		s.logger.Info("loaded sku registry", "entries", registry.Len())
	}

	out, err := s.Process(ctx, runID, snapshot, registry)
	if err != nil {
		return nil, err
	}

	if s.config.DryRun {
		s.logger.Info("dry run - outputs not written")
		return out, nil
	}

	s.progress.SetPhase(PhaseOutput)
	start = time.Now()
	if err := NewOutputWriter(s.config.OutputDir, s.config.WriteXLSX).Write(out); err != nil {
		return nil, err
	}
	if s.registry != nil {
		if err := s.registry.Save(registry, runID); err != nil {
			return nil, fmt.Errorf("failed to save sku registry: %w", err)
		}
	}
	if s.sink != nil {
		if err := s.sink.SaveRun(ctx, out, registry); err != nil {
			return nil, fmt.Errorf("failed to persist run: %w", err)
		}
		s.logger.Info("run persisted", "run_id", runID)
	}
	observability.ObservePhase(PhaseOutput, start)
	return out, nil
}

// categoryResult is written by exactly one worker goroutine
type categoryResult struct {
	result        *dedup.Result
	manufacturers *matching.ManufacturerRegistry
}

// Process runs the in-memory part of the pipeline over a loaded snapshot.
// Each non-kit category is deduplicated in its own goroutine with its own
// manufacturer registry; the registries are merged afterwards so no state
// is shared between categories. registry is updated with every assignment.
func (s *Service) Process(ctx context.Context, runID string, snapshot *catalog.Snapshot, registry *model.SkuRegistry) (*Output, error) {
	startedAt := time.Now()
	if s.progress == nil {
		s.progress = NewProgressTracker(runID)
		s.progress.SetTotal(snapshot.Total())
	}

	var categories []model.Category
	for _, c := range model.Categories {
		if c != model.CategoryKits && len(snapshot.Products[c]) > 0 {
			categories = append(categories, c)
		}
	}

	s.progress.SetPhase(PhaseDedup)
	start := time.Now()
	results := make([]categoryResult, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i, category := range categories {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s.progress.StartCategory(category)

			manufacturers := matching.NewManufacturerRegistry(s.normalizer)
			res, err := dedup.New(s.config.Dedup, manufacturers, registry).Run(category, snapshot.Products[category])
			if err != nil {
				return fmt.Errorf("dedup %s: %w", category, err)
			}
			results[i] = categoryResult{result: res, manufacturers: manufacturers}

			s.recordCategory(res)
			s.logger.Info("category deduplicated",
				"category", category,
				"input", res.Stats.Input,
				"skus", res.Stats.SkusCreated,
				"merged", res.Stats.OffersMerged,
				"skipped", res.Stats.SkippedNoManufacturer,
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	observability.ObservePhase(PhaseDedup, start)

	out := &Output{RunID: runID}
	out.Rejects = append(out.Rejects, snapshot.Rejects...)
	for _, r := range snapshot.Rejects {
		observability.ProductsRejected.WithLabelValues(string(r.Category), r.Reason).Inc()
	}

	manufacturers := matching.NewManufacturerRegistry(s.normalizer)
	var categoryStats []dedup.Stats
	for _, r := range results {
		out.Skus = append(out.Skus, r.result.Skus...)
		out.Rejects = append(out.Rejects, r.result.Rejects...)
		categoryStats = append(categoryStats, r.result.Stats)
		manufacturers.Merge(r.manufacturers)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.progress.SetPhase(PhaseKits)
	s.progress.StartCategory(model.CategoryKits)
	start = time.Now()
	kitRes := kits.NewNormalizer(manufacturers, kits.NewSkuCatalog(out.Skus)).Run(snapshot.Products[model.CategoryKits])
	out.Kits = kitRes.Kits
	out.Rejects = append(out.Rejects, kitRes.Rejects...)
	s.recordKits(kitRes)
	observability.ObservePhase(PhaseKits, start)
	if kitRes.Stats.Input > 0 {
		s.logger.Info("kits normalized",
			"input", kitRes.Stats.Input,
			"kits", kitRes.Stats.KitsCreated,
			"merged", kitRes.Stats.OffersMerged,
			"unmatched_components", kitRes.Stats.ComponentsUnmatched,
		)
	}

	s.progress.SetPhase(PhaseReport)
	start = time.Now()
	out.Report = pricing.BuildReport(out.Skus, runID, time.Now())
	observability.ObservePhase(PhaseReport, start)

	out.Manufacturers = manufacturers.Manufacturers()
	finishedAt := time.Now()
	out.Stats = RunStats{
		RunID:         runID,
		StartedAt:     startedAt,
		FinishedAt:    finishedAt,
		Duration:      finishedAt.Sub(startedAt).String(),
		InputFiles:    snapshot.Files,
		TotalProducts: snapshot.Total(),
		TotalSkus:     len(out.Skus),
		TotalKits:     len(out.Kits),
		Manufacturers: len(out.Manufacturers),
		Rejects:       len(out.Rejects),
		Categories:    categoryStats,
		Kits:          kitRes.Stats,
	}
	return out, nil
}

func (s *Service) recordCategory(res *dedup.Result) {
	label := string(res.Category)
	observability.ProductsProcessed.WithLabelValues(label).Add(float64(res.Stats.Input))
	observability.SkusCreated.WithLabelValues(label).Add(float64(res.Stats.SkusCreated))
	observability.OffersMerged.WithLabelValues(label).Add(float64(res.Stats.OffersMerged))
	for _, r := range res.Rejects {
		observability.ProductsRejected.WithLabelValues(label, r.Reason).Inc()
	}
	s.progress.FinishCategory(res.Category, res.Stats.Input, res.Stats.SkusCreated, res.Stats.OffersMerged, len(res.Rejects))
}

func (s *Service) recordKits(res *kits.Result) {
	label := string(model.CategoryKits)
	observability.ProductsProcessed.WithLabelValues(label).Add(float64(res.Stats.Input))
	observability.KitsNormalized.Add(float64(res.Stats.KitsCreated))
	for _, r := range res.Rejects {
		observability.ProductsRejected.WithLabelValues(label, r.Reason).Inc()
	}
	s.progress.FinishKits(res.Stats.Input, res.Stats.KitsCreated, len(res.Rejects))
}

// printFinalStats logs final run statistics
func (s *Service) printFinalStats(out *Output) {
	snapshot := s.progress.GetSnapshot()

	s.logger.Info("pipeline completed",
		"run_id", out.RunID,
		"elapsed", snapshot.Elapsed.String(),
		"products", out.Stats.TotalProducts,
		"skus", out.Stats.TotalSkus,
		"kits", out.Stats.TotalKits,
		"manufacturers", out.Stats.Manufacturers,
		"rejects", out.Stats.Rejects,
		"products_per_sec", fmt.Sprintf("%.2f", snapshot.ProductsPerSecond),
	)
}
