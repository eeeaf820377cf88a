package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"solar-catalog-api/internal/electrical"
	"solar-catalog-api/internal/kits"
	"solar-catalog-api/internal/matching"
	"solar-catalog-api/internal/model"
	"solar-catalog-api/internal/observability"
	"solar-catalog-api/internal/pricing"
)

// ErrInvalidRequest marks caller errors the handlers answer with 400.
var ErrInvalidRequest = errors.New("invalid request")

// Options configures the catalog service.
type Options struct {
	Kits   kits.Config
	Ratio  electrical.RatioRange
	Params kits.ParamsSource
}

// CatalogService answers catalog queries and runs kit matching and
// electrical validation against the current catalog.
type CatalogService struct {
	source     CatalogSource
	validator  *electrical.Validator
	normalizer *matching.ManufacturerNormalizer
	opts       Options
	logger     *slog.Logger
}

func NewCatalogService(
	source CatalogSource,
	validator *electrical.Validator,
	normalizer *matching.ManufacturerNormalizer,
	opts Options,
	logger *slog.Logger,
) *CatalogService {
	if opts.Ratio == (electrical.RatioRange{}) {
		opts.Ratio = electrical.DefaultRatioRange
	}
	return &CatalogService{
		source:     source,
		validator:  validator,
		normalizer: normalizer,
		opts:       opts,
		logger:     logger,
	}
}

// ListSkus lists the canonical SKUs of a category, or of every category
// when name is empty.
func (s *CatalogService) ListSkus(ctx context.Context, name string) (*model.SkusResponse, error) {
	var category model.Category
	if name != "" {
		c, err := model.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		category = c
	}

	skus, err := s.source.ListSkus(ctx, category)
	if err != nil {
		return nil, err
	}
	if skus == nil {
		skus = []model.CanonicalSku{}
	}

	return &model.SkusResponse{
		Category: category,
		Skus:     skus,
		Total:    len(skus),
	}, nil
}

// ListManufacturers lists the canonical manufacturers.
func (s *CatalogService) ListManufacturers(ctx context.Context) (*model.ManufacturersResponse, error) {
	manufacturers, err := s.source.ListManufacturers(ctx)
	if err != nil {
		return nil, err
	}
	if manufacturers == nil {
		manufacturers = []model.Manufacturer{}
	}
	return &model.ManufacturersResponse{Manufacturers: manufacturers}, nil
}

// MatchKits ranks the catalog's kits against criteria.
func (s *CatalogService) MatchKits(ctx context.Context, criteria model.KitCriteria) (*model.KitMatchResponse, error) {
	skus, err := s.source.ListSkus(ctx, "")
	if err != nil {
		observability.KitMatchRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	kitList, err := s.source.ListKits(ctx)
	if err != nil {
		observability.KitMatchRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	params := kits.NewCatalogParams(s.opts.Params, kits.NewSkuCatalog(skus))
	matcher := kits.NewMatcher(s.opts.Kits, s.validator, params, s.normalizer)

	resolved, err := matcher.Resolve(criteria)
	if err != nil {
		observability.KitMatchRequests.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	result, err := matcher.Search(resolved, kitList)
	if err != nil {
		observability.KitMatchRequests.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	observability.KitsRejectedMPPT.Add(float64(result.MpptExcluded))
	outcome := "matched"
	if len(result.Matches) == 0 {
		outcome = "empty"
	}
	observability.KitMatchRequests.WithLabelValues(outcome).Inc()

	s.logger.Info("kit match",
		"target_kwp", resolved.TargetKWp,
		"candidates", result.Candidates,
		"mppt_excluded", result.MpptExcluded,
		"matches", len(result.Matches),
	)

	matches := result.Matches
	if matches == nil {
		matches = []model.KitMatch{}
	}
	return &model.KitMatchResponse{
		TargetKWp: resolved.TargetKWp,
		Matches:   matches,
		Total:     len(matches),
	}, nil
}

// ValidateMPPT checks one string configuration. Missing inverter or panel
// parameters yield an incompatible result carrying a warning.
func (s *CatalogService) ValidateMPPT(req model.MpptValidateRequest) model.MpptValidationResult {
	return s.validator.ValidateMPPT(req.Inverter, req.Panel, req.ModulesPerString)
}

// ValidateSystem scores a panel/inverter selection. Strict requests use the
// strict DC/AC ratio range instead of the configured one.
func (s *CatalogService) ValidateSystem(req model.SystemValidateRequest) model.SystemCompatibility {
	ratio := s.opts.Ratio
	if req.Strict {
		ratio = electrical.StrictRatioRange
	}
	return s.validator.ValidateSystemCompatibility(req.Panels, req.Inverters, electrical.SystemOptions{
		ModulesPerString: req.ModulesPerString,
		Ratio:            ratio,
	})
}

// PriceReport returns the stored report of the latest run. When none is
// stored it is rebuilt from the current SKUs.
func (s *CatalogService) PriceReport(ctx context.Context) (*model.PriceComparisonReport, error) {
	report, err := s.source.LatestReport(ctx)
	if err != nil {
		return nil, err
	}
	if report != nil {
		return report, nil
	}

	skus, err := s.source.ListSkus(ctx, "")
	if err != nil {
		return nil, err
	}
	built := pricing.BuildReport(skus, "", time.Now())
	return &built, nil
}
