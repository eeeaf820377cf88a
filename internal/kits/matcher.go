package kits

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"solar-catalog-api/internal/electrical"
	"solar-catalog-api/internal/matching"
	"solar-catalog-api/internal/model"
)

// ErrInvalidCriteria is returned when neither a target capacity nor a
// consumption/HSP pair is given.
var ErrInvalidCriteria = errors.New("invalid kit criteria")

// Score weights, out of 100.
const (
	powerPoints        = 40
	systemTypePoints   = 20
	hybridPoints       = 10
	roofPoints         = 15
	brandPoints        = 10
	brandPartialPoints = 5
	phasePoints        = 10
	stockPoints        = 5
)

type Config struct {
	DefaultTolerance float64
	DefaultLimit     int
	PerformanceRatio float64
}

func DefaultConfig() Config {
	return Config{
		DefaultTolerance: 0.15,
		DefaultLimit:     10,
		PerformanceRatio: electrical.DefaultPerformanceRatio,
	}
}

// Matcher ranks normalized kits against caller requirements. It holds no
// mutable state and is safe for concurrent use.
type Matcher struct {
	cfg        Config
	validator  *electrical.Validator
	params     *CatalogParams
	normalizer *matching.ManufacturerNormalizer
}

// NewMatcher creates a matcher. Zero config fields take their defaults.
func NewMatcher(cfg Config, validator *electrical.Validator, params *CatalogParams, normalizer *matching.ManufacturerNormalizer) *Matcher {
	def := DefaultConfig()
	if cfg.DefaultTolerance <= 0 {
		cfg.DefaultTolerance = def.DefaultTolerance
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.PerformanceRatio <= 0 {
		cfg.PerformanceRatio = def.PerformanceRatio
	}
	return &Matcher{cfg: cfg, validator: validator, params: params, normalizer: normalizer}
}

// Resolve fills the target capacity, tolerance and limit of criteria.
func (m *Matcher) Resolve(criteria model.KitCriteria) (model.KitCriteria, error) {
	if criteria.TargetKWp <= 0 {
		criteria.TargetKWp = electrical.RequiredCapacityKWp(criteria.MonthlyConsumptionKWh, criteria.HSP, m.cfg.PerformanceRatio)
	}
	if criteria.TargetKWp <= 0 {
		return criteria, fmt.Errorf("%w: target_kwp or monthly_consumption_kwh and hsp are required", ErrInvalidCriteria)
	}
	if criteria.Tolerance <= 0 {
		criteria.Tolerance = m.cfg.DefaultTolerance
	}
	if criteria.Limit <= 0 {
		criteria.Limit = m.cfg.DefaultLimit
	}
	return criteria, nil
}

// SearchResult is a ranked match list plus how many kits were considered.
type SearchResult struct {
	Matches      []model.KitMatch
	Candidates   int // kits inside the capacity band
	MpptExcluded int // candidates dropped by MPPT validation
}

// FindMatchingKits returns the kits whose capacity lies within the target
// tolerance band, best score first. With MPPT validation enabled (the
// default) a kit is only returned when its string configuration validates
// as compatible; kits lacking electrical parameters are excluded too.
func (m *Matcher) FindMatchingKits(criteria model.KitCriteria, kits []model.NormalizedKit) ([]model.KitMatch, error) {
	res, err := m.Search(criteria, kits)
	if err != nil {
		return nil, err
	}
	return res.Matches, nil
}

// Search is FindMatchingKits with candidate counts.
func (m *Matcher) Search(criteria model.KitCriteria, kits []model.NormalizedKit) (*SearchResult, error) {
	criteria, err := m.Resolve(criteria)
	if err != nil {
		return nil, err
	}

	lo := criteria.TargetKWp * (1 - criteria.Tolerance)
	hi := criteria.TargetKWp * (1 + criteria.Tolerance)

	res := &SearchResult{Matches: make([]model.KitMatch, 0)}
	for i := range kits {
		kit := &kits[i]
		if kit.SystemCapacityKWp < lo || kit.SystemCapacityKWp > hi {
			continue
		}
		if criteria.OnlyAvailable && !kit.Available() {
			continue
		}
		res.Candidates++

		score, reasons := m.CalculateMatchScore(kit, criteria)
		match := model.KitMatch{
			Kit:                 *kit,
			Score:               score,
			MatchReasons:        reasons,
			EstimatedMonthlyKWh: electrical.EstimateMonthlyGenerationKWh(kit.SystemCapacityKWp, criteria.HSP, m.cfg.PerformanceRatio),
		}

		if criteria.MPPTValidationEnabled() {
			result, ok := m.ValidateKit(kit)
			if !ok || !result.Compatible {
				res.MpptExcluded++
				continue
			}
			match.Mppt = result
			match.MatchReasons = append(match.MatchReasons,
				fmt.Sprintf("MPPT compatible with %d modules per string", result.ModulesPerString))
		}
		res.Matches = append(res.Matches, match)
	}

	sort.SliceStable(res.Matches, func(i, j int) bool {
		a, b := res.Matches[i], res.Matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Kit.ID < b.Kit.ID
	})
	if len(res.Matches) > criteria.Limit {
		res.Matches = res.Matches[:criteria.Limit]
	}
	return res, nil
}

// CalculateMatchScore scores kit against criteria on power proximity,
// system type, roof type, brand preference, phase and availability.
// criteria.TargetKWp must already be set.
func (m *Matcher) CalculateMatchScore(kit *model.NormalizedKit, criteria model.KitCriteria) (float64, []string) {
	score := 0.0
	reasons := make([]string, 0, 6)

	tol := criteria.Tolerance
	if tol <= 0 {
		tol = m.cfg.DefaultTolerance
	}
	if target := criteria.TargetKWp; target > 0 {
		diff := math.Abs(kit.SystemCapacityKWp-target) / (target * tol)
		if pts := powerPoints * (1 - diff); pts > 0 {
			score += pts
			reasons = append(reasons, fmt.Sprintf("capacity %.2f kWp close to target %.2f kWp", kit.SystemCapacityKWp, target))
		}
	}

	if want := criteria.SystemType; want != "" && kit.SystemType != "" {
		switch {
		case kit.SystemType == want:
			score += systemTypePoints
			reasons = append(reasons, fmt.Sprintf("system type %s", want))
		case kit.SystemType == model.SystemHybrid || want == model.SystemHybrid:
			score += hybridPoints
			reasons = append(reasons, fmt.Sprintf("%s kit serves %s systems", kit.SystemType, want))
		}
	}

	if criteria.RoofType != "" && kit.StructureType == criteria.RoofType {
		score += roofPoints
		reasons = append(reasons, fmt.Sprintf("structure for %s roof", criteria.RoofType))
	}

	if pts, brands := m.brandScore(kit, criteria.PreferredBrands); pts > 0 {
		score += pts
		reasons = append(reasons, "preferred brand: "+strings.Join(brands, ", "))
	}

	if criteria.Phase != "" && kit.Phase == criteria.Phase {
		score += phasePoints
		reasons = append(reasons, fmt.Sprintf("%s-phase", criteria.Phase))
	}

	if kit.Available() {
		score += stockPoints
		reasons = append(reasons, "in stock")
	}

	return math.Round(score*100) / 100, reasons
}

func (m *Matcher) brandScore(kit *model.NormalizedKit, preferred []string) (float64, []string) {
	if len(preferred) == 0 {
		return 0, nil
	}
	wanted := make(map[string]bool, len(preferred))
	for _, b := range preferred {
		wanted[m.normalizer.Normalize(b)] = true
	}

	var hits []string
	if wanted[kit.PanelManufacturer] {
		hits = append(hits, kit.PanelManufacturer)
	}
	if wanted[kit.InverterManufacturer] && kit.InverterManufacturer != kit.PanelManufacturer {
		hits = append(hits, kit.InverterManufacturer)
	}

	switch {
	case wanted[kit.PanelManufacturer] && wanted[kit.InverterManufacturer]:
		return brandPoints, hits
	case len(hits) > 0:
		return brandPartialPoints, hits
	}
	return 0, nil
}

// ValidateKit checks the kit's first panel model against its first
// inverter. The string length is the kit's declared modules per string or,
// failing that, the panels spread evenly over every MPPT input. ok is false
// when the kit lacks a panel, an inverter or their electrical parameters.
func (m *Matcher) ValidateKit(kit *model.NormalizedKit) (*model.MpptValidationResult, bool) {
	panels := kit.ComponentsOfType(model.ComponentPanel)
	inverters := kit.ComponentsOfType(model.ComponentInverter)
	if len(panels) == 0 || len(inverters) == 0 {
		return nil, false
	}

	module := m.params.Module(panels[0])
	inverter, mppts := m.params.Inverter(inverters[0])
	if module == nil || inverter == nil {
		return nil, false
	}

	n := kit.ModulesPerString
	if n <= 0 {
		inputs := inverters[0].Quantity * mppts
		n = int(math.Ceil(float64(panels[0].Quantity) / float64(max(inputs, 1))))
	}
	if n <= 0 {
		return nil, false
	}

	result := m.validator.ValidateMPPT(inverter, module, n)
	return &result, true
}
