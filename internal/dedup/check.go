package dedup

import (
	"fmt"
	"math"
	"slices"

	"solar-catalog-api/internal/matching"
	"solar-catalog-api/internal/model"
)

// Config holds the tunable dedup constants.
type Config struct {
	// ConfidenceThreshold is the minimum confidence for a merge.
	ConfidenceThreshold float64
	// SpecTolerance is the relative difference under which two spec values agree.
	SpecTolerance float64
}

const (
	DefaultConfidenceThreshold = 0.85
	DefaultSpecTolerance       = 0.05
)

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		SpecTolerance:       DefaultSpecTolerance,
	}
}

// Score weights, out of 100.
const (
	manufacturerPoints = 30
	modelPoints        = 30
	specPoints         = 40
)

// Candidate is a raw product reduced to what the dedup score looks at.
type Candidate struct {
	Manufacturer string // canonical
	Model        string
	Specs        model.SpecSet
}

// CandidateFrom normalizes a raw product for scoring.
func CandidateFrom(p model.RawProduct, normalizer *matching.ManufacturerNormalizer) Candidate {
	return Candidate{
		Manufacturer: normalizer.Normalize(p.Manufacturer),
		Model:        modelToken(p),
		Specs:        p.Specs(),
	}
}

func modelToken(p model.RawProduct) string {
	if p.Model != "" {
		return p.Model
	}
	return p.Name
}

// Check is the outcome of comparing one product with one SKU.
type Check struct {
	IsDuplicate bool     `json:"is_duplicate"`
	Confidence  float64  `json:"confidence"`
	Reasons     []string `json:"reasons"`
}

// CheckDuplication scores c against sku. Different manufacturers always give
// confidence 0.
func CheckDuplication(c Candidate, sku *model.CanonicalSku, cfg Config) Check {
	if c.Manufacturer == model.UnknownManufacturer || c.Manufacturer != sku.Manufacturer {
		return Check{Reasons: []string{fmt.Sprintf("manufacturer mismatch: %s vs %s", c.Manufacturer, sku.Manufacturer)}}
	}

	score := float64(manufacturerPoints)
	reasons := []string{"manufacturer match: " + c.Manufacturer}

	sim := matching.Similarity(matching.Normalize(c.Model), matching.Normalize(sku.ModelNumber))
	switch {
	case sim > 0.9:
		score += modelPoints
		reasons = append(reasons, fmt.Sprintf("model similarity %.2f", sim))
	case sim > 0.7:
		score += modelPoints / 2
		reasons = append(reasons, fmt.Sprintf("partial model similarity %.2f", sim))
	default:
		reasons = append(reasons, fmt.Sprintf("model mismatch (similarity %.2f)", sim))
		return finish(score, reasons, cfg)
	}

	agreed, compared := 0, 0
	for _, field := range model.DedupFields {
		a, okA := c.Specs.Get(field)
		b, okB := sku.TechnicalSpecs.Get(field)
		if !okA || !okB {
			continue
		}
		compared++
		if withinTolerance(a, b, cfg.SpecTolerance) {
			agreed++
		} else {
			reasons = append(reasons, fmt.Sprintf("%s differs (%g vs %g)", field, a, b))
		}
	}
	if compared > 0 {
		score += specPoints * float64(agreed) / float64(compared)
		reasons = append(reasons, fmt.Sprintf("specs agree %d/%d", agreed, compared))
	} else {
		reasons = append(reasons, "no comparable specs")
	}

	return finish(score, reasons, cfg)
}

func finish(score float64, reasons []string, cfg Config) Check {
	confidence := math.Round(score*100) / 10000
	return Check{
		IsDuplicate: confidence >= cfg.ConfidenceThreshold,
		Confidence:  confidence,
		Reasons:     slices.Clip(reasons),
	}
}

// withinTolerance compares relative to the larger magnitude so that the
// result does not depend on argument order.
func withinTolerance(a, b, tol float64) bool {
	if a == b {
		return true
	}
	ref := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b)/ref <= tol
}
