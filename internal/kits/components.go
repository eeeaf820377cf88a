package kits

import (
	"math"
	"regexp"
	"strings"

	"solar-catalog-api/internal/matching"
	"solar-catalog-api/internal/model"
)

var componentSeparatorRegex = regexp.MustCompile(`\s*(?:\+|;|\n|\|)\s*`)

// Component match weights, out of 100.
const (
	powerMatchPoints      = 30
	similarityMatchPoints = 70
	// full power credit up to this relative difference
	powerFullCredit = 0.05
	// no power credit beyond this relative difference
	powerNoCredit = 0.20
)

// ExtractComponents returns the kit's line items: the structured component
// list when the export has one, otherwise items parsed from the description,
// e.g. "10x Painel Jinko 550W + 1x Inversor Growatt 5kW + Estrutura".
func ExtractComponents(p model.RawProduct, normalizer *matching.ManufacturerNormalizer) []model.RawKitComponent {
	if p.Kit != nil && len(p.Kit.Components) > 0 {
		out := make([]model.RawKitComponent, len(p.Kit.Components))
		copy(out, p.Kit.Components)
		for i := range out {
			if out[i].Manufacturer == "" {
				out[i].Manufacturer = normalizer.Detect(out[i].Description)
			}
			if out[i].Quantity <= 0 {
				out[i].Quantity = 1
			}
		}
		return out
	}

	text := p.Description
	if text == "" {
		text = p.Name
	}

	var out []model.RawKitComponent
	for _, part := range componentSeparatorRegex.Split(text, -1) {
		if i := strings.LastIndex(part, ":"); i >= 0 {
			part = part[i+1:]
		}
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		features := matching.ExtractFeatures(part)
		kind := matching.ParseComponentType(part)
		if kind == model.ComponentOther && features.Quantity == 0 {
			continue
		}

		comp := model.RawKitComponent{
			Type:         kind,
			Description:  part,
			Manufacturer: normalizer.Detect(part),
			Quantity:     max(features.Quantity, 1),
			PowerW:       features.PowerW,
		}
		if features.HasPowerKW() {
			comp.PowerW = features.PowerKW * 1000
		}
		out = append(out, comp)
	}
	return out
}

// MatchComponent resolves a kit line item to the best canonical SKU of its
// category. Candidates are limited to the component's manufacturer when one
// is known. Each candidate scores up to 30 points for power proximity and 70
// for text similarity; the best positive score wins and its confidence is
// score/100. No minimum confidence is applied. Unmatched components keep a
// nil SkuID and zero confidence.
func MatchComponent(c model.RawKitComponent, skus *SkuCatalog, normalizer *matching.ManufacturerNormalizer) model.KitComponent {
	out := model.KitComponent{
		Type:         c.Type,
		Manufacturer: normalizer.Normalize(c.Manufacturer),
		Model:        c.Model,
		Quantity:     max(c.Quantity, 1),
		PowerW:       c.PowerW,
		Description:  c.Description,
	}
	if c.UnitPrice != nil {
		out.UnitPrice = *c.UnitPrice
	}

	category, ok := c.Type.Category()
	if !ok {
		return priced(out)
	}

	text := c.Model
	if text == "" {
		text = c.Description
	}
	text = matching.Normalize(text)

	var best *model.CanonicalSku
	bestScore := 0.0
	for _, sku := range skus.InCategory(category) {
		if out.Manufacturer != model.UnknownManufacturer && sku.Manufacturer != out.Manufacturer {
			continue
		}
		score := componentScore(text, c.PowerW, sku)
		if score > bestScore {
			best, bestScore = sku, score
		}
	}
	if best == nil {
		return priced(out)
	}

	id := best.ID
	out.SkuID = &id
	out.MatchConfidence = math.Round(bestScore*100) / 10000
	out.Manufacturer = best.Manufacturer
	if out.Model == "" {
		out.Model = best.ModelNumber
	}
	if out.PowerW == 0 {
		out.PowerW = skuPowerW(best)
	}
	if out.UnitPrice == 0 {
		out.UnitPrice = best.PricingSummary.MedianPrice
	}
	return priced(out)
}

func priced(c model.KitComponent) model.KitComponent {
	c.TotalPrice = math.Round(c.UnitPrice*float64(c.Quantity)*100) / 100
	return c
}

func componentScore(text string, powerW float64, sku *model.CanonicalSku) float64 {
	sim := max(
		matching.Similarity(text, matching.Normalize(sku.ModelNumber)),
		matching.Similarity(text, matching.Normalize(sku.Name)),
	)
	return powerScore(powerW, skuPowerW(sku)) + similarityMatchPoints*sim
}

// powerScore gives full credit within 5% relative difference, falling
// linearly to 0 at 20%.
func powerScore(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	diff := math.Abs(a-b) / math.Max(a, b)
	switch {
	case diff <= powerFullCredit:
		return powerMatchPoints
	case diff >= powerNoCredit:
		return 0
	}
	return powerMatchPoints * (powerNoCredit - diff) / (powerNoCredit - powerFullCredit)
}
