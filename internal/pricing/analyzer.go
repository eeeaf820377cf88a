package pricing

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"solar-catalog-api/internal/model"
)

const (
	// HighVariationPct flags SKUs whose price spread exceeds this percentage.
	HighVariationPct = 20.0
	// MaxVariationInsights caps the high-variation insights.
	MaxVariationInsights = 10
	// rankingWeight scales the cheapest bonus and most-expensive penalty.
	rankingWeight = 20.0
)

type distributorStats struct {
	products      int
	cheapest      int
	mostExpensive int
	deviationSum  float64
	deviationN    int
}

// Analyze ranks distributors by relative pricing and summarizes categories.
// Empty input yields empty (non-nil) slices.
func Analyze(skus []model.CanonicalSku) model.PriceAnalysis {
	stats := make(map[string]*distributorStats)
	get := func(name string) *distributorStats {
		s, ok := stats[name]
		if !ok {
			s = &distributorStats{}
			stats[name] = s
		}
		return s
	}

	cheapestByCategory := make(map[model.Category]map[string]int)

	for i := range skus {
		sku := &skus[i]
		for _, d := range sku.Distributors() {
			get(d).products++
		}

		prices := distributorPrices(sku)
		mean := sku.PricingSummary.AveragePrice
		if mean > 0 {
			for d, p := range prices {
				s := get(d)
				s.deviationSum += (p - mean) / mean * 100
				s.deviationN++
			}
		}

		if len(prices) < 2 {
			continue
		}
		if d, ok := singleExtreme(prices, func(a, b float64) bool { return a < b }); ok {
			get(d).cheapest++
			if cheapestByCategory[sku.Category] == nil {
				cheapestByCategory[sku.Category] = make(map[string]int)
			}
			cheapestByCategory[sku.Category][d]++
		}
		if d, ok := singleExtreme(prices, func(a, b float64) bool { return a > b }); ok {
			get(d).mostExpensive++
		}
	}

	rankings := make([]model.DistributorRanking, 0, len(stats))
	for name, s := range stats {
		avgDev := 0.0
		if s.deviationN > 0 {
			avgDev = s.deviationSum / float64(s.deviationN)
		}
		score := 100 - math.Abs(avgDev)
		if s.products > 0 {
			score += rankingWeight * float64(s.cheapest) / float64(s.products)
			score -= rankingWeight * float64(s.mostExpensive) / float64(s.products)
		}
		rankings = append(rankings, model.DistributorRanking{
			Distributor:          name,
			TotalProducts:        s.products,
			TimesCheapest:        s.cheapest,
			TimesMostExpensive:   s.mostExpensive,
			AvgPriceDeviationPct: round2(avgDev),
			Score:                round2(clamp(score, 0, 100)),
		})
	}
	slices.SortFunc(rankings, func(a, b model.DistributorRanking) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Distributor, b.Distributor)
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}

	categories := analyzeCategories(skus, cheapestByCategory)

	return model.PriceAnalysis{
		Distributors: rankings,
		Categories:   categories,
		Insights:     buildInsights(skus, rankings, categories),
	}
}

// distributorPrices returns each distributor's lowest positive price.
func distributorPrices(sku *model.CanonicalSku) map[string]float64 {
	out := make(map[string]float64)
	for _, o := range sku.DistributorOffers {
		p, ok := o.PricedValue()
		if !ok {
			continue
		}
		if cur, seen := out[o.Distributor]; !seen || p < cur {
			out[o.Distributor] = p
		}
	}
	return out
}

// singleExtreme returns the distributor holding the extreme price, or false
// when the extreme is shared.
func singleExtreme(prices map[string]float64, better func(a, b float64) bool) (string, bool) {
	var best string
	var bestPrice float64
	tied := false
	first := true
	for d, p := range prices {
		switch {
		case first || better(p, bestPrice):
			best, bestPrice, tied, first = d, p, false, false
		case p == bestPrice:
			tied = true
		}
	}
	return best, !first && !tied
}

func analyzeCategories(skus []model.CanonicalSku, cheapest map[model.Category]map[string]int) []model.CategoryAnalysis {
	byCategory := make(map[model.Category]*model.CategoryAnalysis)
	priceSum := make(map[model.Category]float64)
	priceN := make(map[model.Category]int)
	variationSum := make(map[model.Category]float64)
	variationN := make(map[model.Category]int)

	for i := range skus {
		sku := &skus[i]
		ca, ok := byCategory[sku.Category]
		if !ok {
			ca = &model.CategoryAnalysis{Category: sku.Category}
			byCategory[sku.Category] = ca
		}
		ca.TotalSkus++
		switch n := len(sku.Distributors()); {
		case n >= 2:
			ca.MultiDistributorSkus++
		case n == 1:
			ca.SingleOfferSkus++
		}
		if sku.PricingSummary.PricedOffers > 0 {
			priceSum[sku.Category] += sku.PricingSummary.AveragePrice
			priceN[sku.Category]++
		}
		if sku.PricingSummary.PricedOffers > 1 {
			variationSum[sku.Category] += sku.PricingSummary.PriceVariationPct
			variationN[sku.Category]++
		}
	}

	out := make([]model.CategoryAnalysis, 0, len(byCategory))
	for c, ca := range byCategory {
		if priceN[c] > 0 {
			ca.AvgPrice = round2(priceSum[c] / float64(priceN[c]))
		}
		if variationN[c] > 0 {
			ca.AvgPriceVariationPct = round2(variationSum[c] / float64(variationN[c]))
		}
		ca.CheapestDistributor = topCount(cheapest[c])
		out = append(out, *ca)
	}
	slices.SortFunc(out, func(a, b model.CategoryAnalysis) int {
		return cmp.Compare(categoryOrder(a.Category), categoryOrder(b.Category))
	})
	return out
}

func categoryOrder(c model.Category) int {
	if i := slices.Index(model.Categories, c); i >= 0 {
		return i
	}
	return len(model.Categories)
}

// topCount returns the key with the highest count, ties broken by name.
func topCount(counts map[string]int) string {
	best, bestN := "", 0
	for k, n := range counts {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return best
}

func buildInsights(skus []model.CanonicalSku, rankings []model.DistributorRanking, categories []model.CategoryAnalysis) []model.Insight {
	insights := []model.Insight{}

	var variable []*model.CanonicalSku
	unpriced := 0
	for i := range skus {
		sku := &skus[i]
		if sku.PricingSummary.PricedOffers == 0 {
			unpriced++
		}
		if sku.PricingSummary.PriceVariationPct > HighVariationPct {
			variable = append(variable, sku)
		}
	}
	slices.SortStableFunc(variable, func(a, b *model.CanonicalSku) int {
		return cmp.Compare(b.PricingSummary.PriceVariationPct, a.PricingSummary.PriceVariationPct)
	})
	if len(variable) > MaxVariationInsights {
		variable = variable[:MaxVariationInsights]
	}
	for _, sku := range variable {
		ps := sku.PricingSummary
		msg := fmt.Sprintf("%s varies %.1f%% between distributors (R$ %.2f to R$ %.2f)",
			sku.ID, ps.PriceVariationPct, ps.LowestPrice, ps.HighestPrice)
		insights = append(insights, model.Insight{
			Type:     model.InsightHighVariation,
			Severity: model.SeverityWarning,
			Message:  msg,
			SkuID:    sku.ID,
			Category: sku.Category,
			Value:    round2(ps.PriceVariationPct),
		})
	}

	if len(rankings) > 0 && rankings[0].TimesCheapest > 0 {
		top := rankings[0]
		insights = append(insights, model.Insight{
			Type:     model.InsightBestDistributor,
			Severity: model.SeverityInfo,
			Message:  fmt.Sprintf("%s has the best pricing score (%.1f), cheapest on %d SKUs", top.Distributor, top.Score, top.TimesCheapest),
			Value:    top.Score,
		})
	}

	for _, c := range categories {
		if c.SingleOfferSkus == 0 {
			continue
		}
		insights = append(insights, model.Insight{
			Type:     model.InsightSingleOffer,
			Severity: model.SeverityInfo,
			Message:  fmt.Sprintf("%d of %d %s SKUs are offered by a single distributor", c.SingleOfferSkus, c.TotalSkus, c.Category),
			Category: c.Category,
			Value:    float64(c.SingleOfferSkus),
		})
	}

	if unpriced > 0 {
		insights = append(insights, model.Insight{
			Type:     model.InsightNoPricing,
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf("%d SKUs have no valid price", unpriced),
			Value:    float64(unpriced),
		})
	}

	return insights
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
