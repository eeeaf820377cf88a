package pricing

import (
	"fmt"
	"time"

	"solar-catalog-api/internal/model"
)

// BuildReport assembles the price comparison report for a run.
func BuildReport(skus []model.CanonicalSku, runID string, generatedAt time.Time) model.PriceComparisonReport {
	analysis := Analyze(skus)
	summary := summarizeCatalog(skus)

	return model.PriceComparisonReport{
		RunID:               runID,
		GeneratedAt:         generatedAt,
		Summary:             summary,
		DistributorRankings: analysis.Distributors,
		CategoryStats:       analysis.Categories,
		Insights:            analysis.Insights,
		Recommendations:     recommendations(summary, analysis),
	}
}

func summarizeCatalog(skus []model.CanonicalSku) model.ReportSummary {
	var s model.ReportSummary
	distributors := make(map[string]struct{})
	variationSum, variationN := 0.0, 0

	for i := range skus {
		sku := &skus[i]
		s.TotalSkus++
		s.TotalOffers += len(sku.DistributorOffers)
		names := sku.Distributors()
		for _, d := range names {
			distributors[d] = struct{}{}
		}
		switch {
		case len(names) >= 2:
			s.MultiDistributorSkus++
		case len(names) == 1:
			s.SingleOfferSkus++
		}
		if sku.PricingSummary.PricedOffers > 1 {
			variationSum += sku.PricingSummary.PriceVariationPct
			variationN++
		}
	}

	s.TotalDistributors = len(distributors)
	if variationN > 0 {
		s.AvgPriceVariationPct = round2(variationSum / float64(variationN))
	}
	return s
}

func recommendations(summary model.ReportSummary, analysis model.PriceAnalysis) []string {
	out := []string{}

	highVariation := 0
	unpriced := 0
	for _, in := range analysis.Insights {
		switch in.Type {
		case model.InsightHighVariation:
			highVariation++
		case model.InsightNoPricing:
			unpriced = int(in.Value)
		}
	}

	if highVariation > 0 {
		out = append(out, fmt.Sprintf("Review pricing of the %d SKUs with more than %.0f%% variation between distributors", highVariation, HighVariationPct))
	}
	if len(analysis.Distributors) > 0 && analysis.Distributors[0].TimesCheapest > 0 {
		top := analysis.Distributors[0]
		out = append(out, fmt.Sprintf("Prioritize %s: lowest price on %d of its %d products", top.Distributor, top.TimesCheapest, top.TotalProducts))
	}
	if summary.TotalSkus > 0 && summary.SingleOfferSkus*2 > summary.TotalSkus {
		out = append(out, fmt.Sprintf("%d of %d SKUs have a single distributor; onboard more suppliers to improve price comparison", summary.SingleOfferSkus, summary.TotalSkus))
	}
	if unpriced > 0 {
		out = append(out, fmt.Sprintf("Request prices for the %d SKUs without a valid price", unpriced))
	}
	return out
}
