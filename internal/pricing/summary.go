package pricing

import (
	"slices"

	"solar-catalog-api/internal/model"
)

// Summarize computes price statistics over offers. Offers without a positive
// price are ignored; with none left the summary is all zeros. The input
// order is not modified.
func Summarize(offers []model.DistributorOffer) model.PricingSummary {
	prices := make([]float64, 0, len(offers))
	for _, o := range offers {
		if v, ok := o.PricedValue(); ok {
			prices = append(prices, v)
		}
	}
	return SummarizePrices(prices)
}

// SummarizeKitOffers is Summarize for kit listings.
func SummarizeKitOffers(offers []model.KitOffer) model.PricingSummary {
	prices := make([]float64, 0, len(offers))
	for _, o := range offers {
		if o.Price != nil && *o.Price > 0 {
			prices = append(prices, *o.Price)
		}
	}
	return SummarizePrices(prices)
}

// SummarizePrices computes statistics over positive prices.
func SummarizePrices(prices []float64) model.PricingSummary {
	sorted := make([]float64, 0, len(prices))
	for _, p := range prices {
		if p > 0 {
			sorted = append(sorted, p)
		}
	}
	if len(sorted) == 0 {
		return model.PricingSummary{}
	}
	slices.Sort(sorted)

	sum := 0.0
	for _, p := range sorted {
		sum += p
	}

	lowest := sorted[0]
	highest := sorted[len(sorted)-1]
	return model.PricingSummary{
		LowestPrice:       lowest,
		HighestPrice:      highest,
		AveragePrice:      sum / float64(len(sorted)),
		MedianPrice:       median(sorted),
		PriceVariationPct: (highest - lowest) / lowest * 100,
		PricedOffers:      len(sorted),
	}
}

// median expects a sorted, non-empty slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
