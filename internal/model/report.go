package model

import "time"

type DistributorRanking struct {
	Rank                 int     `json:"rank"`
	Distributor          string  `json:"distributor"`
	TotalProducts        int     `json:"total_products"`
	TimesCheapest        int     `json:"times_cheapest"`
	TimesMostExpensive   int     `json:"times_most_expensive"`
	AvgPriceDeviationPct float64 `json:"avg_price_deviation_pct"`
	Score                float64 `json:"score"`
}

type CategoryAnalysis struct {
	Category             Category `json:"category"`
	TotalSkus            int      `json:"total_skus"`
	MultiDistributorSkus int      `json:"multi_distributor_skus"`
	SingleOfferSkus      int      `json:"single_offer_skus"`
	AvgPrice             float64  `json:"avg_price"`
	AvgPriceVariationPct float64  `json:"avg_price_variation_pct"`
	CheapestDistributor  string   `json:"cheapest_distributor,omitempty"`
}

type InsightType string

const (
	InsightHighVariation   InsightType = "high_price_variation"
	InsightSingleOffer     InsightType = "single_offer"
	InsightBestDistributor InsightType = "best_distributor"
	InsightNoPricing       InsightType = "no_pricing"
)

type Insight struct {
	Type     InsightType   `json:"type"`
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
	SkuID    string        `json:"sku,omitempty"`
	Category Category      `json:"category,omitempty"`
	Value    float64       `json:"value,omitempty"`
}

// PriceAnalysis is the competitiveness analyzer output.
type PriceAnalysis struct {
	Distributors []DistributorRanking `json:"distributors"`
	Categories   []CategoryAnalysis   `json:"categories"`
	Insights     []Insight            `json:"insights"`
}

type ReportSummary struct {
	TotalSkus            int     `json:"total_skus"`
	TotalOffers          int     `json:"total_offers"`
	TotalDistributors    int     `json:"total_distributors"`
	MultiDistributorSkus int     `json:"multi_distributor_skus"`
	SingleOfferSkus      int     `json:"single_offer_skus"`
	AvgPriceVariationPct float64 `json:"avg_price_variation_pct"`
}

// PriceComparisonReport is the serializable report produced per run.
type PriceComparisonReport struct {
	RunID               string               `json:"run_id,omitempty"`
	GeneratedAt         time.Time            `json:"generated_at"`
	Summary             ReportSummary        `json:"summary"`
	DistributorRankings []DistributorRanking `json:"distributor_rankings"`
	CategoryStats       []CategoryAnalysis   `json:"category_stats"`
	Insights            []Insight            `json:"insights"`
	Recommendations     []string             `json:"recommendations"`
}
