package model

// DistributorOffer is one distributor's listing of a canonical SKU.
type DistributorOffer struct {
	Distributor  string   `json:"distributor"`
	ProductID    string   `json:"product_id"`
	Price        *float64 `json:"price,omitempty"`
	Available    bool     `json:"available"`
	Warehouse    string   `json:"warehouse,omitempty"`
	LeadTimeDays int      `json:"lead_time_days,omitempty"`
}

// PricedValue returns the offer price when it is present and positive.
func (o DistributorOffer) PricedValue() (float64, bool) {
	if o.Price == nil || *o.Price <= 0 {
		return 0, false
	}
	return *o.Price, true
}

// PricingSummary is derived from a SKU's current offers and never set directly.
type PricingSummary struct {
	LowestPrice       float64 `json:"lowest_price"`
	HighestPrice      float64 `json:"highest_price"`
	AveragePrice      float64 `json:"average_price"`
	MedianPrice       float64 `json:"median_price"`
	PriceVariationPct float64 `json:"price_variation_pct"`
	PricedOffers      int     `json:"priced_offers"`
}

// CanonicalSku groups every distributor offer for one distinct product.
type CanonicalSku struct {
	ID                string             `json:"sku"`
	Manufacturer      string             `json:"manufacturer"`
	ModelNumber       string             `json:"model_number"`
	Name              string             `json:"name"`
	Category          Category           `json:"category"`
	TechnicalSpecs    SpecSet            `json:"technical_specs"`
	DistributorOffers []DistributorOffer `json:"distributor_offers"`
	PricingSummary    PricingSummary     `json:"pricing_summary"`
}

// Distributors returns the distinct distributor names in offer order.
func (s *CanonicalSku) Distributors() []string {
	seen := make(map[string]bool, len(s.DistributorOffers))
	var out []string
	for _, o := range s.DistributorOffers {
		if !seen[o.Distributor] {
			seen[o.Distributor] = true
			out = append(out, o.Distributor)
		}
	}
	return out
}

// InStock reports whether any distributor has the SKU available.
func (s *CanonicalSku) InStock() bool {
	for _, o := range s.DistributorOffers {
		if o.Available {
			return true
		}
	}
	return false
}
