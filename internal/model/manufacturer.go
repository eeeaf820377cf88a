package model

// Tier classifies panel/inverter manufacturers by bankability.
type Tier string

const (
	Tier1       Tier = "TIER_1"
	Tier2       Tier = "TIER_2"
	Tier3       Tier = "TIER_3"
	TierUnknown Tier = "unknown"
)

// UnknownManufacturer is the canonical name for empty or unusable input.
const UnknownManufacturer = "UNKNOWN"

// Manufacturer is the canonical identity observed during a run.
type Manufacturer struct {
	Name          string           `json:"name"`
	Aliases       []string         `json:"aliases"`
	Tier          Tier             `json:"tier"`
	Country       string           `json:"country,omitempty"`
	ProductCounts map[Category]int `json:"product_counts"`
}

// TotalProducts sums the per-category counts.
func (m Manufacturer) TotalProducts() int {
	total := 0
	for _, n := range m.ProductCounts {
		total += n
	}
	return total
}
