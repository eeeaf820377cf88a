package kits

import (
	"errors"
	"fmt"
	"math"

	"solar-catalog-api/internal/matching"
	"solar-catalog-api/internal/model"
	"solar-catalog-api/internal/pricing"
)

var (
	errNotKit     = errors.New("invalid record: not a kit")
	errNoCapacity = errors.New("invalid record: missing kit capacity")
)

// Stats counts what happened to the raw kit products of one run.
type Stats struct {
	Input               int `json:"input"`
	KitsCreated         int `json:"kits_created"`
	OffersMerged        int `json:"offers_merged"`
	Rejected            int `json:"rejected"`
	ComponentsMatched   int `json:"components_matched"`
	ComponentsUnmatched int `json:"components_unmatched"`
}

// Result is the kit normalization output.
type Result struct {
	Kits    []model.NormalizedKit
	Rejects []model.IngestReject
	Stats   Stats
}

// Normalizer resolves raw kits against the canonical SKU catalog and merges
// listings of the same kit across distributors. It is not safe for
// concurrent use.
type Normalizer struct {
	manufacturers *matching.ManufacturerRegistry
	skus          *SkuCatalog
}

// NewNormalizer creates a kit normalizer over skus.
func NewNormalizer(manufacturers *matching.ManufacturerRegistry, skus *SkuCatalog) *Normalizer {
	return &Normalizer{manufacturers: manufacturers, skus: skus}
}

// Run normalizes products. Kits whose capacity cannot be determined are
// rejected; unmatched components are kept on the kit and also reported as
// rejects so they can be reviewed.
func (n *Normalizer) Run(products []model.RawProduct) *Result {
	res := &Result{Stats: Stats{Input: len(products)}}
	byID := make(map[string]*model.NormalizedKit)
	var order []*model.NormalizedKit

	for _, p := range products {
		kit, err := n.Normalize(p)
		if err != nil {
			res.Stats.Rejected++
			res.Rejects = append(res.Rejects, reject(p, model.RejectInvalidRecord, err.Error()))
			continue
		}
		n.manufacturers.Register(p.Manufacturer, model.CategoryKits)

		for _, c := range kit.Components {
			if c.SkuID != nil {
				res.Stats.ComponentsMatched++
				continue
			}
			if c.Type == model.ComponentOther {
				continue
			}
			res.Stats.ComponentsUnmatched++
			res.Rejects = append(res.Rejects, reject(p, model.RejectUnmatchedComponent,
				fmt.Sprintf("unmatched component: %s", c.Description)))
		}

		if existing, ok := byID[kit.ID]; ok {
			mergeKit(existing, kit)
			res.Stats.OffersMerged++
			continue
		}
		byID[kit.ID] = kit
		order = append(order, kit)
		res.Stats.KitsCreated++
	}

	res.Kits = make([]model.NormalizedKit, len(order))
	for i, k := range order {
		res.Kits[i] = *k
	}
	return res
}

// Normalize builds the NormalizedKit for a single raw kit product with one
// offer. The id is KIT-{capacity}KWP-{panel manufacturer}-{inverter
// manufacturer}, so identical systems sold by different distributors share
// it.
func (n *Normalizer) Normalize(p model.RawProduct) (*model.NormalizedKit, error) {
	if p.Kit == nil {
		return nil, errNotKit
	}

	normalizer := n.manufacturers.Normalizer()
	raw := ExtractComponents(p, normalizer)
	components := make([]model.KitComponent, 0, len(raw))
	for _, c := range raw {
		components = append(components, MatchComponent(c, n.skus, normalizer))
	}

	capacity := p.Kit.CapacityKWp
	if capacity <= 0 {
		capacity = panelCapacityKWp(components)
	}
	if capacity <= 0 {
		return nil, errNoCapacity
	}
	capacity = math.Round(capacity*100) / 100

	panelMfr := dominantManufacturer(components, model.ComponentPanel)
	inverterMfr := dominantManufacturer(components, model.ComponentInverter)

	phase := p.Kit.Phase
	if phase == "" {
		phase = n.inverterPhase(components)
	}

	kit := &model.NormalizedKit{
		ID:                   KitID(capacity, panelMfr, inverterMfr),
		Name:                 p.Name,
		SystemCapacityKWp:    capacity,
		SystemType:           p.Kit.SystemType,
		StructureType:        p.Kit.StructureType,
		Phase:                phase,
		PanelManufacturer:    panelMfr,
		InverterManufacturer: inverterMfr,
		ModulesPerString:     p.Kit.ModulesPerString,
		Components:           components,
		Offers: []model.KitOffer{{
			Distributor:     p.Distributor,
			ProductID:       p.ID,
			Price:           clonePrice(p.Price),
			Available:       p.Available,
			ComponentsTotal: componentsTotal(components),
		}},
		MatchConfidence: meanConfidence(components),
	}
	refreshPricing(kit)
	return kit, nil
}

// KitID is the deterministic identity of a normalized kit.
func KitID(capacityKWp float64, panelManufacturer, inverterManufacturer string) string {
	return fmt.Sprintf("KIT-%.2fKWP-%s-%s", capacityKWp,
		matching.Slug(panelManufacturer), matching.Slug(inverterManufacturer))
}

// mergeKit adds other's offers to kit. Attributes already on kit win; other
// only fills gaps. Capacity and components stay those of the first listing.
func mergeKit(kit, other *model.NormalizedKit) {
	kit.Offers = append(kit.Offers, other.Offers...)
	if kit.SystemType == "" {
		kit.SystemType = other.SystemType
	}
	if kit.StructureType == "" {
		kit.StructureType = other.StructureType
	}
	if kit.Phase == "" {
		kit.Phase = other.Phase
	}
	if kit.ModulesPerString == 0 {
		kit.ModulesPerString = other.ModulesPerString
	}
	refreshPricing(kit)
}

func refreshPricing(kit *model.NormalizedKit) {
	kit.PricingSummary = pricing.SummarizeKitOffers(kit.Offers)
	kit.PricePerWp = 0
	if kit.PricingSummary.LowestPrice > 0 && kit.SystemCapacityKWp > 0 {
		kit.PricePerWp = math.Round(kit.PricingSummary.LowestPrice/(kit.SystemCapacityKWp*1000)*1000) / 1000
	}
}

func panelCapacityKWp(components []model.KitComponent) float64 {
	total := 0.0
	for _, c := range components {
		if c.Type == model.ComponentPanel {
			total += c.PowerW * float64(c.Quantity)
		}
	}
	return total / 1000
}

// dominantManufacturer returns the manufacturer with the largest quantity
// among components of type t, or UNKNOWN. Ties keep the first seen.
func dominantManufacturer(components []model.KitComponent, t model.ComponentType) string {
	counts := make(map[string]int)
	var order []string
	for _, c := range components {
		if c.Type != t || c.Manufacturer == "" || c.Manufacturer == model.UnknownManufacturer {
			continue
		}
		if _, ok := counts[c.Manufacturer]; !ok {
			order = append(order, c.Manufacturer)
		}
		counts[c.Manufacturer] += c.Quantity
	}

	best := model.UnknownManufacturer
	bestCount := 0
	for _, m := range order {
		if counts[m] > bestCount {
			best, bestCount = m, counts[m]
		}
	}
	return best
}

func (n *Normalizer) inverterPhase(components []model.KitComponent) model.Phase {
	for _, c := range components {
		if c.Type != model.ComponentInverter || c.SkuID == nil {
			continue
		}
		sku, ok := n.skus.Get(*c.SkuID)
		if !ok {
			continue
		}
		switch phases, _ := sku.TechnicalSpecs.Get(model.SpecPhases); phases {
		case 1:
			return model.PhaseMono
		case 2:
			return model.PhaseBi
		case 3:
			return model.PhaseTri
		}
	}
	return ""
}

func componentsTotal(components []model.KitComponent) float64 {
	total := 0.0
	for _, c := range components {
		total += c.TotalPrice
	}
	return math.Round(total*100) / 100
}

// meanConfidence averages component match confidence; unmatched components
// count as zero.
func meanConfidence(components []model.KitComponent) float64 {
	if len(components) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range components {
		sum += c.MatchConfidence
	}
	return math.Round(sum/float64(len(components))*10000) / 10000
}

func reject(p model.RawProduct, reason, detail string) model.IngestReject {
	return model.IngestReject{
		Category:    model.CategoryKits,
		ProductID:   p.ID,
		Distributor: p.Distributor,
		Reason:      reason,
		Detail:      detail,
	}
}

func clonePrice(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
