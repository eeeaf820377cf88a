package dedup

import (
	"fmt"

	"solar-catalog-api/internal/matching"
	"solar-catalog-api/internal/model"
	"solar-catalog-api/internal/pricing"
)

// Stats counts what happened to the products of one category.
type Stats struct {
	Category              model.Category `json:"category"`
	Input                 int            `json:"input"`
	SkusCreated           int            `json:"skus_created"`
	OffersMerged          int            `json:"offers_merged"`
	SkippedNoManufacturer int            `json:"skipped_no_manufacturer"`
	MissingPrice          int            `json:"missing_price"`
	RegistryHits          int            `json:"registry_hits"`
}

// Result is the dedup output for one category.
type Result struct {
	Category model.Category
	Skus     []model.CanonicalSku
	Rejects  []model.IngestReject
	Stats    Stats
}

// Deduplicator turns the raw products of one category into canonical SKUs.
// It records manufacturers in the run's ManufacturerRegistry and, when a SKU
// registry is given, reuses and updates its product -> SKU assignments.
// A Deduplicator is not safe for concurrent use.
type Deduplicator struct {
	cfg           Config
	manufacturers *matching.ManufacturerRegistry
	registry      *model.SkuRegistry
}

// New creates a deduplicator. registry may be nil.
func New(cfg Config, manufacturers *matching.ManufacturerRegistry, registry *model.SkuRegistry) *Deduplicator {
	return &Deduplicator{
		cfg:           cfg,
		manufacturers: manufacturers,
		registry:      registry,
	}
}

// CheckDuplication scores a raw product against an existing SKU.
func (d *Deduplicator) CheckDuplication(p model.RawProduct, sku *model.CanonicalSku) Check {
	return CheckDuplication(CandidateFrom(p, d.manufacturers.Normalizer()), sku, d.cfg)
}

// Run deduplicates products of category. For each product the SKU is chosen
// in this order: a SKU of the same manufacturer already created this run
// under the product's registry or explicit id, the best-scoring duplicate at or above the threshold, and
// otherwise a new SKU (registry id, explicit id or generated).
func (d *Deduplicator) Run(category model.Category, products []model.RawProduct) (*Result, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnsupportedCategory, category)
	}

	res := &Result{Category: category, Stats: Stats{Category: category, Input: len(products)}}
	index := NewBucketIndex()
	allocator := NewSkuAllocator()
	byID := make(map[string]*model.CanonicalSku)
	var order []*model.CanonicalSku

	for _, p := range products {
		canonical := d.manufacturers.Register(p.Manufacturer, category)
		if canonical == model.UnknownManufacturer {
			res.Stats.SkippedNoManufacturer++
			res.Rejects = append(res.Rejects, reject(category, p, "missing manufacturer"))
			continue
		}
		if p.Price == nil {
			res.Stats.MissingPrice++
			res.Rejects = append(res.Rejects, reject(category, p, fmt.Sprintf("missing price %q", p.PriceText)))
		}

		preferredID, fromRegistry := d.preferredID(category, p)
		if fromRegistry {
			res.Stats.RegistryHits++
		}

		// Explicit ids are distributor-local and may collide across
		// manufacturers; only reuse the SKU when the manufacturer agrees.
		target := byID[preferredID]
		if target != nil && target.Manufacturer != canonical {
			target = nil
		}
		if target == nil {
			target = d.bestDuplicate(index, Candidate{
				Manufacturer: canonical,
				Model:        modelToken(p),
				Specs:        p.Specs(),
			}, category)
		}

		if target != nil {
			addOffer(target, p)
			res.Stats.OffersMerged++
		} else {
			target = newSku(p, canonical, category)
			switch {
			case preferredID != "" && allocator.Reserve(preferredID):
				target.ID = preferredID
			default:
				target.ID = allocator.Allocate(canonical, target.ModelNumber, category,
					VariantFromSpecs(category, target.TechnicalSpecs))
			}
			byID[target.ID] = target
			index.Add(target)
			order = append(order, target)
			res.Stats.SkusCreated++
		}

		if d.registry != nil {
			d.registry.Assign(category, p.ID, target.ID)
		}
	}

	res.Skus = make([]model.CanonicalSku, len(order))
	for i, sku := range order {
		res.Skus[i] = *sku
	}
	return res, nil
}

// preferredID returns the registry assignment or the distributor-supplied
// SKU, and whether it came from the registry.
func (d *Deduplicator) preferredID(category model.Category, p model.RawProduct) (string, bool) {
	if id, ok := d.registry.Lookup(category, p.ID); ok && id != "" {
		return id, true
	}
	return p.SKU, false
}

// bestDuplicate returns the highest-confidence duplicate. Ties keep the SKU
// created first.
func (d *Deduplicator) bestDuplicate(index CandidateIndex, c Candidate, category model.Category) *model.CanonicalSku {
	var best *model.CanonicalSku
	bestConfidence := 0.0
	for _, sku := range index.Lookup(c.Manufacturer, category) {
		check := CheckDuplication(c, sku, d.cfg)
		if check.IsDuplicate && check.Confidence > bestConfidence {
			best, bestConfidence = sku, check.Confidence
		}
	}
	return best
}

func newSku(p model.RawProduct, manufacturer string, category model.Category) *model.CanonicalSku {
	sku := &model.CanonicalSku{
		Manufacturer:   manufacturer,
		ModelNumber:    modelToken(p),
		Name:           p.Name,
		Category:       category,
		TechnicalSpecs: p.Specs(),
	}
	addOffer(sku, p)
	return sku
}

// addOffer appends the product's offer and recomputes the pricing summary.
// Specs already on the SKU win; the offer only fills gaps.
func addOffer(sku *model.CanonicalSku, p model.RawProduct) {
	sku.DistributorOffers = append(sku.DistributorOffers, model.DistributorOffer{
		Distributor:  p.Distributor,
		ProductID:    p.ID,
		Price:        clonePrice(p.Price),
		Available:    p.Available,
		Warehouse:    p.Warehouse,
		LeadTimeDays: p.LeadTimeDays,
	})
	if len(sku.DistributorOffers) > 1 {
		sku.TechnicalSpecs.FillFrom(p.Specs())
	}
	sku.PricingSummary = pricing.Summarize(sku.DistributorOffers)
}

func clonePrice(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func reject(category model.Category, p model.RawProduct, detail string) model.IngestReject {
	return model.IngestReject{
		Category:    category,
		ProductID:   p.ID,
		Distributor: p.Distributor,
		Reason:      model.ClassifyReject(detail),
		Detail:      detail,
	}
}
