package kits

import (
	"solar-catalog-api/internal/model"
)

// SkuCatalog is a read-only view of canonical SKUs for component matching.
type SkuCatalog struct {
	byID       map[string]*model.CanonicalSku
	byCategory map[model.Category][]*model.CanonicalSku
}

// NewSkuCatalog indexes skus. The slice must not be modified afterwards.
func NewSkuCatalog(skus []model.CanonicalSku) *SkuCatalog {
	c := &SkuCatalog{
		byID:       make(map[string]*model.CanonicalSku, len(skus)),
		byCategory: make(map[model.Category][]*model.CanonicalSku),
	}
	for i := range skus {
		sku := &skus[i]
		c.byID[sku.ID] = sku
		c.byCategory[sku.Category] = append(c.byCategory[sku.Category], sku)
	}
	return c
}

// Get returns a SKU by id.
func (c *SkuCatalog) Get(id string) (*model.CanonicalSku, bool) {
	if c == nil {
		return nil, false
	}
	sku, ok := c.byID[id]
	return sku, ok
}

// InCategory returns the SKUs of category in input order.
func (c *SkuCatalog) InCategory(category model.Category) []*model.CanonicalSku {
	if c == nil {
		return nil
	}
	return c.byCategory[category]
}

// Len returns the number of SKUs.
func (c *SkuCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byID)
}

// skuPowerW returns the SKU's nameplate power in watts, 0 when unknown.
func skuPowerW(sku *model.CanonicalSku) float64 {
	if w, ok := sku.TechnicalSpecs.Get(model.SpecPowerW); ok {
		return w
	}
	if kw, ok := sku.TechnicalSpecs.Get(model.SpecPowerKW); ok {
		return kw * 1000
	}
	return 0
}
