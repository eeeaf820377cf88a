package kits

import (
	"solar-catalog-api/internal/catalog"
	"solar-catalog-api/internal/model"
)

// ParamsSource looks up published electrical parameter sets.
type ParamsSource interface {
	Inverter(keys ...string) (*model.SandiaInverter, bool)
	Module(keys ...string) (*model.CECModule, bool)
}

// CatalogParams resolves the electrical parameters of kit components: a
// published parameter set when one exists for the SKU id or
// "manufacturer model", otherwise one derived from the SKU's datasheet specs.
type CatalogParams struct {
	library ParamsSource
	skus    *SkuCatalog
}

// NewCatalogParams creates a resolver. library may be nil.
func NewCatalogParams(library ParamsSource, skus *SkuCatalog) *CatalogParams {
	return &CatalogParams{library: library, skus: skus}
}

// Inverter returns the Sandia parameters and MPPT input count for c.
func (p *CatalogParams) Inverter(c model.KitComponent) (*model.SandiaInverter, int) {
	sku := p.sku(c)
	mppts := 1
	if sku != nil {
		if n, ok := sku.TechnicalSpecs.Get(model.SpecMpptCount); ok && n >= 1 {
			mppts = int(n)
		}
	}

	if p.library != nil {
		if params, ok := p.library.Inverter(p.keys(c)...); ok && params.HasMpptWindow() {
			return params, mppts
		}
	}
	if sku == nil {
		return nil, mppts
	}
	return catalog.InverterFromSpecs(sku.Name, sku.TechnicalSpecs), mppts
}

// Module returns the CEC parameters for c.
func (p *CatalogParams) Module(c model.KitComponent) *model.CECModule {
	if p.library != nil {
		if params, ok := p.library.Module(p.keys(c)...); ok && params.HasVoltageParams() {
			return params
		}
	}
	sku := p.sku(c)
	if sku == nil {
		return nil
	}
	return catalog.ModuleFromSpecs(sku.Name, sku.TechnicalSpecs)
}

func (p *CatalogParams) sku(c model.KitComponent) *model.CanonicalSku {
	if c.SkuID == nil {
		return nil
	}
	sku, _ := p.skus.Get(*c.SkuID)
	return sku
}

func (p *CatalogParams) keys(c model.KitComponent) []string {
	var keys []string
	if c.SkuID != nil {
		keys = append(keys, *c.SkuID)
	}
	if c.Model != "" {
		keys = append(keys, c.Manufacturer+" "+c.Model)
	}
	return keys
}
