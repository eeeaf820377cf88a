package kits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar-catalog-api/internal/electrical"
	"solar-catalog-api/internal/matching"
	"solar-catalog-api/internal/model"
)

func ptr(v float64) *float64 { return &v }

func testSkus() []model.CanonicalSku {
	return []model.CanonicalSku{
		{
			ID:           "JINKO-SOLAR-PAN-JKM550M-72HL4-550W",
			Manufacturer: "JINKO SOLAR",
			ModelNumber:  "JKM550M-72HL4",
			Name:         "Painel Solar Jinko Tiger Pro 550W",
			Category:     model.CategoryPanels,
			TechnicalSpecs: model.SpecSet{
				model.SpecPowerW:  550,
				model.SpecVmpV:    40,
				model.SpecVocV:    48,
				model.SpecBetaVoc: -0.12,
			},
			PricingSummary: model.PricingSummary{LowestPrice: 780, MedianPrice: 800},
		},
		{
			ID:           "GROWATT-INV-MIN-5000TL-X-5000W",
			Manufacturer: "GROWATT",
			ModelNumber:  "MIN 5000TL-X",
			Name:         "Inversor Growatt MIN 5000TL-X",
			Category:     model.CategoryInverters,
			TechnicalSpecs: model.SpecSet{
				model.SpecPowerKW:   5,
				model.SpecMpptLowV:  150,
				model.SpecMpptHighV: 600,
				model.SpecMpptCount: 1,
				model.SpecPhases:    1,
			},
			PricingSummary: model.PricingSummary{LowestPrice: 4000, MedianPrice: 4000},
		},
		{
			ID:           "SOLIS-INV-S6-GR1P5K-5000W",
			Manufacturer: "SOLIS",
			ModelNumber:  "S6-GR1P5K",
			Name:         "Inversor Solis S6-GR1P5K",
			Category:     model.CategoryInverters,
			TechnicalSpecs: model.SpecSet{
				model.SpecPowerKW:   5,
				model.SpecMpptLowV:  400,
				model.SpecMpptHighV: 600,
				model.SpecMpptCount: 1,
			},
			PricingSummary: model.PricingSummary{LowestPrice: 3500, MedianPrice: 3500},
		},
	}
}

func rawKit(id, distributor, description string, price float64) model.RawProduct {
	return model.RawProduct{
		ID:          id,
		Name:        "Kit Solar 5,5 kWp",
		Description: description,
		Category:    model.CategoryKits,
		Distributor: distributor,
		Price:       ptr(price),
		Available:   true,
		Kit: &model.KitSpecs{
			CapacityKWp:   5.5,
			SystemType:    model.SystemOnGrid,
			StructureType: model.StructureCeramic,
			Phase:         model.PhaseMono,
		},
	}
}

const (
	growattKit = "10x Painel Solar Jinko 550W + 1x Inversor Growatt MIN 5000TL-X 5kW + Estrutura telhado ceramico"
	solisKit   = "10x Painel Solar Jinko 550W + 1x Inversor Solis S6-GR1P5K 5kW"
)

type fixture struct {
	normalizer *matching.ManufacturerNormalizer
	skus       *SkuCatalog
	kits       *Normalizer
	matcher    *Matcher
}

func newFixture() *fixture {
	normalizer := matching.NewManufacturerNormalizer(nil)
	skus := NewSkuCatalog(testSkus())
	return &fixture{
		normalizer: normalizer,
		skus:       skus,
		kits:       NewNormalizer(matching.NewManufacturerRegistry(normalizer), skus),
		matcher: NewMatcher(DefaultConfig(), electrical.NewValidator(electrical.DefaultConfig()),
			NewCatalogParams(nil, skus), normalizer),
	}
}

func TestExtractComponents_FromDescription(t *testing.T) {
	f := newFixture()
	p := rawKit("k1", "aldo", "Kit contém: "+growattKit, 15000)

	comps := ExtractComponents(p, f.normalizer)

	require.Len(t, comps, 3)
	assert.Equal(t, model.ComponentPanel, comps[0].Type)
	assert.Equal(t, 10, comps[0].Quantity)
	assert.Equal(t, 550.0, comps[0].PowerW)
	assert.Equal(t, "JINKO SOLAR", comps[0].Manufacturer)
	assert.Equal(t, "10x Painel Solar Jinko 550W", comps[0].Description)

	assert.Equal(t, model.ComponentInverter, comps[1].Type)
	assert.Equal(t, 1, comps[1].Quantity)
	assert.Equal(t, 5000.0, comps[1].PowerW)
	assert.Equal(t, "GROWATT", comps[1].Manufacturer)

	assert.Equal(t, model.ComponentStructure, comps[2].Type)
	assert.Equal(t, 1, comps[2].Quantity)
	assert.Empty(t, comps[2].Manufacturer)
}

func TestExtractComponents_StructuredListWins(t *testing.T) {
	f := newFixture()
	p := rawKit("k1", "aldo", growattKit, 15000)
	p.Kit.Components = []model.RawKitComponent{
		{Type: model.ComponentPanel, Description: "Modulo Canadian Solar 450W", PowerW: 450},
	}

	comps := ExtractComponents(p, f.normalizer)

	require.Len(t, comps, 1)
	assert.Equal(t, "CANADIAN SOLAR", comps[0].Manufacturer)
	assert.Equal(t, 1, comps[0].Quantity)
}

func TestMatchComponent(t *testing.T) {
	f := newFixture()

	c := MatchComponent(model.RawKitComponent{
		Type:         model.ComponentInverter,
		Description:  "1x Inversor Growatt MIN 5000TL-X 5kW",
		Manufacturer: "Growatt",
		Quantity:     1,
		PowerW:       5000,
	}, f.skus, f.normalizer)

	require.NotNil(t, c.SkuID)
	assert.Equal(t, "GROWATT-INV-MIN-5000TL-X-5000W", *c.SkuID)
	assert.Equal(t, "MIN 5000TL-X", c.Model)
	assert.Equal(t, 4000.0, c.UnitPrice)
	assert.Equal(t, 4000.0, c.TotalPrice)
	assert.Greater(t, c.MatchConfidence, 0.3)
	assert.LessOrEqual(t, c.MatchConfidence, 1.0)
}

func TestMatchComponent_ManufacturerFilter(t *testing.T) {
	f := newFixture()

	c := MatchComponent(model.RawKitComponent{
		Type:         model.ComponentInverter,
		Description:  "Inversor Fronius Primo 5kW",
		Manufacturer: "Fronius",
		Quantity:     2,
		PowerW:       5000,
		UnitPrice:    ptr(6000),
	}, f.skus, f.normalizer)

	assert.Nil(t, c.SkuID)
	assert.Zero(t, c.MatchConfidence)
	assert.Equal(t, "FRONIUS", c.Manufacturer)
	assert.Equal(t, 12000.0, c.TotalPrice)
}

func TestPowerScore(t *testing.T) {
	assert.Equal(t, 30.0, powerScore(550, 550))
	assert.Equal(t, 30.0, powerScore(550, 530))
	assert.InDelta(t, 15.0, powerScore(100, 87.5), 1e-9)
	assert.Zero(t, powerScore(100, 70))
	assert.Zero(t, powerScore(0, 550))
}

func TestNormalizer_Run(t *testing.T) {
	f := newFixture()

	res := f.kits.Run([]model.RawProduct{
		rawKit("aldo-1", "aldo", growattKit, 15000),
		rawKit("edeltec-9", "edeltec", growattKit, 14500),
		rawKit("aldo-2", "aldo", solisKit, 14000),
	})

	require.Len(t, res.Kits, 2)
	kit := res.Kits[0]
	assert.Equal(t, "KIT-5.50KWP-JINKO-SOLAR-GROWATT", kit.ID)
	assert.Equal(t, 5.5, kit.SystemCapacityKWp)
	assert.Equal(t, "JINKO SOLAR", kit.PanelManufacturer)
	assert.Equal(t, "GROWATT", kit.InverterManufacturer)
	require.Len(t, kit.Offers, 2)
	assert.Equal(t, "edeltec", kit.Offers[1].Distributor)
	assert.Equal(t, 12000.0, kit.Offers[0].ComponentsTotal)
	assert.Equal(t, 14500.0, kit.PricingSummary.LowestPrice)
	assert.InDelta(t, 2.636, kit.PricePerWp, 1e-9)
	assert.Greater(t, kit.MatchConfidence, 0.0)
	assert.Less(t, kit.MatchConfidence, 1.0)

	assert.Equal(t, "KIT-5.50KWP-JINKO-SOLAR-SOLIS", res.Kits[1].ID)

	assert.Equal(t, Stats{
		Input:               3,
		KitsCreated:         2,
		OffersMerged:        1,
		ComponentsMatched:   6,
		ComponentsUnmatched: 2,
	}, res.Stats)
	require.Len(t, res.Rejects, 2)
	assert.Equal(t, model.RejectUnmatchedComponent, res.Rejects[0].Reason)
	assert.Contains(t, res.Rejects[0].Detail, "Estrutura")
}

func TestNormalizer_CapacityFromPanels(t *testing.T) {
	f := newFixture()
	p := rawKit("k1", "aldo", solisKit, 14000)
	p.Kit.CapacityKWp = 0

	kit, err := f.kits.Normalize(p)

	require.NoError(t, err)
	assert.Equal(t, 5.5, kit.SystemCapacityKWp)
}

func TestNormalizer_RejectsKitWithoutCapacity(t *testing.T) {
	f := newFixture()
	p := rawKit("k1", "aldo", "Estrutura para telhado ceramico", 900)
	p.Kit.CapacityKWp = 0

	res := f.kits.Run([]model.RawProduct{p})

	assert.Empty(t, res.Kits)
	require.Len(t, res.Rejects, 1)
	assert.Equal(t, model.RejectInvalidRecord, res.Rejects[0].Reason)
	assert.Equal(t, 1, res.Stats.Rejected)
}

func TestKitID(t *testing.T) {
	assert.Equal(t, "KIT-8.25KWP-CANADIAN-SOLAR-UNKNOWN", KitID(8.25, "CANADIAN SOLAR", model.UnknownManufacturer))
}
