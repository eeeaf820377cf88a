package dedup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar-catalog-api/internal/matching"
	"solar-catalog-api/internal/model"
)

func price(v float64) *float64 { return &v }

func jinkoAldo() model.RawProduct {
	return model.RawProduct{
		ID: "a1", Distributor: "Aldo", Manufacturer: "JinkoSolar", Model: "JKM550M-72HL4-V",
		Name: "Painel Jinko 550W", Category: model.CategoryPanels, Price: price(900), Available: true,
		Panel: &model.PanelSpecs{PowerW: 550, VocV: 49.8, Efficiency: 21.3},
	}
}

func jinkoEdeltec() model.RawProduct {
	return model.RawProduct{
		ID: "e1", Distributor: "Edeltec", Manufacturer: "Jinko Solar", Model: "JKM550M-72HL4-V",
		Name: "Módulo Jinko Tiger 550", Category: model.CategoryPanels, Price: price(880),
		Panel: &model.PanelSpecs{PowerW: 550, VocV: 49.6, VmpV: 41.6},
	}
}

func canadian() model.RawProduct {
	return model.RawProduct{
		ID: "c1", Distributor: "Aldo", Manufacturer: "Canadian", Model: "JKM550M-72HL4-V",
		Category: model.CategoryPanels, Price: price(850),
		Panel: &model.PanelSpecs{PowerW: 550, VocV: 49.8},
	}
}

func newDeduplicator(registry *model.SkuRegistry) (*Deduplicator, *matching.ManufacturerRegistry) {
	manufacturers := matching.NewManufacturerRegistry(matching.NewManufacturerNormalizer(nil))
	return New(DefaultConfig(), manufacturers, registry), manufacturers
}

func skuFrom(p model.RawProduct) *model.CanonicalSku {
	n := matching.NewManufacturerNormalizer(nil)
	return newSku(p, n.Normalize(p.Manufacturer), p.Category)
}

func TestCheckDuplication_Threshold(t *testing.T) {
	d, _ := newDeduplicator(nil)

	check := d.CheckDuplication(jinkoEdeltec(), skuFrom(jinkoAldo()))
	assert.True(t, check.IsDuplicate)
	assert.GreaterOrEqual(t, check.Confidence, 0.85)
	assert.Equal(t, 1.0, check.Confidence)
	assert.Contains(t, check.Reasons, "manufacturer match: JINKO SOLAR")
}

func TestCheckDuplication_DifferentManufacturer(t *testing.T) {
	d, _ := newDeduplicator(nil)

	check := d.CheckDuplication(canadian(), skuFrom(jinkoAldo()))
	assert.False(t, check.IsDuplicate)
	assert.Equal(t, 0.0, check.Confidence)
}

func TestCheckDuplication_SpecDisagreement(t *testing.T) {
	d, _ := newDeduplicator(nil)
	other := jinkoEdeltec()
	other.Panel.PowerW = 450

	check := d.CheckDuplication(other, skuFrom(jinkoAldo()))
	assert.False(t, check.IsDuplicate)
	// 30 manufacturer + 30 model + 40 * 1/2 specs
	assert.InDelta(t, 0.80, check.Confidence, 1e-9)
	assert.Contains(t, check.Reasons, "power_w differs (450 vs 550)")
}

func TestCheckDuplication_ModelMismatchStopsEarly(t *testing.T) {
	d, _ := newDeduplicator(nil)
	other := jinkoEdeltec()
	other.Model = "Tiger Neo N-Type"

	check := d.CheckDuplication(other, skuFrom(jinkoAldo()))
	assert.False(t, check.IsDuplicate)
	assert.InDelta(t, 0.30, check.Confidence, 1e-9)
}

func TestCheckDuplication_ConfigurableThreshold(t *testing.T) {
	other := jinkoEdeltec()
	other.Panel.PowerW = 450
	sku := skuFrom(jinkoAldo())
	n := matching.NewManufacturerNormalizer(nil)

	loose := CheckDuplication(CandidateFrom(other, n), sku, Config{ConfidenceThreshold: 0.8, SpecTolerance: 0.05})
	assert.True(t, loose.IsDuplicate)

	wide := CheckDuplication(CandidateFrom(other, n), sku, Config{ConfidenceThreshold: 0.85, SpecTolerance: 0.25})
	assert.True(t, wide.IsDuplicate)
	assert.Equal(t, 1.0, wide.Confidence)
}

func TestRun_MergesDuplicates(t *testing.T) {
	d, manufacturers := newDeduplicator(nil)

	res, err := d.Run(model.CategoryPanels, []model.RawProduct{jinkoAldo(), jinkoEdeltec(), canadian()})
	require.NoError(t, err)
	require.Len(t, res.Skus, 2)

	jinko := res.Skus[0]
	assert.Equal(t, "JINKO-SOLAR-PAN-JKM550M-72HL4-V-550W", jinko.ID)
	assert.Equal(t, []string{"Aldo", "Edeltec"}, jinko.Distributors())
	assert.Equal(t, 880.0, jinko.PricingSummary.LowestPrice)
	assert.Equal(t, 900.0, jinko.PricingSummary.HighestPrice)
	assert.Equal(t, 49.8, jinko.TechnicalSpecs[model.SpecVocV], "anchor specs are kept")
	assert.Equal(t, 41.6, jinko.TechnicalSpecs[model.SpecVmpV], "missing specs are filled from later offers")

	assert.Equal(t, "CANADIAN SOLAR", res.Skus[1].Manufacturer)

	assert.Equal(t, 3, res.Stats.Input)
	assert.Equal(t, 2, res.Stats.SkusCreated)
	assert.Equal(t, 1, res.Stats.OffersMerged)

	mfrs := manufacturers.Manufacturers()
	require.Len(t, mfrs, 2)
	assert.Equal(t, "JINKO SOLAR", mfrs[1].Name)
	assert.Equal(t, []string{"Jinko Solar", "JinkoSolar"}, mfrs[1].Aliases)
	assert.Equal(t, 2, mfrs[1].ProductCounts[model.CategoryPanels])
}

func offerKeys(skus []model.CanonicalSku) [][]string {
	var out [][]string
	for _, s := range skus {
		var keys []string
		for _, o := range s.DistributorOffers {
			keys = append(keys, o.Distributor+"/"+o.ProductID)
		}
		out = append(out, keys)
	}
	return out
}

func TestRun_MergeOrderIndependence(t *testing.T) {
	d1, _ := newDeduplicator(nil)
	forward, err := d1.Run(model.CategoryPanels, []model.RawProduct{jinkoAldo(), jinkoEdeltec()})
	require.NoError(t, err)

	d2, _ := newDeduplicator(nil)
	backward, err := d2.Run(model.CategoryPanels, []model.RawProduct{jinkoEdeltec(), jinkoAldo()})
	require.NoError(t, err)

	require.Len(t, forward.Skus, 1)
	require.Len(t, backward.Skus, 1)
	assert.ElementsMatch(t, offerKeys(forward.Skus)[0], offerKeys(backward.Skus)[0])
	assert.Equal(t, forward.Skus[0].PricingSummary, backward.Skus[0].PricingSummary)
}

func TestRun_SkipsMissingManufacturer(t *testing.T) {
	d, manufacturers := newDeduplicator(nil)
	p := jinkoAldo()
	p.Manufacturer = "  "
	q := jinkoEdeltec()
	q.Price = nil
	q.PriceText = "sob consulta"

	res, err := d.Run(model.CategoryPanels, []model.RawProduct{p, q})
	require.NoError(t, err)
	require.Len(t, res.Skus, 1)
	assert.Nil(t, res.Skus[0].DistributorOffers[0].Price)
	assert.Equal(t, model.PricingSummary{}, res.Skus[0].PricingSummary)

	assert.Equal(t, 1, res.Stats.SkippedNoManufacturer)
	assert.Equal(t, 1, res.Stats.MissingPrice)
	require.Len(t, res.Rejects, 2)
	assert.Equal(t, model.RejectMissingManufacturer, res.Rejects[0].Reason)
	assert.Equal(t, model.RejectMissingPrice, res.Rejects[1].Reason)
	assert.Equal(t, 1, manufacturers.Len())
}

func TestRun_RegistryAndExplicitSku(t *testing.T) {
	registry := model.NewSkuRegistry([]model.RegistryEntry{
		{Category: model.CategoryPanels, OriginalID: "e1", SkuID: "JINKO-LEGACY-550"},
	})
	d, _ := newDeduplicator(registry)

	res, err := d.Run(model.CategoryPanels, []model.RawProduct{jinkoEdeltec(), jinkoAldo()})
	require.NoError(t, err)
	require.Len(t, res.Skus, 1)
	assert.Equal(t, "JINKO-LEGACY-550", res.Skus[0].ID)
	assert.Equal(t, 1, res.Stats.RegistryHits)

	sku, ok := registry.Lookup(model.CategoryPanels, "a1")
	require.True(t, ok)
	assert.Equal(t, "JINKO-LEGACY-550", sku)

	x := canadian()
	x.SKU = "CS-550"
	y := canadian()
	y.ID, y.Distributor, y.Model, y.SKU = "c2", "Edeltec", "something else", "CS-550"

	d2, _ := newDeduplicator(nil)
	res, err = d2.Run(model.CategoryPanels, []model.RawProduct{x, y})
	require.NoError(t, err)
	require.Len(t, res.Skus, 1)
	assert.Equal(t, "CS-550", res.Skus[0].ID)
	assert.Len(t, res.Skus[0].DistributorOffers, 2)
}

func TestRun_ExplicitSkuCollisionAcrossManufacturers(t *testing.T) {
	jinko := jinkoAldo()
	jinko.SKU = "1001"
	other := canadian()
	other.ID, other.Distributor, other.SKU = "x9", "Edeltec", "1001"

	d, _ := newDeduplicator(nil)
	res, err := d.Run(model.CategoryPanels, []model.RawProduct{jinko, other})
	require.NoError(t, err)
	require.Len(t, res.Skus, 2)

	assert.Equal(t, "1001", res.Skus[0].ID)
	assert.Equal(t, "JINKO SOLAR", res.Skus[0].Manufacturer)
	assert.Equal(t, "CANADIAN SOLAR", res.Skus[1].Manufacturer)
	assert.Equal(t, "CANADIAN-SOLAR-PAN-JKM550M-72HL4-V-550W", res.Skus[1].ID)
	assert.Equal(t, [][]string{{"Aldo/a1"}, {"Edeltec/x9"}}, offerKeys(res.Skus))
	assert.Equal(t, 0, res.Stats.OffersMerged)
}

func TestRun_UnsupportedCategory(t *testing.T) {
	d, _ := newDeduplicator(nil)
	_, err := d.Run(model.Category("cables"), nil)
	assert.True(t, errors.Is(err, model.ErrUnsupportedCategory))
}

func TestBucketIndex(t *testing.T) {
	idx := NewBucketIndex()
	a := &model.CanonicalSku{ID: "A", Manufacturer: "WEG", Category: model.CategoryInverters}
	b := &model.CanonicalSku{ID: "B", Manufacturer: "WEG", Category: model.CategoryInverters}
	c := &model.CanonicalSku{ID: "C", Manufacturer: "WEG", Category: model.CategoryPanels}
	idx.Add(a)
	idx.Add(b)
	idx.Add(c)

	assert.Equal(t, []*model.CanonicalSku{a, b}, idx.Lookup("WEG", model.CategoryInverters))
	assert.Empty(t, idx.Lookup("SMA", model.CategoryInverters))
}
