package kits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar-catalog-api/internal/model"
)

func boolPtr(v bool) *bool { return &v }

func normalizedKits(t *testing.T, f *fixture) []model.NormalizedKit {
	t.Helper()
	res := f.kits.Run([]model.RawProduct{
		rawKit("aldo-1", "aldo", growattKit, 15000),
		rawKit("aldo-2", "aldo", solisKit, 14000),
	})
	require.Len(t, res.Kits, 2)
	return res.Kits
}

func perfectCriteria() model.KitCriteria {
	return model.KitCriteria{
		TargetKWp:       5.5,
		SystemType:      model.SystemOnGrid,
		RoofType:        model.StructureCeramic,
		Phase:           model.PhaseMono,
		PreferredBrands: []string{"Jinko", "Solis"},
	}
}

func TestFindMatchingKits_ExcludesMpptIncompatible(t *testing.T) {
	f := newFixture()
	kits := normalizedKits(t, f)

	criteria := perfectCriteria()
	criteria.ValidateMPPT = boolPtr(true)
	matches, err := f.matcher.FindMatchingKits(criteria, kits)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "KIT-5.50KWP-JINKO-SOLAR-GROWATT", matches[0].Kit.ID)
	require.NotNil(t, matches[0].Mppt)
	assert.True(t, matches[0].Mppt.Compatible)
	assert.Equal(t, 10, matches[0].Mppt.ModulesPerString)
	for _, m := range matches {
		assert.NotEqual(t, "KIT-5.50KWP-JINKO-SOLAR-SOLIS", m.Kit.ID)
	}
}

func TestFindMatchingKits_WithoutMpptValidation(t *testing.T) {
	f := newFixture()
	kits := normalizedKits(t, f)

	criteria := perfectCriteria()
	criteria.ValidateMPPT = boolPtr(false)
	matches, err := f.matcher.FindMatchingKits(criteria, kits)

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "KIT-5.50KWP-JINKO-SOLAR-SOLIS", matches[0].Kit.ID)
	assert.Equal(t, 100.0, matches[0].Score)
	assert.Equal(t, 95.0, matches[1].Score)
	assert.Nil(t, matches[0].Mppt)
}

func TestFindMatchingKits_MpptDefaultsOn(t *testing.T) {
	f := newFixture()
	kits := normalizedKits(t, f)

	matches, err := f.matcher.FindMatchingKits(perfectCriteria(), kits)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "GROWATT", matches[0].Kit.InverterManufacturer)
}

func TestFindMatchingKits_ExcludesKitsWithoutElectricalParams(t *testing.T) {
	f := newFixture()
	kits := normalizedKits(t, f)
	kits[0].Components = kits[0].ComponentsOfType(model.ComponentPanel)

	matches, err := f.matcher.FindMatchingKits(perfectCriteria(), kits[:1])

	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindMatchingKits_CapacityBand(t *testing.T) {
	f := newFixture()
	kits := normalizedKits(t, f)

	criteria := model.KitCriteria{TargetKWp: 8, ValidateMPPT: boolPtr(false)}
	matches, err := f.matcher.FindMatchingKits(criteria, kits)
	require.NoError(t, err)
	assert.Empty(t, matches)

	criteria.Tolerance = 0.35
	matches, err = f.matcher.FindMatchingKits(criteria, kits)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestFindMatchingKits_FromConsumption(t *testing.T) {
	f := newFixture()
	kits := normalizedKits(t, f)

	// 660 kWh / (5 h * 30 d * 0.8) = 5.5 kWp
	criteria := model.KitCriteria{MonthlyConsumptionKWh: 660, HSP: 5, ValidateMPPT: boolPtr(false), Limit: 1}
	matches, err := f.matcher.FindMatchingKits(criteria, kits)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Contains(t, matches[0].MatchReasons[0], "target 5.50 kWp")
	// 5.5 kWp * 5 h * 30 d * 0.8
	assert.Equal(t, 660.0, matches[0].EstimatedMonthlyKWh)

	matches, err = f.matcher.FindMatchingKits(perfectCriteria(), kits)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Zero(t, matches[0].EstimatedMonthlyKWh, "no generation estimate without hsp")
}

func TestFindMatchingKits_InvalidCriteria(t *testing.T) {
	f := newFixture()

	_, err := f.matcher.FindMatchingKits(model.KitCriteria{HSP: 5}, nil)

	assert.ErrorIs(t, err, ErrInvalidCriteria)
}

func TestFindMatchingKits_OnlyAvailable(t *testing.T) {
	f := newFixture()
	kits := normalizedKits(t, f)
	kits[0].Offers[0].Available = false

	criteria := model.KitCriteria{TargetKWp: 5.5, OnlyAvailable: true, ValidateMPPT: boolPtr(false)}
	matches, err := f.matcher.FindMatchingKits(criteria, kits)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "KIT-5.50KWP-JINKO-SOLAR-SOLIS", matches[0].Kit.ID)
}

func TestCalculateMatchScore(t *testing.T) {
	f := newFixture()
	kit := &model.NormalizedKit{
		ID:                   "KIT-6.00KWP-JINKO-SOLAR-GROWATT",
		SystemCapacityKWp:    6,
		SystemType:           model.SystemHybrid,
		StructureType:        model.StructureMetallic,
		Phase:                model.PhaseTri,
		PanelManufacturer:    "JINKO SOLAR",
		InverterManufacturer: "GROWATT",
	}

	tests := []struct {
		name     string
		criteria model.KitCriteria
		want     float64
	}{
		{"exact capacity only", model.KitCriteria{TargetKWp: 6, Tolerance: 0.15}, 40},
		{"capacity at band edge", model.KitCriteria{TargetKWp: 5, Tolerance: 0.2}, 0},
		{"halfway to band edge", model.KitCriteria{TargetKWp: 6.0 / 1.05, Tolerance: 0.1}, 20},
		{"hybrid kit for on-grid", model.KitCriteria{TargetKWp: 6, SystemType: model.SystemOnGrid}, 50},
		{"roof mismatch", model.KitCriteria{TargetKWp: 6, RoofType: model.StructureCeramic}, 40},
		{"both brands", model.KitCriteria{TargetKWp: 6, PreferredBrands: []string{"jinkosolar", "Growatt"}}, 50},
		{"one brand", model.KitCriteria{TargetKWp: 6, PreferredBrands: []string{"growatt"}}, 45},
		{"phase", model.KitCriteria{TargetKWp: 6, Phase: model.PhaseTri}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := f.matcher.CalculateMatchScore(kit, tt.criteria)
			assert.InDelta(t, tt.want, score, 1e-6)
		})
	}
}

func TestCalculateMatchScore_Reasons(t *testing.T) {
	f := newFixture()
	kit := &model.NormalizedKit{
		SystemCapacityKWp: 5.5,
		SystemType:        model.SystemOnGrid,
		Offers:            []model.KitOffer{{Distributor: "aldo", Available: true}},
	}

	score, reasons := f.matcher.CalculateMatchScore(kit, model.KitCriteria{TargetKWp: 5.5, SystemType: model.SystemOnGrid})

	assert.Equal(t, 65.0, score)
	assert.Equal(t, []string{
		"capacity 5.50 kWp close to target 5.50 kWp",
		"system type on_grid",
		"in stock",
	}, reasons)
}

func TestSearch_CountsMpptExclusions(t *testing.T) {
	f := newFixture()
	kits := normalizedKits(t, f)

	res, err := f.matcher.Search(perfectCriteria(), kits)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Candidates)
	assert.Equal(t, 1, res.MpptExcluded)
	assert.Len(t, res.Matches, 1)
}
