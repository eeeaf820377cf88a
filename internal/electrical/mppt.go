package electrical

import (
	"fmt"
	"math"

	"solar-catalog-api/internal/model"
)

// STCTemperature is the cell temperature of the datasheet reference values.
const STCTemperature = 25.0

// Config sets the operating envelope used for string voltage checks.
type Config struct {
	CellTempMin  float64 // coldest expected cell temperature, °C
	CellTempMax  float64 // hottest expected cell temperature, °C
	SafetyMargin float64 // fraction of the MPPT bound treated as too close
}

// DefaultConfig returns the -10 °C / 70 °C envelope with a 10% margin.
func DefaultConfig() Config {
	return Config{
		CellTempMin:  -10,
		CellTempMax:  70,
		SafetyMargin: 0.10,
	}
}

// Validator checks panel strings against inverter MPPT windows. It holds no
// mutable state and is safe for concurrent use.
type Validator struct {
	cfg Config
}

// NewValidator creates a validator
func NewValidator(cfg Config) *Validator {
	return &Validator{cfg: cfg}
}

// Config returns the validator's operating envelope.
func (v *Validator) Config() Config {
	return v.cfg
}

// ValidateMPPT checks a string of modulesPerString panels against the
// inverter's MPPT window at both temperature extremes. Missing parameters
// produce an incompatible result with a warning.
func (v *Validator) ValidateMPPT(inverter *model.SandiaInverter, panel *model.CECModule, modulesPerString int) model.MpptValidationResult {
	res := model.MpptValidationResult{
		ModulesPerString: modulesPerString,
		CellTempMin:      v.cfg.CellTempMin,
		CellTempMax:      v.cfg.CellTempMax,
		Warnings:         []string{},
		Recommendations:  []string{},
	}

	if !inverter.HasMpptWindow() {
		res.Warnings = append(res.Warnings, "missing Sandia inverter parameters (Mppt_low/Mppt_high): compatibility cannot be confirmed")
		return res
	}
	res.MpptLow = inverter.MpptLow
	res.MpptHigh = inverter.MpptHigh

	if !panel.HasVoltageParams() {
		res.Warnings = append(res.Warnings, "missing CEC module parameters (V_mp_ref/V_oc_ref/beta_oc): compatibility cannot be confirmed")
		return res
	}
	if modulesPerString < 1 {
		res.Warnings = append(res.Warnings, "modules per string must be at least 1")
		return res
	}

	vmpHot := panel.VmpRef + panel.BetaVoc*(v.cfg.CellTempMax-STCTemperature)
	vocCold := panel.VocRef + panel.BetaVoc*(v.cfg.CellTempMin-STCTemperature)
	n := float64(modulesPerString)
	vMin, vMax := vmpHot*n, vocCold*n
	res.VStringMin = round2(vMin)
	res.VStringMax = round2(vMax)

	// Bounds are checked on the unrounded voltages.
	lowOK := vMin >= inverter.MpptLow
	highOK := vMax <= inverter.MpptHigh
	res.Compatible = lowOK && highOK

	if !lowOK {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"minimum string voltage %.1f V at %.0f °C is below the MPPT low bound of %.1f V",
			res.VStringMin, v.cfg.CellTempMax, inverter.MpptLow))
		if vmpHot > 0 {
			// Ceil, not floor: fewer modules would stay below Mppt_low.
			minModules := int(math.Ceil(inverter.MpptLow / vmpHot))
			res.Recommendations = append(res.Recommendations,
				fmt.Sprintf("use at least %d modules per string", minModules))
		}
	}
	if !highOK {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"maximum string voltage %.1f V at %.0f °C exceeds the MPPT high bound of %.1f V",
			res.VStringMax, v.cfg.CellTempMin, inverter.MpptHigh))
		if vocCold > 0 {
			maxModules := int(math.Floor(inverter.MpptHigh / vocCold))
			res.Recommendations = append(res.Recommendations,
				fmt.Sprintf("use at most %d modules per string", maxModules))
		}
	}
	if !res.Compatible {
		if lo, hi, ok := v.StringRange(inverter, panel); !ok {
			res.Recommendations = append(res.Recommendations, "no string length fits this inverter's MPPT window; choose another inverter or panel")
		} else {
			res.Recommendations = append(res.Recommendations, fmt.Sprintf("valid string length: %d to %d modules", lo, hi))
		}
		return res
	}

	margin := v.cfg.SafetyMargin
	if vMin < inverter.MpptLow*(1+margin) {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"minimum string voltage %.1f V is within %.0f%% of the MPPT low bound %.1f V",
			res.VStringMin, margin*100, inverter.MpptLow))
	}
	if vMax > inverter.MpptHigh*(1-margin) {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"maximum string voltage %.1f V is within %.0f%% of the MPPT high bound %.1f V",
			res.VStringMax, margin*100, inverter.MpptHigh))
	}
	return res
}

// StringRange returns the shortest and longest string that stays inside the
// MPPT window, and false when no length fits.
func (v *Validator) StringRange(inverter *model.SandiaInverter, panel *model.CECModule) (int, int, bool) {
	if !inverter.HasMpptWindow() || !panel.HasVoltageParams() {
		return 0, 0, false
	}
	vmpHot := panel.VmpRef + panel.BetaVoc*(v.cfg.CellTempMax-STCTemperature)
	vocCold := panel.VocRef + panel.BetaVoc*(v.cfg.CellTempMin-STCTemperature)
	if vmpHot <= 0 || vocCold <= 0 {
		return 0, 0, false
	}
	lo := max(int(math.Ceil(inverter.MpptLow/vmpHot)), 1)
	hi := int(math.Floor(inverter.MpptHigh / vocCold))
	if lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}

// ValidateMPPT runs the check with the default envelope.
func ValidateMPPT(inverter *model.SandiaInverter, panel *model.CECModule, modulesPerString int) model.MpptValidationResult {
	return NewValidator(DefaultConfig()).ValidateMPPT(inverter, panel, modulesPerString)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
