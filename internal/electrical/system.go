package electrical

import (
	"fmt"
	"math"
	"strings"

	"solar-catalog-api/internal/model"
)

// RatioRange bounds the DC/AC oversizing ratio.
type RatioRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

var (
	// DefaultRatioRange accepts moderate under- and oversizing.
	DefaultRatioRange = RatioRange{Min: 0.75, Max: 1.35}
	// StrictRatioRange is used when the caller asks for strict validation.
	StrictRatioRange = RatioRange{Min: 0.90, Max: 1.30}
)

// RatioProfile resolves a configured profile name.
func RatioProfile(name string) (RatioRange, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return DefaultRatioRange, nil
	case "strict":
		return StrictRatioRange, nil
	}
	return RatioRange{}, fmt.Errorf("unknown ratio profile %q", name)
}

// Score deductions per issue.
const (
	criticalPenalty = 40
	ratioPenalty    = 15
	marginPenalty   = 5
)

// SystemOptions tunes ValidateSystemCompatibility.
type SystemOptions struct {
	// ModulesPerString overrides the panels-per-inverter default.
	ModulesPerString int
	// Ratio overrides DefaultRatioRange when non-zero.
	Ratio RatioRange
}

// ValidateSystemCompatibility checks a complete panel/inverter selection:
// presence of both, DC/AC ratio and the MPPT window of the first panel and
// inverter models. The score starts at 100 and loses points per issue; a
// system without panels or inverters scores 0.
func (v *Validator) ValidateSystemCompatibility(panels []model.SystemPanel, inverters []model.SystemInverter, opts SystemOptions) model.SystemCompatibility {
	res := model.SystemCompatibility{Issues: []model.SystemIssue{}}

	if len(panels) == 0 {
		res.Issues = append(res.Issues, model.SystemIssue{
			Code: model.IssueNoPanels, Severity: model.SeverityCritical, Message: "system has no panels",
		})
	}
	if len(inverters) == 0 {
		res.Issues = append(res.Issues, model.SystemIssue{
			Code: model.IssueNoInverters, Severity: model.SeverityCritical, Message: "system has no inverters",
		})
	}
	if len(res.Issues) > 0 {
		return res
	}

	ratio := opts.Ratio
	if ratio == (RatioRange{}) {
		ratio = DefaultRatioRange
	}

	panelCount, inverterCount := 0, 0
	for _, p := range panels {
		q := max(p.Quantity, 1)
		panelCount += q
		res.TotalDcKW += p.Module.STC * float64(q) / 1000
	}
	for _, i := range inverters {
		q := max(i.Quantity, 1)
		inverterCount += q
		res.TotalAcKW += i.Inverter.Paco * float64(q) / 1000
	}
	res.TotalDcKW = round2(res.TotalDcKW)
	res.TotalAcKW = round2(res.TotalAcKW)

	score := 100.0
	addIssue := func(code string, severity model.IssueSeverity, penalty float64, msg string) {
		res.Issues = append(res.Issues, model.SystemIssue{Code: code, Severity: severity, Message: msg})
		score -= penalty
	}

	if res.TotalDcKW <= 0 || res.TotalAcKW <= 0 {
		addIssue(model.IssueMissingElectrical, model.SeverityCritical, criticalPenalty,
			"panel STC power or inverter Paco is missing; DC/AC ratio cannot be computed")
	} else {
		res.DcAcRatio = round3(res.TotalDcKW / res.TotalAcKW)
		switch {
		case res.DcAcRatio < ratio.Min:
			addIssue(model.IssueRatioLow, model.SeverityWarning, ratioPenalty,
				fmt.Sprintf("DC/AC ratio %.2f is below %.2f; the inverter is oversized", res.DcAcRatio, ratio.Min))
		case res.DcAcRatio > ratio.Max:
			addIssue(model.IssueRatioHigh, model.SeverityWarning, ratioPenalty,
				fmt.Sprintf("DC/AC ratio %.2f is above %.2f; expect clipping losses", res.DcAcRatio, ratio.Max))
		}
	}

	modulesPerString := opts.ModulesPerString
	if modulesPerString <= 0 {
		modulesPerString = (panelCount + inverterCount - 1) / inverterCount
	}

	mppt := v.ValidateMPPT(&inverters[0].Inverter, &panels[0].Module, modulesPerString)
	res.Mppt = &mppt
	switch {
	case !inverters[0].Inverter.HasMpptWindow() || !panels[0].Module.HasVoltageParams():
		addIssue(model.IssueMissingElectrical, model.SeverityCritical, criticalPenalty, strings.Join(mppt.Warnings, "; "))
	case !mppt.Compatible:
		addIssue(model.IssueMpptIncompatible, model.SeverityCritical, criticalPenalty, strings.Join(mppt.Warnings, "; "))
	case len(mppt.Warnings) > 0:
		addIssue(model.IssueMpptMargin, model.SeverityWarning, marginPenalty, strings.Join(mppt.Warnings, "; "))
	}

	res.Score = clamp(score, 0, 100)
	res.Compatible = !res.HasCritical()
	return res
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
