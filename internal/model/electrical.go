package model

// SandiaInverter holds the Sandia inverter model parameters. Only the MPPT
// window is required for string validation; the rest is carried for
// reporting and DC/AC sizing.
type SandiaInverter struct {
	Name     string  `json:"name,omitempty"`
	Paco     float64 `json:"Paco,omitempty"` // AC rated power, W
	Pdco     float64 `json:"Pdco,omitempty"`
	Vdco     float64 `json:"Vdco,omitempty"`
	Pso      float64 `json:"Pso,omitempty"`
	C0       float64 `json:"C0,omitempty"`
	C1       float64 `json:"C1,omitempty"`
	C2       float64 `json:"C2,omitempty"`
	C3       float64 `json:"C3,omitempty"`
	Pnt      float64 `json:"Pnt,omitempty"`
	Vdcmax   float64 `json:"Vdcmax,omitempty"`
	Idcmax   float64 `json:"Idcmax,omitempty"`
	MpptLow  float64 `json:"Mppt_low,omitempty"`
	MpptHigh float64 `json:"Mppt_high,omitempty"`
}

// HasMpptWindow reports whether the MPPT tracking window is usable.
func (p *SandiaInverter) HasMpptWindow() bool {
	return p != nil && p.MpptLow > 0 && p.MpptHigh > p.MpptLow
}

// CECModule holds the CEC module model parameters at STC.
type CECModule struct {
	Name       string  `json:"name,omitempty"`
	Technology string  `json:"Technology,omitempty"`
	STC        float64 `json:"STC,omitempty"` // nameplate W
	PTC        float64 `json:"PTC,omitempty"`
	Area       float64 `json:"A_c,omitempty"`
	Ns         int     `json:"N_s,omitempty"`
	IscRef     float64 `json:"I_sc_ref,omitempty"`
	VocRef     float64 `json:"V_oc_ref,omitempty"`
	ImpRef     float64 `json:"I_mp_ref,omitempty"`
	VmpRef     float64 `json:"V_mp_ref,omitempty"`
	AlphaSc    float64 `json:"alpha_sc,omitempty"`
	BetaVoc    float64 `json:"beta_oc,omitempty"` // V/°C
	GammaR     float64 `json:"gamma_r,omitempty"`
}

// HasVoltageParams reports whether the string-voltage inputs are present.
func (p *CECModule) HasVoltageParams() bool {
	return p != nil && p.VmpRef > 0 && p.VocRef > 0 && p.BetaVoc != 0
}

// MpptValidationResult is the outcome of one string/inverter check.
type MpptValidationResult struct {
	Compatible       bool     `json:"compatible"`
	ModulesPerString int      `json:"modules_per_string"`
	VStringMin       float64  `json:"v_string_min"`
	VStringMax       float64  `json:"v_string_max"`
	MpptLow          float64  `json:"mppt_low"`
	MpptHigh         float64  `json:"mppt_high"`
	CellTempMin      float64  `json:"cell_temp_min"`
	CellTempMax      float64  `json:"cell_temp_max"`
	Warnings         []string `json:"warnings"`
	Recommendations  []string `json:"recommendations"`
}

type IssueSeverity string

const (
	SeverityCritical IssueSeverity = "critical"
	SeverityWarning  IssueSeverity = "warning"
	SeverityInfo     IssueSeverity = "info"
)

// SystemIssue codes.
const (
	IssueNoPanels          = "NO_PANELS"
	IssueNoInverters       = "NO_INVERTERS"
	IssueRatioLow          = "DC_AC_RATIO_LOW"
	IssueRatioHigh         = "DC_AC_RATIO_HIGH"
	IssueMpptIncompatible  = "MPPT_INCOMPATIBLE"
	IssueMpptMargin        = "MPPT_MARGIN"
	IssueMissingElectrical = "MISSING_ELECTRICAL_PARAMS"
)

type SystemIssue struct {
	Code     string        `json:"code"`
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// SystemPanel is a panel model and its quantity in a proposed system.
type SystemPanel struct {
	Module   CECModule `json:"module"`
	Quantity int       `json:"quantity"`
}

// SystemInverter is an inverter model and its quantity in a proposed system.
type SystemInverter struct {
	Inverter SandiaInverter `json:"inverter"`
	Quantity int            `json:"quantity"`
}

// SystemCompatibility scores a whole panel/inverter combination.
type SystemCompatibility struct {
	Compatible bool                  `json:"compatible"`
	Score      float64               `json:"score"`
	DcAcRatio  float64               `json:"dc_ac_ratio"`
	TotalDcKW  float64               `json:"total_dc_kw"`
	TotalAcKW  float64               `json:"total_ac_kw"`
	Issues     []SystemIssue         `json:"issues"`
	Mppt       *MpptValidationResult `json:"mppt,omitempty"`
}

// HasCritical reports whether any critical issue was raised.
func (s SystemCompatibility) HasCritical() bool {
	for _, i := range s.Issues {
		if i.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
