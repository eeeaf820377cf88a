package model

// RawProduct is a single distributor record after ingestion. Exactly one of
// the typed spec pointers is set, matching Category (structures carry none).
// RawProducts are never mutated by the pipeline.
type RawProduct struct {
	ID           string   `json:"id"`
	SKU          string   `json:"sku,omitempty"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model,omitempty"`
	Category     Category `json:"category"`
	Distributor  string   `json:"distributor"`
	PriceText    string   `json:"price_text,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Available    bool     `json:"available"`
	Warehouse    string   `json:"warehouse,omitempty"`
	LeadTimeDays int      `json:"lead_time_days,omitempty"`

	Panel      *PanelSpecs      `json:"panel,omitempty"`
	Inverter   *InverterSpecs   `json:"inverter,omitempty"`
	Battery    *BatterySpecs    `json:"battery,omitempty"`
	Controller *ControllerSpecs `json:"controller,omitempty"`
	Kit        *KitSpecs        `json:"kit,omitempty"`
	Generic    SpecSet          `json:"generic,omitempty"`
}

type PanelSpecs struct {
	PowerW     float64 `json:"power_w,omitempty"`
	VocV       float64 `json:"voc_v,omitempty"`
	VmpV       float64 `json:"vmp_v,omitempty"`
	IscA       float64 `json:"isc_a,omitempty"`
	ImpA       float64 `json:"imp_a,omitempty"`
	Efficiency float64 `json:"efficiency,omitempty"`
	BetaVoc    float64 `json:"beta_voc,omitempty"` // V/°C
	Cells      int     `json:"cells,omitempty"`
	Technology string  `json:"technology,omitempty"`
}

type InverterSpecs struct {
	PowerKW          float64 `json:"power_kw,omitempty"`
	MaxInputVoltageV float64 `json:"max_input_voltage_v,omitempty"`
	MpptLowV         float64 `json:"mppt_low_v,omitempty"`
	MpptHighV        float64 `json:"mppt_high_v,omitempty"`
	MpptCount        int     `json:"mppt_count,omitempty"`
	Phases           int     `json:"phases,omitempty"`
	Efficiency       float64 `json:"efficiency,omitempty"`
	OutputVoltageV   float64 `json:"output_voltage_v,omitempty"`
}

type BatterySpecs struct {
	CapacityKWh float64 `json:"capacity_kwh,omitempty"`
	CapacityAh  float64 `json:"capacity_ah,omitempty"`
	VoltageV    float64 `json:"voltage_v,omitempty"`
	Chemistry   string  `json:"chemistry,omitempty"`
}

type ControllerSpecs struct {
	CurrentA float64 `json:"current_a,omitempty"`
	VoltageV float64 `json:"voltage_v,omitempty"`
	Type     string  `json:"type,omitempty"` // PWM or MPPT
}

// KitSpecs describes a composite product as declared by the distributor.
type KitSpecs struct {
	CapacityKWp      float64           `json:"capacity_kwp,omitempty"`
	SystemType       SystemType        `json:"system_type,omitempty"`
	StructureType    StructureType     `json:"structure_type,omitempty"`
	Phase            Phase             `json:"phase,omitempty"`
	ModulesPerString int               `json:"modules_per_string,omitempty"`
	Components       []RawKitComponent `json:"components,omitempty"`
}

// RawKitComponent is a kit line item before SKU resolution.
type RawKitComponent struct {
	Type         ComponentType `json:"type"`
	Description  string        `json:"description"`
	Manufacturer string        `json:"manufacturer,omitempty"`
	Model        string        `json:"model,omitempty"`
	Quantity     int           `json:"quantity"`
	PowerW       float64       `json:"power_w,omitempty"`
	UnitPrice    *float64      `json:"unit_price,omitempty"`
}

// Specs flattens the typed category payload into a SpecSet.
func (p RawProduct) Specs() SpecSet {
	s := SpecSet{}
	switch {
	case p.Panel != nil:
		s.Set(SpecPowerW, p.Panel.PowerW)
		s.Set(SpecVoltageV, p.Panel.VocV)
		s.Set(SpecVocV, p.Panel.VocV)
		s.Set(SpecVmpV, p.Panel.VmpV)
		s.Set(SpecIscA, p.Panel.IscA)
		s.Set(SpecImpA, p.Panel.ImpA)
		s.Set(SpecEfficiency, p.Panel.Efficiency)
		s.Set(SpecBetaVoc, p.Panel.BetaVoc)
		s.Set(SpecCells, float64(p.Panel.Cells))
	case p.Inverter != nil:
		s.Set(SpecPowerKW, p.Inverter.PowerKW)
		s.Set(SpecVoltageV, p.Inverter.OutputVoltageV)
		s.Set(SpecMaxInputV, p.Inverter.MaxInputVoltageV)
		s.Set(SpecMpptLowV, p.Inverter.MpptLowV)
		s.Set(SpecMpptHighV, p.Inverter.MpptHighV)
		s.Set(SpecMpptCount, float64(p.Inverter.MpptCount))
		s.Set(SpecPhases, float64(p.Inverter.Phases))
		s.Set(SpecEfficiency, p.Inverter.Efficiency)
	case p.Battery != nil:
		s.Set(SpecCapacityKWh, p.Battery.CapacityKWh)
		s.Set(SpecCapacityAh, p.Battery.CapacityAh)
		s.Set(SpecVoltageV, p.Battery.VoltageV)
	case p.Controller != nil:
		s.Set(SpecCurrentA, p.Controller.CurrentA)
		s.Set(SpecVoltageV, p.Controller.VoltageV)
	case p.Kit != nil:
		s.Set(SpecCapacityKWp, p.Kit.CapacityKWp)
		s.Set(SpecModulesString, float64(p.Kit.ModulesPerString))
	}
	s.FillFrom(p.Generic)
	return s
}
