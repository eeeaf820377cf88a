package model

type ComponentType string

const (
	ComponentPanel     ComponentType = "panel"
	ComponentInverter  ComponentType = "inverter"
	ComponentBattery   ComponentType = "battery"
	ComponentStructure ComponentType = "structure"
	ComponentOther     ComponentType = "other"
)

// Category maps a component type to the catalog category holding its SKUs.
func (t ComponentType) Category() (Category, bool) {
	switch t {
	case ComponentPanel:
		return CategoryPanels, true
	case ComponentInverter:
		return CategoryInverters, true
	case ComponentBattery:
		return CategoryBatteries, true
	case ComponentStructure:
		return CategoryStructures, true
	}
	return "", false
}

type SystemType string

const (
	SystemOnGrid  SystemType = "on_grid"
	SystemOffGrid SystemType = "off_grid"
	SystemHybrid  SystemType = "hybrid"
)

type StructureType string

const (
	StructureCeramic     StructureType = "ceramic"
	StructureMetallic    StructureType = "metallic"
	StructureFibrocement StructureType = "fibrocement"
	StructureSlab        StructureType = "slab"
	StructureGround      StructureType = "ground"
)

type Phase string

const (
	PhaseMono Phase = "mono"
	PhaseBi   Phase = "bi"
	PhaseTri  Phase = "tri"
)

// KitComponent is a kit line item resolved (or not) against the SKU catalog.
// SkuID is nil when no canonical SKU matched.
type KitComponent struct {
	Type            ComponentType `json:"type"`
	SkuID           *string       `json:"sku_id"`
	Manufacturer    string        `json:"manufacturer"`
	Model           string        `json:"model"`
	Quantity        int           `json:"quantity"`
	PowerW          float64       `json:"power_w,omitempty"`
	UnitPrice       float64       `json:"unit_price"`
	TotalPrice      float64       `json:"total_price"`
	Description     string        `json:"description"`
	MatchConfidence float64       `json:"match_confidence"`
}

// KitOffer is one distributor's listing of a normalized kit.
type KitOffer struct {
	Distributor     string   `json:"distributor"`
	ProductID       string   `json:"product_id"`
	Price           *float64 `json:"price,omitempty"`
	Available       bool     `json:"available"`
	ComponentsTotal float64  `json:"components_total"`
}

// NormalizedKit is a composite product keyed by capacity and its dominant
// panel/inverter manufacturers. SystemCapacityKWp is fixed by the first kit
// observed with this ID.
type NormalizedKit struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	SystemCapacityKWp    float64        `json:"system_capacity_kwp"`
	SystemType           SystemType     `json:"system_type,omitempty"`
	StructureType        StructureType  `json:"structure_type,omitempty"`
	Phase                Phase          `json:"phase,omitempty"`
	PanelManufacturer    string         `json:"panel_manufacturer"`
	InverterManufacturer string         `json:"inverter_manufacturer"`
	ModulesPerString     int            `json:"modules_per_string,omitempty"`
	Components           []KitComponent `json:"components"`
	Offers               []KitOffer     `json:"offers"`
	PricingSummary       PricingSummary `json:"pricing_summary"`
	MatchConfidence      float64        `json:"match_confidence"`
	PricePerWp           float64        `json:"price_per_wp,omitempty"`
}

// ComponentsOfType returns the components of type t in kit order.
func (k *NormalizedKit) ComponentsOfType(t ComponentType) []KitComponent {
	var out []KitComponent
	for _, c := range k.Components {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// Available reports whether any distributor lists the kit in stock.
func (k *NormalizedKit) Available() bool {
	for _, o := range k.Offers {
		if o.Available {
			return true
		}
	}
	return false
}

// KitCriteria are the caller's requirements for kit matching. TargetKWp may
// be left zero when MonthlyConsumptionKWh and HSP are given.
type KitCriteria struct {
	TargetKWp             float64       `json:"target_kwp,omitempty"`
	MonthlyConsumptionKWh float64       `json:"monthly_consumption_kwh,omitempty"`
	HSP                   float64       `json:"hsp,omitempty"`
	Tolerance             float64       `json:"tolerance,omitempty"`
	SystemType            SystemType    `json:"system_type,omitempty"`
	RoofType              StructureType `json:"roof_type,omitempty"`
	PreferredBrands       []string      `json:"preferred_brands,omitempty"`
	Phase                 Phase         `json:"phase,omitempty"`
	ValidateMPPT          *bool         `json:"validate_mppt,omitempty"`
	OnlyAvailable         bool          `json:"only_available,omitempty"`
	Limit                 int           `json:"limit,omitempty"`
}

// MPPTValidationEnabled applies the default of true.
func (c KitCriteria) MPPTValidationEnabled() bool {
	return c.ValidateMPPT == nil || *c.ValidateMPPT
}

// KitMatch is a ranked kit recommendation.
type KitMatch struct {
	Kit          NormalizedKit         `json:"kit"`
	Score        float64               `json:"score"`
	MatchReasons []string              `json:"match_reasons"`
	Mppt         *MpptValidationResult `json:"mppt_validation,omitempty"`
	// Expected monthly output of the kit; set only when the criteria carry HSP.
	EstimatedMonthlyKWh float64 `json:"estimated_monthly_kwh,omitempty"`
}
