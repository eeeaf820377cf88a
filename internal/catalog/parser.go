package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"solar-catalog-api/internal/matching"
	"solar-catalog-api/internal/model"
)

// Field aliases accepted in distributor exports. Keys are matched
// case-insensitively.
var (
	idKeys           = []string{"id", "product_id", "codigo", "code", "cod"}
	skuKeys          = []string{"sku", "canonical_sku"}
	nameKeys         = []string{"name", "title", "nome", "titulo", "product_name"}
	descriptionKeys  = []string{"description", "descricao", "descrição", "details"}
	manufacturerKeys = []string{"manufacturer", "brand", "fabricante", "marca"}
	modelKeys        = []string{"model", "model_number", "modelo", "part_number"}
	distributorKeys  = []string{"distributor", "distribuidor", "supplier", "fornecedor", "source"}
	priceKeys        = []string{"price", "preco", "preço", "valor", "price_brl", "sale_price", "preco_venda"}
	availableKeys    = []string{"available", "in_stock", "disponivel", "disponível", "availability", "disponibilidade"}
	stockKeys        = []string{"stock", "estoque", "quantity_available", "qty_available"}
	warehouseKeys    = []string{"warehouse", "cd", "centro_distribuicao", "location"}
	leadTimeKeys     = []string{"lead_time_days", "lead_time", "prazo", "prazo_entrega"}
	specsKeys        = []string{"technical_specs", "specs", "especificacoes", "especificações", "specifications", "attributes"}
	componentKeys    = []string{"components", "componentes", "kit_items", "itens"}
	payloadKeys      = []string{"products", "items", "produtos", "data"}
)

// DecodeProducts parses one distributor export for category. The payload is
// either a bare JSON array or an object wrapping it under "products" (or
// "items", "produtos", "data") with an optional file-level "distributor".
// Records that cannot be turned into a RawProduct come back as rejects; only
// malformed JSON or an unsupported category is an error.
func DecodeProducts(data []byte, category model.Category, distributor string) ([]model.RawProduct, []model.IngestReject, error) {
	if !category.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", model.ErrUnsupportedCategory, category)
	}

	items, fileDistributor, err := splitPayload(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode %s export: %w", category, err)
	}
	if fileDistributor != "" {
		distributor = fileDistributor
	}

	products := make([]model.RawProduct, 0, len(items))
	var rejects []model.IngestReject

	for i, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil {
			rejects = append(rejects, newReject(category, fmt.Sprintf("#%d", i), distributor,
				fmt.Errorf("invalid record: %w", err)))
			continue
		}

		p, err := decodeProduct(newRecord(fields), category, distributor)
		if err != nil {
			id := p.ID
			if id == "" {
				id = fmt.Sprintf("#%d", i)
			}
			rejects = append(rejects, newReject(category, id, p.Distributor, err))
			continue
		}
		products = append(products, p)
	}

	return products, rejects, nil
}

func newReject(category model.Category, id, distributor string, err error) model.IngestReject {
	return model.IngestReject{
		Category:    category,
		ProductID:   id,
		Distributor: distributor,
		Reason:      model.ClassifyReject(err.Error()),
		Detail:      err.Error(),
	}
}

func splitPayload(data []byte) ([]json.RawMessage, string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, "", nil
	}

	var items []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, "", err
		}
		return items, "", nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, "", err
	}
	r := newRecord(obj)
	v, ok := r.lookup(payloadKeys...)
	if !ok {
		return nil, "", errors.New("no product array found")
	}
	if err := json.Unmarshal(v, &items); err != nil {
		return nil, "", fmt.Errorf("products: %w", err)
	}
	return items, r.str(distributorKeys...), nil
}

func decodeProduct(r record, category model.Category, defaultDistributor string) (model.RawProduct, error) {
	p := model.RawProduct{
		ID:           r.str(idKeys...),
		SKU:          strings.ToUpper(r.str(skuKeys...)),
		Name:         r.str(nameKeys...),
		Description:  r.str(descriptionKeys...),
		Manufacturer: r.str(manufacturerKeys...),
		Model:        r.str(modelKeys...),
		Category:     category,
		Distributor:  r.str(distributorKeys...),
		Warehouse:    r.str(warehouseKeys...),
		LeadTimeDays: r.integer(leadTimeKeys...),
	}
	if p.Distributor == "" {
		p.Distributor = defaultDistributor
	}
	if p.ID == "" {
		return p, errors.New("missing id")
	}
	if p.Distributor == "" {
		return p, errors.New("invalid record: missing distributor")
	}
	if p.Name == "" {
		p.Name = p.Description
	}

	p.PriceText, p.Price = decodePrice(r)
	if available, ok := r.boolean(availableKeys...); ok {
		p.Available = available
	} else {
		p.Available = r.num(stockKeys...) > 0
	}

	specs := r.withSpecs()
	features := matching.ExtractFeatures(p.Name)

	switch category {
	case model.CategoryPanels:
		p.Panel = decodePanel(specs, features)
	case model.CategoryInverters:
		p.Inverter = decodeInverter(specs, features)
	case model.CategoryBatteries:
		p.Battery = decodeBattery(specs, features)
	case model.CategoryChargeControllers:
		p.Controller = decodeController(specs, features, p.Name)
	case model.CategoryKits:
		p.Kit = decodeKit(specs, features, p.Name+" "+p.Description)
	case model.CategoryStructures:
		p.Generic = decodeGeneric(r)
	}

	return p, nil
}

// withSpecs overlays the nested technical specs object on the top-level
// record so that spec keys may appear at either level.
func (r record) withSpecs() record {
	merged := make(record, len(r))
	for k, v := range r {
		merged[k] = v
	}
	v, ok := r.lookup(specsKeys...)
	if !ok {
		return merged
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(v, &nested); err != nil {
		return merged
	}
	for k, v := range newRecord(nested) {
		merged[k] = v
	}
	return merged
}

func decodePrice(r record) (string, *float64) {
	v, ok := r.lookup(priceKeys...)
	if !ok {
		return "", nil
	}
	text := rawString(v)
	if isJSONString(v) {
		return text, PricePointer(text)
	}

	d, err := decimal.NewFromString(text)
	if err != nil || !d.IsPositive() {
		return text, nil
	}
	f := d.Round(2).InexactFloat64()
	return text, &f
}

func decodePanel(s record, f matching.ElectricalFeatures) *model.PanelSpecs {
	ps := &model.PanelSpecs{
		VocV:       s.num("voc", "voc_v", "open_circuit_voltage", "tensao_circuito_aberto"),
		VmpV:       s.num("vmp", "vmp_v", "vmpp", "tensao_maxima_potencia"),
		IscA:       s.num("isc", "isc_a", "short_circuit_current", "corrente_curto_circuito"),
		ImpA:       s.num("imp", "imp_a", "impp", "corrente_maxima_potencia"),
		Efficiency: percent(s.num("efficiency", "eficiencia", "eficiência")),
		Cells:      s.integer("cells", "celulas", "células", "n_cells"),
		Technology: s.str("technology", "tecnologia", "cell_type"),
	}
	if v, unit, ok := s.quantity("power_w", "power", "potencia", "potência", "potencia_w", "pmax", "wp"); ok {
		ps.PowerW = toWatts(v, unit)
	}
	if ps.PowerW == 0 {
		ps.PowerW = f.PowerW
	}
	ps.BetaVoc = betaVoc(s, ps.VocV)
	return ps
}

// betaVoc returns the open-circuit voltage temperature coefficient in V/°C.
// Coefficients given in %/°C are converted using Voc.
func betaVoc(s record, voc float64) float64 {
	if v, unit, ok := s.quantity("beta_voc", "beta_oc"); ok && !strings.Contains(unit, "%") {
		if strings.HasPrefix(unit, "mv") {
			return v / 1000
		}
		return v
	}
	v, _, ok := s.quantity("beta_voc", "beta_oc", "beta_voc_pct", "temp_coeff_voc", "coef_temp_voc", "temperature_coefficient_voc")
	if ok && voc > 0 {
		return v / 100 * voc
	}
	return 0
}

func decodeInverter(s record, f matching.ElectricalFeatures) *model.InverterSpecs {
	is := &model.InverterSpecs{
		MaxInputVoltageV: s.num("max_input_voltage", "max_input_voltage_v", "max_dc_voltage", "vdcmax", "tensao_max_entrada"),
		MpptLowV:         s.num("mppt_low", "mppt_low_v", "mppt_min", "mppt_min_v", "mppt_voltage_min"),
		MpptHighV:        s.num("mppt_high", "mppt_high_v", "mppt_max", "mppt_max_v", "mppt_voltage_max"),
		MpptCount:        s.integer("mppt_count", "mppts", "num_mppt", "numero_mppt", "mppt_trackers"),
		Efficiency:       percent(s.num("efficiency", "eficiencia", "eficiência", "max_efficiency")),
		OutputVoltageV:   s.num("output_voltage", "output_voltage_v", "tensao_saida", "ac_voltage", "voltage", "tensao"),
	}
	if v, unit, ok := s.quantity("power_kw", "potencia_kw", "power", "potencia", "potência", "power_w", "rated_power", "potencia_nominal"); ok {
		is.PowerKW = toKilowatts(v, unit)
	}
	if is.PowerKW == 0 {
		switch {
		case f.HasPowerKW():
			is.PowerKW = f.PowerKW
		case f.HasPowerW():
			is.PowerKW = f.PowerW / 1000
		}
	}
	if is.MpptLowV == 0 || is.MpptHighV == 0 {
		if v, ok := s.lookup("mppt_range", "mppt_voltage_range", "faixa_mppt"); ok {
			if lo, hi, ok := rawRange(v); ok {
				is.MpptLowV, is.MpptHighV = lo, hi
			}
		}
	}
	if v, ok := s.lookup("phases", "fases", "phase", "fase"); ok {
		if isJSONString(v) {
			is.Phases = matching.PhaseCount(matching.ParsePhase(rawString(v)))
		} else {
			n, _, _ := rawQuantity(v)
			is.Phases = int(n)
		}
	}
	return is
}

func decodeBattery(s record, f matching.ElectricalFeatures) *model.BatterySpecs {
	bs := &model.BatterySpecs{
		CapacityAh: s.num("capacity_ah", "capacidade_ah"),
		VoltageV:   s.num("voltage", "voltage_v", "tensao", "tensão", "nominal_voltage"),
		Chemistry:  s.str("chemistry", "quimica", "química", "technology", "tecnologia"),
	}
	if v, unit, ok := s.quantity("capacity_kwh", "capacidade_kwh", "energy_kwh", "energia", "capacity", "capacidade"); ok {
		switch {
		case strings.HasPrefix(unit, "ah"):
			if bs.CapacityAh == 0 {
				bs.CapacityAh = v
			}
		case strings.HasPrefix(unit, "wh"):
			bs.CapacityKWh = v / 1000
		default:
			bs.CapacityKWh = v
		}
	}
	if bs.VoltageV == 0 {
		bs.VoltageV = f.VoltageV
	}
	if bs.CapacityKWh == 0 {
		bs.CapacityKWh = f.CapacityKWh
	}
	if bs.CapacityKWh == 0 && bs.CapacityAh > 0 && bs.VoltageV > 0 {
		bs.CapacityKWh = bs.CapacityAh * bs.VoltageV / 1000
	}
	return bs
}

func decodeController(s record, f matching.ElectricalFeatures, name string) *model.ControllerSpecs {
	cs := &model.ControllerSpecs{
		CurrentA: s.num("current_a", "current", "corrente", "max_current"),
		VoltageV: s.num("voltage", "voltage_v", "tensao", "system_voltage"),
	}
	if cs.CurrentA == 0 {
		cs.CurrentA = f.CurrentA
	}
	if cs.VoltageV == 0 {
		cs.VoltageV = f.VoltageV
	}

	kind := strings.ToUpper(s.str("controller_type", "type", "tipo") + " " + name)
	switch {
	case strings.Contains(kind, "MPPT"):
		cs.Type = "MPPT"
	case strings.Contains(kind, "PWM"):
		cs.Type = "PWM"
	}
	return cs
}

func decodeKit(s record, f matching.ElectricalFeatures, text string) *model.KitSpecs {
	ks := &model.KitSpecs{
		SystemType:       matching.ParseSystemType(s.str("system_type", "tipo_sistema", "tipo", "type")),
		StructureType:    matching.ParseStructureType(s.str("structure_type", "roof_type", "estrutura", "telhado", "structure")),
		Phase:            matching.ParsePhase(s.str("phase", "fase", "phases", "fases")),
		ModulesPerString: s.integer("modules_per_string", "modulos_por_string"),
	}
	if v, unit, ok := s.quantity("capacity_kwp", "potencia_kwp", "power_kwp", "kwp", "system_capacity_kwp", "capacity", "potencia", "potência"); ok {
		ks.CapacityKWp = toKilowatts(v, unit)
	}
	if ks.CapacityKWp == 0 && f.HasCapacityKWp() {
		ks.CapacityKWp = f.CapacityKWp
	}
	if ks.SystemType == "" {
		ks.SystemType = matching.ParseSystemType(text)
	}
	if ks.StructureType == "" {
		ks.StructureType = matching.ParseStructureType(text)
	}
	if v, ok := s.lookup(componentKeys...); ok {
		ks.Components = decodeComponents(v)
	}
	return ks
}

func decodeComponents(v json.RawMessage) []model.RawKitComponent {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return nil
	}

	out := make([]model.RawKitComponent, 0, len(items))
	for _, item := range items {
		c := newRecord(item)
		desc := c.str(slices.Concat(descriptionKeys, nameKeys)...)
		features := matching.ExtractFeatures(desc)

		comp := model.RawKitComponent{
			Description:  desc,
			Manufacturer: c.str(manufacturerKeys...),
			Model:        c.str(modelKeys...),
			Quantity:     c.integer("quantity", "qty", "quantidade", "qtd"),
		}

		if typeText := c.str("type", "tipo", "category", "categoria"); typeText != "" {
			comp.Type = matching.ParseComponentType(typeText)
		} else {
			comp.Type = matching.ParseComponentType(desc)
		}

		if pw, unit, ok := c.quantity("power_w", "power", "potencia", "potência"); ok {
			comp.PowerW = toWatts(pw, unit)
		} else if features.HasPowerKW() {
			comp.PowerW = features.PowerKW * 1000
		} else {
			comp.PowerW = features.PowerW
		}

		if comp.Quantity <= 0 {
			comp.Quantity = max(features.Quantity, 1)
		}
		_, comp.UnitPrice = decodePrice(c)
		if comp.UnitPrice == nil {
			if pv, ok := c.lookup("unit_price", "preco_unitario", "valor_unitario"); ok {
				_, comp.UnitPrice = decodePrice(record{"price": pv})
			}
		}
		out = append(out, comp)
	}
	return out
}

// decodeGeneric keeps every numeric technical spec under its own key.
func decodeGeneric(r record) model.SpecSet {
	v, ok := r.lookup(specsKeys...)
	if !ok {
		return nil
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(v, &nested); err != nil {
		return nil
	}
	out := model.SpecSet{}
	for k, raw := range newRecord(nested) {
		if n, _, ok := rawQuantity(raw); ok {
			out.Set(model.SpecField(k), n)
		}
	}
	return out
}

func toWatts(v float64, unit string) float64 {
	if strings.HasPrefix(unit, "kw") {
		return v * 1000
	}
	return v
}

// toKilowatts converts a power reading to kW. Unitless values above 100 are
// taken to be watts.
func toKilowatts(v float64, unit string) float64 {
	switch {
	case strings.HasPrefix(unit, "kw"):
		return v
	case strings.HasPrefix(unit, "w"):
		return v / 1000
	case unit == "" && v > 100:
		return v / 1000
	}
	return v
}

// percent normalizes ratios (0.213) to percentages (21.3).
func percent(v float64) float64 {
	if v > 0 && v <= 1 {
		return v * 100
	}
	return v
}
