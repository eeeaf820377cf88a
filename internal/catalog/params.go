package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"solar-catalog-api/internal/matching"
	"solar-catalog-api/internal/model"
)

// ParamsLibrary holds Sandia inverter and CEC module parameter sets keyed by
// ParamsKey of the SKU id or of "manufacturer model".
type ParamsLibrary struct {
	Inverters map[string]model.SandiaInverter `json:"inverters"`
	Modules   map[string]model.CECModule      `json:"modules"`
}

// ParamsKey builds the lookup key for a parameter set.
func ParamsKey(parts ...string) string {
	return matching.Slug(strings.Join(parts, " "))
}

// LoadParams reads a parameter library file:
//
//	{"inverters": {"GROWATT MIN 5000TL-X": {"Paco": 5000, "Mppt_low": 80, ...}},
//	 "modules":   {"JINKO SOLAR JKM550M": {"V_mp_ref": 41.6, ...}}}
//
// A missing file yields an empty library.
func LoadParams(path string) (*ParamsLibrary, error) {
	lib := &ParamsLibrary{
		Inverters: map[string]model.SandiaInverter{},
		Modules:   map[string]model.CECModule{},
	}
	if path == "" {
		return lib, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lib, nil
		}
		return nil, fmt.Errorf("failed to read params file: %w", err)
	}

	var raw ParamsLibrary
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal params file: %w", err)
	}
	for k, v := range raw.Inverters {
		if v.Name == "" {
			v.Name = k
		}
		lib.Inverters[ParamsKey(k)] = v
	}
	for k, v := range raw.Modules {
		if v.Name == "" {
			v.Name = k
		}
		lib.Modules[ParamsKey(k)] = v
	}
	return lib, nil
}

// Inverter returns the first parameter set found under any of keys.
func (l *ParamsLibrary) Inverter(keys ...string) (*model.SandiaInverter, bool) {
	if l == nil {
		return nil, false
	}
	for _, k := range keys {
		if p, ok := l.Inverters[ParamsKey(k)]; ok {
			return &p, true
		}
	}
	return nil, false
}

// Module returns the first parameter set found under any of keys.
func (l *ParamsLibrary) Module(keys ...string) (*model.CECModule, bool) {
	if l == nil {
		return nil, false
	}
	for _, k := range keys {
		if p, ok := l.Modules[ParamsKey(k)]; ok {
			return &p, true
		}
	}
	return nil, false
}

// InverterFromSpecs derives a partial Sandia set from datasheet specs. Nil
// is returned when the MPPT window is unknown.
func InverterFromSpecs(name string, specs model.SpecSet) *model.SandiaInverter {
	low, _ := specs.Get(model.SpecMpptLowV)
	high, _ := specs.Get(model.SpecMpptHighV)
	p := &model.SandiaInverter{
		Name:     name,
		MpptLow:  low,
		MpptHigh: high,
	}
	if kw, ok := specs.Get(model.SpecPowerKW); ok {
		p.Paco = kw * 1000
	}
	if v, ok := specs.Get(model.SpecMaxInputV); ok {
		p.Vdcmax = v
	}
	if !p.HasMpptWindow() {
		return nil
	}
	return p
}

// ModuleFromSpecs derives a partial CEC set from datasheet specs. Nil is
// returned when Vmp, Voc or the Voc coefficient is unknown.
func ModuleFromSpecs(name string, specs model.SpecSet) *model.CECModule {
	vmp, _ := specs.Get(model.SpecVmpV)
	voc, _ := specs.Get(model.SpecVocV)
	beta, _ := specs.Get(model.SpecBetaVoc)
	p := &model.CECModule{
		Name:    name,
		VmpRef:  vmp,
		VocRef:  voc,
		BetaVoc: beta,
	}
	p.STC, _ = specs.Get(model.SpecPowerW)
	p.IscRef, _ = specs.Get(model.SpecIscA)
	p.ImpRef, _ = specs.Get(model.SpecImpA)
	if cells, ok := specs.Get(model.SpecCells); ok {
		p.Ns = int(cells)
	}
	if !p.HasVoltageParams() {
		return nil
	}
	return p
}
