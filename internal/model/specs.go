package model

import "maps"

// SpecField names a numeric technical attribute.
type SpecField string

const (
	SpecPowerW        SpecField = "power_w"
	SpecPowerKW       SpecField = "power_kw"
	SpecVoltageV      SpecField = "voltage_v"
	SpecEfficiency    SpecField = "efficiency"
	SpecVocV          SpecField = "voc_v"
	SpecVmpV          SpecField = "vmp_v"
	SpecIscA          SpecField = "isc_a"
	SpecImpA          SpecField = "imp_a"
	SpecBetaVoc       SpecField = "beta_voc"
	SpecCapacityKWh   SpecField = "capacity_kwh"
	SpecCapacityAh    SpecField = "capacity_ah"
	SpecCapacityKWp   SpecField = "capacity_kwp"
	SpecMpptLowV      SpecField = "mppt_low_v"
	SpecMpptHighV     SpecField = "mppt_high_v"
	SpecMaxInputV     SpecField = "max_input_voltage_v"
	SpecMpptCount     SpecField = "mppt_count"
	SpecPhases        SpecField = "phases"
	SpecCurrentA      SpecField = "current_a"
	SpecCells         SpecField = "cells"
	SpecModulesString SpecField = "modules_per_string"
)

// DedupFields are the attributes compared when deciding whether two offers
// describe the same product.
var DedupFields = []SpecField{SpecPowerW, SpecVoltageV, SpecPowerKW, SpecEfficiency}

// SpecSet is a sparse set of numeric technical attributes. Absent fields are
// simply missing from the map; zero values are never stored.
type SpecSet map[SpecField]float64

// Set stores v under f, ignoring zero values.
func (s SpecSet) Set(f SpecField, v float64) {
	if v == 0 {
		return
	}
	s[f] = v
}

// Get returns the value for f and whether it is present.
func (s SpecSet) Get(f SpecField) (float64, bool) {
	v, ok := s[f]
	return v, ok
}

// Clone returns an independent copy.
func (s SpecSet) Clone() SpecSet {
	out := make(SpecSet, len(s))
	maps.Copy(out, s)
	return out
}

// FillFrom copies fields from other that s does not have yet.
func (s SpecSet) FillFrom(other SpecSet) {
	for f, v := range other {
		if _, ok := s[f]; !ok {
			s[f] = v
		}
	}
}
