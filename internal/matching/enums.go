package matching

import (
	"strings"

	"solar-catalog-api/internal/model"
)

// ParseSystemType reads free text such as "Grid-Tie", "Off Grid" or
// "Híbrido", including whole product names. Empty is returned when nothing
// is recognized.
func ParseSystemType(text string) model.SystemType {
	s := Normalize(text)
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "hibrid") || strings.Contains(s, "hybrid"):
		return model.SystemHybrid
	case containsAny(s, offGridMarkers):
		return model.SystemOffGrid
	case containsAny(s, onGridMarkers):
		return model.SystemOnGrid
	}
	return ""
}

var (
	offGridMarkers = []string{"off grid", "off-grid", "off_grid", "offgrid", "isolad"}
	onGridMarkers  = []string{"on grid", "on-grid", "on_grid", "ongrid", "grid tie", "grid-tie", "grid_tie", "conectad"}
)

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// ParseStructureType reads roof/mounting descriptions.
func ParseStructureType(text string) model.StructureType {
	s := Normalize(text)
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "ceram"), strings.Contains(s, "colonial"):
		return model.StructureCeramic
	case strings.Contains(s, "fibro"):
		return model.StructureFibrocement
	case strings.Contains(s, "metal"), strings.Contains(s, "zinc"), strings.Contains(s, "trapez"):
		return model.StructureMetallic
	case strings.Contains(s, "laje"), strings.Contains(s, "slab"):
		return model.StructureSlab
	case strings.Contains(s, "solo"), strings.Contains(s, "ground"):
		return model.StructureGround
	}
	return ""
}

// ParsePhase reads "mono", "bifásico", "trifasico", "3" and similar.
func ParsePhase(text string) model.Phase {
	s := Normalize(text)
	switch {
	case s == "":
		return ""
	case strings.HasPrefix(s, "tri"), s == "3", strings.Contains(s, "three"):
		return model.PhaseTri
	case strings.HasPrefix(s, "bi"), s == "2", strings.Contains(s, "split"):
		return model.PhaseBi
	case strings.HasPrefix(s, "mono"), s == "1", strings.Contains(s, "single"):
		return model.PhaseMono
	}
	return ""
}

// PhaseCount converts a phase into the number of AC phases, 0 when unknown.
func PhaseCount(p model.Phase) int {
	switch p {
	case model.PhaseMono:
		return 1
	case model.PhaseBi:
		return 2
	case model.PhaseTri:
		return 3
	}
	return 0
}

// ParseComponentType classifies a kit line by its declared type or its
// description.
func ParseComponentType(text string) model.ComponentType {
	s := Normalize(text)
	switch {
	case strings.Contains(s, "inversor"), strings.Contains(s, "inverter"):
		return model.ComponentInverter
	case strings.Contains(s, "painel"), strings.Contains(s, "paine"), strings.Contains(s, "modulo"),
		strings.Contains(s, "panel"), strings.Contains(s, "module"), strings.Contains(s, "placa"):
		return model.ComponentPanel
	case strings.Contains(s, "bateria"), strings.Contains(s, "battery"):
		return model.ComponentBattery
	case strings.Contains(s, "estrutura"), strings.Contains(s, "structure"),
		strings.Contains(s, "suporte"), strings.Contains(s, "trilho"), strings.Contains(s, "mounting"):
		return model.ComponentStructure
	}
	return model.ComponentOther
}
