package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"solar-catalog-api/internal/model"
)

func TestParseSystemType(t *testing.T) {
	assert.Equal(t, model.SystemHybrid, ParseSystemType("Híbrido"))
	assert.Equal(t, model.SystemOffGrid, ParseSystemType("Off-Grid"))
	assert.Equal(t, model.SystemOnGrid, ParseSystemType("Grid-Tie"))
	assert.Equal(t, model.SystemOnGrid, ParseSystemType("on_grid"))
	assert.Equal(t, model.SystemType(""), ParseSystemType(""))
}

func TestParseStructureType(t *testing.T) {
	assert.Equal(t, model.StructureCeramic, ParseStructureType("Telhado Cerâmico"))
	assert.Equal(t, model.StructureFibrocement, ParseStructureType("fibrocimento"))
	assert.Equal(t, model.StructureMetallic, ParseStructureType("Metálico"))
	assert.Equal(t, model.StructureSlab, ParseStructureType("laje"))
	assert.Equal(t, model.StructureGround, ParseStructureType("Solo"))
	assert.Equal(t, model.StructureType(""), ParseStructureType("madeira"))
}

func TestParsePhase(t *testing.T) {
	assert.Equal(t, model.PhaseTri, ParsePhase("Trifásico"))
	assert.Equal(t, model.PhaseBi, ParsePhase("bifasico"))
	assert.Equal(t, model.PhaseMono, ParsePhase("1"))
	assert.Equal(t, 3, PhaseCount(model.PhaseTri))
	assert.Equal(t, 0, PhaseCount(""))
}

func TestParseComponentType(t *testing.T) {
	tests := map[string]model.ComponentType{
		"10x Painel Solar Jinko 550W": model.ComponentPanel,
		"Módulo fotovoltaico 450Wp":   model.ComponentPanel,
		"1x Inversor Growatt 5kW":     model.ComponentInverter,
		"Bateria Lítio 5kWh":          model.ComponentBattery,
		"Estrutura telhado cerâmico":  model.ComponentStructure,
		"Cabo solar 6mm":              model.ComponentOther,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseComponentType(in), in)
	}
}

func TestParseSystemType_ProductNames(t *testing.T) {
	assert.Equal(t, model.SystemOnGrid, ParseSystemType("Kit Solar On Grid 5,5kWp Longi Growatt"))
	assert.Equal(t, model.SystemType(""), ParseSystemType("Kit Solar 5,5kWp Longi Growatt"))
}
