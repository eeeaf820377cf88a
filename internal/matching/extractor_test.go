package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFeatures(t *testing.T) {
	tests := []struct {
		description string
		want        ElectricalFeatures
	}{
		{
			description: "Painel Solar Canadian 550W HiKu6 Mono",
			want:        ElectricalFeatures{PowerW: 550},
		},
		{
			description: "Kit Gerador 5,5 kWp Growatt",
			want:        ElectricalFeatures{CapacityKWp: 5.5},
		},
		{
			description: "Inversor Growatt MIN 5000TL-X 5kW 220V",
			want:        ElectricalFeatures{PowerKW: 5, VoltageV: 220},
		},
		{
			description: "10x Módulo Jinko 555Wp",
			want:        ElectricalFeatures{PowerW: 555, Quantity: 10},
		},
		{
			description: "Bateria Pylontech US5000 4.8 kWh 48V",
			want:        ElectricalFeatures{CapacityKWh: 4.8, VoltageV: 48},
		},
		{
			description: "Controlador de carga MPPT 60A",
			want:        ElectricalFeatures{CurrentA: 60},
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFeatures(tt.description))
		})
	}
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "CS6W-550MS", Slug("cs6w 550ms"))
	assert.Equal(t, "MODULO-SOLAR", Slug("  Módulo / Solar  "))
	assert.Equal(t, "", Slug("---"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "inversor hibrido", Normalize("  Inversor   HÍBRIDO "))
}
