package matching

import (
	"regexp"
	"strconv"
)

var (
	// Regex patterns for feature extraction, applied to Normalize()d text
	kwpRegex      = regexp.MustCompile(`\b(\d+(?:[.,]\d+)?)\s*kwp\b`)
	kwhRegex      = regexp.MustCompile(`\b(\d+(?:[.,]\d+)?)\s*kwh\b`)
	kwRegex       = regexp.MustCompile(`\b(\d+(?:[.,]\d+)?)\s*kw\b`)
	wattsRegex    = regexp.MustCompile(`\b(\d{2,4})\s*wp?\b`)
	voltsRegex    = regexp.MustCompile(`\b(\d{2,4})\s*v(?:cc|dc|ac)?\b`)
	ampsRegex     = regexp.MustCompile(`\b(\d{1,3})\s*a\b`)
	quantityRegex = regexp.MustCompile(`^\s*(\d{1,3})\s*(?:x|un|pcs|unid(?:ades)?)\b`)
)

// ElectricalFeatures holds characteristics extracted from a free-text
// product name or kit line description.
type ElectricalFeatures struct {
	PowerW      float64 // module power (550W, 550Wp)
	PowerKW     float64 // inverter power (5kW)
	CapacityKWp float64 // system capacity (5,5 kWp)
	CapacityKWh float64 // battery energy (5 kWh)
	VoltageV    float64 // nominal voltage (48V, 220V)
	CurrentA    float64 // controller current (60A)
	Quantity    int     // leading quantity (10x, 10 un)
}

// ExtractFeatures extracts electrical features from a description
func ExtractFeatures(description string) ElectricalFeatures {
	normalized := Normalize(description)

	var features ElectricalFeatures

	if matches := kwpRegex.FindStringSubmatch(normalized); len(matches) > 1 {
		features.CapacityKWp = parseFloat(matches[1])
	}

	if matches := kwhRegex.FindStringSubmatch(normalized); len(matches) > 1 {
		features.CapacityKWh = parseFloat(matches[1])
	}

	if matches := kwRegex.FindStringSubmatch(normalized); len(matches) > 1 {
		features.PowerKW = parseFloat(matches[1])
	}

	if matches := wattsRegex.FindStringSubmatch(normalized); len(matches) > 1 {
		features.PowerW = parseFloat(matches[1])
	}

	if matches := voltsRegex.FindStringSubmatch(normalized); len(matches) > 1 {
		features.VoltageV = parseFloat(matches[1])
	}

	if matches := ampsRegex.FindStringSubmatch(normalized); len(matches) > 1 {
		features.CurrentA = parseFloat(matches[1])
	}

	if matches := quantityRegex.FindStringSubmatch(normalized); len(matches) > 1 {
		if val, err := strconv.Atoi(matches[1]); err == nil {
			features.Quantity = val
		}
	}

	return features
}

func (f ElectricalFeatures) HasPowerW() bool {
	return f.PowerW > 0
}

func (f ElectricalFeatures) HasPowerKW() bool {
	return f.PowerKW > 0
}

func (f ElectricalFeatures) HasCapacityKWp() bool {
	return f.CapacityKWp > 0
}

func parseFloat(s string) float64 {
	val, err := strconv.ParseFloat(NormalizeNumber(s), 64)
	if err != nil {
		return 0
	}
	return val
}
