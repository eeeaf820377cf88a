package electrical

// DefaultPerformanceRatio accounts for temperature, soiling, cabling and
// inverter losses.
const DefaultPerformanceRatio = 0.80

// DaysPerMonth is the averaging period for monthly consumption.
const DaysPerMonth = 30

// RequiredCapacityKWp returns the array size needed to cover monthlyKWh at
// hsp peak sun hours per day. A non-positive pr uses the default. Invalid
// inputs return 0.
func RequiredCapacityKWp(monthlyKWh, hsp, pr float64) float64 {
	if monthlyKWh <= 0 || hsp <= 0 {
		return 0
	}
	if pr <= 0 {
		pr = DefaultPerformanceRatio
	}
	return round2(monthlyKWh / (hsp * DaysPerMonth * pr))
}

// EstimateMonthlyGenerationKWh is the inverse of RequiredCapacityKWp.
func EstimateMonthlyGenerationKWh(kwp, hsp, pr float64) float64 {
	if kwp <= 0 || hsp <= 0 {
		return 0
	}
	if pr <= 0 {
		pr = DefaultPerformanceRatio
	}
	return round2(kwp * hsp * DaysPerMonth * pr)
}
