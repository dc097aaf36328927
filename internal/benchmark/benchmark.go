// Package benchmark holds the COVIP average ISC (synthetic cost indicator)
// figures per fund class.
package benchmark

import "strings"

// Fund classes published by COVIP.
const (
	FPN = "FPN" // negotiated pension funds
	FPA = "FPA" // open pension funds
	PIP = "PIP" // individual pension plans
)

// Horizons are the holding periods, in years, the ISC is published for.
var Horizons = [4]int{2, 5, 10, 35}

// tenYearIdx is the position of the 10-year horizon in Horizons.
const tenYearIdx = 2

// averages holds the average ISC in percent for each class and horizon.
var averages = map[string][4]float64{
	FPN: {1.0, 0.6, 0.4, 0.3},
	FPA: {2.2, 1.4, 1.1, 1.0},
	PIP: {3.7, 2.8, 2.4, 1.9},
}

// Classes lists the fund classes in display order.
func Classes() []string { return []string{FPN, FPA, PIP} }

// Classify maps a COVIP fund type label to its benchmark class. Labels
// mentioning neither FPA nor PIP fall back to FPN.
func Classify(fundType string) string {
	switch {
	case strings.Contains(fundType, FPA):
		return FPA
	case strings.Contains(fundType, PIP):
		return PIP
	default:
		return FPN
	}
}

// Values returns the ISC averages of a class over Horizons.
func Values(class string) [4]float64 {
	return averages[Classify(class)]
}

// TenYear returns the 10-year average ISC for every class.
func TenYear() map[string]float64 {
	out := make(map[string]float64, len(averages))
	for class, v := range averages {
		out[class] = v[tenYearIdx]
	}
	return out
}
