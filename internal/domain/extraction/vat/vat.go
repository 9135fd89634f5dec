// Package vat maps the supplier's single-letter VAT codes to percentage
// rates. The built-in table covers the letters observed across the known
// invoice layouts; callers can override individual letters and supply the
// default used for unknown or absent codes.
package vat

import "strings"

// DefaultRatePercent is the standard rate applied when nothing better is known.
const DefaultRatePercent = 20.0

// builtinRates is the fixed code table. Read-only after init.
var builtinRates = map[string]float64{
	"A": 20.0, "C": 20.0, "D": 20.0, "F": 20.0, "J": 20.0, "K": 20.0,
	"B": 10.0, "H": 10.0, "N": 10.0, "T": 10.0,
	"E": 5.5, "I": 5.5, "L": 5.5, "P": 5.5, "Q": 5.5, "R": 5.5,
	"S": 5.5, "U": 5.5, "V": 5.5, "W": 5.5, "Y": 5.5,
	"M": 2.1,
	"G": 0.0, "O": 0.0, "X": 0.0, "Z": 0.0,
}

// Resolve returns the percentage rate for a one-letter VAT code,
// case-insensitively. Resolution order: caller overrides, built-in table,
// default. It never fails: an unknown, empty or malformed code yields the
// default rate.
func Resolve(code string, overrides map[string]float64, defaultRate float64) float64 {
	key := strings.ToUpper(strings.TrimSpace(code))
	if key == "" {
		return defaultRate
	}
	if overrides != nil {
		if rate, ok := overrides[key]; ok {
			return rate
		}
	}
	if rate, ok := builtinRates[key]; ok {
		return rate
	}
	return defaultRate
}
