// Package money provides precision-safe monetary arithmetic for invoice line
// computation. Amounts move through the extraction pipeline as float64 euros;
// every derived figure goes through integer cents (go-money) or decimal math
// so that rounding stays consistent across unit price, VAT and totals.
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// EUR is the only currency the supplier invoices carry.
const EUR = "EUR"

// Round2 rounds a euro amount to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Cents converts a euro amount to integer cents using decimal arithmetic.
func Cents(v float64) int64 {
	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromCents converts integer cents back to a euro amount.
func FromCents(c int64) float64 {
	return decimal.NewFromInt(c).Div(decimal.NewFromInt(100)).InexactFloat64()
}

// SumExact adds two already-rounded euro amounts in integer cents, so the
// result is exactly a + b with no binary float drift. This is what keeps
// the tax-inclusive amount equal to base plus VAT after rounding.
func SumExact(a, b float64) float64 {
	total := money.New(Cents(a), EUR)
	added, err := total.Add(money.New(Cents(b), EUR))
	if err != nil {
		// Same hardcoded currency on both sides, cannot happen.
		return Round2(a + b)
	}
	return FromCents(added.Amount())
}

// LineTotal computes unit price x unit count, rounded to 2 decimals.
func LineTotal(unitPrice float64, units int) float64 {
	d := decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(units)))
	return d.Round(2).InexactFloat64()
}

// VATAmount computes the VAT portion for a tax-exclusive base at the given
// percentage rate (e.g. 20.0 for 20%), rounded to 2 decimals.
func VATAmount(base, ratePercent float64) float64 {
	d := decimal.NewFromFloat(base).
		Mul(decimal.NewFromFloat(ratePercent)).
		Div(decimal.NewFromInt(100))
	return d.Round(2).InexactFloat64()
}

// WithMargin returns price x (1 + marginRate), rounded to 2 decimals.
// A negative margin rate is clamped to zero so a bad configuration value
// can never push the floor below cost.
func WithMargin(price, marginRate float64) float64 {
	if marginRate < 0 {
		marginRate = 0
	}
	d := decimal.NewFromFloat(price).
		Mul(decimal.NewFromFloat(1).Add(decimal.NewFromFloat(marginRate)))
	return d.Round(2).InexactFloat64()
}
