package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Cashflow is one dated, signed amount
// Sign convention: money paid in by the investor is negative,
// money received (redemptions, terminal value) is positive.
type Cashflow struct {
	Date   Date
	Amount decimal.Decimal
}

// CashflowSeries is a list of cashflows, normally ordered by date
type CashflowSeries []Cashflow

// Sorted returns a copy of the series ordered by date (stable for equal dates)
func (s CashflowSeries) Sorted() CashflowSeries {
	out := make(CashflowSeries, len(s))
	copy(out, s)
	slices.SortStableFunc(out, func(a, b Cashflow) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// Sum returns the undiscounted sum of all amounts
func (s CashflowSeries) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, c := range s {
		total = total.Add(c.Amount)
	}
	return total
}

// HasMixedSigns reports whether the series holds at least one outflow and one inflow
func (s CashflowSeries) HasMixedSigns() bool {
	hasNeg, hasPos := false, false
	for _, c := range s {
		if c.Amount.IsNegative() {
			hasNeg = true
		}
		if c.Amount.IsPositive() {
			hasPos = true
		}
	}
	return hasNeg && hasPos
}
