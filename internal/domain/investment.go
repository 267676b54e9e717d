package domain

import (
	"github.com/shopspring/decimal"
)

// ActiveUnitsEpsilon separates a fully redeemed holding from rounding noise
var ActiveUnitsEpsilon = decimal.NewFromFloat(0.1)

// Fund describes a fund as known to the fund directory
type Fund struct {
	ID   string
	Name string
}

// HoldingSummary is the derived state of one fund held by a user
// Recomputed for every request, never persisted by the core.
type HoldingSummary struct {
	FundID        string
	FundName      string
	ValuationDate Date
	Price         decimal.Decimal // Latest price per unit
	Units         decimal.Decimal // Net units held
	Value         decimal.Decimal // Units x Price
	Cost          decimal.Decimal // Net amount invested (contributions - redemptions)
	Profit        decimal.Decimal // Value - Cost
	Rate          *float64        // Annualized money-weighted return, nil when unavailable
	RateErr       error           // Why Rate is nil
}

// Active reports whether the holding still carries a non-negligible balance
func (h HoldingSummary) Active() bool {
	return h.Units.Abs().GreaterThan(ActiveUnitsEpsilon)
}

// PortfolioSummary rolls up all holdings of a user
type PortfolioSummary struct {
	Currency   string
	Holdings   []HoldingSummary
	Investment decimal.Decimal // Sum of holding costs
	Value      decimal.Decimal // Sum of holding values
	Profit     decimal.Decimal // Value - Investment
	NumFunds   int             // Holdings with a non-negligible unit balance
	Rate       *float64
	RateErr    error
}

// RollingReturnPoint is the annualized growth over the trailing period ending on Date
type RollingReturnPoint struct {
	Date   Date
	Growth float64
}

// RollingReturnSeries is the result of one rolling-return query
type RollingReturnSeries struct {
	FundID      string
	PeriodYears int
	Range       DateRange
	Points      []RollingReturnPoint
}

// Growths returns the growth values in date order
func (s RollingReturnSeries) Growths() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Growth
	}
	return out
}

// RollingSummary holds the risk/consistency statistics of a rolling series
type RollingSummary struct {
	Count  int
	Mean   float64
	StdDev float64 // Sample standard deviation, 0 with fewer than two points
	Min    float64
	Max    float64
}

// TrailingReturn is the point-to-point annualized return over Years ending on To
type TrailingReturn struct {
	Years  int
	From   Date
	To     Date
	Return float64
}

// SIPReturn is the money-weighted return of a synthetic monthly plan
type SIPReturn struct {
	Years        int
	Installments int
	Invested     decimal.Decimal
	Units        decimal.Decimal
	Value        decimal.Decimal
	Rate         float64
}
