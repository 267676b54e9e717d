package sip

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-returns/internal/domain"
	"github.com/simaogato/wealthflow-returns/internal/usecase/xirr"
)

// DefaultYears are the plan lengths reported when none are requested
var DefaultYears = []int{1, 3, 5}

// Installment is one synthetic monthly purchase
type Installment struct {
	Date   domain.Date
	Price  decimal.Decimal
	Amount decimal.Decimal
	Units  decimal.Decimal
}

// Planner builds synthetic systematic investment plans against a fund's
// valuation history and measures their money-weighted return.
type Planner struct {
	Amount         decimal.Decimal // Invested per installment
	InstallmentDay int             // Earliest day of the month an installment may fall on
	UnitPrecision  int32           // Decimal places units are rounded to
	Solver         *xirr.Solver

	log zerolog.Logger
}

// NewPlanner creates a planner investing amount on the first valuation on or
// after the 10th of each month
func NewPlanner(amount decimal.Decimal, solver *xirr.Solver, log zerolog.Logger) *Planner {
	if solver == nil {
		solver = xirr.DefaultSolver()
	}
	return &Planner{
		Amount:         amount,
		InstallmentDay: 10,
		UnitPrecision:  3,
		Solver:         solver,
		log:            log.With().Str("component", "sip").Logger(),
	}
}

// Schedule returns the installments of a plan running over the months before asOf.
//
// Logic:
//   - Candidate days are valuations in [asOf - months, asOf] on or after InstallmentDay
//   - The earliest candidate of each calendar month is the installment
//   - The very first candidate of the window is dropped, since the window
//     usually starts mid-month
//   - Units = Amount / Price rounded to UnitPrecision
func (p *Planner) Schedule(series *domain.ValuationSeries, asOf domain.Date, months int) []Installment {
	out := []Installment{}
	if series == nil || months < 1 {
		return out
	}

	window := domain.DateRange{From: subtractMonths(asOf, months), To: asOf}
	seen := make(map[string]bool)
	first := true

	for _, v := range series.Between(window).Points() {
		if v.Date.Day() < p.InstallmentDay {
			continue
		}
		if first {
			first = false
			seen[v.Date.YearMonth()] = true
			continue
		}
		month := v.Date.YearMonth()
		if seen[month] {
			continue
		}
		seen[month] = true
		out = append(out, Installment{
			Date:   v.Date,
			Price:  v.Price,
			Amount: p.Amount,
			Units:  p.Amount.Div(v.Price).Round(p.UnitPrecision),
		})
	}
	return out
}

// Returns computes the return of plans of each length in years, all ending on asOf.
// One schedule is built for the longest plan; each plan keeps its last N x 12
// installments and redeems the accumulated units at the valuation as of asOf.
// Plans longer than the available history are omitted.
func (p *Planner) Returns(series *domain.ValuationSeries, asOf domain.Date, years ...int) ([]domain.SIPReturn, error) {
	if len(years) == 0 {
		years = DefaultYears
	}
	out := []domain.SIPReturn{}
	if series == nil {
		return out, domain.ErrInvalidSeries
	}

	terminal, ok := series.ValueAsOf(asOf)
	if !ok {
		return out, &domain.MissingValuationError{FundID: series.FundID(), Date: asOf}
	}

	longest := slices.Max(years)
	schedule := p.Schedule(series, asOf, longest*12+1)

	for _, n := range years {
		needed := n * 12
		if n < 1 || len(schedule) < needed {
			p.log.Debug().
				Str("fund_id", series.FundID()).
				Int("years", n).
				Int("installments", len(schedule)).
				Msg("Not enough history for plan")
			continue
		}

		res, err := p.evaluate(schedule[len(schedule)-needed:], terminal)
		if err != nil {
			return nil, fmt.Errorf("%d year plan for fund %s: %w", n, series.FundID(), err)
		}
		res.Years = n
		out = append(out, res)
	}
	return out, nil
}

func (p *Planner) evaluate(installments []Installment, terminal domain.ValuationPoint) (domain.SIPReturn, error) {
	flows := make(domain.CashflowSeries, 0, len(installments)+1)
	invested := decimal.Zero
	units := decimal.Zero
	value := decimal.Zero
	for _, in := range installments {
		flows = append(flows, domain.Cashflow{Date: in.Date, Amount: in.Amount.Neg()})
		invested = invested.Add(in.Amount)
		units = units.Add(in.Units)
		// Valued from the unrounded units so a flat price returns exactly what was paid
		value = value.Add(in.Amount.Mul(terminal.Price).Div(in.Price))
	}
	flows = append(flows, domain.Cashflow{Date: terminal.Date, Amount: value})

	rate, err := p.Solver.Solve(flows)
	if err != nil {
		return domain.SIPReturn{}, err
	}

	return domain.SIPReturn{
		Installments: len(installments),
		Invested:     invested,
		Units:        units,
		Value:        value,
		Rate:         math.Round(rate*1e6) / 1e6,
	}, nil
}

// subtractMonths moves back n calendar months, clamping to the last day of
// the target month (March 31 minus one month is February 28/29)
func subtractMonths(d domain.Date, n int) domain.Date {
	firstOfTarget := domain.NewDate(d.Year(), d.Month()-time.Month(n), 1)
	lastDay := firstOfTarget.AddMonths(1).AddDays(-1).Day()
	return domain.NewDate(firstOfTarget.Year(), firstOfTarget.Month(), min(d.Day(), lastDay))
}
