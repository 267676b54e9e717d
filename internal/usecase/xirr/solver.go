package xirr

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/simaogato/wealthflow-returns/internal/domain"
)

const daysPerYear = 365.0

// Solver finds the annualized rate that zeroes the net present value of a
// dated cashflow series.
//
// Algorithm (bisection-guided walk):
//  1. The direction multiplier is fixed once: +1 if NPV(Guess+Probe) < NPV(Guess), -1 otherwise
//  2. Each iteration evaluates the residual NPV(guess); within Tolerance it is the answer
//  3. When the residual changes sign the step is halved
//  4. The guess moves by Step x direction x sign(residual)
//
// The iteration cap is the only bound on work; exhausting it yields a NonConvergenceError.
type Solver struct {
	Guess         float64 // Starting rate
	Step          float64 // Initial step size
	Probe         float64 // Offset used to detect the search direction
	Tolerance     float64 // Absolute residual accepted, in currency units
	MaxIterations int
	// GuessFromFlows starts from InitialGuess(flows) when it yields a finite rate
	GuessFromFlows bool

	log zerolog.Logger
}

// DefaultSolver returns the solver used across the engine
func DefaultSolver() *Solver {
	return &Solver{
		Guess:         0.05,
		Step:          0.05,
		Probe:         0.05,
		Tolerance:     0.1,
		MaxIterations: 1000,
		log:           zerolog.Nop(),
	}
}

// WithLogger returns a copy of the solver logging through log
func (s *Solver) WithLogger(log zerolog.Logger) *Solver {
	c := *s
	c.log = log.With().Str("component", "xirr").Logger()
	return &c
}

// NonConvergenceError reports a solver run that exhausted its iteration budget
type NonConvergenceError struct {
	Iterations int
	LastGuess  float64
	Residual   float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("rate did not converge after %d iterations (last guess %.6f, residual %.4f)",
		e.Iterations, e.LastGuess, e.Residual)
}

// Is makes errors.Is(err, domain.ErrNonConvergence) hold
func (e *NonConvergenceError) Is(target error) bool {
	return target == domain.ErrNonConvergence
}

// prepared holds cashflows normalized to year fractions
type prepared struct {
	years   []float64
	amounts []float64
}

func (p prepared) npv(rate float64) float64 {
	sum := 0.0
	for i, a := range p.amounts {
		sum += a / math.Pow(1+rate, p.years[i])
	}
	return sum
}

// prepare validates the series and converts it to (years, amount) pairs
// Zero amounts carry no information and are ignored.
func prepare(flows domain.CashflowSeries) (prepared, error) {
	nonZero := make(domain.CashflowSeries, 0, len(flows))
	for _, f := range flows {
		if !f.Amount.IsZero() {
			nonZero = append(nonZero, f)
		}
	}
	if len(nonZero) < 2 {
		return prepared{}, domain.ErrTooFewCashflows
	}
	if !nonZero.HasMixedSigns() {
		return prepared{}, domain.ErrSingleSign
	}

	sorted := nonZero.Sorted()
	start := sorted[0].Date
	if sorted[len(sorted)-1].Date.Equal(start) {
		return prepared{}, domain.ErrSingleDate
	}

	p := prepared{
		years:   make([]float64, len(sorted)),
		amounts: make([]float64, len(sorted)),
	}
	for i, f := range sorted {
		p.years[i] = float64(f.Date.DaysSince(start)) / daysPerYear
		p.amounts[i] = f.Amount.InexactFloat64()
	}
	return p, nil
}

// NPV returns the net present value of flows discounted at rate, with year
// fractions measured from the earliest cashflow
func NPV(flows domain.CashflowSeries, rate float64) float64 {
	if len(flows) == 0 {
		return 0
	}
	sorted := flows.Sorted()
	start := sorted[0].Date
	sum := 0.0
	for _, f := range sorted {
		years := float64(f.Date.DaysSince(start)) / daysPerYear
		sum += f.Amount.InexactFloat64() / math.Pow(1+rate, years)
	}
	return sum
}

// Solve returns the annualized rate r such that NPV(flows, r) is within tolerance of zero
// Degenerate series are rejected before iterating (domain.ErrDegenerateCashflowSet).
func (s *Solver) Solve(flows domain.CashflowSeries) (float64, error) {
	p, err := prepare(flows)
	if err != nil {
		return 0, err
	}

	guess := s.Guess
	if s.GuessFromFlows {
		if g := InitialGuess(flows); !math.IsNaN(g) && !math.IsInf(g, 0) && g > -1 {
			guess = g
		}
	}
	step := s.Step

	dir := -1.0
	if p.npv(guess+s.Probe) < p.npv(guess) {
		dir = 1.0
	}

	residual := math.NaN()
	for i := 0; i < s.MaxIterations; i++ {
		prev := residual
		residual = p.npv(guess)

		if math.Abs(residual) <= s.Tolerance {
			s.log.Debug().
				Int("iterations", i+1).
				Float64("rate", guess).
				Float64("residual", residual).
				Msg("Rate converged")
			return guess, nil
		}

		if !math.IsNaN(prev) && math.Signbit(residual) != math.Signbit(prev) {
			step /= 2
		}

		next := guess + step*dir*sign(residual)
		if next <= -1 {
			// (1+r)^t is undefined below -100%: approach the bound instead
			next = (guess - 1) / 2
			step /= 2
		}
		guess = next
	}

	s.log.Debug().
		Int("iterations", s.MaxIterations).
		Float64("last_guess", guess).
		Float64("residual", residual).
		Msg("Rate did not converge")

	return 0, &NonConvergenceError{
		Iterations: s.MaxIterations,
		LastGuess:  guess,
		Residual:   residual,
	}
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// InitialGuess estimates a starting rate from the amount-weighted mean dates of
// outflows and inflows: (inflows/outflows)^(1/holding years) - 1.
// Returns NaN when the series has no outflow, no inflow or no holding period.
func InitialGuess(flows domain.CashflowSeries) float64 {
	if len(flows) == 0 {
		return math.NaN()
	}
	start := flows.Sorted()[0].Date

	var outSum, outWeighted, inSum, inWeighted float64
	for _, f := range flows {
		a := f.Amount.InexactFloat64()
		days := float64(f.Date.DaysSince(start))
		switch {
		case a < 0:
			outSum += -a
			outWeighted += -a * days
		case a > 0:
			inSum += a
			inWeighted += a * days
		}
	}
	if outSum == 0 || inSum == 0 {
		return math.NaN()
	}

	holding := (inWeighted/inSum - outWeighted/outSum) / daysPerYear
	if holding <= 0 {
		return math.NaN()
	}
	return math.Pow(inSum/outSum, 1/holding) - 1
}
