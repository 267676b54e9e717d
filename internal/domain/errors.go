package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNonConvergence is returned when the rate solver exhausts its iteration
	// budget without bringing the discounted sum within tolerance
	ErrNonConvergence = errors.New("rate did not converge")

	// ErrDegenerateCashflowSet is returned for cashflow sets with no finite rate
	ErrDegenerateCashflowSet = errors.New("degenerate cashflow set")

	// The following wrap ErrDegenerateCashflowSet
	ErrTooFewCashflows = fmt.Errorf("%w: at least two non-zero cashflows are required", ErrDegenerateCashflowSet)
	ErrSingleSign      = fmt.Errorf("%w: cashflows must contain both an outflow and an inflow", ErrDegenerateCashflowSet)
	ErrSingleDate      = fmt.Errorf("%w: all cashflows share the same date", ErrDegenerateCashflowSet)

	// ErrMissingValuation is returned when no valuation exists on or after a required date
	ErrMissingValuation = errors.New("missing valuation")

	// ErrFundNotFound is returned by fund directories for unknown fund identifiers
	ErrFundNotFound = errors.New("fund not found")

	// ErrInvalidSeries is returned when a valuation series breaks its invariants
	ErrInvalidSeries = errors.New("invalid valuation series")

	// ErrInvalidTransaction is returned when a transaction breaks its invariants
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// MissingValuationError reports which fund and date had no usable valuation
type MissingValuationError struct {
	FundID string
	Date   Date
}

func (e *MissingValuationError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("missing valuation: fund %s has no valuation", e.FundID)
	}
	return fmt.Sprintf("missing valuation: fund %s has no valuation on or after %s", e.FundID, e.Date)
}

// Is makes errors.Is(err, ErrMissingValuation) hold
func (e *MissingValuationError) Is(target error) bool {
	return target == ErrMissingValuation
}
