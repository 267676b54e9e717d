package domain

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// ValuationPoint is the price of one unit of a fund on one calendar day (NAV)
type ValuationPoint struct {
	Date  Date
	Price decimal.Decimal
}

// ValuationSeries is an ordered, unique-by-date price history for one fund
// It is immutable once built: accessors return copies or values.
type ValuationSeries struct {
	fundID string
	points []ValuationPoint
}

// NewValuationSeries sorts the points by date and validates them
// Returns an error for duplicate dates or non-positive prices
func NewValuationSeries(fundID string, points []ValuationPoint) (*ValuationSeries, error) {
	sorted := make([]ValuationPoint, len(points))
	copy(sorted, points)
	slices.SortStableFunc(sorted, func(a, b ValuationPoint) int {
		return a.Date.Compare(b.Date)
	})

	for i, p := range sorted {
		if p.Date.IsZero() {
			return nil, fmt.Errorf("%w: fund %s has a valuation without date", ErrInvalidSeries, fundID)
		}
		if !p.Price.IsPositive() {
			return nil, fmt.Errorf("%w: fund %s has non-positive price %s on %s", ErrInvalidSeries, fundID, p.Price, p.Date)
		}
		if i > 0 && sorted[i-1].Date.Equal(p.Date) {
			return nil, fmt.Errorf("%w: fund %s has two valuations on %s", ErrInvalidSeries, fundID, p.Date)
		}
	}

	return &ValuationSeries{fundID: fundID, points: sorted}, nil
}

// FundID returns the fund the series belongs to
func (s *ValuationSeries) FundID() string { return s.fundID }

// Len returns the number of valuations
func (s *ValuationSeries) Len() int { return len(s.points) }

// Points returns a copy of the valuations in chronological order
func (s *ValuationSeries) Points() []ValuationPoint {
	out := make([]ValuationPoint, len(s.points))
	copy(out, s.points)
	return out
}

// At returns the i-th valuation in chronological order
func (s *ValuationSeries) At(i int) ValuationPoint { return s.points[i] }

// First returns the earliest valuation, false if the series is empty
func (s *ValuationSeries) First() (ValuationPoint, bool) {
	if len(s.points) == 0 {
		return ValuationPoint{}, false
	}
	return s.points[0], true
}

// Latest returns the most recent valuation, false if the series is empty
func (s *ValuationSeries) Latest() (ValuationPoint, bool) {
	if len(s.points) == 0 {
		return ValuationPoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// search returns the index where day is or would be inserted
func (s *ValuationSeries) search(day Date) (int, bool) {
	return slices.BinarySearchFunc(s.points, day, func(p ValuationPoint, t Date) int {
		return p.Date.Compare(t)
	})
}

// Get returns the valuation recorded exactly on day
func (s *ValuationSeries) Get(day Date) (ValuationPoint, bool) {
	i, found := s.search(day)
	if !found {
		return ValuationPoint{}, false
	}
	return s.points[i], true
}

// ValueAsOf returns the valuation on day or the most recent one before it
func (s *ValuationSeries) ValueAsOf(day Date) (ValuationPoint, bool) {
	i, found := s.search(day)
	if found {
		return s.points[i], true
	}
	if i == 0 {
		return ValuationPoint{}, false
	}
	return s.points[i-1], true
}

// OnOrAfter returns the first valuation on day or later
func (s *ValuationSeries) OnOrAfter(day Date) (ValuationPoint, bool) {
	i, _ := s.search(day)
	if i >= len(s.points) {
		return ValuationPoint{}, false
	}
	return s.points[i], true
}

// Between returns a new series restricted to the given range
func (s *ValuationSeries) Between(r DateRange) *ValuationSeries {
	out := make([]ValuationPoint, 0, len(s.points))
	for _, p := range s.points {
		if r.Contains(p.Date) {
			out = append(out, p)
		}
	}
	return &ValuationSeries{fundID: s.fundID, points: out}
}
