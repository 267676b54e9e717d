package rolling

import (
	"math"

	"github.com/simaogato/wealthflow-returns/internal/domain"
)

// DefaultTrailingYears are the windows reported when none are requested
var DefaultTrailingYears = []int{1, 3, 5}

// Trailing returns the point-to-point annualized return over each window
// ending on the last valuation on or before asOf.
// The start of each window is the last valuation on or before (asOf - N years),
// counted from asOf rather than from the end valuation's date; the exponent
// uses the actual distance between the two valuations.
// Windows reaching before the first valuation are omitted.
func Trailing(series *domain.ValuationSeries, asOf domain.Date, years ...int) []domain.TrailingReturn {
	if len(years) == 0 {
		years = DefaultTrailingYears
	}
	out := []domain.TrailingReturn{}
	if series == nil {
		return out
	}

	end, ok := series.ValueAsOf(asOf)
	if !ok {
		return out
	}
	endPrice := end.Price.InexactFloat64()

	for _, n := range years {
		if n < 1 {
			continue
		}
		start, ok := series.ValueAsOf(asOf.AddYears(-n))
		if !ok {
			continue
		}
		span := float64(end.Date.DaysSince(start.Date)) / 365
		if span <= 0 {
			continue
		}
		out = append(out, domain.TrailingReturn{
			Years:  n,
			From:   start.Date,
			To:     end.Date,
			Return: math.Pow(endPrice/start.Price.InexactFloat64(), 1/span) - 1,
		})
	}
	return out
}
