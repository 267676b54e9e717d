package rolling

import (
	"errors"
	"math"

	"github.com/simaogato/wealthflow-returns/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrInvalidPeriod is returned for rolling periods shorter than one year
var ErrInvalidPeriod = errors.New("rolling period must be at least one year")

// LookbackDays returns the calendar-day distance between the two ends of a
// rolling window. Periods of three years or more span one leap day.
func LookbackDays(periodYears int) int {
	days := periodYears * 365
	if periodYears >= 3 {
		days++
	}
	return days
}

// daily is a calendar-day grid of prices, forward filled over non-trading days
type daily struct {
	start  domain.Date
	prices []float64
}

func fill(series *domain.ValuationSeries) daily {
	first, ok := series.First()
	if !ok {
		return daily{}
	}
	last, _ := series.Latest()

	grid := daily{
		start:  first.Date,
		prices: make([]float64, last.Date.DaysSince(first.Date)+1),
	}
	idx := 0
	for i := range grid.prices {
		day := first.Date.AddDays(i)
		for idx+1 < series.Len() && !series.At(idx+1).Date.After(day) {
			idx++
		}
		grid.prices[i] = series.At(idx).Price.InexactFloat64()
	}
	return grid
}

// Calculate returns the annualized growth over periodYears for every calendar
// day in r whose look-back day falls inside the fund's history.
//
// Logic:
//   - Prices are placed on a daily grid, carrying the last known price forward
//   - Growth on day d = (price[d] / price[d - lookback]) ^ (1 / periodYears) - 1
//   - Days without a look-back price are dropped, so a fund younger than the
//     period yields an empty series
//
// A zero r means the whole history.
func Calculate(series *domain.ValuationSeries, periodYears int, r domain.DateRange) (domain.RollingReturnSeries, error) {
	if periodYears < 1 {
		return domain.RollingReturnSeries{}, ErrInvalidPeriod
	}
	if series == nil {
		return domain.RollingReturnSeries{}, domain.ErrInvalidSeries
	}
	if err := r.Validate(); err != nil {
		return domain.RollingReturnSeries{}, err
	}

	out := domain.RollingReturnSeries{
		FundID:      series.FundID(),
		PeriodYears: periodYears,
		Range:       r,
		Points:      []domain.RollingReturnPoint{},
	}

	grid := fill(series)
	lookback := LookbackDays(periodYears)
	exponent := 1 / float64(periodYears)

	for i := lookback; i < len(grid.prices); i++ {
		day := grid.start.AddDays(i)
		if !r.Contains(day) {
			continue
		}
		growth := math.Pow(grid.prices[i]/grid.prices[i-lookback], exponent) - 1
		out.Points = append(out.Points, domain.RollingReturnPoint{Date: day, Growth: growth})
	}
	return out, nil
}

// Summarize returns the distribution statistics of a rolling series.
// StdDev is the sample standard deviation and is 0 for fewer than two points.
func Summarize(s domain.RollingReturnSeries) domain.RollingSummary {
	growths := s.Growths()
	if len(growths) == 0 {
		return domain.RollingSummary{}
	}

	summary := domain.RollingSummary{
		Count: len(growths),
		Mean:  stat.Mean(growths, nil),
		Min:   floats.Min(growths),
		Max:   floats.Max(growths),
	}
	if len(growths) > 1 {
		summary.StdDev = stat.StdDev(growths, nil)
	}
	return summary
}
