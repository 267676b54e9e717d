package fund

import (
	"context"

	"github.com/simaogato/wealthflow-returns/internal/domain"
	"github.com/simaogato/wealthflow-returns/internal/usecase/rolling"
)

type rollingKey struct {
	period int
	r      domain.DateRange
}

// Advanced adds rolling-return analysis on top of an Analysis, sharing its
// cached history
type Advanced struct {
	*Analysis

	rolling map[rollingKey]domain.RollingReturnSeries
}

// NewAdvanced wraps a
func NewAdvanced(a *Analysis) *Advanced {
	return &Advanced{
		Analysis: a,
		rolling:  make(map[rollingKey]domain.RollingReturnSeries),
	}
}

// RollingReturns returns the rolling returns over periodYears within r
// Each (period, range) pair is computed once.
func (a *Advanced) RollingReturns(ctx context.Context, periodYears int, r domain.DateRange) (domain.RollingReturnSeries, error) {
	key := rollingKey{period: periodYears, r: r}
	if rr, ok := a.rolling[key]; ok {
		return rr, nil
	}

	h, err := a.History(ctx)
	if err != nil {
		return domain.RollingReturnSeries{}, err
	}
	rr, err := rolling.Calculate(h, periodYears, r)
	if err != nil {
		return domain.RollingReturnSeries{}, err
	}

	a.rolling[key] = rr
	a.log.Debug().
		Int("period_years", periodYears).
		Str("range", r.String()).
		Int("points", len(rr.Points)).
		Msg("Rolling returns computed")
	return rr, nil
}

// RollingSummary returns mean, standard deviation, min and max of the rolling returns
func (a *Advanced) RollingSummary(ctx context.Context, periodYears int, r domain.DateRange) (domain.RollingSummary, error) {
	rr, err := a.RollingReturns(ctx, periodYears, r)
	if err != nil {
		return domain.RollingSummary{}, err
	}
	return rolling.Summarize(rr), nil
}
