package xirr

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-returns/internal/domain"
)

func flow(date string, amount float64) domain.Cashflow {
	return domain.Cashflow{Date: domain.MustParseDate(date), Amount: decimal.NewFromFloat(amount)}
}

func TestSolve_TwoCashflowsOneYear(t *testing.T) {
	// -1000 on day 0, +1100 on day 365 -> 10%
	flows := domain.CashflowSeries{
		flow("2023-01-01", -1000),
		flow("2024-01-01", 1100), // 2023 is not a leap year: 365 days
	}

	rate, err := DefaultSolver().Solve(flows)

	require.NoError(t, err)
	assert.InDelta(t, 0.10, rate, 1e-4)
	assert.InDelta(t, 0, NPV(flows, rate), 0.1)
}

func TestSolve_OppositeSignConvention(t *testing.T) {
	// Same series with contributions positive: the rate must not depend on the convention
	flows := domain.CashflowSeries{
		flow("2023-01-01", 1000),
		flow("2024-01-01", -1100),
	}

	rate, err := DefaultSolver().Solve(flows)

	require.NoError(t, err)
	assert.InDelta(t, 0.10, rate, 1e-4)
}

func TestSolve_UnchangedPriceIsZero(t *testing.T) {
	flows := domain.CashflowSeries{
		flow("2022-03-15", -2500),
		flow("2022-11-02", 2500),
	}

	rate, err := DefaultSolver().Solve(flows)

	require.NoError(t, err)
	assert.InDelta(t, 0, rate, 1e-6)
}

func TestSolve_Loss(t *testing.T) {
	flows := domain.CashflowSeries{
		flow("2020-01-01", -1000),
		flow("2020-07-01", -1000),
		flow("2022-01-01", 1500),
	}

	rate, err := DefaultSolver().Solve(flows)

	require.NoError(t, err)
	assert.Less(t, rate, 0.0)
	assert.Greater(t, rate, -1.0)
	assert.InDelta(t, 0, NPV(flows, rate), 0.1)
}

func TestSolve_UnsortedInputMatchesSorted(t *testing.T) {
	sorted := domain.CashflowSeries{
		flow("2019-05-10", -5000),
		flow("2020-02-10", -3000),
		flow("2021-08-10", 2000),
		flow("2023-05-10", 9800),
	}
	unsorted := domain.CashflowSeries{sorted[3], sorted[0], sorted[2], sorted[1]}

	a, err := DefaultSolver().Solve(sorted)
	require.NoError(t, err)
	b, err := DefaultSolver().Solve(unsorted)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSolve_DegenerateSets(t *testing.T) {
	tests := []struct {
		name    string
		flows   domain.CashflowSeries
		wantErr error
	}{
		{
			name:    "Empty series",
			flows:   nil,
			wantErr: domain.ErrTooFewCashflows,
		},
		{
			name:    "Single cashflow",
			flows:   domain.CashflowSeries{flow("2024-01-01", -100)},
			wantErr: domain.ErrTooFewCashflows,
		},
		{
			name: "All contributions",
			flows: domain.CashflowSeries{
				flow("2024-01-01", -100),
				flow("2024-02-01", -100),
				flow("2024-03-01", -100),
			},
			wantErr: domain.ErrSingleSign,
		},
		{
			name: "All inflows",
			flows: domain.CashflowSeries{
				flow("2024-01-01", 100),
				flow("2024-02-01", 100),
			},
			wantErr: domain.ErrSingleSign,
		},
		{
			name: "Zero amounts do not count as a sign",
			flows: domain.CashflowSeries{
				flow("2024-01-01", -100),
				flow("2024-02-01", 0),
				flow("2024-03-01", -50),
			},
			wantErr: domain.ErrSingleSign,
		},
		{
			name: "All on the same date",
			flows: domain.CashflowSeries{
				flow("2024-01-01", -100),
				flow("2024-01-01", 120),
			},
			wantErr: domain.ErrSingleDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := DefaultSolver().Solve(tt.flows)

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.True(t, errors.Is(err, domain.ErrDegenerateCashflowSet))
			assert.False(t, errors.Is(err, domain.ErrNonConvergence))
			assert.Equal(t, 0.0, rate)
		})
	}
}

func TestSolve_NonConvergence(t *testing.T) {
	s := DefaultSolver()
	s.MaxIterations = 2
	flows := domain.CashflowSeries{
		flow("2020-01-01", -1000),
		flow("2024-01-01", 3000),
	}

	_, err := s.Solve(flows)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNonConvergence))
	assert.False(t, errors.Is(err, domain.ErrDegenerateCashflowSet))

	var nc *NonConvergenceError
	require.True(t, errors.As(err, &nc))
	assert.Equal(t, 2, nc.Iterations)
	assert.Greater(t, math.Abs(nc.Residual), s.Tolerance)
}

func TestSolve_DeepLossStaysAboveMinusOne(t *testing.T) {
	// Losing 90% over one quarter annualizes to almost -100%
	flows := domain.CashflowSeries{
		flow("2024-01-01", -10000),
		flow("2024-04-01", 1000),
	}

	rate, err := DefaultSolver().Solve(flows)

	require.NoError(t, err)
	assert.Greater(t, rate, -1.0)
	assert.InDelta(t, 0, NPV(flows, rate), 0.1)
}

func TestSolve_GuessFromFlows(t *testing.T) {
	s := DefaultSolver()
	s.GuessFromFlows = true
	flows := domain.CashflowSeries{
		flow("2018-01-01", -1000),
		flow("2023-01-01", 2500),
	}

	rate, err := s.Solve(flows)

	require.NoError(t, err)
	assert.InDelta(t, 0, NPV(flows, rate), 0.1)
	assert.InDelta(t, math.Pow(2.5, 365.0/1826)-1, rate, 1e-3)
}

func TestInitialGuess(t *testing.T) {
	flows := domain.CashflowSeries{
		flow("2023-01-01", -1000),
		flow("2024-01-01", 1100),
	}
	assert.InDelta(t, 0.10, InitialGuess(flows), 1e-9)

	assert.True(t, math.IsNaN(InitialGuess(domain.CashflowSeries{flow("2023-01-01", -1000)})))
	assert.True(t, math.IsNaN(InitialGuess(nil)))
}
