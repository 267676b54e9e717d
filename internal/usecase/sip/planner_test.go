package sip

import (
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-returns/internal/domain"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func point(date string, price float64) domain.ValuationPoint {
	return domain.ValuationPoint{Date: domain.MustParseDate(date), Price: dec(price)}
}

func dailySeries(t *testing.T, from, to string, f func(i int) float64) *domain.ValuationSeries {
	t.Helper()
	start, end := domain.MustParseDate(from), domain.MustParseDate(to)
	var points []domain.ValuationPoint
	for i, d := 0, start; !d.After(end); i, d = i+1, d.AddDays(1) {
		points = append(points, domain.ValuationPoint{Date: d, Price: dec(f(i))})
	}
	s, err := domain.NewValuationSeries("F1", points)
	require.NoError(t, err)
	return s
}

func newPlanner() *Planner {
	return NewPlanner(decimal.NewFromInt(10000), nil, zerolog.Nop())
}

func TestSchedule_FirstValuationOnOrAfterDay(t *testing.T) {
	s, err := domain.NewValuationSeries("F1", []domain.ValuationPoint{
		point("2024-01-10", 30),
		point("2024-02-09", 30),
		point("2024-02-12", 30),
		point("2024-02-13", 30),
		point("2024-03-08", 30),
		point("2024-03-11", 30),
		point("2024-04-10", 30),
	})
	require.NoError(t, err)

	got := newPlanner().Schedule(s, domain.MustParseDate("2024-04-15"), 3)

	// 2024-01-10 is outside the window, 2024-02-12 opens it and is dropped
	require.Len(t, got, 2)
	assert.Equal(t, "2024-03-11", got[0].Date.String())
	assert.Equal(t, "2024-04-10", got[1].Date.String())
	assert.True(t, got[0].Units.Equal(dec(333.333)), got[0].Units.String())
	assert.True(t, got[0].Amount.Equal(dec(10000)))
}

func TestReturns_FlatPriceTwelveMonths(t *testing.T) {
	s := dailySeries(t, "2023-01-01", "2024-01-31", func(int) float64 { return 100 })

	got, err := newPlanner().Returns(s, domain.MustParseDate("2024-01-31"))

	require.NoError(t, err)
	// Only the one year plan has enough history
	require.Len(t, got, 1)
	r := got[0]
	assert.Equal(t, 1, r.Years)
	assert.Equal(t, 12, r.Installments)
	assert.True(t, r.Invested.Equal(dec(120000)))
	assert.True(t, r.Units.Equal(dec(1200)))
	assert.True(t, r.Value.Equal(dec(120000)), r.Value.String())
	assert.Equal(t, 0.0, r.Rate)
}

func TestReturns_FlatPriceNotDividingAmount(t *testing.T) {
	s := dailySeries(t, "2023-01-01", "2024-01-31", func(int) float64 { return 30 })

	got, err := newPlanner().Returns(s, domain.MustParseDate("2024-01-31"), 1)

	require.NoError(t, err)
	require.Len(t, got, 1)
	r := got[0]
	assert.Equal(t, 12, r.Installments)
	assert.True(t, r.Invested.Equal(dec(120000)))
	// 12 x 333.333 displayed, while the value stays exact
	assert.True(t, r.Units.Equal(dec(3999.996)), r.Units.String())
	assert.True(t, r.Value.Equal(dec(120000)), r.Value.String())
	assert.Equal(t, 0.0, r.Rate)
}

func TestReturns_RisingPrice(t *testing.T) {
	s := dailySeries(t, "2020-01-01", "2024-06-30", func(i int) float64 { return 10 + float64(i)/100 })

	got, err := newPlanner().Returns(s, domain.MustParseDate("2024-06-30"), 1, 3, 5)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Years)
	assert.Equal(t, 3, got[1].Years)
	assert.Equal(t, 36, got[1].Installments)
	for _, r := range got {
		assert.Greater(t, r.Rate, 0.0)
		assert.True(t, r.Value.GreaterThan(r.Invested))
		// Six decimal places
		assert.InDelta(t, math.Round(r.Rate*1e6)/1e6, r.Rate, 1e-12)
	}
}

func TestReturns_MissingValuation(t *testing.T) {
	s := dailySeries(t, "2023-01-01", "2023-12-31", func(int) float64 { return 100 })

	_, err := newPlanner().Returns(s, domain.MustParseDate("2022-06-30"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingValuation))
}

func TestSubtractMonths(t *testing.T) {
	assert.Equal(t, "2024-02-29", subtractMonths(domain.MustParseDate("2024-03-31"), 1).String())
	assert.Equal(t, "2023-01-15", subtractMonths(domain.MustParseDate("2024-02-15"), 13).String())
	assert.Equal(t, "2019-01-31", subtractMonths(domain.MustParseDate("2024-01-31"), 60).String())
}
