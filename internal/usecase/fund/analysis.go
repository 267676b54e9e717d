package fund

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/simaogato/wealthflow-returns/internal/domain"
	"github.com/simaogato/wealthflow-returns/internal/usecase/rolling"
	"github.com/simaogato/wealthflow-returns/internal/usecase/sip"
)

// Analysis answers questions about one fund's price history
// The fund description and full history are fetched on first use and kept
// for the lifetime of the Analysis. Build one per request.
type Analysis struct {
	FundID string

	valuations domain.ValuationSource
	funds      domain.FundDirectory
	planner    *sip.Planner
	log        zerolog.Logger

	info    *domain.Fund
	history *domain.ValuationSeries
}

// NewAnalysis creates a new Analysis for fundID
func NewAnalysis(
	fundID string,
	valuations domain.ValuationSource,
	funds domain.FundDirectory,
	planner *sip.Planner,
	log zerolog.Logger,
) *Analysis {
	return &Analysis{
		FundID:     fundID,
		valuations: valuations,
		funds:      funds,
		planner:    planner,
		log:        log.With().Str("fund_id", fundID).Logger(),
	}
}

// Info returns the fund description, falling back to the bare ID when the
// directory does not know the fund
func (a *Analysis) Info(ctx context.Context) (*domain.Fund, error) {
	if a.info != nil {
		return a.info, nil
	}
	if a.funds == nil {
		a.info = &domain.Fund{ID: a.FundID, Name: a.FundID}
		return a.info, nil
	}
	f, err := a.funds.GetByID(ctx, a.FundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get fund %s: %w", a.FundID, err)
	}
	a.info = f
	return f, nil
}

// History returns the full valuation history, fetched once
func (a *Analysis) History(ctx context.Context) (*domain.ValuationSeries, error) {
	if a.history != nil {
		return a.history, nil
	}
	h, err := a.valuations.History(ctx, a.FundID, domain.DateRange{})
	if err != nil {
		return nil, fmt.Errorf("failed to get history of fund %s: %w", a.FundID, err)
	}
	a.history = h
	a.log.Debug().Int("valuations", h.Len()).Msg("History loaded")
	return h, nil
}

// TrailingReturns returns the 1, 3 and 5 year point-to-point returns ending on asOf
func (a *Analysis) TrailingReturns(ctx context.Context, asOf domain.Date, years ...int) ([]domain.TrailingReturn, error) {
	h, err := a.History(ctx)
	if err != nil {
		return nil, err
	}
	return rolling.Trailing(h, asOf, years...), nil
}

// SIPReturns returns the 1, 3 and 5 year monthly plan returns ending on asOf
func (a *Analysis) SIPReturns(ctx context.Context, asOf domain.Date, years ...int) ([]domain.SIPReturn, error) {
	h, err := a.History(ctx)
	if err != nil {
		return nil, err
	}
	return a.planner.Returns(h, asOf, years...)
}
