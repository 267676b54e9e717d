package portfolio

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-returns/internal/domain"
	"github.com/simaogato/wealthflow-returns/internal/usecase/cashflow"
)

// Session is one analysis of a user's portfolio
// Transactions and valuations are read once and reused by every method.
// A Session is not safe for concurrent use.
type Session struct {
	ID     uuid.UUID
	UserID string
	FundID string // Limits the session to one fund when set

	svc *PortfolioService
	log zerolog.Logger

	txs        []domain.Transaction
	txsLoaded  bool
	valuations map[string]domain.ValuationPoint
	flows      []cashflow.HoldingFlows
	holdings   []domain.HoldingSummary
}

// transactions loads and validates the user's ledger on first use,
// limited to one fund when FundID is set
func (s *Session) transactions(ctx context.Context) ([]domain.Transaction, error) {
	if s.txsLoaded {
		return s.txs, nil
	}
	var txs []domain.Transaction
	var err error
	if s.FundID != "" {
		txs, err = s.svc.Ledger.ListByFund(ctx, s.UserID, s.FundID)
	} else {
		txs, err = s.svc.Ledger.ListByUser(ctx, s.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if err := domain.ValidateLedger(txs); err != nil {
		return nil, err
	}
	s.txs = txs
	s.txsLoaded = true
	s.log.Debug().Int("transactions", len(txs)).Msg("Ledger loaded")
	return s.txs, nil
}

// valuation returns the latest valuation of a fund, read once per session
func (s *Session) valuation(ctx context.Context, fundID string) (domain.ValuationPoint, error) {
	if v, ok := s.valuations[fundID]; ok {
		return v, nil
	}
	v, err := s.svc.Valuations.Latest(ctx, fundID)
	if err != nil {
		return domain.ValuationPoint{}, fmt.Errorf("failed to get latest valuation of fund %s: %w", fundID, err)
	}
	s.valuations[fundID] = v
	return v, nil
}

func (s *Session) fundName(ctx context.Context, fundID string) string {
	if s.svc.Funds == nil {
		return fundID
	}
	f, err := s.svc.Funds.GetByID(ctx, fundID)
	if err != nil {
		if !errors.Is(err, domain.ErrFundNotFound) {
			s.log.Warn().Err(err).Str("fund_id", fundID).Msg("Failed to resolve fund name")
		}
		return fundID
	}
	return f.Name
}

// Holdings returns one summary per fund held, ordered by fund ID
//
// Logic:
//  1. Partition the ledger by fund ID
//  2. Build each fund's cashflows against its latest valuation
//  3. Value, cost and profit are rounded to the currency's minor unit
//  4. The rate is solved per fund; a solver failure is recorded in RateErr
//     and does not fail the whole request
//
// A fund without any valuation fails the request (domain.ErrMissingValuation).
func (s *Session) Holdings(ctx context.Context) ([]domain.HoldingSummary, error) {
	if s.holdings != nil {
		return s.holdings, nil
	}

	txs, err := s.transactions(ctx)
	if err != nil {
		return nil, err
	}

	byFund := make(map[string][]domain.Transaction)
	for _, tx := range txs {
		byFund[tx.FundID] = append(byFund[tx.FundID], tx)
	}
	fundIDs := make([]string, 0, len(byFund))
	for id := range byFund {
		fundIDs = append(fundIDs, id)
	}
	slices.Sort(fundIDs)

	cur := s.svc.Currency
	flows := make([]cashflow.HoldingFlows, 0, len(fundIDs))
	holdings := make([]domain.HoldingSummary, 0, len(fundIDs))

	for _, fundID := range fundIDs {
		v, err := s.valuation(ctx, fundID)
		if err != nil {
			return nil, err
		}

		hf, err := cashflow.Holding(byFund[fundID], v)
		if err != nil {
			return nil, fmt.Errorf("fund %s: %w", fundID, err)
		}
		flows = append(flows, hf)

		value := cur.Round(hf.Value)
		cost := cur.Round(hf.Cost)
		h := domain.HoldingSummary{
			FundID:        fundID,
			FundName:      s.fundName(ctx, fundID),
			ValuationDate: v.Date,
			Price:         v.Price,
			Units:         hf.Units,
			Value:         value,
			Cost:          cost,
			Profit:        value.Sub(cost),
		}

		rate, err := s.svc.Solver.Solve(hf.Series())
		if err != nil {
			h.RateErr = err
			s.log.Debug().Err(err).Str("fund_id", fundID).Msg("Holding rate unavailable")
		} else {
			h.Rate = &rate
		}
		holdings = append(holdings, h)
	}

	s.flows = flows
	s.holdings = holdings
	return holdings, nil
}

// Rate solves the money-weighted return of the whole portfolio from the
// cashflows of all holdings pooled by date
func (s *Session) Rate(ctx context.Context) (float64, error) {
	if _, err := s.Holdings(ctx); err != nil {
		return 0, err
	}
	return s.svc.Solver.Solve(cashflow.Portfolio(s.flows))
}

// Summary rolls the holdings up into portfolio totals
//
// Logic:
//   - Investment = sum of holding costs
//   - Value = sum of holding values
//   - Profit = Value - Investment
//   - NumFunds counts holdings with a non-negligible unit balance
//
// Safety: Ensures the holding profits add up to the portfolio profit exactly
func (s *Session) Summary(ctx context.Context) (*domain.PortfolioSummary, error) {
	holdings, err := s.Holdings(ctx)
	if err != nil {
		return nil, err
	}

	summary := &domain.PortfolioSummary{
		Currency:   s.svc.Currency.Code,
		Holdings:   holdings,
		Investment: decimal.Zero,
		Value:      decimal.Zero,
	}

	profits := decimal.Zero
	for _, h := range holdings {
		summary.Investment = summary.Investment.Add(h.Cost)
		summary.Value = summary.Value.Add(h.Value)
		profits = profits.Add(h.Profit)
		if h.Active() {
			summary.NumFunds++
		}
	}
	summary.Profit = summary.Value.Sub(summary.Investment)

	if !profits.Equal(summary.Profit) {
		return nil, fmt.Errorf("holding profits %s do not add up to portfolio profit %s", profits, summary.Profit)
	}

	rate, err := s.Rate(ctx)
	if err != nil {
		summary.RateErr = err
		s.log.Debug().Err(err).Msg("Portfolio rate unavailable")
	} else {
		summary.Rate = &rate
	}

	s.log.Info().
		Int("holdings", len(holdings)).
		Int("active", summary.NumFunds).
		Str("value", summary.Value.String()).
		Msg("Portfolio summarized")

	return summary, nil
}
