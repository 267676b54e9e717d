package portfolio

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/simaogato/wealthflow-returns/internal/domain"
	"github.com/simaogato/wealthflow-returns/internal/usecase/xirr"
)

// PortfolioService aggregates a user's holdings across funds
type PortfolioService struct {
	Ledger     domain.TransactionLedger
	Valuations domain.ValuationSource
	Funds      domain.FundDirectory
	Solver     *xirr.Solver
	Currency   domain.Currency

	log zerolog.Logger
}

// NewPortfolioService creates a new PortfolioService instance
// funds may be nil, in which case holdings are named after their fund ID.
func NewPortfolioService(
	ledger domain.TransactionLedger,
	valuations domain.ValuationSource,
	funds domain.FundDirectory,
	solver *xirr.Solver,
	currency domain.Currency,
	log zerolog.Logger,
) *PortfolioService {
	if solver == nil {
		solver = xirr.DefaultSolver()
	}
	return &PortfolioService{
		Ledger:     ledger,
		Valuations: valuations,
		Funds:      funds,
		Solver:     solver,
		Currency:   currency,
		log:        log.With().Str("component", "portfolio").Logger(),
	}
}

// NewSession starts an analysis of one user's portfolio
// The session caches what it reads; build a new one per request.
func (s *PortfolioService) NewSession(userID string) *Session {
	id := uuid.New()
	return &Session{
		ID:         id,
		UserID:     userID,
		svc:        s,
		valuations: make(map[string]domain.ValuationPoint),
		log:        s.log.With().Str("session_id", id.String()).Str("user_id", userID).Logger(),
	}
}

// NewFundSession starts an analysis limited to the user's holding in one fund
func (s *PortfolioService) NewFundSession(userID, fundID string) *Session {
	session := s.NewSession(userID)
	session.FundID = fundID
	session.log = session.log.With().Str("fund_id", fundID).Logger()
	return session
}

// GetFundSummary is a shortcut for NewFundSession(userID, fundID).Summary(ctx)
func (s *PortfolioService) GetFundSummary(ctx context.Context, userID, fundID string) (*domain.PortfolioSummary, error) {
	return s.NewFundSession(userID, fundID).Summary(ctx)
}

// GetSummary is a shortcut for NewSession(userID).Summary(ctx)
func (s *PortfolioService) GetSummary(ctx context.Context, userID string) (*domain.PortfolioSummary, error) {
	return s.NewSession(userID).Summary(ctx)
}
