package domain

import (
	"context"
)

// TransactionLedger defines the read access to the transaction ledger
// The ledger is owned by the transaction-entry workflow; the core only reads it.
type TransactionLedger interface {
	// ListByUser retrieves every transaction of a user ordered by date
	ListByUser(ctx context.Context, userID string) ([]Transaction, error)

	// ListByFund retrieves the transactions of a user in one fund ordered by date
	ListByFund(ctx context.Context, userID, fundID string) ([]Transaction, error)
}

// ValuationSource defines the read access to fund price histories
type ValuationSource interface {
	// History retrieves the valuations of a fund within the range
	// A zero DateRange means the full history
	History(ctx context.Context, fundID string, r DateRange) (*ValuationSeries, error)

	// Latest retrieves the most recent valuation of a fund
	// Returns ErrMissingValuation if the fund has no valuation at all
	Latest(ctx context.Context, fundID string) (ValuationPoint, error)
}

// FundDirectory resolves fund identifiers to descriptions
type FundDirectory interface {
	// GetByID retrieves a fund by its identifier, ErrFundNotFound if unknown
	GetByID(ctx context.Context, fundID string) (*Fund, error)
}
