package cashflow

import (
	"errors"

	"github.com/simaogato/wealthflow-returns/internal/domain"
)

const (
	unitsPrecision  = 4
	amountPrecision = 2
)

// ResolvePrices completes transactions recorded without a price.
// The price is taken from the first valuation on or after the trade date,
// then whichever of amount or units is missing is derived from it.
// Transactions that already carry a price are returned unchanged.
func ResolvePrices(txs []domain.Transaction, series *domain.ValuationSeries) ([]domain.Transaction, error) {
	out := make([]domain.Transaction, len(txs))
	copy(out, txs)

	for i := range out {
		tx := &out[i]
		if tx.Price.IsPositive() {
			continue
		}
		if series == nil || series.FundID() != tx.FundID {
			return nil, &domain.MissingValuationError{FundID: tx.FundID, Date: tx.Date}
		}

		p, ok := series.OnOrAfter(tx.Date)
		if !ok {
			return nil, &domain.MissingValuationError{FundID: tx.FundID, Date: tx.Date}
		}
		tx.Price = p.Price

		switch {
		case tx.Amount.IsPositive():
			tx.Units = tx.Amount.Div(p.Price).Round(unitsPrecision)
			tx.Amount = tx.Amount.Round(amountPrecision)
		case tx.Units.IsPositive():
			tx.Amount = tx.Units.Mul(p.Price).Round(amountPrecision)
			tx.Units = tx.Units.Round(unitsPrecision)
		default:
			return nil, errors.New("transaction needs either an amount or a number of units")
		}
	}
	return out, nil
}

