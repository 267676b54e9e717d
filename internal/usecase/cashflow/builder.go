package cashflow

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-returns/internal/domain"
)

// HoldingFlows is the normalized cashflow view of one holding
type HoldingFlows struct {
	FundID    string
	Valuation domain.ValuationPoint // Valuation used for the terminal cashflow
	Units     decimal.Decimal       // Net units held (contributions - redemptions)
	Cost      decimal.Decimal       // Net amount invested (sum of historical amounts, investor sign flipped)
	Value     decimal.Decimal       // Units x valuation price
	History   domain.CashflowSeries // One cashflow per transaction, ordered by date
	Terminal  *domain.Cashflow      // Synthetic "sell everything" cashflow, nil for redeemed holdings
}

// Series returns the historical cashflows followed by the terminal one
func (h HoldingFlows) Series() domain.CashflowSeries {
	out := make(domain.CashflowSeries, 0, len(h.History)+1)
	out = append(out, h.History...)
	if h.Terminal != nil {
		out = append(out, *h.Terminal)
	}
	return out
}

// Holding converts the transactions of one fund plus its current valuation
// into a cashflow series.
//
// Logic:
//   - Each transaction contributes its date and signed amount (contribution negative, redemption positive)
//   - Units = sum of signed units
//   - Cost = -(sum of signed amounts), i.e. what is still invested
//   - A terminal cashflow of +Units x Price is dated on the valuation date,
//     unless the holding is fully redeemed (|Units| <= domain.ActiveUnitsEpsilon)
func Holding(txs []domain.Transaction, valuation domain.ValuationPoint) (HoldingFlows, error) {
	if len(txs) == 0 {
		return HoldingFlows{}, errors.New("holding must have at least one transaction")
	}
	if valuation.Date.IsZero() || !valuation.Price.IsPositive() {
		return HoldingFlows{}, &domain.MissingValuationError{FundID: txs[0].FundID}
	}

	fundID := txs[0].FundID
	h := HoldingFlows{
		FundID:    fundID,
		Valuation: valuation,
		Units:     decimal.Zero,
		Cost:      decimal.Zero,
		History:   make(domain.CashflowSeries, 0, len(txs)),
	}

	for i := range txs {
		tx := &txs[i]
		if tx.FundID != fundID {
			return HoldingFlows{}, fmt.Errorf("holding mixes funds %s and %s", fundID, tx.FundID)
		}
		if tx.Date.After(valuation.Date) {
			return HoldingFlows{}, fmt.Errorf("transaction on %s is after the valuation of %s on %s: %w",
				tx.Date, fundID, valuation.Date, &domain.MissingValuationError{FundID: fundID, Date: tx.Date})
		}
		amount := tx.SignedAmount()
		h.History = append(h.History, domain.Cashflow{Date: tx.Date, Amount: amount})
		h.Units = h.Units.Add(tx.SignedUnits())
		h.Cost = h.Cost.Sub(amount)
	}
	h.History = h.History.Sorted()

	if h.Units.Abs().GreaterThan(domain.ActiveUnitsEpsilon) {
		h.Value = h.Units.Mul(valuation.Price)
		h.Terminal = &domain.Cashflow{Date: valuation.Date, Amount: h.Value}
	} else {
		h.Value = decimal.Zero
	}

	return h, nil
}

// Portfolio pools the historical cashflows of all holdings by date and appends
// a single terminal cashflow worth the sum of all holding values, dated on the
// latest valuation date among the holdings still held.
func Portfolio(holdings []HoldingFlows) domain.CashflowSeries {
	byDate := make(map[domain.Date]decimal.Decimal)
	terminal := decimal.Zero
	var terminalDate domain.Date

	for _, h := range holdings {
		for _, c := range h.History {
			byDate[c.Date] = byDate[c.Date].Add(c.Amount)
		}
		if h.Terminal != nil {
			terminal = terminal.Add(h.Terminal.Amount)
			if terminalDate.IsZero() || h.Terminal.Date.After(terminalDate) {
				terminalDate = h.Terminal.Date
			}
		}
	}

	dates := make([]domain.Date, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, domain.Date.Compare)

	out := make(domain.CashflowSeries, 0, len(dates)+1)
	for _, d := range dates {
		out = append(out, domain.Cashflow{Date: d, Amount: byDate[d]})
	}
	if !terminalDate.IsZero() {
		out = append(out, domain.Cashflow{Date: terminalDate, Amount: terminal})
	}
	return out
}
