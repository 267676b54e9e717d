package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a ledger transaction
type TransactionType string

const (
	TransactionTypeContribution TransactionType = "CONTRIBUTION"
	TransactionTypeRedemption   TransactionType = "REDEMPTION"
)

// amountTolerance bounds |amount - units*price| for rounding at entry time
var (
	amountToleranceAbs = decimal.NewFromFloat(0.01)
	amountToleranceRel = decimal.NewFromFloat(0.005)
)

// Transaction represents one purchase or redemption of fund units
// The core never mutates transactions; they come from the ledger as is.
type Transaction struct {
	ID      uuid.UUID
	UserID  string
	FundID  string
	FolioID string
	Type    TransactionType
	Date    Date
	Price   decimal.Decimal // Price per unit at execution (NAV)
	Amount  decimal.Decimal // ABSOLUTE VALUE (Always Positive)
	Units   decimal.Decimal // ABSOLUTE VALUE (Always Positive)
}

// Validate ensures the transaction adheres to domain rules
// CRITICAL: amount must match units x price within rounding tolerance
func (t *Transaction) Validate() error {
	if t.FundID == "" {
		return errors.New("transaction fund id cannot be empty")
	}

	if t.Type != TransactionTypeContribution && t.Type != TransactionTypeRedemption {
		return errors.New("transaction type must be CONTRIBUTION or REDEMPTION")
	}

	if t.Date.IsZero() {
		return errors.New("transaction date cannot be empty")
	}

	if !t.Price.IsPositive() {
		return errors.New("transaction price must be positive")
	}

	if !t.Amount.IsPositive() {
		return errors.New("transaction amount must be positive (absolute value)")
	}

	if !t.Units.IsPositive() {
		return errors.New("transaction units must be positive (absolute value)")
	}

	tolerance := decimal.Max(amountToleranceAbs, t.Amount.Mul(amountToleranceRel))
	if t.Amount.Sub(t.Units.Mul(t.Price)).Abs().GreaterThan(tolerance) {
		return fmt.Errorf("transaction amount %s does not match units %s x price %s", t.Amount, t.Units, t.Price)
	}

	return nil
}

// SignedUnits returns the units held after the transaction relative to before:
// positive for contributions, negative for redemptions
func (t *Transaction) SignedUnits() decimal.Decimal {
	if t.Type == TransactionTypeRedemption {
		return t.Units.Neg()
	}
	return t.Units
}

// SignedAmount returns the amount from the investor's point of view:
// money paid in is negative, money received is positive
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeRedemption {
		return t.Amount
	}
	return t.Amount.Neg()
}

// ValidateLedger validates every transaction and wraps the first failure
func ValidateLedger(txs []Transaction) error {
	for i := range txs {
		if err := txs[i].Validate(); err != nil {
			return fmt.Errorf("%w %s (%s, %s): %v", ErrInvalidTransaction, txs[i].ID, txs[i].FundID, txs[i].Date, err)
		}
	}
	return nil
}
