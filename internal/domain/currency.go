package domain

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the ledger currency, used to round and display amounts
type Currency struct {
	Code     string
	Fraction int32 // Minor unit digits (2 for INR, 0 for JPY)
}

// LookupCurrency resolves an ISO 4217 code
func LookupCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	c := money.GetCurrency(code)
	if c == nil {
		return Currency{}, fmt.Errorf("unknown currency %q", code)
	}
	return Currency{Code: c.Code, Fraction: int32(c.Fraction)}, nil
}

// Round rounds v to the currency's minor unit
func (c Currency) Round(v decimal.Decimal) decimal.Decimal {
	return v.Round(c.Fraction)
}

// Format renders v with the currency symbol and grouping, e.g. $1,234.56
func (c Currency) Format(v decimal.Decimal) string {
	minor := v.Shift(c.Fraction).Round(0).IntPart()
	return money.New(minor, c.Code).Display()
}
