package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-returns/internal/domain"
)

/*
CSV layout

transactions.csv
id,user_id,fund_id,folio,type,date,price,amount,units

funds.csv
fund_id,name

nav/<fund_id>.csv
date,nav

cashflows (any file)
date,amount

Notes:
- date = "2006-01-02" (single digit month/day accepted)
- columns are located by header name, extra columns are ignored
- an empty transaction id gets a fresh uuid
- an empty price (or amount/units) is left zero, to be resolved from the NAV history
- type accepts CONTRIBUTION/REDEMPTION and the short forms BUY/SELL
*/

var (
	transactionColumns = []string{"id", "user_id", "fund_id", "folio", "type", "date", "price", "amount", "units"}
	fundColumns        = []string{"fund_id", "name"}
	valuationColumns   = []string{"date", "nav"}
	cashflowColumns    = []string{"date", "amount"}
	rollingColumns     = []string{"date", "growth"}
)

// table is a CSV file indexed by header name
type table struct {
	index map[string]int
	rows  [][]string
}

func readTable(r io.Reader, required []string) (*table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("missing header row")
	}

	t := &table{index: make(map[string]int), rows: rows[1:]}
	for i, name := range rows[0] {
		t.index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := t.index[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return t, nil
}

// get returns the trimmed cell of row under column name, "" when absent
func (t *table) get(row []string, name string) string {
	i, ok := t.index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
}

func parseType(s string) (domain.TransactionType, error) {
	switch strings.ToUpper(s) {
	case "CONTRIBUTION", "BUY", "PURCHASE":
		return domain.TransactionTypeContribution, nil
	case "REDEMPTION", "SELL":
		return domain.TransactionTypeRedemption, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// ReadTransactions parses a transactions CSV
// Amounts and units are absolute values; the type gives the direction.
func ReadTransactions(r io.Reader) ([]domain.Transaction, error) {
	t, err := readTable(r, []string{"user_id", "fund_id", "type", "date"})
	if err != nil {
		return nil, fmt.Errorf("transactions: %w", err)
	}

	out := make([]domain.Transaction, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		tx := domain.Transaction{
			UserID:  t.get(row, "user_id"),
			FundID:  t.get(row, "fund_id"),
			FolioID: t.get(row, "folio"),
		}

		if id := t.get(row, "id"); id != "" {
			if tx.ID, err = uuid.Parse(id); err != nil {
				return nil, fmt.Errorf("transactions line %d: invalid id: %w", line, err)
			}
		} else {
			tx.ID = uuid.New()
		}
		if tx.Type, err = parseType(t.get(row, "type")); err != nil {
			return nil, fmt.Errorf("transactions line %d: %w", line, err)
		}
		if tx.Date, err = domain.ParseDate(t.get(row, "date")); err != nil {
			return nil, fmt.Errorf("transactions line %d: %w", line, err)
		}
		if tx.Price, err = parseDecimal(t.get(row, "price")); err != nil {
			return nil, fmt.Errorf("transactions line %d: invalid price: %w", line, err)
		}
		if tx.Amount, err = parseDecimal(t.get(row, "amount")); err != nil {
			return nil, fmt.Errorf("transactions line %d: invalid amount: %w", line, err)
		}
		if tx.Units, err = parseDecimal(t.get(row, "units")); err != nil {
			return nil, fmt.Errorf("transactions line %d: invalid units: %w", line, err)
		}
		tx.Amount = tx.Amount.Abs()
		tx.Units = tx.Units.Abs()

		out = append(out, tx)
	}
	return out, nil
}

// ReadFunds parses a funds CSV
func ReadFunds(r io.Reader) ([]domain.Fund, error) {
	t, err := readTable(r, fundColumns)
	if err != nil {
		return nil, fmt.Errorf("funds: %w", err)
	}
	out := make([]domain.Fund, 0, len(t.rows))
	for _, row := range t.rows {
		f := domain.Fund{ID: t.get(row, "fund_id"), Name: t.get(row, "name")}
		if f.ID == "" {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// ReadValuations parses a NAV history CSV
func ReadValuations(r io.Reader) ([]domain.ValuationPoint, error) {
	t, err := readTable(r, valuationColumns)
	if err != nil {
		return nil, fmt.Errorf("nav: %w", err)
	}
	out := make([]domain.ValuationPoint, 0, len(t.rows))
	for i, row := range t.rows {
		var p domain.ValuationPoint
		if p.Date, err = domain.ParseDate(t.get(row, "date")); err != nil {
			return nil, fmt.Errorf("nav line %d: %w", i+2, err)
		}
		if p.Price, err = parseDecimal(t.get(row, "nav")); err != nil {
			return nil, fmt.Errorf("nav line %d: invalid nav: %w", i+2, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ReadCashflows parses a cashflows CSV, keeping the amounts' signs
func ReadCashflows(r io.Reader) (domain.CashflowSeries, error) {
	t, err := readTable(r, cashflowColumns)
	if err != nil {
		return nil, fmt.Errorf("cashflows: %w", err)
	}
	out := make(domain.CashflowSeries, 0, len(t.rows))
	for i, row := range t.rows {
		var c domain.Cashflow
		if c.Date, err = domain.ParseDate(t.get(row, "date")); err != nil {
			return nil, fmt.Errorf("cashflows line %d: %w", i+2, err)
		}
		if c.Amount, err = parseDecimal(t.get(row, "amount")); err != nil {
			return nil, fmt.Errorf("cashflows line %d: invalid amount: %w", i+2, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// WriteTransactions writes txs in the layout ReadTransactions reads
func WriteTransactions(w io.Writer, txs []domain.Transaction) error {
	rows := make([][]string, 0, len(txs)+1)
	rows = append(rows, transactionColumns)
	for _, tx := range txs {
		rows = append(rows, []string{
			tx.ID.String(),
			tx.UserID,
			tx.FundID,
			tx.FolioID,
			string(tx.Type),
			tx.Date.String(),
			tx.Price.String(),
			tx.Amount.String(),
			tx.Units.String(),
		})
	}
	return writeAll(w, rows)
}

// WriteRollingReturns writes one date,growth row per rolling point
func WriteRollingReturns(w io.Writer, rr domain.RollingReturnSeries) error {
	rows := make([][]string, 0, len(rr.Points)+1)
	rows = append(rows, rollingColumns)
	for _, p := range rr.Points {
		rows = append(rows, []string{p.Date.String(), strconv.FormatFloat(p.Growth, 'f', 6, 64)})
	}
	return writeAll(w, rows)
}

func writeAll(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// AtomicWrite writes a file through a temporary file in the same directory
// so readers never observe a partial file
func AtomicWrite(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "tmp-*.csv")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
