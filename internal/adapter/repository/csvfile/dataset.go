package csvfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/simaogato/wealthflow-returns/internal/adapter/navjson"
	"github.com/simaogato/wealthflow-returns/internal/domain"
)

const (
	transactionsFile = "transactions.csv"
	fundsFile        = "funds.csv"
	navDir           = "nav"
)

// Dataset is everything found in a data directory
type Dataset struct {
	Transactions []domain.Transaction
	Funds        []domain.Fund
	Valuations   map[string][]domain.ValuationPoint // fundID -> points
}

// FundIDs returns the funds with a price history, sorted
func (d *Dataset) FundIDs() []string {
	out := make([]string, 0, len(d.Valuations))
	for id := range d.Valuations {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// LoadDir reads a data directory:
//
//	<dir>/transactions.csv    optional
//	<dir>/funds.csv           optional
//	<dir>/nav/<fund_id>.csv   date,nav
//	<dir>/nav/<fund_id>.json  navjson.DefaultFormat
//
// Fund names found in JSON metadata complete funds.csv.
func LoadDir(dir string, log zerolog.Logger) (*Dataset, error) {
	ds := &Dataset{Valuations: make(map[string][]domain.ValuationPoint)}

	txs, err := readOptional(filepath.Join(dir, transactionsFile), ReadTransactions)
	if err != nil {
		return nil, err
	}
	ds.Transactions = txs

	funds, err := readOptional(filepath.Join(dir, fundsFile), ReadFunds)
	if err != nil {
		return nil, err
	}
	ds.Funds = funds
	known := make(map[string]bool, len(funds))
	for _, f := range funds {
		known[f.ID] = true
	}

	entries, err := os.ReadDir(filepath.Join(dir, navDir))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to list nav directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, navDir, e.Name())
		ext := strings.ToLower(filepath.Ext(e.Name()))
		fundID := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))

		switch ext {
		case ".csv":
			points, err := ReadValuationsFile(path)
			if err != nil {
				return nil, err
			}
			ds.Valuations[fundID] = append(ds.Valuations[fundID], points...)
		case ".json":
			doc, err := readJSON(path)
			if err != nil {
				return nil, err
			}
			ds.Valuations[fundID] = append(ds.Valuations[fundID], doc.Points...)
			if doc.Fund.Name != "" && !known[fundID] {
				ds.Funds = append(ds.Funds, domain.Fund{ID: fundID, Name: doc.Fund.Name})
				known[fundID] = true
			}
		default:
			log.Debug().Str("file", path).Msg("Skipping unknown nav file")
			continue
		}
		log.Debug().Str("fund_id", fundID).Str("file", path).Msg("Loaded price history")
	}

	log.Info().
		Str("dir", dir).
		Int("transactions", len(ds.Transactions)).
		Int("funds", len(ds.Valuations)).
		Msg("Data directory loaded")
	return ds, nil
}

func readOptional[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	out, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func readJSON(path string) (*navjson.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := navjson.Decode(f, navjson.DefaultFormat)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ReadValuationsFile parses a NAV CSV file
func ReadValuationsFile(path string) ([]domain.ValuationPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	points, err := ReadValuations(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return points, nil
}

// ReadCashflowsFile parses a cashflows CSV file
func ReadCashflowsFile(path string) (domain.CashflowSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	flows, err := ReadCashflows(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return flows, nil
}
