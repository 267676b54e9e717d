package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/simaogato/wealthflow-returns/internal/domain"
)

// Store keeps ledgers, price histories and fund descriptions in memory
// It backs the CLI (loaded from files) and tests.
type Store struct {
	mu           sync.RWMutex
	transactions map[string][]domain.Transaction // userID -> txs
	valuations   map[string]*domain.ValuationSeries
	funds        map[string]domain.Fund
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		transactions: make(map[string][]domain.Transaction),
		valuations:   make(map[string]*domain.ValuationSeries),
		funds:        make(map[string]domain.Fund),
	}
}

// AddTransactions appends transactions to their users' ledgers
func (s *Store) AddTransactions(txs ...domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range txs {
		s.transactions[tx.UserID] = append(s.transactions[tx.UserID], tx)
	}
}

// PutValuations merges points into a fund's history
// A point on an existing date replaces the stored one.
func (s *Store) PutValuations(fundID string, points []domain.ValuationPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDate := make(map[domain.Date]domain.ValuationPoint)
	if existing, ok := s.valuations[fundID]; ok {
		for _, p := range existing.Points() {
			byDate[p.Date] = p
		}
	}
	for _, p := range points {
		byDate[p.Date] = p
	}

	merged := make([]domain.ValuationPoint, 0, len(byDate))
	for _, p := range byDate {
		merged = append(merged, p)
	}
	series, err := domain.NewValuationSeries(fundID, merged)
	if err != nil {
		return err
	}
	s.valuations[fundID] = series
	return nil
}

// PutFund registers or replaces a fund description
func (s *Store) PutFund(f domain.Fund) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.funds[f.ID] = f
}

// Users returns the users with at least one transaction, sorted
func (s *Store) Users() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.transactions))
	for id := range s.transactions {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

/* ---- Ledger ---- */

// ledgerRepository implements domain.TransactionLedger
type ledgerRepository struct{ s *Store }

// NewLedgerRepository creates a new in-memory transaction ledger
func NewLedgerRepository(s *Store) domain.TransactionLedger {
	return &ledgerRepository{s: s}
}

// ListByUser retrieves every transaction of a user ordered by date
func (r *ledgerRepository) ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return r.list(ctx, userID, func(domain.Transaction) bool { return true })
}

// ListByFund retrieves the transactions of a user in one fund ordered by date
func (r *ledgerRepository) ListByFund(ctx context.Context, userID, fundID string) ([]domain.Transaction, error) {
	return r.list(ctx, userID, func(tx domain.Transaction) bool { return tx.FundID == fundID })
}

func (r *ledgerRepository) list(ctx context.Context, userID string, keep func(domain.Transaction) bool) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Transaction, 0, len(r.s.transactions[userID]))
	for _, tx := range r.s.transactions[userID] {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Transaction) int {
		return a.Date.Compare(b.Date)
	})
	return out, nil
}

/* ---- Valuations ---- */

// valuationRepository implements domain.ValuationSource
type valuationRepository struct{ s *Store }

// NewValuationRepository creates a new in-memory valuation source
func NewValuationRepository(s *Store) domain.ValuationSource {
	return &valuationRepository{s: s}
}

// History retrieves the valuations of a fund within the range
func (r *valuationRepository) History(ctx context.Context, fundID string, dr domain.DateRange) (*domain.ValuationSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	series, ok := r.s.valuations[fundID]
	if !ok {
		return nil, &domain.MissingValuationError{FundID: fundID}
	}
	return series.Between(dr), nil
}

// Latest retrieves the most recent valuation of a fund
func (r *valuationRepository) Latest(ctx context.Context, fundID string) (domain.ValuationPoint, error) {
	if err := ctx.Err(); err != nil {
		return domain.ValuationPoint{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	series, ok := r.s.valuations[fundID]
	if !ok {
		return domain.ValuationPoint{}, &domain.MissingValuationError{FundID: fundID}
	}
	p, ok := series.Latest()
	if !ok {
		return domain.ValuationPoint{}, &domain.MissingValuationError{FundID: fundID}
	}
	return p, nil
}

/* ---- Funds ---- */

// fundRepository implements domain.FundDirectory
type fundRepository struct{ s *Store }

// NewFundRepository creates a new in-memory fund directory
func NewFundRepository(s *Store) domain.FundDirectory {
	return &fundRepository{s: s}
}

// GetByID retrieves a fund by its identifier
func (r *fundRepository) GetByID(ctx context.Context, fundID string) (*domain.Fund, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.funds[fundID]
	if !ok {
		return nil, domain.ErrFundNotFound
	}
	return &f, nil
}
