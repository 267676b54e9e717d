package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-returns/internal/domain"
)

var _ domain.TransactionLedger = (*LedgerRepository)(nil)

// LedgerRepository implements domain.TransactionLedger
type LedgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a new transaction ledger
func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Create stores transactions in a single database transaction
// Every transaction is validated first; nothing is written if one is invalid.
func (r *LedgerRepository) Create(ctx context.Context, txs ...domain.Transaction) error {
	for i := range txs {
		if err := txs[i].Validate(); err != nil {
			return fmt.Errorf("transaction %s: %w", txs[i].ID, err)
		}
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO fund_transactions (id, user_id, fund_id, folio, type, date, price, amount, units)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	for _, tx := range txs {
		_, err = dbTx.ExecContext(ctx, query,
			tx.ID,
			tx.UserID,
			tx.FundID,
			tx.FolioID,
			string(tx.Type),
			tx.Date.Time(),
			tx.Price.String(),
			tx.Amount.String(),
			tx.Units.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", tx.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListByUser retrieves every transaction of a user in date order
func (r *LedgerRepository) ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	query := `
		SELECT id, user_id, fund_id, folio, type, date, price, amount, units
		FROM fund_transactions
		WHERE user_id = $1
		ORDER BY date, id
	`
	return r.list(ctx, query, userID)
}

// ListByFund retrieves the transactions of a user in one fund in date order
func (r *LedgerRepository) ListByFund(ctx context.Context, userID, fundID string) ([]domain.Transaction, error) {
	query := `
		SELECT id, user_id, fund_id, folio, type, date, price, amount, units
		FROM fund_transactions
		WHERE user_id = $1 AND fund_id = $2
		ORDER BY date, id
	`
	return r.list(ctx, query, userID, fundID)
}

// ListUsers retrieves the users with at least one transaction
func (r *LedgerRepository) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM fund_transactions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *LedgerRepository) list(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var txType string
		var date time.Time
		var priceStr, amountStr, unitsStr string

		if err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.FundID,
			&tx.FolioID,
			&txType,
			&date,
			&priceStr,
			&amountStr,
			&unitsStr,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		tx.Type = domain.TransactionType(txType)
		tx.Date = domain.DateOf(date)
		if tx.Price, err = decimal.NewFromString(priceStr); err != nil {
			return nil, fmt.Errorf("failed to parse price: %w", err)
		}
		if tx.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
		if tx.Units, err = decimal.NewFromString(unitsStr); err != nil {
			return nil, fmt.Errorf("failed to parse units: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txs, nil
}
