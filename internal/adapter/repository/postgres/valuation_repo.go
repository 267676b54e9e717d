package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-returns/internal/domain"
)

var _ domain.ValuationSource = (*ValuationRepository)(nil)

// ValuationRepository implements domain.ValuationSource
type ValuationRepository struct {
	db *DB
}

// NewValuationRepository creates a new valuation repository
func NewValuationRepository(db *DB) *ValuationRepository {
	return &ValuationRepository{db: db}
}

// Put stores the valuations of a fund, replacing prices of days already known
func (r *ValuationRepository) Put(ctx context.Context, fundID string, points []domain.ValuationPoint) error {
	// Reject invalid histories before touching the table
	if _, err := domain.NewValuationSeries(fundID, points); err != nil {
		return err
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO fund_valuations (fund_id, date, price)
		VALUES ($1, $2, $3)
		ON CONFLICT (fund_id, date) DO UPDATE SET price = EXCLUDED.price
	`
	for _, p := range points {
		if _, err := dbTx.ExecContext(ctx, query, fundID, p.Date.Time(), p.Price.String()); err != nil {
			return fmt.Errorf("failed to insert valuation of %s on %s: %w", fundID, p.Date, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// History retrieves the valuations of a fund within the range in date order
func (r *ValuationRepository) History(ctx context.Context, fundID string, dr domain.DateRange) (*domain.ValuationSeries, error) {
	query := `
		SELECT date, price
		FROM fund_valuations
		WHERE fund_id = $1
		  AND ($2::date IS NULL OR date >= $2)
		  AND ($3::date IS NULL OR date <= $3)
		ORDER BY date
	`

	rows, err := r.db.QueryContext(ctx, query, fundID, nullDate(dr.From), nullDate(dr.To))
	if err != nil {
		return nil, fmt.Errorf("failed to query valuations: %w", err)
	}
	defer rows.Close()

	var points []domain.ValuationPoint
	for rows.Next() {
		p, err := scanValuation(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating valuations: %w", err)
	}

	if len(points) == 0 {
		exists, err := r.hasHistory(ctx, fundID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, &domain.MissingValuationError{FundID: fundID}
		}
	}

	return domain.NewValuationSeries(fundID, points)
}

// Latest retrieves the most recent valuation of a fund
func (r *ValuationRepository) Latest(ctx context.Context, fundID string) (domain.ValuationPoint, error) {
	query := `
		SELECT date, price
		FROM fund_valuations
		WHERE fund_id = $1
		ORDER BY date DESC
		LIMIT 1
	`

	p, err := scanValuation(r.db.QueryRowContext(ctx, query, fundID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ValuationPoint{}, &domain.MissingValuationError{FundID: fundID}
	}
	if err != nil {
		return domain.ValuationPoint{}, err
	}
	return p, nil
}

func (r *ValuationRepository) hasHistory(ctx context.Context, fundID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM fund_valuations WHERE fund_id = $1)`, fundID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check valuations of %s: %w", fundID, err)
	}
	return exists, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanValuation(s scanner) (domain.ValuationPoint, error) {
	var date time.Time
	var priceStr string
	if err := s.Scan(&date, &priceStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ValuationPoint{}, err
		}
		return domain.ValuationPoint{}, fmt.Errorf("failed to scan valuation: %w", err)
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return domain.ValuationPoint{}, fmt.Errorf("failed to parse price: %w", err)
	}
	return domain.ValuationPoint{Date: domain.DateOf(date), Price: price}, nil
}

func nullDate(d domain.Date) sql.NullTime {
	if d.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: d.Time(), Valid: true}
}
