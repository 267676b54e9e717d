package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simaogato/wealthflow-returns/internal/domain"
)

var _ domain.FundDirectory = (*FundRepository)(nil)

// FundRepository implements domain.FundDirectory
type FundRepository struct {
	db *DB
}

// NewFundRepository creates a new fund repository
func NewFundRepository(db *DB) *FundRepository {
	return &FundRepository{db: db}
}

// GetByID retrieves a fund by its identifier
func (r *FundRepository) GetByID(ctx context.Context, fundID string) (*domain.Fund, error) {
	query := `SELECT id, name FROM funds WHERE id = $1`

	var f domain.Fund
	err := r.db.QueryRowContext(ctx, query, fundID).Scan(&f.ID, &f.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFundNotFound
		}
		return nil, fmt.Errorf("failed to get fund: %w", err)
	}

	return &f, nil
}

// Upsert creates a fund or renames it
func (r *FundRepository) Upsert(ctx context.Context, f domain.Fund) error {
	query := `
		INSERT INTO funds (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
	`
	if _, err := r.db.ExecContext(ctx, query, f.ID, f.Name); err != nil {
		return fmt.Errorf("failed to upsert fund %s: %w", f.ID, err)
	}
	return nil
}
