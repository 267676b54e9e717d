package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=returns sslmode=disable"
func NewDB(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Schema creates the tables read by the repositories when missing
const Schema = `
CREATE TABLE IF NOT EXISTS funds (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS fund_valuations (
	fund_id TEXT    NOT NULL,
	date    DATE    NOT NULL,
	price   NUMERIC NOT NULL CHECK (price > 0),
	PRIMARY KEY (fund_id, date)
);

CREATE TABLE IF NOT EXISTS fund_transactions (
	id      UUID PRIMARY KEY,
	user_id TEXT    NOT NULL,
	fund_id TEXT    NOT NULL,
	folio   TEXT    NOT NULL DEFAULT '',
	type    TEXT    NOT NULL CHECK (type IN ('CONTRIBUTION', 'REDEMPTION')),
	date    DATE    NOT NULL,
	price   NUMERIC NOT NULL,
	amount  NUMERIC NOT NULL,
	units   NUMERIC NOT NULL
);

CREATE INDEX IF NOT EXISTS fund_transactions_user_idx ON fund_transactions (user_id, fund_id, date);
`

// Migrate applies Schema
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
