//go:build integration

package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-returns/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *DB

// TestMain connects to the database named by the environment and applies the schema
func TestMain(m *testing.M) {
	var err error
	db, err = NewDB(getDBConnectionString())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	if err := db.Migrate(context.Background()); err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}

	code := m.Run()
	db.Close()
	os.Exit(code)
}

func getDBConnectionString() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "returns"),
	)
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// uniqueID keeps tests independent of rows left by earlier runs
func uniqueID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

func TestFundRepository_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewFundRepository(db)
	id := uniqueID("fund")

	require.NoError(t, repo.Upsert(ctx, domain.Fund{ID: id, Name: "First"}))
	require.NoError(t, repo.Upsert(ctx, domain.Fund{ID: id, Name: "Renamed"}))

	f, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", f.Name)

	_, err = repo.GetByID(ctx, uniqueID("missing"))
	assert.ErrorIs(t, err, domain.ErrFundNotFound)
}

func TestValuationRepository_HistoryAndLatest(t *testing.T) {
	ctx := context.Background()
	repo := NewValuationRepository(db)
	id := uniqueID("fund")

	points := []domain.ValuationPoint{
		{Date: domain.MustParseDate("2024-01-03"), Price: decimal.RequireFromString("10.25")},
		{Date: domain.MustParseDate("2024-01-01"), Price: decimal.RequireFromString("10")},
		{Date: domain.MustParseDate("2024-01-02"), Price: decimal.RequireFromString("10.1")},
	}
	require.NoError(t, repo.Put(ctx, id, points))
	// Re-importing a day replaces its price
	require.NoError(t, repo.Put(ctx, id, []domain.ValuationPoint{
		{Date: domain.MustParseDate("2024-01-02"), Price: decimal.RequireFromString("10.2")},
	}))

	h, err := repo.History(ctx, id, domain.DateRange{})
	require.NoError(t, err)
	require.Equal(t, 3, h.Len())
	assert.Equal(t, domain.MustParseDate("2024-01-01"), h.At(0).Date)
	assert.True(t, h.At(1).Price.Equal(decimal.RequireFromString("10.2")))

	h, err = repo.History(ctx, id, domain.DateRange{From: domain.MustParseDate("2024-01-02")})
	require.NoError(t, err)
	assert.Equal(t, 2, h.Len())

	latest, err := repo.Latest(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.MustParseDate("2024-01-03"), latest.Date)
	assert.True(t, latest.Price.Equal(decimal.RequireFromString("10.25")))

	_, err = repo.Latest(ctx, uniqueID("missing"))
	assert.ErrorIs(t, err, domain.ErrMissingValuation)
	_, err = repo.History(ctx, uniqueID("missing"), domain.DateRange{})
	assert.ErrorIs(t, err, domain.ErrMissingValuation)
}

func TestLedgerRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository(db)
	user := uniqueID("user")

	buy := domain.Transaction{
		ID:     uuid.New(),
		UserID: user,
		FundID: "F1",
		Type:   domain.TransactionTypeContribution,
		Date:   domain.MustParseDate("2024-01-02"),
		Price:  decimal.RequireFromString("10"),
		Amount: decimal.RequireFromString("1000"),
		Units:  decimal.RequireFromString("100"),
	}
	sell := buy
	sell.ID = uuid.New()
	sell.Type = domain.TransactionTypeRedemption
	sell.Date = domain.MustParseDate("2024-06-03")
	sell.Price = decimal.RequireFromString("11")
	sell.Amount = decimal.RequireFromString("550")
	sell.Units = decimal.RequireFromString("50")
	other := buy
	other.ID = uuid.New()
	other.FundID = "F2"

	require.NoError(t, repo.Create(ctx, sell, buy, other))
	// Importing the same transactions again is a no-op
	require.NoError(t, repo.Create(ctx, buy))

	txs, err := repo.ListByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, domain.MustParseDate("2024-01-02"), txs[0].Date)
	assert.Equal(t, domain.MustParseDate("2024-06-03"), txs[2].Date)

	txs, err = repo.ListByFund(ctx, user, "F1")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, domain.TransactionTypeRedemption, txs[1].Type)
	assert.True(t, txs[1].Units.Equal(decimal.RequireFromString("50")))

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	assert.Contains(t, users, user)
}

func TestLedgerRepository_CreateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository(db)
	user := uniqueID("user")

	bad := domain.Transaction{ID: uuid.New(), UserID: user, Type: domain.TransactionTypeContribution}
	err := repo.Create(ctx, bad)
	require.Error(t, err)

	txs, err := repo.ListByUser(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, txs)
}
