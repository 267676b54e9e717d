package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-returns/internal/domain"
)

// Config holds application configuration
type Config struct {
	LogLevel  string
	LogPretty bool
	DataDir   string
	DBConnStr string // Read the ledger from Postgres instead of DataDir when set

	CurrencyCode string
	Currency     domain.Currency // Resolved from CurrencyCode by Validate

	SolverTolerance     float64
	SolverMaxIterations int

	SIPAmount decimal.Decimal
	SIPDay    int
}

// Load reads configuration from environment variables
// A .env file in the working directory is read first when present;
// variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:            getEnv("RETURNS_LOG_LEVEL", "info"),
		LogPretty:           getEnvAsBool("RETURNS_LOG_PRETTY", true),
		DataDir:             getEnv("RETURNS_DATA_DIR", "."),
		DBConnStr:           getEnv("RETURNS_DB_CONN_STR", ""),
		CurrencyCode:        getEnv("RETURNS_CURRENCY", "INR"),
		SolverTolerance:     getEnvAsFloat("RETURNS_SOLVER_TOLERANCE", 0.1),
		SolverMaxIterations: getEnvAsInt("RETURNS_SOLVER_MAX_ITERATIONS", 1000),
		SIPAmount:           getEnvAsDecimal("RETURNS_SIP_AMOUNT", decimal.NewFromInt(10000)),
		SIPDay:              getEnvAsInt("RETURNS_SIP_DAY", 10),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration and resolves the currency
func (c *Config) Validate() error {
	cur, err := domain.LookupCurrency(c.CurrencyCode)
	if err != nil {
		return fmt.Errorf("RETURNS_CURRENCY: %w", err)
	}
	c.Currency = cur

	if c.SolverTolerance <= 0 {
		return fmt.Errorf("RETURNS_SOLVER_TOLERANCE must be positive")
	}
	if c.SolverMaxIterations <= 0 {
		return fmt.Errorf("RETURNS_SOLVER_MAX_ITERATIONS must be positive")
	}
	if !c.SIPAmount.IsPositive() {
		return fmt.Errorf("RETURNS_SIP_AMOUNT must be positive")
	}
	if c.SIPDay < 1 || c.SIPDay > 28 {
		return fmt.Errorf("RETURNS_SIP_DAY must be between 1 and 28")
	}
	if c.DataDir == "" {
		return fmt.Errorf("RETURNS_DATA_DIR is required")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if decVal, err := decimal.NewFromString(value); err == nil {
			return decVal
		}
	}
	return defaultValue
}
