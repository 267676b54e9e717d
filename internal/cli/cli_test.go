package cli

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-returns/internal/config"
	"github.com/simaogato/wealthflow-returns/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newTestApp returns an app over a data directory holding one fund
// that gained 10% over 2023 and one purchase at the start of the year.
func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "funds.csv"), "fund_id,name\nF1,Growth Fund\n")
	writeFile(t, filepath.Join(dir, "nav", "F1.csv"), "date,nav\n2023-01-02,10\n2023-07-03,10.5\n2024-01-02,11\n")
	writeFile(t, filepath.Join(dir, "transactions.csv"),
		"user_id,fund_id,type,date,amount\nu1,F1,BUY,2023-01-02,1000\n")

	usd, err := domain.LookupCurrency("USD")
	require.NoError(t, err)
	out := &bytes.Buffer{}
	app := &App{
		Config: &config.Config{
			DataDir:             dir,
			CurrencyCode:        "USD",
			Currency:            usd,
			SolverTolerance:     1e-6,
			SolverMaxIterations: 1000,
			SIPAmount:           decimal.NewFromInt(1000),
			SIPDay:              10,
		},
		Log: zerolog.Nop(),
		Out: out,
	}
	return app, out
}

func run(t *testing.T, app *App, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet("returns", flag.ContinueOnError)
	cdr := subcommands.NewCommander(fs, "returns")
	Register(cdr, app)
	require.NoError(t, fs.Parse(args))
	return cdr.Execute(context.Background())
}

func TestXirrCommand(t *testing.T) {
	app, out := newTestApp(t)
	path := filepath.Join(t.TempDir(), "flows.csv")
	writeFile(t, path, "date,amount\n2023-01-01,-1000\n2024-01-01,1100\n")

	status := run(t, app, "xirr", path)

	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out.String(), "10.00%")
	assert.Contains(t, out.String(), "$100.00")
}

func TestXirrCommand_Errors(t *testing.T) {
	app, _ := newTestApp(t)

	assert.Equal(t, subcommands.ExitUsageError, run(t, app, "xirr"))

	path := filepath.Join(t.TempDir(), "flows.csv")
	writeFile(t, path, "date,amount\n2023-01-01,-1000\n2024-01-01,-100\n")
	assert.Equal(t, subcommands.ExitFailure, run(t, app, "xirr", path))
}

func TestTrailingCommand(t *testing.T) {
	app, out := newTestApp(t)

	status := run(t, app, "trailing", "-fund", "F1", "-as-of", "2024-01-02", "-years", "1,3")

	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out.String(), "Growth Fund (F1)")
	s := out.String()
	assert.Contains(t, s, "1Y")
	assert.Contains(t, s, "2023-01-02")
	assert.Contains(t, s, "10.00%")
	assert.NotContains(t, s, "3Y")
}

func TestTrailingCommand_UsageErrors(t *testing.T) {
	app, _ := newTestApp(t)

	assert.Equal(t, subcommands.ExitUsageError, run(t, app, "trailing"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, app, "trailing", "-fund", "F1", "-as-of", "yesterday"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, app, "trailing", "-fund", "F1", "-years", "0"))
}

func TestSIPCommand_NotEnoughHistory(t *testing.T) {
	app, out := newTestApp(t)

	status := run(t, app, "sip", "-fund", "F1", "-as-of", "2024-01-02", "-years", "3")

	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out.String(), "Not enough history")
}

func TestRollingCommand_WritesCSV(t *testing.T) {
	app, out := newTestApp(t)
	path := filepath.Join(t.TempDir(), "rolling.csv")

	status := run(t, app, "rolling", "-fund", "F1", "-period", "1", "-out", path)

	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out.String(), "1 year rolling returns of Growth Fund (F1)")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "date,growth\n")
}

func TestRollingCommand_InvalidPeriod(t *testing.T) {
	app, _ := newTestApp(t)

	assert.Equal(t, subcommands.ExitUsageError, run(t, app, "rolling", "-fund", "F1", "-period", "0"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, app, "rolling"))
}

func TestPortfolioCommand(t *testing.T) {
	app, out := newTestApp(t)

	status := run(t, app, "portfolio")

	require.Equal(t, subcommands.ExitSuccess, status)
	s := out.String()
	assert.Contains(t, s, "# Portfolio of u1")
	for _, cell := range []string{"$1,000.00", "$1,100.00", "$100.00", "10.00%"} {
		assert.Contains(t, s, cell)
	}
	assert.Contains(t, s, "Growth Fund")
	assert.Contains(t, s, "100.000")
}

func TestPortfolioCommand_UnknownUser(t *testing.T) {
	app, out := newTestApp(t)

	status := run(t, app, "portfolio", "-user", "nobody")

	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out.String(), "$0.00")
	assert.Contains(t, out.String(), "n/a")
	assert.NotContains(t, out.String(), "Growth Fund")
}

func TestPortfolioCommand_FundFilter(t *testing.T) {
	app, out := newTestApp(t)
	writeFile(t, filepath.Join(app.Config.DataDir, "funds.csv"), "fund_id,name\nF1,Growth Fund\nF2,Bond Fund\n")
	writeFile(t, filepath.Join(app.Config.DataDir, "nav", "F2.csv"), "date,nav\n2023-01-02,20\n2024-01-02,20\n")
	writeFile(t, filepath.Join(app.Config.DataDir, "transactions.csv"),
		"user_id,fund_id,type,date,amount\nu1,F1,BUY,2023-01-02,1000\nu1,F2,BUY,2023-01-02,500\n")

	status := run(t, app, "portfolio", "-fund", "F2")

	require.Equal(t, subcommands.ExitSuccess, status)
	s := out.String()
	assert.Contains(t, s, "# Portfolio of u1 in F2")
	assert.Contains(t, s, "Bond Fund")
	assert.Contains(t, s, "$500.00")
	assert.NotContains(t, s, "Growth Fund")
	assert.NotContains(t, s, "$1,100.00")
}

func TestImportCommand_RequiresDatabase(t *testing.T) {
	app, _ := newTestApp(t)

	assert.Equal(t, subcommands.ExitUsageError, run(t, app, "import"))
}
