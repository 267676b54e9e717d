package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/simaogato/wealthflow-returns/internal/adapter/repository/postgres"
)

// importCmd copies the data directory into Postgres
type importCmd struct {
	app *App
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "load the data directory into the database" }
func (*importCmd) Usage() string {
	return `returns import

  Creates the tables when missing, then stores the funds, price histories and
  transactions of the data directory in the database named by
  RETURNS_DB_CONN_STR. Transactions already imported are skipped.
`
}

func (*importCmd) SetFlags(*flag.FlagSet) {}

func (c *importCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.app.Config.DBConnStr == "" {
		fmt.Fprintln(os.Stderr, "RETURNS_DB_CONN_STR is not set")
		return subcommands.ExitUsageError
	}

	ds, txs, err := c.app.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}

	db, err := postgres.NewDB(c.app.Config.DBConnStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	funds := postgres.NewFundRepository(db)
	for _, f := range ds.Funds {
		if err := funds.Upsert(ctx, f); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	valuations := postgres.NewValuationRepository(db)
	points := 0
	for _, id := range ds.FundIDs() {
		if err := valuations.Put(ctx, id, ds.Valuations[id]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		points += len(ds.Valuations[id])
	}

	if err := postgres.NewLedgerRepository(db).Create(ctx, txs...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	c.app.Log.Info().
		Int("funds", len(ds.Funds)).
		Int("valuations", points).
		Int("transactions", len(txs)).
		Msg("Data directory imported")

	r := newReport()
	r.h1("Import")
	r.line("Imported %d funds, %d valuations and %d transactions.", len(ds.Funds), points, len(txs))
	return c.app.print(r.String())
}
