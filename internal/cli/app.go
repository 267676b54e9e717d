package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/simaogato/wealthflow-returns/internal/adapter/repository/csvfile"
	"github.com/simaogato/wealthflow-returns/internal/adapter/repository/memory"
	"github.com/simaogato/wealthflow-returns/internal/adapter/repository/postgres"
	"github.com/simaogato/wealthflow-returns/internal/config"
	"github.com/simaogato/wealthflow-returns/internal/domain"
	"github.com/simaogato/wealthflow-returns/internal/usecase/cashflow"
	"github.com/simaogato/wealthflow-returns/internal/usecase/fund"
	"github.com/simaogato/wealthflow-returns/internal/usecase/sip"
	"github.com/simaogato/wealthflow-returns/internal/usecase/xirr"
)

// App carries what every command needs
// Render and DataDir may be set from global flags after Register.
type App struct {
	Config  *config.Config
	Log     zerolog.Logger
	Out     io.Writer
	Render  bool
	DataDir string
}

// Register the subcommands.
func Register(c *subcommands.Commander, app *App) {
	c.Register(&xirrCmd{app: app}, "returns")
	c.Register(&trailingCmd{app: app}, "returns")
	c.Register(&sipCmd{app: app}, "returns")
	c.Register(&rollingCmd{app: app}, "returns")

	c.Register(&portfolioCmd{app: app}, "portfolio")

	c.Register(&importCmd{app: app}, "database")
}

func (a *App) solver() *xirr.Solver {
	s := xirr.DefaultSolver().WithLogger(a.Log)
	s.Tolerance = a.Config.SolverTolerance
	s.MaxIterations = a.Config.SolverMaxIterations
	return s
}

func (a *App) dataDir() string {
	if a.DataDir != "" {
		return a.DataDir
	}
	return a.Config.DataDir
}

// load reads the data directory
// Transactions recorded without a price are priced from their fund's history.
func (a *App) load() (*csvfile.Dataset, []domain.Transaction, error) {
	ds, err := csvfile.LoadDir(a.dataDir(), a.Log)
	if err != nil {
		return nil, nil, err
	}

	byFund := make(map[string][]domain.Transaction)
	var order []string
	for _, tx := range ds.Transactions {
		if _, ok := byFund[tx.FundID]; !ok {
			order = append(order, tx.FundID)
		}
		byFund[tx.FundID] = append(byFund[tx.FundID], tx)
	}

	priced := make([]domain.Transaction, 0, len(ds.Transactions))
	for _, fundID := range order {
		var series *domain.ValuationSeries
		if points, ok := ds.Valuations[fundID]; ok {
			if series, err = domain.NewValuationSeries(fundID, points); err != nil {
				return nil, nil, err
			}
		}
		txs, err := cashflow.ResolvePrices(byFund[fundID], series)
		if err != nil {
			return nil, nil, err
		}
		priced = append(priced, txs...)
	}
	return ds, priced, nil
}

// openStore loads the data directory into a memory store
func (a *App) openStore() (*memory.Store, error) {
	ds, txs, err := a.load()
	if err != nil {
		return nil, err
	}

	store := memory.NewStore()
	for _, f := range ds.Funds {
		store.PutFund(f)
	}
	for _, id := range ds.FundIDs() {
		if err := store.PutValuations(id, ds.Valuations[id]); err != nil {
			return nil, fmt.Errorf("fund %s: %w", id, err)
		}
	}
	store.AddTransactions(txs...)
	return store, nil
}

// sources are the repositories the commands read from
type sources struct {
	ledger     domain.TransactionLedger
	valuations domain.ValuationSource
	funds      domain.FundDirectory
	users      func(ctx context.Context) ([]string, error)
	close      func() error
}

// open connects to Postgres when configured, or loads the data directory
func (a *App) open(ctx context.Context) (*sources, error) {
	if a.Config.DBConnStr != "" {
		db, err := postgres.NewDB(a.Config.DBConnStr)
		if err != nil {
			return nil, err
		}
		ledger := postgres.NewLedgerRepository(db)
		return &sources{
			ledger:     ledger,
			valuations: postgres.NewValuationRepository(db),
			funds:      postgres.NewFundRepository(db),
			users:      ledger.ListUsers,
			close:      db.Close,
		}, nil
	}

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	return &sources{
		ledger:     memory.NewLedgerRepository(store),
		valuations: memory.NewValuationRepository(store),
		funds:      memory.NewFundRepository(store),
		users:      func(context.Context) ([]string, error) { return store.Users(), nil },
		close:      func() error { return nil },
	}, nil
}

// analysis starts an analysis of fundID over src
func (a *App) analysis(src *sources, fundID string) *fund.Advanced {
	planner := sip.NewPlanner(a.Config.SIPAmount, a.solver(), a.Log)
	planner.InstallmentDay = a.Config.SIPDay
	base := fund.NewAnalysis(fundID, src.valuations, src.funds, planner, a.Log)
	return fund.NewAdvanced(base)
}

// fundTitle names a fund for report headings
func fundTitle(ctx context.Context, a *fund.Advanced) string {
	info, err := a.Info(ctx)
	if err != nil || info.Name == "" || info.Name == a.FundID {
		return a.FundID
	}
	return fmt.Sprintf("%s (%s)", info.Name, a.FundID)
}
