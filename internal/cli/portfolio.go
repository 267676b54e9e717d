package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"
	"github.com/simaogato/wealthflow-returns/internal/domain"
	"github.com/simaogato/wealthflow-returns/internal/usecase/portfolio"
)

// portfolioCmd summarizes a user's holdings
type portfolioCmd struct {
	app    *App
	userID string
	fundID string
	all    bool
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "holdings, profit and rate of a user's portfolio" }
func (*portfolioCmd) Usage() string {
	return `returns portfolio [-user <id>] [-fund <id>] [-all]

  Values every holding at its fund's latest price and solves the rate of each
  holding and of the whole portfolio. -user defaults to the only user in the
  ledger. -fund limits the report to the holding in one fund. Fully redeemed
  holdings are hidden unless -all is set.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.userID, "user", "", "User whose portfolio to report")
	f.StringVar(&c.fundID, "fund", "", "Only report the holding in this fund")
	f.BoolVar(&c.all, "all", false, "Include fully redeemed holdings")
}

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	src, err := c.app.open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}
	defer src.close()

	userID := c.userID
	if userID == "" {
		users, err := src.users(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing users: %v\n", err)
			return subcommands.ExitFailure
		}
		if len(users) != 1 {
			fmt.Fprintf(os.Stderr, "-user is required, the ledger has %d users\n", len(users))
			return subcommands.ExitUsageError
		}
		userID = users[0]
	}

	svc := portfolio.NewPortfolioService(
		src.ledger,
		src.valuations,
		src.funds,
		c.app.solver(),
		c.app.Config.Currency,
		c.app.Log,
	)
	summarize := svc.GetSummary
	if c.fundID != "" {
		summarize = func(ctx context.Context, userID string) (*domain.PortfolioSummary, error) {
			return svc.GetFundSummary(ctx, userID, c.fundID)
		}
	}
	summary, err := summarize(ctx, userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error summarizing portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	cur := c.app.Config.Currency
	r := newReport()
	title := "Portfolio of " + userID
	if c.fundID != "" {
		title += " in " + c.fundID
	}
	r.h1(title)
	r.table([]string{"Invested", "Value", "Profit", "Funds", "Rate"}, [][]string{{
		cur.Format(summary.Investment),
		cur.Format(summary.Value),
		cur.Format(summary.Profit),
		strconv.Itoa(summary.NumFunds),
		optionalPercent(summary.Rate),
	}})

	r.h2("Holdings")
	rows := make([][]string, 0, len(summary.Holdings))
	for _, h := range summary.Holdings {
		if !h.Active() && !c.all {
			continue
		}
		rows = append(rows, []string{
			h.FundName,
			h.Units.StringFixed(3),
			h.Price.String() + " (" + h.ValuationDate.String() + ")",
			cur.Format(h.Cost),
			cur.Format(h.Value),
			cur.Format(h.Profit),
			optionalPercent(h.Rate),
		})
	}
	r.table([]string{"Fund", "Units", "Price", "Cost", "Value", "Profit", "Rate"}, rows)
	return c.app.print(r.String())
}
