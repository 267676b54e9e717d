package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"
	"github.com/simaogato/wealthflow-returns/internal/adapter/repository/csvfile"
	"github.com/simaogato/wealthflow-returns/internal/domain"
	"github.com/simaogato/wealthflow-returns/internal/usecase/rolling"
)

// parseAsOf parses an optional as-of date, today when empty
func parseAsOf(s string) (domain.Date, error) {
	if s == "" {
		return domain.Today(), nil
	}
	return domain.ParseDate(s)
}

// parseYears parses a comma separated list of whole years
func parseYears(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid number of years %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

/* ---- xirr ---- */

// xirrCmd solves the rate of a cashflow file
type xirrCmd struct {
	app            *App
	guessFromFlows bool
}

func (*xirrCmd) Name() string     { return "xirr" }
func (*xirrCmd) Synopsis() string { return "annualized rate of a dated cashflow series" }
func (*xirrCmd) Usage() string {
	return `returns xirr [-guess-from-flows] <cashflows.csv>

  Solves the annualized rate that zeroes the discounted sum of the cashflows.
  The file has a date,amount header; money paid in is negative.
`
}

func (c *xirrCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.guessFromFlows, "guess-from-flows", false, "Start the solver from a guess derived from the cashflows")
}

func (c *xirrCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "xirr needs exactly one cashflow file")
		return subcommands.ExitUsageError
	}
	flows, err := csvfile.ReadCashflowsFile(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading cashflows: %v\n", err)
		return subcommands.ExitFailure
	}

	solver := c.app.solver()
	solver.GuessFromFlows = c.guessFromFlows
	rate, err := solver.Solve(flows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error solving rate: %v\n", err)
		return subcommands.ExitFailure
	}

	r := newReport()
	r.h1("Rate")
	r.table([]string{"Cashflows", "Net", "Rate"}, [][]string{{
		strconv.Itoa(len(flows)),
		c.app.Config.Currency.Format(flows.Sum()),
		percent(rate),
	}})
	return c.app.print(r.String())
}

/* ---- trailing ---- */

// trailingCmd reports point-to-point returns of a fund
type trailingCmd struct {
	app    *App
	fundID string
	asOf   string
	years  string
}

func (*trailingCmd) Name() string     { return "trailing" }
func (*trailingCmd) Synopsis() string { return "point-to-point returns of a fund over the last years" }
func (*trailingCmd) Usage() string {
	return `returns trailing -fund <id> [-as-of <date>] [-years 1,3,5]
`
}

func (c *trailingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.fundID, "fund", "", "Fund identifier")
	f.StringVar(&c.asOf, "as-of", "", "Last day of the windows (defaults to today)")
	f.StringVar(&c.years, "years", "1,3,5", "Comma separated window lengths in years")
}

func (c *trailingCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	asOf, years, status := fundFlags(c.fundID, c.asOf, c.years)
	if status != subcommands.ExitSuccess {
		return status
	}
	src, err := c.app.open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}
	defer src.close()
	a := c.app.analysis(src, c.fundID)
	returns, err := a.TrailingReturns(ctx, asOf, years...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing returns: %v\n", err)
		return subcommands.ExitFailure
	}

	r := newReport()
	r.h1("Trailing returns of " + fundTitle(ctx, a))
	if len(returns) == 0 {
		r.line("Not enough history before %s.", asOf)
		return c.app.print(r.String())
	}
	rows := make([][]string, 0, len(returns))
	for _, t := range returns {
		rows = append(rows, []string{fmt.Sprintf("%dY", t.Years), t.From.String(), t.To.String(), percent(t.Return)})
	}
	r.table([]string{"Period", "From", "To", "Return"}, rows)
	return c.app.print(r.String())
}

/* ---- sip ---- */

// sipCmd reports the returns of synthetic monthly plans in a fund
type sipCmd struct {
	app    *App
	fundID string
	asOf   string
	years  string
}

func (*sipCmd) Name() string     { return "sip" }
func (*sipCmd) Synopsis() string { return "returns of a monthly investment plan in a fund" }
func (*sipCmd) Usage() string {
	return `returns sip -fund <id> [-as-of <date>] [-years 1,3,5]

  Invests RETURNS_SIP_AMOUNT every month on the first valuation on or after
  RETURNS_SIP_DAY and reports the rate of each plan ending on the as-of date.
`
}

func (c *sipCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.fundID, "fund", "", "Fund identifier")
	f.StringVar(&c.asOf, "as-of", "", "Redemption day of the plans (defaults to today)")
	f.StringVar(&c.years, "years", "1,3,5", "Comma separated plan lengths in years")
}

func (c *sipCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	asOf, years, status := fundFlags(c.fundID, c.asOf, c.years)
	if status != subcommands.ExitSuccess {
		return status
	}
	src, err := c.app.open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}
	defer src.close()
	a := c.app.analysis(src, c.fundID)
	returns, err := a.SIPReturns(ctx, asOf, years...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing plan returns: %v\n", err)
		return subcommands.ExitFailure
	}

	cur := c.app.Config.Currency
	r := newReport()
	r.h1("Monthly plan returns of " + fundTitle(ctx, a))
	if len(returns) == 0 {
		r.line("Not enough history before %s.", asOf)
		return c.app.print(r.String())
	}
	rows := make([][]string, 0, len(returns))
	for _, s := range returns {
		rows = append(rows, []string{
			fmt.Sprintf("%dY", s.Years),
			strconv.Itoa(s.Installments),
			cur.Format(s.Invested),
			cur.Format(s.Value),
			percent(s.Rate),
		})
	}
	r.table([]string{"Plan", "Installments", "Invested", "Value", "Rate"}, rows)
	return c.app.print(r.String())
}

/* ---- rolling ---- */

// rollingCmd reports rolling returns of a fund
type rollingCmd struct {
	app    *App
	fundID string
	period int
	from   string
	to     string
	out    string
}

func (*rollingCmd) Name() string     { return "rolling" }
func (*rollingCmd) Synopsis() string { return "rolling returns of a fund and their distribution" }
func (*rollingCmd) Usage() string {
	return `returns rolling -fund <id> [-period <years>] [-from <date>] [-to <date>] [-out <file.csv>]

  Computes the annualized return over every window of the given length ending
  between -from and -to, and summarizes them. -out saves every point as CSV.
`
}

func (c *rollingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.fundID, "fund", "", "Fund identifier")
	f.IntVar(&c.period, "period", 1, "Window length in years")
	f.StringVar(&c.from, "from", "", "First window end (defaults to the start of history)")
	f.StringVar(&c.to, "to", "", "Last window end (defaults to the end of history)")
	f.StringVar(&c.out, "out", "", "Write the rolling returns to this CSV file")
}

func (c *rollingCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.fundID == "" {
		fmt.Fprintln(os.Stderr, "-fund is required")
		return subcommands.ExitUsageError
	}
	var dr domain.DateRange
	var err error
	if c.from != "" {
		if dr.From, err = domain.ParseDate(c.from); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -from: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.to != "" {
		if dr.To, err = domain.ParseDate(c.to); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -to: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	src, err := c.app.open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}
	defer src.close()
	a := c.app.analysis(src, c.fundID)
	rr, err := a.RollingReturns(ctx, c.period, dr)
	if errors.Is(err, rolling.ErrInvalidPeriod) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing rolling returns: %v\n", err)
		return subcommands.ExitFailure
	}
	summary, err := a.RollingSummary(ctx, c.period, dr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error summarizing rolling returns: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.out != "" {
		err := csvfile.AtomicWrite(c.out, func(w io.Writer) error {
			return csvfile.WriteRollingReturns(w, rr)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", c.out, err)
			return subcommands.ExitFailure
		}
	}

	r := newReport()
	r.h1(fmt.Sprintf("%d year rolling returns of %s", c.period, fundTitle(ctx, a)))
	if summary.Count == 0 {
		r.line("Not enough history for a %d year window.", c.period)
		return c.app.print(r.String())
	}
	first, last := rr.Points[0].Date, rr.Points[len(rr.Points)-1].Date
	r.line("%d windows ending from %s to %s.", summary.Count, first, last)
	r.table([]string{"Mean", "Std. Dev.", "Min", "Max"}, [][]string{{
		percent(summary.Mean),
		percent(summary.StdDev),
		percent(summary.Min),
		percent(summary.Max),
	}})
	return c.app.print(r.String())
}

// fundFlags validates the flags shared by the fund commands
func fundFlags(fundID, asOf, years string) (domain.Date, []int, subcommands.ExitStatus) {
	if fundID == "" {
		fmt.Fprintln(os.Stderr, "-fund is required")
		return domain.Date{}, nil, subcommands.ExitUsageError
	}
	d, err := parseAsOf(asOf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -as-of: %v\n", err)
		return domain.Date{}, nil, subcommands.ExitUsageError
	}
	ys, err := parseYears(years)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -years: %v\n", err)
		return domain.Date{}, nil, subcommands.ExitUsageError
	}
	return d, ys, subcommands.ExitSuccess
}

// print writes a report, reporting failures as the command status
func (a *App) print(md string) subcommands.ExitStatus {
	if err := printMarkdown(a.Out, md, a.Render); err != nil {
		fmt.Fprintf(os.Stderr, "Error printing report: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
