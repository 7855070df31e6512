package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"cryptofolio/internal/scheduler"
	"cryptofolio/internal/service"
	"cryptofolio/internal/valuation"

	"github.com/google/subcommands"
)

type migrateCmd struct{}

func (*migrateCmd) Name() string             { return "migrate" }
func (*migrateCmd) Synopsis() string         { return "apply the embedded schema migrations" }
func (*migrateCmd) Usage() string            { return "portfolioctl migrate\n\n  Creates any missing table or index.\n" }
func (*migrateCmd) SetFlags(_ *flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()
	fmt.Printf("schema up to date (%s)\n", e.cfg.Database.Driver)
	return subcommands.ExitSuccess
}

type seedCmd struct{}

func (*seedCmd) Name() string             { return "seed" }
func (*seedCmd) Synopsis() string         { return "replace the portfolio with the test holdings" }
func (*seedCmd) Usage() string            { return "portfolioctl seed\n\n  Writes BTC, ETH and SOL test holdings and today's snapshot.\n" }
func (*seedCmd) SetFlags(_ *flag.FlagSet) {}

func (*seedCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	res, err := e.portfolio.SeedTestData(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error seeding portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	printValuation(res)
	return subcommands.ExitSuccess
}

// backfillCmd writes snapshots for past days from the current holdings.
type backfillCmd struct {
	days int
}

func (*backfillCmd) Name() string     { return "backfill" }
func (*backfillCmd) Synopsis() string { return "write history for past days from current holdings" }
func (*backfillCmd) Usage() string {
	return `portfolioctl backfill [-days N]

  Writes one snapshot per day for the N days before today, valued with the
  current holdings. Useful to populate the history chart of a new install.
`
}

func (c *backfillCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", 7, "number of past days to fill")
}

func (c *backfillCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.days < 1 {
		fmt.Fprintln(os.Stderr, "Error: -days must be at least 1")
		return subcommands.ExitUsageError
	}
	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	n, err := e.portfolio.Backfill(ctx, c.days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error backfilling: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("wrote %d rows over %d days\n", n, c.days)
	return subcommands.ExitSuccess
}

type backupCmd struct{}

func (*backupCmd) Name() string             { return "backup" }
func (*backupCmd) Synopsis() string         { return "run the nightly portfolio backup once" }
func (*backupCmd) Usage() string            { return "portfolioctl backup\n\n  Records today's snapshot of the current holdings.\n" }
func (*backupCmd) SetFlags(_ *flag.FlagSet) {}

func (*backupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	loc, _ := e.cfg.Location()
	sched := scheduler.NewScheduler(ctx, loc, e.portfolio, scheduler.NoopCollector{Log: e.log}, e.log)
	res, err := sched.RunBackupNow()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s: %d rows, total %s\n", res.Date, res.Rows, valuation.FormatUSD(res.Total))
	return subcommands.ExitSuccess
}

type overviewCmd struct{}

func (*overviewCmd) Name() string             { return "overview" }
func (*overviewCmd) Synopsis() string         { return "print holdings, unread messages and pending reports" }
func (*overviewCmd) Usage() string            { return "portfolioctl overview\n" }
func (*overviewCmd) SetFlags(_ *flag.FlagSet) {}

func (*overviewCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	res, err := e.portfolio.Current(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	ov, err := service.NewSystemService(e.repo, e.repo, e.repo, e.log).Overview(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading overview: %v\n", err)
		return subcommands.ExitFailure
	}
	printValuation(res)
	fmt.Printf("unread messages: %d\npending reports: %d\n", ov.UnreadMessages, ov.PendingReports)
	return subcommands.ExitSuccess
}

func printValuation(res valuation.Result) {
	for _, it := range res.Items {
		fmt.Printf("%-8s %14s %16s %7s%%\n", it.Symbol, it.Quantity.String(), valuation.FormatUSD(it.Value), it.Percentage.StringFixed(2))
	}
	fmt.Printf("%-8s %14s %16s\n", "TOTAL", "", valuation.FormatUSD(res.TotalValue))
}
