package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/fundnav"
	"github.com/google/subcommands"
)

type actionsCmd struct {
	from string
	to   string
}

func (*actionsCmd) Name() string { return "actions" }
func (*actionsCmd) Synopsis() string {
	return "prints dividends and splits of securities as ledger records"
}
func (*actionsCmd) Usage() string {
	return `fnav actions -from <date> [-to <date>] <ticker>...

  Fetches dividends and splits from EODHD and prints them as ledger records,
  ready to be appended to a ledger file and formatted with fnav fmt.
  Dividends are printed without tax, and their cum date is the weekday
  before the ex date: review them before use.

Usage Examples:
$ fnav actions -from 2024-01-01 AAPL.US >> growth.jsonl

`
}

func (c *actionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First ex date")
	f.StringVar(&c.to, "to", "", "Last ex date, defaults to today")
}

func (c *actionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" || f.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: -from and at least one ticker are required\n")
		return subcommands.ExitUsageError
	}
	from, err := parseDate(c.from, fundnav.Date{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	to, err := parseDate(c.to, fundnav.Today())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	config, log, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if config.Feed.APIKey == "" {
		fmt.Fprintf(os.Stderr, "Error: eodhd requires an API key, set [feed] api_key or FNAV_EODHD_API_KEY\n")
		return subcommands.ExitFailure
	}
	feed := config.eodhd(log)

	ledger := fundnav.NewLedger()
	for _, ticker := range f.Args() {
		actions, err := feed.Actions(ctx, ticker, fundnav.NewRange(from, to))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching actions of %s: %v\n", ticker, err)
			return subcommands.ExitFailure
		}
		for _, a := range actions {
			if err := ledger.Append(a); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return subcommands.ExitFailure
			}
		}
	}
	if err := fundnav.EncodeLedger(os.Stdout, ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
