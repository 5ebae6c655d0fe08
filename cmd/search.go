package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"
)

type searchCmd struct{}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "searches securities on EODHD" }
func (*searchCmd) Usage() string {
	return `fnav search <term>...

  Searches securities by name, ticker or ISIN and prints the tickers to use
  in ledger files.

Usage Examples:
$ fnav search apple

`
}

func (*searchCmd) SetFlags(f *flag.FlagSet) {}

func (*searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: a search term is required\n")
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
	results, err := config.eodhd(log).Search(ctx, strings.Join(f.Args(), " "))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error searching: %v\n", err)
		return subcommands.ExitFailure
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TICKER\tNAME\tTYPE\tCURRENCY\tISIN")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Ticker(), r.Name, r.Type, r.Currency, r.ISIN)
	}
	w.Flush()
	return subcommands.ExitSuccess
}
