package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/fundnav"
	"github.com/google/subcommands"
)

type calendarCmd struct {
	from string
	to   string
}

func (*calendarCmd) Name() string { return "calendar" }
func (*calendarCmd) Synopsis() string {
	return "prints the trading calendar of the benchmark"
}
func (*calendarCmd) Usage() string {
	return `fnav calendar -from <date> [-to <date>]

  Prints every day of the range, marking the trading days of the configured
  benchmark. It fails if the benchmark has a gap at the range boundaries.

Usage Examples:
$ fnav calendar -from -1m

`
}

func (c *calendarCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First day of the calendar")
	f.StringVar(&c.to, "to", "", "Last day of the calendar, defaults to today")
}

func (c *calendarCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" {
		fmt.Fprintf(os.Stderr, "Error: -from is required\n")
		return subcommands.ExitUsageError
	}
	config, log, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	feed, err := config.NewFeed(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := c.print(ctx, feed, config.Feed.Benchmark, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *calendarCmd) print(ctx context.Context, feed fundnav.PriceFeed, benchmark string, w io.Writer) error {
	from, err := parseDate(c.from, fundnav.Date{})
	if err != nil {
		return err
	}
	to, err := parseDate(c.to, fundnav.Today())
	if err != nil {
		return err
	}
	rng := fundnav.NewRange(from, to)
	days, err := feed.TradingDays(ctx, benchmark, fundnav.BenchmarkRange(rng))
	if err != nil {
		return err
	}
	cal, err := fundnav.NewCalendar(rng, days)
	if err != nil {
		return err
	}
	for _, d := range cal.Days() {
		mark := "-"
		if cal.IsTradingDay(d) {
			mark = "trading"
		}
		fmt.Fprintf(w, "%s %s %s\n", d, d.Weekday().String()[:3], mark)
	}
	return nil
}
