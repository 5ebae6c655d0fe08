package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/fundnav"
	"github.com/etnz/fundnav/agent"
	"github.com/etnz/fundnav/renderer"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

type runCmd struct {
	asOf    string
	output  string
	print   bool
	narrate bool

	// set by tests
	feed   fundnav.PriceFeed
	stdout io.Writer
}

func (*runCmd) Name() string { return "run" }
func (*runCmd) Synopsis() string {
	return "replays ledgers and writes their NAV reports"
}
func (*runCmd) Usage() string {
	return `fnav run [-d <date>] [-o <dir>] [-print] [-narrate] <ledger.jsonl>...

  Replays every ledger from its init record to the as-of date, values each
  day with the closes of the configured feed, and computes the NAV per unit.
  For each ledger, writes <name>.json and <name>.md into the output directory.

  A failing ledger does not stop the others, the command fails at the end.

Usage Examples:
$ fnav run growth.jsonl income.jsonl
$ fnav run -d 2025-06-30 -print growth.jsonl

`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asOf, "d", "", "As-of date of the replay, defaults to today")
	f.StringVar(&c.output, "o", "", "Output directory, defaults to [report] output")
	f.BoolVar(&c.print, "print", false, "Print the markdown report on the terminal")
	f.BoolVar(&c.narrate, "narrate", false, "Ask a model for a commentary of the report")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: no ledger file\n%s", c.Usage())
		return subcommands.ExitUsageError
	}
	config, log, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := c.run(ctx, config, log, f.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// run replays every ledger independently.
func (c *runCmd) run(ctx context.Context, config *Config, log zerolog.Logger, paths []string) error {
	asOf, err := parseDate(c.asOf, fundnav.Today())
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}
	feed := c.feed
	if feed == nil {
		if feed, err = config.NewFeed(log); err != nil {
			return err
		}
	}
	engine, err := fundnav.NewEngine(feed, config.Feed.Benchmark, fundnav.WithLogger(log))
	if err != nil {
		return err
	}
	output := c.output
	if output == "" {
		output = config.Report.Output
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}

	failed := 0
	for _, path := range paths {
		if err := c.replay(ctx, engine, config, log, path, asOf, output); err != nil {
			log.Error().Err(err).Str("file", path).Msg("replay failed")
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d ledgers failed", failed, len(paths))
	}
	return nil
}

func (c *runCmd) replay(ctx context.Context, engine *fundnav.Engine, config *Config, log zerolog.Logger, path string, asOf fundnav.Date, output string) error {
	ledger, err := fundnav.LoadLedger(path)
	if err != nil {
		return err
	}
	if config.Currency != "" && ledger.Currency() != config.Currency {
		return &fundnav.Error{Kind: fundnav.ErrConfiguration, Err: fmt.Errorf("ledger %q is in %s, the configuration requires %s", ledger.Name(), ledger.Currency(), config.Currency)}
	}
	result, err := engine.Replay(ctx, ledger, asOf)
	if err != nil {
		return err
	}
	report := fundnav.NewReport(result)

	if c.narrate || config.Report.Narrate {
		comment, err := narrate(ctx, report, config.Report.Model)
		if err != nil {
			log.Warn().Err(err).Str("ledger", ledger.Name()).Msg("no commentary")
		}
		report.Commentary = comment
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(output, ledger.Name()+".json"), append(data, '\n'), 0o644); err != nil {
		return err
	}
	doc := renderer.ReportMarkdown(report)
	if err := os.WriteFile(filepath.Join(output, ledger.Name()+".md"), []byte(doc), 0o644); err != nil {
		return err
	}
	log.Info().Str("ledger", ledger.Name()).Str("output", output).Msg("report written")

	if c.print {
		out, err := glamour.Render(doc, "dark")
		if err != nil {
			return fmt.Errorf("cannot render report: %w", err)
		}
		w := c.stdout
		if w == nil {
			w = os.Stdout
		}
		fmt.Fprint(w, out)
	}
	return nil
}

// narrate asks the model for a commentary. The client reads its API key from
// GEMINI_API_KEY or GOOGLE_API_KEY.
func narrate(ctx context.Context, report *fundnav.Report, model string) (string, error) {
	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		return "", errors.New("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("cannot create genai client: %w", err)
	}
	return agent.Comment(ctx, client, report, model)
}

// parseDate parses a date flag, empty means def.
func parseDate(s string, def fundnav.Date) (fundnav.Date, error) {
	if s == "" {
		return def, nil
	}
	d, err := fundnav.ParseDate(s)
	if err != nil {
		return fundnav.Date{}, &fundnav.Error{Kind: fundnav.ErrConfiguration, Err: err}
	}
	return d, nil
}
