package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/fundnav"
	"github.com/google/subcommands"
)

type fmtCmd struct {
	check bool
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats ledger files into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `fnav fmt [-check] <ledger.jsonl>...

  Validates and formats ledger files. This command reads all records,
  validates them, sorts them by date, and writes them back in a canonical
  JSONL format.

  With -check, files are not written, the command fails if one of them is
  not in canonical form.

Usage Examples:
$ fnav fmt growth.jsonl

`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.check, "check", false, "Only check that files are formatted")
}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Warning: no ledgers found to format.\n")
		return subcommands.ExitSuccess
	}
	status := subcommands.ExitSuccess
	for _, path := range f.Args() {
		changed, err := format(path, !c.check)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting ledger %q: %v\n", path, err)
			status = subcommands.ExitFailure
			continue
		}
		if changed && c.check {
			fmt.Fprintf(os.Stderr, "%s is not formatted\n", path)
			status = subcommands.ExitFailure
		}
	}
	return status
}

// format loads a ledger file and tells whether its canonical form differs.
// When write is set the canonical form replaces the file.
func format(path string, write bool) (changed bool, err error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	ledger, err := fundnav.DecodeLedger(bytes.NewReader(original))
	if err != nil {
		return false, err
	}
	var buf bytes.Buffer
	if err := fundnav.EncodeLedger(&buf, ledger); err != nil {
		return false, err
	}
	changed = !bytes.Equal(original, buf.Bytes())
	if changed && write {
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return changed, err
		}
	}
	return changed, nil
}
