package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/fundnav/docs"
	"github.com/google/subcommands"
)

type topicCmd struct {
	raw bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "prints documentation topics" }
func (*topicCmd) Usage() string {
	return `fnav topic [-raw] [<topic>...]

  Prints documentation topics, the list of topics without argument.
  Use '*' to print all of them.

`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "Print the markdown source")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{"readme"}
	}
	content, err := docs.GetTopics(topics...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if !c.raw {
		if content, err = glamour.Render(content, "dark"); err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering topics: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	fmt.Print(content)
	return subcommands.ExitSuccess
}
