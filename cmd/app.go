// Package cmd implements the fnav CLI application.
package cmd

import (
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&runCmd{}, "reports")
	c.Register(&calendarCmd{}, "reports")

	c.Register(&fmtCmd{}, "ledgers")
	c.Register(&actionsCmd{}, "ledgers")
	c.Register(&searchCmd{}, "ledgers")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "fnav.toml", "Path to the configuration file (TOML)")
var verbose = flag.Bool("v", false, "Log debug messages")

// loadConfig loads the application configuration and creates its logger.
func loadConfig() (*Config, zerolog.Logger, error) {
	config, err := LoadConfig(*configFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	level := config.Logging.Level
	if *verbose {
		level = "debug"
	}
	return config, NewLogger(level, os.Stderr), nil
}
