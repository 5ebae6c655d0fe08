package cmd

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the fnav command line.
func Completion() *complete.Command {
	global := map[string]complete.Predictor{
		"config": predict.Files("*.toml"),
		"v":      predict.Nothing,
	}
	dates := predict.Set{"-1d", "-1w", "-1m", "-1y"}
	ledgers := predict.Files("*.jsonl")
	return &complete.Command{
		Flags: global,
		Sub: map[string]*complete.Command{
			"run": {
				Flags: map[string]complete.Predictor{
					"d":       dates,
					"o":       predict.Dirs("*"),
					"print":   predict.Nothing,
					"narrate": predict.Nothing,
				},
				Args: ledgers,
			},
			"fmt": {
				Flags: map[string]complete.Predictor{"check": predict.Nothing},
				Args:  ledgers,
			},
			"calendar": {
				Flags: map[string]complete.Predictor{"from": dates, "to": dates},
			},
			"actions": {
				Flags: map[string]complete.Predictor{"from": dates, "to": dates},
				Args:  predict.Something,
			},
			"search": {Args: predict.Something},
			"topic": {
				Flags: map[string]complete.Predictor{"raw": predict.Nothing},
				Args:  predict.Set{"ledger", "config", "nav"},
			},
			"help": {Args: predict.Set{"run", "fmt", "calendar", "actions", "search", "topic"}},
		},
	}
}
