package cmd

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger creates a console logger with the specified level.
func NewLogger(level string, w io.Writer) zerolog.Logger {
	var lvl zerolog.Level
	switch level {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	default:
		lvl = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
