// Package logging builds the process-wide zerolog logger.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger. Supported levels are "trace" | "debug" |
// "info" | "warn" | "error"; formats are "json" | "console". Unknown values
// fall back to info/json.
func New(level, format string) *zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if strings.ToLower(format) == "console" {
		out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		logger = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
	}
	return &logger
}
