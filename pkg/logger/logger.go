// Package logger builds the zerolog logger shared by every layer of the
// chat service. JSON output by default; a console writer in development.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Init configures global zerolog settings and returns the root logger.
// level accepts trace, debug, info, warn, error; anything else falls back
// to info. Child loggers are derived from the returned value with .With().
func Init(level string, pretty bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl := parseLevel(level)
	zerolog.SetGlobalLevel(lvl)

	out := zerolog.New(os.Stdout)
	if pretty {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return out.Level(lvl).With().Timestamp().Caller().Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
