package log

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns the gateway logger. Production writes JSON lines at info level
// for the log collector; other environments get colored console output at
// debug level.
func New(environment string, out io.Writer) zerolog.Logger {
	level := zerolog.DebugLevel
	if environment == "production" {
		level = zerolog.InfoLevel
	} else {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("env", environment).
		Logger()
}

// Quiet is for gracectl, whose stdout belongs to the user: errors only.
func Quiet(out io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: true}).
		Level(zerolog.ErrorLevel).
		With().
		Timestamp().
		Logger()
}
