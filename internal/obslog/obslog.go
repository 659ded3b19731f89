// Package obslog wires structured logging for the pricing engine using
// zerolog, the same library and call shape the teacher repo's cmd/server
// binary and optimization package use.
package obslog

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	// Level is a zerolog level name: "debug", "info", "warn", "error".
	Level string
	// Pretty enables human-readable console output instead of JSON.
	Pretty bool
}

// New builds a zerolog.Logger from Config. An unrecognized Level falls back
// to info rather than failing the caller — logging setup must never be the
// reason a pricing call cannot start.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var writer = os.Stderr
	logger := zerolog.New(writer).With().Timestamp().Logger().Level(level)

	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger().Level(level)
	}

	return logger
}
