// Package logger provides a configurable logger shared by the solvency
// protocol components.
//
// The root logger uses github.com/rs/zerolog with a console writer. The
// SOLVENCY_LOG_LEVEL environment variable overrides the default (info)
// level; tests run with a no-op logger unless it is set explicitly.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	logger = zerolog.New(output).With().Timestamp().Logger().Level(zerolog.InfoLevel)

	if lvl := os.Getenv("SOLVENCY_LOG_LEVEL"); lvl != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(lvl)); err == nil {
			logger = logger.Level(parsed)
		}
	} else if strings.HasSuffix(os.Args[0], ".test") {
		logger = zerolog.Nop()
	}
}

// SetOutput changes the output of the global logger
func SetOutput(w io.Writer) {
	logger = logger.Output(w)
}

// Set allows a user to override the global logger
func Set(l zerolog.Logger) {
	logger = l
}

// Disable disables logging
func Disable() {
	logger = zerolog.Nop()
}

// Logger returns the global logger
func Logger() zerolog.Logger {
	return logger
}

// With returns a sublogger tagged with the component name
func With(component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}
