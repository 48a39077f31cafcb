// Package logging configures michimem's structured logger.
//
// Hook handlers and the tool server must never write incidental bytes to
// stdout — stdout is reserved for the hook JSON payload and the MCP
// stream — so every log line goes to stderr, human-readable when stderr is
// a terminal and JSON lines otherwise.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Init builds the process-wide logger. Level is controlled by
// MICHIMEM_LOG_LEVEL (default "info").
func Init() zerolog.Logger {
	level := parseLevel(os.Getenv("MICHIMEM_LOG_LEVEL"))
	return zerolog.New(buildWriter(os.Stderr)).Level(level).With().Timestamp().Logger()
}

func buildWriter(f *os.File) io.Writer {
	if isatty.IsTerminal(f.Fd()) {
		return zerolog.ConsoleWriter{Out: f}
	}
	return f
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "trace":
		return zerolog.TraceLevel
	case "info", "":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}
