package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvLogLevel enables launcher diagnostics on stderr.
const EnvLogLevel = "OTTER_LOG_LEVEL"

// Setup returns a console logger at the requested level. An empty or
// unrecognised level yields a disabled logger so bootstrap output stays clean.
func Setup(w io.Writer, raw string) zerolog.Logger {
	level, ok := parseLevel(raw)
	if !ok {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Str("app", "otter-launcher").
		Logger()
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug", "1", "true":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	default:
		return zerolog.NoLevel, false
	}
}
