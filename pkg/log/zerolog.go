package log

import (
	"github.com/rs/zerolog"

	logAdapter "github.com/ainoio/ainoship/internal/adapters/log"
)

// NewZerologLogger returns a Logger writing through logger.
func NewZerologLogger(logger zerolog.Logger) Logger {
	return logAdapter.NewZerologAdapterWithLogger(logger)
}

// NewConsoleLogger returns a human-readable Logger on stderr at level
// ("debug", "info", "warn", "error"). An unknown level falls back to info.
func NewConsoleLogger(level string) Logger {
	return logAdapter.NewZerologAdapter(level)
}
