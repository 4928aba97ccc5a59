package log

import logAdapter "github.com/ainoio/ainoship/internal/adapters/log"

// NewNoopLogger returns a Logger that discards everything.
func NewNoopLogger() Logger {
	return logAdapter.NewNoopLogger()
}
