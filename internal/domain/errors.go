package domain

import "errors"

// Domain errors represent error conditions in the ainoship domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyStarted is returned when Start() is called a second time.
	ErrAlreadyStarted = errors.New("ainoship: agent already started")

	// ErrNotStarted is returned when Stop() is called before Start().
	ErrNotStarted = errors.New("ainoship: agent not started")

	// ErrAlreadyStopped is returned when Stop() is called after the agent stopped.
	ErrAlreadyStopped = errors.New("ainoship: agent already stopped")

	// ErrSignalLost is returned when the dispatch loop exited without
	// confirming that the pending buffer was drained.
	ErrSignalLost = errors.New("ainoship: shutdown signal lost")

	// ErrAgentClosed is returned by Submit() once shutdown has been requested.
	ErrAgentClosed = errors.New("ainoship: agent closed")

	// ErrShutdownTimeout is returned when the caller's deadline expires while
	// waiting for the drain to finish.
	ErrShutdownTimeout = errors.New("ainoship: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("ainoship: invalid configuration")

	// ErrInvalidTransaction is returned by Transaction.Validate.
	ErrInvalidTransaction = errors.New("ainoship: invalid transaction")
)
