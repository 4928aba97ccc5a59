package ainoship

import "github.com/ainoio/ainoship/internal/domain"

// Errors returned by the agent. Check them with errors.Is.
var (
	ErrAlreadyStarted     = domain.ErrAlreadyStarted
	ErrNotStarted         = domain.ErrNotStarted
	ErrAlreadyStopped     = domain.ErrAlreadyStopped
	ErrSignalLost         = domain.ErrSignalLost
	ErrAgentClosed        = domain.ErrAgentClosed
	ErrShutdownTimeout    = domain.ErrShutdownTimeout
	ErrInvalidConfig      = domain.ErrInvalidConfig
	ErrInvalidTransaction = domain.ErrInvalidTransaction
)
