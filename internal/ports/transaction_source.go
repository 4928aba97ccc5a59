package ports

import (
	"context"

	"github.com/ainoio/ainoship/internal/domain"
)

// TransactionSource yields transactions from an external stream such as a
// file or stdin. The CLI pumps a source into an agent.
type TransactionSource interface {
	// Next returns the next transaction. Returns io.EOF when the source is
	// exhausted and will not produce more.
	Next(ctx context.Context) (domain.Transaction, error)

	// Close releases all resources held by the source.
	Close() error
}
