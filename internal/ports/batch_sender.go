package ports

import (
	"context"

	"github.com/ainoio/ainoship/internal/domain"
)

// BatchSender transmits a batch of transactions to the ingestion service.
// Implementations handle serialization, transport and authentication.
type BatchSender interface {
	// Send transmits a batch. Returns nil on success.
	// The dispatcher does not retry unless configured to; an error whose
	// Retryable method reports false is never retried.
	Send(ctx context.Context, batch *domain.Batch) error
}

// SendMetadata provides context for the send operation.
// Transports include it in headers or message attributes.
type SendMetadata struct {
	// Hostname is the agent's hostname
	Hostname string

	// OSArch is the operating system and architecture (e.g., "linux/amd64")
	OSArch string

	// APIKey is the ingestion API key
	APIKey string

	// URL is the ingestion endpoint
	URL string
}
