package ainoship

import "github.com/ainoio/ainoship/internal/domain"

type (
	// Transaction is a log entry for one interaction between two applications.
	Transaction = domain.Transaction

	// TransactionID groups the ID values of a single ID type.
	TransactionID = domain.TransactionID

	// TransactionMetadata is a name/value pair.
	TransactionMetadata = domain.TransactionMetadata

	// Status is the outcome of a transaction.
	Status = domain.Status

	// Batch is the unit handed to a Sender.
	Batch = domain.Batch
)

// Transaction statuses.
const (
	StatusSuccess = domain.StatusSuccess
	StatusFailure = domain.StatusFailure
	StatusUnknown = domain.StatusUnknown
)

// NewTransaction constructs a Transaction with the mandatory values.
// timestamp is in unix milliseconds.
func NewTransaction(from, to, operation string, status Status, timestamp int64, flowID, integrationSegment string) Transaction {
	return domain.NewTransaction(from, to, operation, status, timestamp, flowID, integrationSegment)
}

// NewTransactionID constructs an ID group.
func NewTransactionID(idType string, values ...string) TransactionID {
	return domain.NewTransactionID(idType, values...)
}

// NewTransactionMetadata constructs a metadata pair.
func NewTransactionMetadata(name, value string) TransactionMetadata {
	return domain.NewTransactionMetadata(name, value)
}

// ParseStatus converts "success", "failure" or "unknown" to a Status.
func ParseStatus(s string) (Status, error) {
	return domain.ParseStatus(s)
}
