package domain

// DefaultMaxBatchSize is the largest number of transactions sent in one call.
const DefaultMaxBatchSize = 500

// Batch is an ordered group of transactions sent together in one outbound call.
// It exists only for the duration of that call.
type Batch struct {
	// ID identifies the batch in logs and transport headers
	ID string

	// Transactions in arrival order
	Transactions []Transaction
}

// BatchPayload is the wire body of a batch.
type BatchPayload struct {
	Transactions []Transaction `json:"transactions"`
}

// Size returns the number of transactions in the batch.
func (b *Batch) Size() int {
	return len(b.Transactions)
}

// Empty returns true if the batch has no transactions.
func (b *Batch) Empty() bool {
	return len(b.Transactions) == 0
}

// Payload returns the serialisable body for the batch.
func (b *Batch) Payload() BatchPayload {
	txs := b.Transactions
	if txs == nil {
		txs = []Transaction{}
	}
	return BatchPayload{Transactions: txs}
}
