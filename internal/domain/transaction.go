package domain

import (
	"encoding/json"
	"fmt"
)

// Transaction is a log entry for a single interaction between two applications.
// Required fields are set by NewTransaction; the optional ID and metadata
// lists only grow through AddID and AddMetadata.
type Transaction struct {
	// From is the name of the originating application
	From string `json:"from"`

	// To is the name of the target application
	To string `json:"to"`

	// Status tells whether the interaction succeeded
	Status Status `json:"status"`

	// Timestamp is when the interaction took place, in unix milliseconds
	Timestamp int64 `json:"timestamp"`

	// Operation names what was done
	Operation string `json:"operation"`

	// IntegrationSegment labels the part of the integration the record belongs to
	IntegrationSegment string `json:"integrationSegment"`

	// FlowID correlates all transactions of one logical flow
	FlowID string `json:"flowId"`

	PayloadType string                `json:"payloadType,omitempty"`
	Message     string                `json:"message,omitempty"`
	IDs         []TransactionID       `json:"ids,omitempty"`
	Metadata    []TransactionMetadata `json:"metadata,omitempty"`
}

// TransactionID groups the ID values of a single ID type.
type TransactionID struct {
	IDType string   `json:"idType"`
	Values []string `json:"values"`
}

// TransactionMetadata is a name/value pair of generic metadata.
type TransactionMetadata struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewTransaction constructs a Transaction with the mandatory values.
func NewTransaction(from, to, operation string, status Status, timestamp int64, flowID, integrationSegment string) Transaction {
	return Transaction{
		From:               from,
		To:                 to,
		Status:             status,
		Timestamp:          timestamp,
		Operation:          operation,
		IntegrationSegment: integrationSegment,
		FlowID:             flowID,
	}
}

// NewTransactionID constructs an ID group.
func NewTransactionID(idType string, values ...string) TransactionID {
	return TransactionID{IDType: idType, Values: values}
}

// NewTransactionMetadata constructs a metadata pair.
func NewTransactionMetadata(name, value string) TransactionMetadata {
	return TransactionMetadata{Name: name, Value: value}
}

// AddID appends an ID group.
func (t *Transaction) AddID(id TransactionID) *Transaction {
	t.IDs = append(t.IDs, id)
	return t
}

// AddMetadata appends a metadata pair.
func (t *Transaction) AddMetadata(m TransactionMetadata) *Transaction {
	t.Metadata = append(t.Metadata, m)
	return t
}

// WithMessage sets the free-text log message.
func (t *Transaction) WithMessage(msg string) *Transaction {
	t.Message = msg
	return t
}

// WithPayloadType sets the payload type label.
func (t *Transaction) WithPayloadType(payloadType string) *Transaction {
	t.PayloadType = payloadType
	return t
}

// Clone returns a deep copy whose slices share no memory with t.
func (t Transaction) Clone() Transaction {
	c := t
	if t.IDs != nil {
		c.IDs = make([]TransactionID, len(t.IDs))
		for i, id := range t.IDs {
			c.IDs[i] = TransactionID{IDType: id.IDType, Values: append([]string(nil), id.Values...)}
		}
	}
	if t.Metadata != nil {
		c.Metadata = append([]TransactionMetadata(nil), t.Metadata...)
	}
	return c
}

// Validate checks that the mandatory fields are present.
func (t Transaction) Validate() error {
	switch {
	case t.From == "":
		return fmt.Errorf("%w: from is required", ErrInvalidTransaction)
	case t.To == "":
		return fmt.Errorf("%w: to is required", ErrInvalidTransaction)
	case t.Operation == "":
		return fmt.Errorf("%w: operation is required", ErrInvalidTransaction)
	case !t.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransaction, t.Status)
	case t.Timestamp <= 0:
		return fmt.Errorf("%w: timestamp must be positive", ErrInvalidTransaction)
	}
	return nil
}

// String renders the transaction as indented JSON.
func (t Transaction) String() string {
	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Sprintf("transaction(%s->%s %s)", t.From, t.To, t.Operation)
	}
	return string(b)
}
