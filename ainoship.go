// Package ainoship ships transaction logs to Aino.io from a background
// batching agent.
//
// Example usage:
//
//	cfg := ainoship.DefaultConfig()
//	cfg.APIKey = "your-api-key"
//	agent, err := ainoship.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := agent.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer agent.Stop()
//
//	_ = agent.Submit(ainoship.NewTransaction("crm", "erp", "sync customer",
//	    ainoship.StatusSuccess, time.Now().UnixMilli(), flowID, "customers"))
//
// The full API, including options and event hooks, lives in
// github.com/ainoio/ainoship/pkg/ainoship.
package ainoship

import "github.com/ainoio/ainoship/pkg/ainoship"

type (
	// Agent batches and ships transactions. See pkg/ainoship.Agent.
	Agent = ainoship.Agent

	// Config holds the configuration for an Agent.
	Config = ainoship.Config

	// Option configures optional behavior of an Agent.
	Option = ainoship.Option

	// Transaction is a log entry for one interaction between two applications.
	Transaction = ainoship.Transaction

	// Status is the outcome of a transaction.
	Status = ainoship.Status

	// State is the lifecycle state of an Agent.
	State = ainoship.State
)

// Transaction statuses.
const (
	StatusSuccess = ainoship.StatusSuccess
	StatusFailure = ainoship.StatusFailure
	StatusUnknown = ainoship.StatusUnknown
)

// DefaultURL is the Aino.io transaction API endpoint.
const DefaultURL = ainoship.DefaultURL

// New creates an Agent. See pkg/ainoship.New.
func New(cfg Config, opts ...Option) (*Agent, error) {
	return ainoship.New(cfg, opts...)
}

// DefaultConfig returns a Config with default values.
// APIKey must be set before calling New.
func DefaultConfig() Config {
	return ainoship.DefaultConfig()
}

// NewTransaction constructs a Transaction with the mandatory values.
func NewTransaction(from, to, operation string, status Status, timestamp int64, flowID, integrationSegment string) Transaction {
	return ainoship.NewTransaction(from, to, operation, status, timestamp, flowID, integrationSegment)
}
