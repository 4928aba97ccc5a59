// Package ports defines the interfaces that connect the application layer to
// infrastructure adapters.
//
// # Port Interfaces
//
//   - [BatchSender]: Sends batches of transactions to the ingestion service
//   - [TransactionSource]: Streams transactions from files or stdin
//   - [Logger]: Structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// The application layer (internal/app) depends only on these interfaces.
// Adapters under internal/adapters implement them over HTTP, Kafka, Redis,
// the file system and zerolog.
package ports
