// Package domain contains the core domain entities and value objects for ainoship.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (HTTP, brokers, logging) and
// contains only pure business logic.
//
// # Entities
//
//   - [Transaction]: One logged interaction between two applications
//   - [PendingBuffer]: FIFO of transactions waiting for the next flush
//   - [Batch]: An ordered group of transactions sent in one outbound call
//
// # Design Principles
//
// Domain entities are:
//   - Free of infrastructure dependencies
//   - Focused on business rules and invariants
//   - Testable without mocks or external systems
package domain
