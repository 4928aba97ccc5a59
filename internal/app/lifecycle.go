package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ainoio/ainoship/internal/domain"
	"github.com/ainoio/ainoship/internal/ports"
)

// State represents the lifecycle state of the agent.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateStopped
	StateCrashed
)

// ErrStopInProgress is returned by TransitionTo while a stop is underway.
// Callers that want to stop the agent should wait instead of failing.
var ErrStopInProgress = errors.New("ainoship: stop in progress")

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateStopped || s == StateCrashed
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle guards the agent state machine and tracks its workers.
//
//	Idle -> Running -> Stopping -> Stopped
//	           \           \
//	            +-> Crashed <+
type Lifecycle struct {
	mu           sync.RWMutex
	state        State
	wg           sync.WaitGroup
	logger       ports.Logger
	eventEmitter EventEmitter
}

// NewLifecycle creates a new lifecycle manager in StateIdle.
func NewLifecycle(logger ports.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		state:        StateIdle,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo attempts to transition to a new state.
// An invalid transition leaves the state unchanged and returns the error
// that describes the current state.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state

	if !validTransition(oldState, newState) {
		l.mu.Unlock()
		return transitionError(oldState)
	}

	l.state = newState
	l.mu.Unlock()

	// Emit event outside of lock
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	l.logger.Info("state transition",
		ports.String("from", oldState.String()),
		ports.String("to", newState.String()),
		ports.String("reason", reason),
	)

	return nil
}

func validTransition(from, to State) bool {
	switch from {
	case StateIdle:
		return to == StateRunning
	case StateRunning:
		return to == StateStopping || to == StateCrashed
	case StateStopping:
		return to == StateStopped || to == StateCrashed
	}
	return false
}

func transitionError(current State) error {
	switch current {
	case StateIdle:
		return domain.ErrNotStarted
	case StateRunning:
		return domain.ErrAlreadyStarted
	case StateStopping:
		return ErrStopInProgress
	case StateStopped:
		return domain.ErrAlreadyStopped
	default:
		return domain.ErrSignalLost
	}
}

// AddWorker increments the worker count.
func (l *Lifecycle) AddWorker() {
	l.wg.Add(1)
}

// WorkerDone decrements the worker count.
func (l *Lifecycle) WorkerDone() {
	l.wg.Done()
}

// Wait blocks until all workers have finished or ctx is done.
// Returns an error wrapping ErrShutdownTimeout and the context error if ctx
// ends first; the workers keep running.
func (l *Lifecycle) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		l.logger.Warn("gave up waiting for drain", ports.Err(ctx.Err()))
		return fmt.Errorf("%w: %w", domain.ErrShutdownTimeout, ctx.Err())
	}
}
