package ainoship

import "github.com/ainoio/ainoship/internal/app"

// State is the lifecycle state of an Agent.
type State int

const (
	// StateIdle means the agent was created but not started.
	// Submitted transactions are queued.
	StateIdle State = iota

	// StateRunning means the dispatch loop is sending batches.
	StateRunning

	// StateStopping means shutdown was requested and the buffer is draining.
	StateStopping

	// StateStopped means every transaction was handed to the transport.
	StateStopped

	// StateCrashed means the dispatch loop ended without confirming the drain.
	StateCrashed
)

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

func convertState(s app.State) State {
	switch s {
	case app.StateIdle:
		return StateIdle
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateStopped:
		return StateStopped
	default:
		return StateCrashed
	}
}
