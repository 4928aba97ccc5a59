package ainoship

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	httpAdapter "github.com/ainoio/ainoship/internal/adapters/http"
	logAdapter "github.com/ainoio/ainoship/internal/adapters/log"
	otelAdapter "github.com/ainoio/ainoship/internal/adapters/otel"
	"github.com/ainoio/ainoship/internal/app"
	"github.com/ainoio/ainoship/internal/ports"
)

// Agent batches submitted transactions and ships them from one background
// goroutine. Use New to create an instance, Submit from any goroutine, and
// Stop to flush everything before the process exits.
type Agent struct {
	config     Config
	lifecycle  *app.Lifecycle
	queue      *app.SubmissionQueue
	dispatcher *app.Dispatcher
	logger     ports.Logger

	// mu guards started.
	mu      sync.Mutex
	started bool

	// drained is set when the dispatch loop returned after flushing.
	drained atomic.Bool
}

// New creates an Agent in StateIdle. The submission queue exists from this
// point on, so transactions submitted before Start are kept and sent once
// the agent runs.
func New(cfg Config, opts ...Option) (*Agent, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = logAdapter.NewNoopLogger()
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}
	if o.meterProvider != nil {
		metrics, err := otelAdapter.NewMetricsEmitter(o.meterProvider.Meter(otelAdapter.MeterName))
		if err != nil {
			return nil, fmt.Errorf("create metrics: %w", err)
		}
		emitter.metrics = metrics
	}

	sender := o.sender
	if sender == nil {
		if cfg.URL == "" {
			return nil, fmt.Errorf("%w: url is required", ErrInvalidConfig)
		}
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: api key is required", ErrInvalidConfig)
		}
		client := o.httpClient
		if client == nil {
			client = httpAdapter.NewClient(cfg.SendTimeout)
		}
		sender = httpAdapter.NewBatchSender(client, logger, ports.SendMetadata{
			Hostname: hostname(),
			OSArch:   runtime.GOOS + "/" + runtime.GOARCH,
			APIKey:   cfg.APIKey,
			URL:      cfg.URL,
		})
	}

	queue := app.NewSubmissionQueue()

	return &Agent{
		config:     cfg,
		lifecycle:  app.NewLifecycle(logger, emitter),
		queue:      queue,
		dispatcher: app.NewDispatcher(cfg.dispatcherConfig(), queue, sender, logger, emitter),
		logger:     logger,
	}, nil
}

// Start spawns the dispatch loop and returns immediately.
// Only the first call succeeds; later calls return ErrAlreadyStarted.
func (a *Agent) Start() error {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return ErrAlreadyStarted
	}
	a.started = true
	a.mu.Unlock()

	// The worker is counted before Running is visible so a concurrent Stop
	// always has something to wait for. Handlers run inside TransitionTo,
	// so a.mu must not be held here.
	a.lifecycle.AddWorker()
	if err := a.lifecycle.TransitionTo(app.StateRunning, "Start() called"); err != nil {
		a.lifecycle.WorkerDone()
		return err
	}
	go a.run()

	return nil
}

func (a *Agent) run() {
	defer a.lifecycle.WorkerDone()
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("dispatch loop panicked", ports.Any("panic", r))
			a.crash(fmt.Sprintf("panic: %v", r))
		}
	}()

	if err := a.dispatcher.Run(context.Background()); err != nil {
		a.logger.Error("dispatch loop failed", ports.Err(err))
		a.crash(err.Error())
		return
	}
	a.drained.Store(true)
	if err := a.lifecycle.TransitionTo(app.StateStopped, "drain complete"); err != nil {
		a.logger.Warn("could not mark agent stopped", ports.Err(err))
	}
}

// crash closes the queue so producers see ErrAgentClosed instead of
// filling a buffer nobody reads.
func (a *Agent) crash(reason string) {
	a.queue.Close()
	_ = a.lifecycle.TransitionTo(app.StateCrashed, reason)
}

// Submit queues a copy of tx for delivery. It never blocks and never
// rejects for size. Returns ErrAgentClosed once shutdown has been requested.
func (a *Agent) Submit(tx Transaction) error {
	return a.queue.Enqueue(tx.Clone())
}

// Stop requests shutdown and blocks until every queued transaction has been
// handed to the transport.
func (a *Agent) Stop() error {
	return a.StopContext(context.Background())
}

// StopContext is Stop with a deadline. If ctx ends first the returned error
// wraps ErrShutdownTimeout and the context error; the drain continues in
// the background and the agent moves to StateStopped on its own once it
// finishes. A later Stop waits for the drain again, or returns
// ErrAlreadyStopped if it has already completed.
func (a *Agent) StopContext(ctx context.Context) error {
	err := a.lifecycle.TransitionTo(app.StateStopping, "Stop() called")
	switch {
	case err == nil:
		// Only the caller that won Running -> Stopping closes the queue.
		_ = a.queue.RequestShutdown()
	case errors.Is(err, app.ErrStopInProgress):
	default:
		return err
	}

	if err := a.lifecycle.Wait(ctx); err != nil {
		return err
	}
	if !a.drained.Load() {
		return ErrSignalLost
	}

	// The dispatch goroutine normally made this transition already.
	_ = a.lifecycle.TransitionTo(app.StateStopped, "drain complete")
	return nil
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (a *Agent) Status() State {
	return convertState(a.lifecycle.State())
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
