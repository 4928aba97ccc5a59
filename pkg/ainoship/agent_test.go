package ainoship_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/ainoio/ainoship/pkg/ainoship"
)

// recordingSender keeps every batch it receives.
type recordingSender struct {
	mu      sync.Mutex
	batches [][]ainoship.Transaction
	block   chan struct{}
	panics  bool
}

func (s *recordingSender) Send(ctx context.Context, batch *ainoship.Batch) error {
	if s.panics {
		panic("transport exploded")
	}
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, append([]ainoship.Transaction(nil), batch.Transactions...))
	return nil
}

func (s *recordingSender) sizes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.batches))
	for i, b := range s.batches {
		out[i] = len(b)
	}
	return out
}

func (s *recordingSender) all() []ainoship.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ainoship.Transaction
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

func newAgent(t *testing.T, sender ainoship.Sender, opts ...ainoship.Option) *ainoship.Agent {
	t.Helper()
	cfg := ainoship.DefaultConfig()
	cfg.SendInterval = time.Hour
	a, err := ainoship.New(cfg, append([]ainoship.Option{ainoship.WithSender(sender)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func tx(producer string, seq int) ainoship.Transaction {
	return ainoship.NewTransaction(producer, "target", "op-"+strconv.Itoa(seq),
		ainoship.StatusSuccess, int64(seq+1), "flow", "segment")
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		cfg    ainoship.Config
		opts   []ainoship.Option
		wantOK bool
	}{
		{"http without api key", ainoship.DefaultConfig(), nil, false},
		{"http with api key", ainoship.Config{APIKey: "k"}, nil, true},
		{"custom sender needs no api key", ainoship.Config{}, []ainoship.Option{ainoship.WithSender(&recordingSender{})}, true},
		{"negative retries", ainoship.Config{APIKey: "k", MaxRetries: -1}, nil, false},
		{"negative interval", ainoship.Config{APIKey: "k", SendInterval: -time.Second}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ainoship.New(tt.cfg, tt.opts...)
			if tt.wantOK && err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if !tt.wantOK && !errors.Is(err, ainoship.ErrInvalidConfig) {
				t.Fatalf("New() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	cfg := ainoship.Config{MaxBatchSize: 10}
	cfg.SetDefaults()

	if cfg.URL != ainoship.DefaultURL {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.MaxBatchSize != 10 {
		t.Errorf("MaxBatchSize = %d, explicit value overwritten", cfg.MaxBatchSize)
	}
	if cfg.SendInterval != ainoship.DefaultSendInterval || cfg.MaxRetries != 0 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestAgent_Lifecycle(t *testing.T) {
	a := newAgent(t, &recordingSender{})

	if a.Status() != ainoship.StateIdle {
		t.Fatalf("Status() = %v, want Idle", a.Status())
	}
	if err := a.Stop(); !errors.Is(err, ainoship.ErrNotStarted) {
		t.Errorf("Stop() before Start = %v, want ErrNotStarted", err)
	}

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := a.Start(); !errors.Is(err, ainoship.ErrAlreadyStarted) {
		t.Errorf("second Start() = %v, want ErrAlreadyStarted", err)
	}
	if a.Status() != ainoship.StateRunning {
		t.Errorf("Status() = %v, want Running", a.Status())
	}

	if err := a.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if a.Status() != ainoship.StateStopped {
		t.Errorf("Status() = %v, want Stopped", a.Status())
	}
	if err := a.Stop(); !errors.Is(err, ainoship.ErrAlreadyStopped) {
		t.Errorf("second Stop() = %v, want ErrAlreadyStopped", err)
	}
	if err := a.Start(); !errors.Is(err, ainoship.ErrAlreadyStarted) {
		t.Errorf("Start() after Stop = %v, want ErrAlreadyStarted", err)
	}
	if err := a.Submit(tx("p", 0)); !errors.Is(err, ainoship.ErrAgentClosed) {
		t.Errorf("Submit() after Stop = %v, want ErrAgentClosed", err)
	}
}

func TestAgent_SubmitBeforeStartIsDelivered(t *testing.T) {
	sender := &recordingSender{}
	a := newAgent(t, sender)

	for i := 0; i < 3; i++ {
		if err := a.Submit(tx("early", i)); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.Start(); err != nil {
		t.Fatal(err)
	}
	if err := a.Stop(); err != nil {
		t.Fatal(err)
	}

	if got := sender.all(); len(got) != 3 {
		t.Errorf("delivered %d, want 3", len(got))
	}
}

func TestAgent_StopDrainsEverything(t *testing.T) {
	sender := &recordingSender{}
	a := newAgent(t, sender)

	for i := 0; i < 1200; i++ {
		_ = a.Submit(tx("p", i))
	}
	if err := a.Start(); err != nil {
		t.Fatal(err)
	}
	if err := a.Stop(); err != nil {
		t.Fatal(err)
	}

	if got := fmt.Sprint(sender.sizes()); got != "[500 500 200]" {
		t.Errorf("batch sizes = %s, want [500 500 200]", got)
	}
	for i, got := range sender.all() {
		if got.Timestamp != int64(i+1) {
			t.Fatalf("transaction %d has timestamp %d, order lost", i, got.Timestamp)
		}
	}
}

func TestAgent_ConcurrentProducers(t *testing.T) {
	sender := &recordingSender{}
	a := newAgent(t, sender)
	if err := a.Start(); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for _, name := range []string{"A", "B"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if err := a.Submit(tx(name, i)); err != nil {
					t.Error(err)
					return
				}
			}
		}(name)
	}
	wg.Wait()

	if err := a.Stop(); err != nil {
		t.Fatal(err)
	}

	got := sender.all()
	if len(got) != 100 {
		t.Fatalf("delivered %d, want 100", len(got))
	}
	last := map[string]int64{}
	for _, r := range got {
		if r.Timestamp <= last[r.From] {
			t.Fatalf("producer %s out of order", r.From)
		}
		last[r.From] = r.Timestamp
	}
}

func TestAgent_ConcurrentProducersBeforeStart(t *testing.T) {
	sender := &recordingSender{}
	a := newAgent(t, sender)

	var wg sync.WaitGroup
	for _, name := range []string{"A", "B"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if err := a.Submit(tx(name, i)); err != nil {
					t.Error(err)
					return
				}
			}
		}(name)
	}
	wg.Wait()

	if err := a.Start(); err != nil {
		t.Fatal(err)
	}
	if err := a.Stop(); err != nil {
		t.Fatal(err)
	}

	if got := fmt.Sprint(sender.sizes()); got != "[100]" {
		t.Errorf("batch sizes = %s, want [100]", got)
	}
	next := map[string]int64{"A": 1, "B": 1}
	for _, r := range sender.all() {
		if r.Timestamp != next[r.From] {
			t.Fatalf("producer %s: timestamp %d, want %d", r.From, r.Timestamp, next[r.From])
		}
		next[r.From]++
	}
}

// reentrantHandler calls back into the agent from state changes.
type reentrantHandler struct {
	ainoship.BaseEventHandler
	agent *ainoship.Agent
	mu    sync.Mutex
	errs  []error
}

func (h *reentrantHandler) OnStateChange(ev ainoship.StateChangeEvent) {
	if ev.Current != ainoship.StateRunning && ev.Current != ainoship.StateStopping {
		return
	}
	err := h.agent.Start()
	_ = h.agent.Status()
	h.mu.Lock()
	h.errs = append(h.errs, err)
	h.mu.Unlock()
}

func TestAgent_HandlerMayCallStart(t *testing.T) {
	handler := &reentrantHandler{}
	a := newAgent(t, &recordingSender{}, ainoship.WithEventHandler(handler))
	handler.agent = a

	done := make(chan error, 1)
	go func() {
		if err := a.Start(); err != nil {
			done <- err
			return
		}
		done <- a.Stop()
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start/Stop deadlocked with a handler calling Start")
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.errs) != 2 {
		t.Fatalf("handler ran %d times, want 2", len(handler.errs))
	}
	for _, err := range handler.errs {
		if !errors.Is(err, ainoship.ErrAlreadyStarted) {
			t.Errorf("Start() from handler = %v, want ErrAlreadyStarted", err)
		}
	}
}

func TestAgent_SubmitCopiesTransaction(t *testing.T) {
	sender := &recordingSender{}
	a := newAgent(t, sender)

	r := tx("p", 0)
	r.AddMetadata(ainoship.NewTransactionMetadata("k", "v"))
	_ = a.Submit(r)
	r.Metadata[0].Value = "changed"

	_ = a.Start()
	_ = a.Stop()

	if got := sender.all()[0].Metadata[0].Value; got != "v" {
		t.Errorf("metadata = %q, caller mutation leaked into the queue", got)
	}
}

func TestAgent_StopContextTimeout(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	events := &eventRecorder{}
	a := newAgent(t, sender, ainoship.WithEventHandler(events))

	_ = a.Submit(tx("p", 0))
	_ = a.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := a.StopContext(ctx)
	if !errors.Is(err, ainoship.ErrShutdownTimeout) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("StopContext() = %v, want ErrShutdownTimeout", err)
	}
	if a.Status() != ainoship.StateStopping {
		t.Errorf("Status() = %v, want Stopping", a.Status())
	}

	close(sender.block)
	waitForState(t, a, ainoship.StateStopped)

	if got := len(sender.all()); got != 1 {
		t.Errorf("delivered %d, want 1", got)
	}
	events.mu.Lock()
	states := fmt.Sprint(events.states)
	events.mu.Unlock()
	if states != "[Running Stopping Stopped]" {
		t.Errorf("states = %s", states)
	}
	if err := a.Stop(); !errors.Is(err, ainoship.ErrAlreadyStopped) {
		t.Errorf("Stop() after drain = %v, want ErrAlreadyStopped", err)
	}
}

func TestAgent_StopAfterTimeoutWaitsForDrain(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	a := newAgent(t, sender)

	_ = a.Submit(tx("p", 0))
	_ = a.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := a.StopContext(ctx); !errors.Is(err, ainoship.ErrShutdownTimeout) {
		t.Fatalf("StopContext() = %v, want ErrShutdownTimeout", err)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(sender.block)
	}()
	if err := a.Stop(); err != nil {
		t.Fatalf("Stop() during drain = %v", err)
	}
	if a.Status() != ainoship.StateStopped {
		t.Errorf("Status() = %v, want Stopped", a.Status())
	}
}

func waitForState(t *testing.T, a *ainoship.Agent, want ainoship.State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for a.Status() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Status() = %v, want %v", a.Status(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestAgent_CrashReportsSignalLost(t *testing.T) {
	cfg := ainoship.DefaultConfig()
	cfg.SendInterval = 5 * time.Millisecond
	a, err := ainoship.New(cfg, ainoship.WithSender(&recordingSender{panics: true}))
	if err != nil {
		t.Fatal(err)
	}

	_ = a.Submit(tx("p", 0))
	_ = a.Start()

	waitForState(t, a, ainoship.StateCrashed)

	if err := a.Stop(); !errors.Is(err, ainoship.ErrSignalLost) {
		t.Errorf("Stop() = %v, want ErrSignalLost", err)
	}
	if err := a.Submit(tx("p", 1)); !errors.Is(err, ainoship.ErrAgentClosed) {
		t.Errorf("Submit() after crash = %v, want ErrAgentClosed", err)
	}
}

func TestAgent_HTTPTransport(t *testing.T) {
	type request struct {
		auth, contentType string
		body              map[string][]map[string]any
	}
	requests := make(chan request, 10)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string][]map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		requests <- request{r.Header.Get("Authorization"), r.Header.Get("Content-Type"), body}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	cfg := ainoship.DefaultConfig()
	cfg.URL = server.URL
	cfg.APIKey = "secret"
	a, err := ainoship.New(cfg, ainoship.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatal(err)
	}

	_ = a.Start()
	_ = a.Submit(ainoship.NewTransaction("app1", "app2", "sync", ainoship.StatusFailure, 1700000000000, "f-1", "seg"))
	if err := a.Stop(); err != nil {
		t.Fatal(err)
	}

	select {
	case req := <-requests:
		if req.auth != "apikey secret" {
			t.Errorf("Authorization = %q", req.auth)
		}
		if req.contentType != "application/json" {
			t.Errorf("Content-Type = %q", req.contentType)
		}
		txs := req.body["transactions"]
		if len(txs) != 1 || txs[0]["from"] != "app1" || txs[0]["status"] != "failure" || txs[0]["flowId"] != "f-1" {
			t.Errorf("body = %v", req.body)
		}
	default:
		t.Fatal("no request received")
	}
}

// eventRecorder counts events.
type eventRecorder struct {
	ainoship.BaseEventHandler
	mu      sync.Mutex
	states  []string
	sent    int
	dropped int
}

func (e *eventRecorder) OnStateChange(ev ainoship.StateChangeEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.states = append(e.states, ev.Current.String())
}

func (e *eventRecorder) OnSendSuccess(ev ainoship.SendSuccessEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sent += ev.Transactions
}

func (e *eventRecorder) OnSendError(ev ainoship.SendErrorEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !ev.WillRetry {
		e.dropped += ev.Transactions
	}
}

func TestAgent_EventsAndMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	events := &eventRecorder{}
	cfg := ainoship.DefaultConfig()
	cfg.URL = server.URL
	cfg.APIKey = "k"
	cfg.SendInterval = time.Hour
	cfg.MaxBatchSize = 2
	a, err := ainoship.New(cfg,
		ainoship.WithHTTPClient(server.Client()),
		ainoship.WithEventHandler(events),
		ainoship.WithMeterProvider(mp),
	)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		_ = a.Submit(tx("p", i))
	}
	_ = a.Start()
	if err := a.Stop(); err != nil {
		t.Fatalf("Stop() = %v, failed sends must not fail the shutdown", err)
	}

	if events.dropped != 3 || events.sent != 0 {
		t.Errorf("dropped = %d, sent = %d; want 3, 0", events.dropped, events.sent)
	}
	if got := fmt.Sprint(events.states); got != "[Running Stopping Stopped]" {
		t.Errorf("states = %s", got)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	var dropped int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "ainoship_transactions_dropped_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				dropped += dp.Value
			}
		}
	}
	if dropped != 3 {
		t.Errorf("ainoship_transactions_dropped_total = %d, want 3", dropped)
	}
}
