// Package ainoship provides an embeddable agent that ships transaction logs
// to Aino.io.
//
// Producers call [Agent.Submit] from any goroutine. A single background
// goroutine buffers the transactions and sends them in batches of at most
// [Config.MaxBatchSize] once [Config.SendInterval] has elapsed, or sooner when
// the buffer grows past the batch size. [Agent.Stop] blocks until everything
// submitted before it has been handed to the transport.
//
// # Basic Usage
//
//	cfg := ainoship.DefaultConfig()
//	cfg.APIKey = "your-api-key"
//
//	agent, err := ainoship.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := agent.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
//	tx := ainoship.NewTransaction("orders", "billing", "create invoice",
//	    ainoship.StatusSuccess, time.Now().UnixMilli(), flowID, "invoicing")
//	_ = agent.Submit(tx)
//
//	if err := agent.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Delivery
//
// Delivery is at most once. A batch the transport rejects is logged,
// reported through [EventHandler.OnSendError] and dropped, unless
// [Config.MaxRetries] allows further attempts. Nothing is persisted.
//
// # Transports
//
// The default transport POSTs {"transactions": [...]} to [Config.URL] with
// the header "Authorization: apikey <key>". Use [WithSender] to plug in a
// different [Sender].
//
// # Lifecycle States
//
// An Agent moves through [StateIdle], [StateRunning], [StateStopping] and
// [StateStopped]. [StateCrashed] means the dispatch loop ended without
// confirming the drain; Stop then returns [ErrSignalLost].
package ainoship
