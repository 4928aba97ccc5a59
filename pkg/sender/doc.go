// Package sender provides the transports an ainoship agent can ship
// batches through.
//
// The agent sends over HTTP by default. Use this package to build an
// alternative transport and pass it with ainoship.WithSender:
//
//	s, err := sender.NewKafka(sender.KafkaConfig{
//	    Brokers: "localhost:9092",
//	    Topic:   "aino-transactions",
//	})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	agent, err := ainoship.New(cfg, ainoship.WithSender(s))
//
// The agent never closes a sender it was given; close it after Stop returns.
//
// # Custom Senders
//
// Implement the [Sender] interface to send to other destinations. Return an
// error with a Retryable() bool method reporting false for failures that
// must not be retried.
package sender
