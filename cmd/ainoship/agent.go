package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ainoio/ainoship/internal/cliconfig"
	"github.com/ainoio/ainoship/internal/ports"
	"github.com/ainoio/ainoship/internal/telemetry"
	"github.com/ainoio/ainoship/pkg/ainoship"
	"github.com/ainoio/ainoship/pkg/log"
	"github.com/ainoio/ainoship/pkg/sender"
)

// session is a started agent together with the resources it owns.
type session struct {
	agent   *ainoship.Agent
	timeout time.Duration
	closers []func(context.Context) error
}

func (c *cli) startAgent(ctx context.Context) (*session, error) {
	logger := log.NewZerologLogger(c.log)
	s := &session{timeout: c.cfg.ShutdownTimeout}

	mp, shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:       c.cfg.OTLPEndpoint,
		ServiceName:    "ainoship",
		ServiceVersion: getVersion(),
	})
	if err != nil {
		return nil, fmt.Errorf("setup telemetry: %w", err)
	}
	s.closers = append(s.closers, shutdown)

	opts := []ainoship.Option{
		ainoship.WithLogger(logger),
		ainoship.WithMeterProvider(mp),
	}

	transport, err := newSender(c.cfg, logger)
	if err != nil {
		_ = s.close()
		return nil, err
	}
	if transport != nil {
		opts = append(opts, ainoship.WithSender(transport))
		s.closers = append(s.closers, func(context.Context) error { return transport.Close() })
	}

	agent, err := ainoship.New(ainoship.Config{
		URL:          c.cfg.URL,
		APIKey:       c.cfg.APIKey,
		SendInterval: c.cfg.SendInterval,
		MaxBatchSize: c.cfg.MaxBatchSize,
		SendTimeout:  c.cfg.SendTimeout,
		MaxRetries:   c.cfg.MaxRetries,
	}, opts...)
	if err != nil {
		_ = s.close()
		return nil, fmt.Errorf("create agent: %w", err)
	}
	if err := agent.Start(); err != nil {
		_ = s.close()
		return nil, fmt.Errorf("start agent: %w", err)
	}

	s.agent = agent
	return s, nil
}

// stop flushes the agent within the shutdown timeout and releases the
// transport and telemetry.
func (s *session) stop() error {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	err := s.agent.StopContext(ctx)
	if err != nil {
		err = fmt.Errorf("stop agent: %w", err)
	}
	return errors.Join(err, s.close())
}

func (s *session) close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i](context.Background()))
	}
	return errors.Join(errs...)
}

// newSender builds the configured non-HTTP transport. It returns a nil
// sender for HTTP, which the agent provides itself.
func newSender(cfg cliconfig.Config, logger ports.Logger) (sender.SenderCloser, error) {
	switch cfg.Transport {
	case cliconfig.TransportKafka:
		s, err := sender.NewKafka(sender.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create kafka sender: %w", err)
		}
		return s, nil
	case cliconfig.TransportRedis:
		s, err := sender.NewRedis(sender.RedisConfig{
			URL:    cfg.RedisURL,
			Key:    cfg.RedisKey,
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis sender: %w", err)
		}
		return s, nil
	default:
		return nil, nil
	}
}
