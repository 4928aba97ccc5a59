package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ainoio/ainoship/internal/adapters/fs"
	"github.com/ainoio/ainoship/internal/app"
	"github.com/ainoio/ainoship/internal/ports"
	"github.com/ainoio/ainoship/pkg/log"
)

func newRunCmd(c *cli) *cobra.Command {
	var (
		input  string
		follow bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Stream newline-delimited JSON transactions until EOF or a signal",
		Long: `Reads one JSON transaction per line from stdin (or --input) and submits it.
Invalid lines are logged and skipped. On EOF, SIGINT or SIGTERM every buffered
transaction is flushed before exiting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger := log.NewZerologLogger(c.log)

			src, err := openSource(input, follow, logger)
			if err != nil {
				return err
			}
			defer src.Close()

			s, err := c.startAgent(ctx)
			if err != nil {
				return err
			}

			type result struct {
				n   int
				err error
			}
			done := make(chan result, 1)
			go func() {
				n, err := app.Pump(ctx, src, s.agent.Submit, logger)
				done <- result{n, err}
			}()

			select {
			case <-ctx.Done():
				c.log.Info().Msg("received signal, stopping...")
			case r := <-done:
				if r.err != nil && !errors.Is(r.err, context.Canceled) {
					c.log.Error().Err(r.err).Int("submitted", r.n).Msg("input stopped")
				} else {
					c.log.Info().Int("submitted", r.n).Msg("input finished")
				}
			}

			return s.stop()
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "NDJSON file to read, - for stdin")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep reading as the file grows (ignored for stdin)")

	return cmd
}

func openSource(input string, follow bool, logger ports.Logger) (ports.TransactionSource, error) {
	if input == "" || input == "-" {
		return fs.NewJSONLSource(os.Stdin, logger), nil
	}
	src, err := fs.OpenJSONLFile(input, follow, logger)
	if err != nil {
		return nil, err
	}
	return src, nil
}
