package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ainoio/ainoship/pkg/ainoship"
)

// sendFlags describe one transaction on the command line.
type sendFlags struct {
	from, to, operation string
	status              string
	flowID, segment     string
	message             string
	payloadType         string
	timestamp           int64
	ids                 []string
	meta                []string
}

func newSendCmd(c *cli) *cobra.Command {
	var f sendFlags

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a single transaction and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := f.transaction(time.Now())
			if err != nil {
				return err
			}

			s, err := c.startAgent(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.agent.Submit(tx); err != nil {
				_ = s.stop()
				return err
			}

			c.log.Info().Str("flow_id", tx.FlowID).Msg("transaction submitted")
			return s.stop()
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.from, "from", "", "originating application")
	flags.StringVar(&f.to, "to", "", "target application")
	flags.StringVar(&f.operation, "operation", "", "operation name")
	flags.StringVar(&f.status, "status", "success", "success, failure or unknown")
	flags.StringVar(&f.flowID, "flow-id", "", "flow ID (generated when empty)")
	flags.StringVar(&f.segment, "segment", "", "integration segment")
	flags.StringVar(&f.message, "message", "", "free-text message")
	flags.StringVar(&f.payloadType, "payload-type", "", "payload type label")
	flags.Int64Var(&f.timestamp, "timestamp", 0, "unix milliseconds (now when zero)")
	flags.StringArrayVar(&f.ids, "id", nil, "ID group as Type=v1,v2 (repeatable)")
	flags.StringArrayVar(&f.meta, "meta", nil, "metadata as name=value (repeatable)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("operation")

	return cmd
}

// transaction builds and validates the transaction described by f.
func (f sendFlags) transaction(now time.Time) (ainoship.Transaction, error) {
	status, err := ainoship.ParseStatus(f.status)
	if err != nil {
		return ainoship.Transaction{}, err
	}

	ts := f.timestamp
	if ts == 0 {
		ts = now.UnixMilli()
	}
	flowID := f.flowID
	if flowID == "" {
		flowID = uuid.NewString()
	}

	tx := ainoship.NewTransaction(f.from, f.to, f.operation, status, ts, flowID, f.segment)
	tx.WithMessage(f.message).WithPayloadType(f.payloadType)

	for _, raw := range f.ids {
		idType, values, ok := strings.Cut(raw, "=")
		if !ok || idType == "" || values == "" {
			return ainoship.Transaction{}, fmt.Errorf("invalid --id %q, want Type=v1,v2", raw)
		}
		tx.AddID(ainoship.NewTransactionID(idType, strings.Split(values, ",")...))
	}
	for _, raw := range f.meta {
		name, value, ok := strings.Cut(raw, "=")
		if !ok || name == "" {
			return ainoship.Transaction{}, fmt.Errorf("invalid --meta %q, want name=value", raw)
		}
		tx.AddMetadata(ainoship.NewTransactionMetadata(name, value))
	}

	if err := tx.Validate(); err != nil {
		return ainoship.Transaction{}, err
	}
	return tx, nil
}
