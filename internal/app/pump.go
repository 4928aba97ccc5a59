package app

import (
	"context"
	"errors"
	"io"

	"github.com/ainoio/ainoship/internal/domain"
	"github.com/ainoio/ainoship/internal/ports"
)

// Pump reads transactions from src and hands each valid one to submit until
// src is exhausted, ctx is done or submit fails. Invalid transactions are
// logged and skipped. Returns the number of transactions submitted; reaching
// the end of src is not an error.
func Pump(ctx context.Context, src ports.TransactionSource, submit func(domain.Transaction) error, logger ports.Logger) (int, error) {
	submitted := 0
	for {
		tx, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return submitted, nil
			}
			return submitted, err
		}

		if err := tx.Validate(); err != nil {
			logger.Warn("skipping transaction", ports.Err(err))
			continue
		}

		if err := submit(tx); err != nil {
			return submitted, err
		}
		submitted++
	}
}
