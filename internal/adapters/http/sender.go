package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ainoio/ainoship/internal/domain"
	"github.com/ainoio/ainoship/internal/ports"
)

// maxErrorBody caps how much of a failed response is kept in StatusError.
const maxErrorBody = 4 << 10

// BatchSender implements ports.BatchSender by POSTing the batch as JSON.
type BatchSender struct {
	client   ports.HTTPClient
	logger   ports.Logger
	metadata ports.SendMetadata
}

// NewBatchSender creates a new HTTP batch sender for metadata.URL.
func NewBatchSender(client ports.HTTPClient, logger ports.Logger, metadata ports.SendMetadata) *BatchSender {
	return &BatchSender{
		client:   client,
		logger:   logger,
		metadata: metadata,
	}
}

// Send transmits a batch to the ingestion endpoint.
func (s *BatchSender) Send(ctx context.Context, batch *domain.Batch) error {
	if batch.Empty() {
		return nil
	}

	body, err := json.Marshal(batch.Payload())
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.metadata.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "apikey "+s.metadata.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Aino-Batch-Id", batch.ID)
	if s.metadata.Hostname != "" {
		req.Header.Set("X-Agent-Hostname", s.metadata.Hostname)
	}
	if s.metadata.OSArch != "" {
		req.Header.Set("X-Agent-OSArch", s.metadata.OSArch)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	s.logger.Debug("batch accepted",
		ports.String("batch_id", batch.ID),
		ports.Int("status", resp.StatusCode),
		ports.Int("bytes", len(body)),
	)
	return nil
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
}

// Retryable reports whether the request may succeed if repeated. Client
// errors are permanent except for timeouts and rate limiting.
func (e *StatusError) Retryable() bool {
	switch {
	case e.Code == http.StatusRequestTimeout, e.Code == http.StatusTooManyRequests:
		return true
	case e.Code >= 400 && e.Code < 500:
		return false
	}
	return true
}
