// Package collab holds HTTP clients for the external collaborators: the AI
// service (question source, answer feedback, nonverbal feedback) and the
// interview persistence API.
package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-interview-telemetry-service/internal/observability/metrics"
)

// HTTP is the shared transport for collaborator clients.
type HTTP struct {
	c       *http.Client
	metrics *metrics.Metrics
}

// NewHTTP returns a shared HTTP transport with the given request timeout.
func NewHTTP(timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTP{
		c:       &http.Client{Timeout: timeout},
		metrics: metrics.DefaultMetrics,
	}
}

// getJSON performs a GET and decodes the response body into out.
func (h *HTTP) getJSON(ctx context.Context, collaborator, url string, out any) error {
	start := time.Now()
	err := h.doJSON(ctx, http.MethodGet, url, nil, out)
	h.metrics.RecordCollaboratorCall(collaborator, err, time.Since(start).Seconds())
	return err
}

// sendJSON performs a request with a JSON body and decodes the response into
// out (which may be nil).
func (h *HTTP) sendJSON(ctx context.Context, collaborator, method, url string, body, out any) error {
	start := time.Now()
	err := h.doJSON(ctx, method, url, body, out)
	h.metrics.RecordCollaboratorCall(collaborator, err, time.Since(start).Seconds())
	return err
}

func (h *HTTP) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: %s: %s", method, url, resp.Status, string(data))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
