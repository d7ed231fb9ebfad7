package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/leadowl/leadowl-backend/internal/metrics"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorDetail = 500
)

// Client talks to the unified messaging provider over HTTP. All calls are
// synchronous and bounded by the client timeout; a hung provider call must
// not stall a batch forever.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Send dispatches one logical send. Tagged-variant dispatch: each action
// owns its request encoding and failure quirks.
func (c *Client) Send(ctx context.Context, req SendRequest) *SendResult {
	switch req.Action {
	case ActionWhatsappMessage:
		return c.sendWhatsappMessage(ctx, req)
	case ActionLinkedinDM:
		return c.sendLinkedinMessage(ctx, req, false)
	case ActionLinkedinInMail:
		return c.sendLinkedinMessage(ctx, req, true)
	case ActionLinkedinInvite:
		return c.sendLinkedinInvite(ctx, req)
	}
	return failure(ErrClassValidation, fmt.Sprintf("unknown action %q", req.Action))
}

// doRequest performs one provider call and decodes the 2xx body into out.
// Non-2xx bodies are captured (truncated) as the failure detail.
func (c *Client) doRequest(ctx context.Context, operation, method, path, contentType string, body []byte, out interface{}) (string, bool) {
	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err.Error(), false
	}
	httpReq.Header.Set("X-API-KEY", c.APIKey)
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	metrics.ProviderCallDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderCallsTotal.WithLabelValues(operation, "error").Inc()
		return err.Error(), false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ProviderCallsTotal.WithLabelValues(operation, "error").Inc()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorDetail))
		return fmt.Sprintf("provider returned %d: %s", resp.StatusCode, truncate(string(raw), maxErrorDetail)), false
	}

	metrics.ProviderCallsTotal.WithLabelValues(operation, "success").Inc()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Sprintf("decoding provider response: %v", err), false
		}
	}
	return "", true
}

// truncate caps the detail at n bytes and drops any partial rune the byte
// cut (or the limited body read) left behind.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		s = s[:n]
	}
	return strings.ToValidUTF8(s, "")
}

var _ Dispatcher = (*Client)(nil)
