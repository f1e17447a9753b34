// Package prometheus provides a minimal client for the Prometheus HTTP query
// API and selectors for extracting values from instant query responses.
package prometheus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client executes instant queries against a Prometheus-compatible backend.
// It holds a single reusable http.Client and is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// ClientConfig configures the query client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a new Prometheus query client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
	}
}

// Query executes one instant query via GET /api/v1/query.
// The query text is opaque to the client; no local validation is performed.
// Network failure, a non-2xx status, and an undecodable body all surface as
// errors so the caller can apply its all-or-nothing policy.
func (c *Client) Query(ctx context.Context, query string) (Response, error) {
	params := url.Values{"query": {query}}
	reqURL := c.baseURL + "/api/v1/query?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("execute query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Response{}, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var decoded Response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}

	return decoded, nil
}

// Close releases idle connections held by the underlying transport.
// The client must not be used after Close.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// APIError represents a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("prometheus error %d: %s", e.StatusCode, e.Body)
}
