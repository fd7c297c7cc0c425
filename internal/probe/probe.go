// Package probe provides the HTTP machinery behind the http condition and
// the URL document source.
//
// The probe client is tuned for repeated checks against the same host:
// pooled connections, per-request timeouts via context, and a capped
// response body. It reports outcomes as values rather than errors so the
// polling layer can treat an unreachable target as an ordinary falsy trial.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodySize caps how much of a response body is retained (1MB).
const maxBodySize = 1 << 20

// DefaultTimeout is applied when a Request carries no timeout of its own.
const DefaultTimeout = 10 * time.Second

// connection pooling limits; a poller re-probes the same host many times
const (
	maxIdleConns        = 16
	maxIdleConnsPerHost = 4
	maxConnsPerHost     = 4
	idleConnTimeout     = 60 * time.Second
)

// Request describes a single HTTP probe.
type Request struct {
	// Method is the HTTP method. Empty defaults to GET.
	Method string

	// URL is the target to probe.
	URL string

	// Headers are set on the outgoing request.
	Headers map[string]string

	// Timeout bounds the whole request. Zero means [DefaultTimeout].
	Timeout time.Duration
}

// Result holds the outcome of a single probe.
//
// Err is non-nil when the request could not complete at all (connection
// refused, timeout, malformed URL); a reachable target that answered with
// an unwanted status is not an error, it is a Result with that StatusCode.
type Result struct {
	// Body is the response body, capped at 1MB.
	Body []byte

	// StatusCode is the HTTP status code. Zero if the request failed before
	// a response was received.
	StatusCode int

	// Latency is the total time taken by the probe.
	Latency time.Duration

	// Err is any transport-level failure.
	Err error
}

// Client performs HTTP probes with a pooled transport.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a probe [Client].
//
// Timeouts are applied per request via context in [Client.Do], not as a
// global client timeout, so conditions with different budgets can share one
// client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        maxIdleConns,
				MaxIdleConnsPerHost: maxIdleConnsPerHost,
				MaxConnsPerHost:     maxConnsPerHost,
				IdleConnTimeout:     idleConnTimeout,
			},
		},
	}
}

// Do performs one probe and returns a structured [Result].
//
// Do always returns a Result; failures are carried in the Err field rather
// than returned separately, which keeps condition closures branch-free.
func (c *Client) Do(ctx context.Context, req Request) Result {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, nil)
	if err != nil {
		return Result{
			Latency: time.Since(start),
			Err:     fmt.Errorf("failed to create request: %w", err),
		}
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{
			Latency: time.Since(start),
			Err:     fmt.Errorf("request failed: %w", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Result{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Err:        fmt.Errorf("failed to read response body: %w", err),
		}
	}

	return Result{
		Body:       body,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
}

// Close releases idle connections in the client's pool. Safe to call
// multiple times; the client remains usable afterwards.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
