// Package client provides the HTTP client shared by the registry and
// source-control collectors.
//
// Every request goes through the same transport stack: a DNS-cached dialer,
// an optional per-host circuit breaker, request metrics, and go-retryablehttp with
// retries disabled unless WithMaxRetries is set.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	// DefaultUserAgent is sent with every request made through GetJSON and GetBody.
	DefaultUserAgent = "pkghealth"

	defaultTimeout = 30 * time.Second
	maxErrorBody   = 1024
)

// Client is an HTTP client for registry and source-control APIs.
type Client struct {
	http             *http.Client
	breakers         *breakerTransport
	base             http.RoundTripper
	userAgent        string
	timeout          time.Duration
	maxRetries       int
	breakerThreshold int64
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxRetries sets the maximum number of retries. The default is 0: a
// single attempt per call.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithBreakerThreshold enables a per-host circuit breaker that trips after n
// consecutive upstream failures. Breaker state outlives a single request, so
// it is off by default; n <= 0 disables it.
func WithBreakerThreshold(n int64) Option {
	return func(c *Client) {
		c.breakerThreshold = n
	}
}

// WithTransport replaces the DNS-cached base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.base = rt
	}
}

// DefaultClient returns a client with a 30s timeout, no retries and no
// circuit breaker.
func DefaultClient() *Client {
	return NewClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		userAgent:        DefaultUserAgent,
		timeout:          defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.base
	if base == nil {
		base = newDNSCachedTransport()
	}
	next := base
	if c.breakerThreshold > 0 {
		c.breakers = newBreakerTransport(base, c.breakerThreshold)
		next = c.breakers
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = c.maxRetries
	rc.Logger = nil
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.HTTPClient = &http.Client{
		Timeout:   c.timeout,
		Transport: &instrumentedTransport{next: next},
	}
	c.http = rc.StandardClient()
	return c
}

// HTTPClient returns the underlying *http.Client so SDK clients share the
// same transport stack.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// UserAgent returns the configured User-Agent.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// GetJSON fetches url and decodes the JSON response body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.GetBody(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}

// GetBody fetches url and returns the response body. Non-2xx responses are
// returned as *HTTPError.
func (c *Client) GetBody(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return body, nil
}

// BreakerState returns "open" or "closed" for every host seen so far. It is
// empty when the breaker is disabled.
func (c *Client) BreakerState() map[string]string {
	if c.breakers == nil {
		return map[string]string{}
	}
	return c.breakers.state()
}
