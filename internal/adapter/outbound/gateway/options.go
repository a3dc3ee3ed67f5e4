package gateway

import (
	"log/slog"
	"net/http"
	"time"
)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithBaseURL sets the API base URL.
// If not set, defaults to the TABLESIDE_API_ADDR environment variable.
func WithBaseURL(addr string) Option {
	return func(c *Client) {
		c.baseURL = addr
	}
}

// WithTimeout sets the HTTP request timeout.
// If not set, defaults to 10 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient sets a custom http.Client. This is how the auth
// transport is installed, and how tests inject fakes.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics sets the request metrics. Nil metrics are valid and
// record nothing.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithMenuCacheTTL sets how long menu responses are served from the
// client-side cache. Zero disables the cache.
func WithMenuCacheTTL(d time.Duration) Option {
	return func(c *Client) {
		c.menuCacheTTL = d
	}
}
