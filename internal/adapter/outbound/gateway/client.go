// Package gateway is the HTTP adapter for the remote restaurant API. It
// holds the shared request core, the bearer-stamping transport with its
// 401 policy, and typed wrappers for the auth, cart, reservation and
// menu endpoints.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tableside/tableside/internal/apperrors"
)

// Client talks to the restaurant API. All endpoint wrappers share its
// request core, which handles JSON codecs, error classification, and
// request metrics.
type Client struct {
	baseURL      string
	timeout      time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
	metrics      *Metrics
	menuCacheTTL time.Duration
	menuCache    sync.Map
}

// NewClient creates a gateway client. It reads defaults from the
// TABLESIDE_* environment variables; options override them.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:      os.Getenv("TABLESIDE_API_ADDR"),
		timeout:      parseDurationEnv("TABLESIDE_TIMEOUT", 10*time.Second),
		logger:       slog.Default(),
		menuCacheTTL: parseDurationEnv("TABLESIDE_MENU_CACHE_TTL", 5*time.Minute),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	return c
}

// do performs an HTTP request against the API, decoding a 2xx response
// into result (when non-nil) and classifying everything else into the
// apperrors taxonomy.
func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	url := strings.TrimRight(c.baseURL, "/") + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	mpath := metricPath(path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observeRequest(method, mpath, "network_error", time.Since(start))
		return &apperrors.NetworkError{Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.observeRequest(method, mpath, "network_error", time.Since(start))
		return &apperrors.NetworkError{Cause: fmt.Errorf("read response body: %w", err)}
	}

	c.metrics.observeRequest(method, mpath, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := classifyResponse(path, resp.StatusCode, respBody)
		c.logger.Debug("gateway request failed",
			"method", method, "path", path, "status", resp.StatusCode)
		return err
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// metricPath collapses per-resource path segments so metric label
// cardinality stays bounded.
func metricPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	switch {
	case strings.HasPrefix(path, "/cart/item/"):
		return "/cart/item/{id}"
	case strings.HasPrefix(path, "/reservations/") && path != "/reservations":
		if strings.HasSuffix(path, "/confirm") {
			return "/reservations/{id}/confirm"
		}
		if strings.HasSuffix(path, "/cancel") {
			return "/reservations/{id}/cancel"
		}
		return "/reservations/{id}"
	default:
		return path
	}
}

func parseDurationEnv(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	// Seconds as a bare integer, or a Go duration string.
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return defaultVal
}
