// Package gateway performs JSON requests against the GMGN HTTP API and unwraps
// its {code, data, msg, tid} response envelope.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Default configuration values.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "gmgn-swap/1.0"

	maxBodySize = 10 << 20
)

// Client sends requests relative to a base URL.
type Client struct {
	baseURL   string
	client    *http.Client
	userAgent string
	logger    zerolog.Logger
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a gateway client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		logger:    log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the response wrapper used by every GMGN endpoint.
type envelope struct {
	Code *int            `json:"code"`
	Data json.RawMessage `json:"data"`
	Msg  string          `json:"msg"`
	Tid  string          `json:"tid"`
}

// Get issues a GET request with query parameters and decodes the envelope data into T.
func Get[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var zero T

	endpoint := c.resolve(path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return zero, fmt.Errorf("create request: %w", err)
	}

	c.logger.Debug().Str("method", http.MethodGet).Str("url", endpoint).Msg("gateway request")

	data, err := c.do(req)
	if err != nil {
		return zero, err
	}
	return decode[T](data, endpoint)
}

// Post issues a POST request with a JSON body and decodes the envelope data into T.
// Request bodies are never logged since they carry signed transactions.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var zero T

	endpoint := c.resolve(path)
	payload, err := json.Marshal(body)
	if err != nil {
		return zero, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return zero, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("method", http.MethodPost).Str("url", endpoint).Int("body_bytes", len(payload)).Msg("gateway request")

	data, err := c.do(req)
	if err != nil {
		return zero, err
	}
	return decode[T](data, endpoint)
}

func (c *Client) resolve(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// do performs the exchange and unwraps the envelope, returning the raw data field.
func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: req.URL.String(), Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("gateway response")

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", truncate(body, 256)),
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || !isObject(body) {
		return nil, &RemoteError{Code: CodeMalformedEnvelope, Message: "response is not a JSON object", URL: req.URL.String()}
	}
	if env.Code == nil {
		return nil, &RemoteError{Code: CodeMalformedEnvelope, Message: "response has no code", URL: req.URL.String()}
	}
	if *env.Code != 0 {
		return nil, &RemoteError{Code: *env.Code, Message: env.Msg, URL: req.URL.String()}
	}
	return env.Data, nil
}

func decode[T any](data json.RawMessage, endpoint string) (T, error) {
	var out T
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode response data from %s: %w", endpoint, err)
	}
	return out, nil
}

func isObject(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
