// Package httputil provides the shared HTTP client used for every backend
// call. It attaches the current bearer token and maps failures onto the
// internal/errors taxonomy. It never retries.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	apperrors "github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/errors"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/logging"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = 8 << 20

	// RequestIDHeader carries a per-request uuid.
	RequestIDHeader = "X-Request-ID"
)

// messagePaths are tried in order when extracting a server message.
var messagePaths = []string{"message", "error", "msg", "error.message"}

// TokenSource returns the current in-memory token, or "" when logged out.
type TokenSource func() string

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient is cloned; its transport is wrapped for auth, logging and
	// metrics.
	HTTPClient  *http.Client
	TokenSource TokenSource
	// RequestsPerSecond enables an outbound limiter when positive.
	RequestsPerSecond float64
	Burst             int
	MaxBodyBytes      int64
	Logger            *logging.Logger
}

// Client is the single configured request client.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	limiter      *rate.Limiter
	maxBodyBytes int64
	logger       *logging.Logger

	mu          sync.RWMutex
	tokenSource TokenSource
}

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("httputil: BaseURL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("httputil: BaseURL must be a valid URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("httputil: BaseURL scheme must be http or https")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}

	c := &Client{
		baseURL:      baseURL,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
		tokenSource:  cfg.TokenSource,
	}

	var base http.RoundTripper = http.DefaultTransport
	httpClient := &http.Client{Timeout: timeout}
	if cfg.HTTPClient != nil {
		*httpClient = *cfg.HTTPClient
		if httpClient.Timeout == 0 {
			httpClient.Timeout = timeout
		}
		if cfg.HTTPClient.Transport != nil {
			base = cfg.HTTPClient.Transport
		}
	}
	httpClient.Transport = &transport{next: base, client: c}
	c.httpClient = httpClient

	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return c, nil
}

// BaseURL returns the fixed backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetTokenSource replaces the token source.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokenSource = ts
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokenSource == nil {
		return ""
	}
	return c.tokenSource()
}

// Do sends one request. body is JSON-encoded when non-nil. For a non-2xx
// status both the Response and an *errors.APIError are returned, so callers
// that relay server replies verbatim can still read the body.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}, headers http.Header) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.Malformed(fmt.Errorf("marshal request body: %w", err))
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+ensureLeadingSlash(path), bodyReader)
	if err != nil {
		return nil, apperrors.Malformed(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperrors.Network(fmt.Errorf("rate limit wait: %w", err))
		}
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Network(fmt.Errorf("send request: %w", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, c.maxBodyBytes))
	if err != nil {
		return nil, apperrors.Network(fmt.Errorf("read response: %w", err))
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Header:     httpResp.Header,
	}
	if !resp.OK() {
		return resp, apperrors.Server(resp.StatusCode, resp.Message(), respBody)
	}
	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, nil)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, nil)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Response is a fully read backend response.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Message returns the server's message field, or "".
func (r *Response) Message() string {
	if r == nil || len(r.Body) == 0 || !gjson.ValidBytes(r.Body) {
		return ""
	}
	for _, path := range messagePaths {
		if v := gjson.GetBytes(r.Body, path); v.Exists() && v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// MessageIs compares the server message against expected.
func (r *Response) MessageIs(expected string) bool {
	return r.Message() == expected
}

// Field returns a gjson lookup over the body.
func (r *Response) Field(path string) gjson.Result {
	if r == nil {
		return gjson.Result{}
	}
	return gjson.GetBytes(r.Body, path)
}

// DecodeResponse unmarshals the body into target. A nil target discards
// the body. When envelope is non-empty, only that JSON path is decoded,
// falling back to the whole body when the path is absent.
func DecodeResponse(resp *Response, envelope string, target interface{}) error {
	if resp == nil {
		return apperrors.Malformed(fmt.Errorf("nil response"))
	}
	if !resp.OK() {
		return apperrors.Server(resp.StatusCode, resp.Message(), resp.Body)
	}
	if target == nil {
		return nil
	}

	raw := resp.Body
	if envelope != "" {
		if v := gjson.GetBytes(resp.Body, envelope); v.Exists() {
			raw = []byte(v.Raw)
		}
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return apperrors.Malformed(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func ensureLeadingSlash(path string) string {
	if path == "" || strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}
