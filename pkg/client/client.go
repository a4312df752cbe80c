// Package client is the Go SDK for the KeyIP pricing HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

const Version = "0.1.0"

const apiPrefix = "/api/v1"

// Logger receives the SDK's diagnostic output.  The default discards it.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type silentLogger struct{}

func (silentLogger) Debugf(string, ...interface{}) {}
func (silentLogger) Infof(string, ...interface{})  {}
func (silentLogger) Errorf(string, ...interface{}) {}

// Client talks to one pricing API server.  It is safe for concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	apiKey       string
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	quotesOnce sync.Once
	quotes     *QuotesClient
	rulesOnce  sync.Once
	rules      *RulesClient
}

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("keyprice: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, msg, e.RequestID)
}

func (e *APIError) IsNotFound() bool     { return e.StatusCode == http.StatusNotFound }
func (e *APIError) IsUnauthorized() bool { return e.StatusCode == http.StatusUnauthorized }
func (e *APIError) IsRateLimited() bool  { return e.StatusCode == http.StatusTooManyRequests }
func (e *APIError) IsServerError() bool  { return e.StatusCode >= 500 && e.StatusCode < 600 }

// retryable reports whether another attempt could succeed.
func (e *APIError) retryable() bool { return e.IsServerError() || e.IsRateLimited() }

// NewClient builds a client for baseURL.  apiKey may be empty when only the
// read endpoints are used; rule writes are rejected without one.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	switch {
	case baseURL == "":
		return nil, errors.ErrInvalidConfig
	case err != nil:
		return nil, fmt.Errorf("%w: base url: %v", errors.ErrInvalidConfig, err)
	case u.Scheme != "http" && u.Scheme != "https":
		return nil, fmt.Errorf("%w: base url must be http or https, got %q", errors.ErrInvalidConfig, baseURL)
	}

	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		userAgent:    "keyprice-go-sdk/" + Version,
		logger:       silentLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Quotes() *QuotesClient {
	c.quotesOnce.Do(func() { c.quotes = &QuotesClient{client: c} })
	return c.quotes
}

func (c *Client) Rules() *RulesClient {
	c.rulesOnce.Do(func() { c.rules = &RulesClient{client: c} })
	return c.rules
}

func encodeBody(body interface{}) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		return payload, nil
	}
}

// do sends body (a value to marshal, or raw bytes) and decodes the response
// into result.  Transport errors, 5xx and 429 are retried up to retryMax
// times; a 429 Retry-After header overrides the computed backoff.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	payload, err := encodeBody(body)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var (
		lastErr error
		wait    time.Duration
	)
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			c.logger.Debugf("keyprice: retry %d of %s %s in %v", attempt, method, path, wait)
			if err := sleep(ctx, wait); err != nil {
				return err
			}
		}

		respBody, retryAfter, err := c.attempt(ctx, method, path, payload)
		if err == nil {
			if result == nil || len(respBody) == 0 {
				return nil
			}
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		lastErr = err
		if apiErr, ok := err.(*APIError); ok && !apiErr.retryable() {
			return apiErr
		}
		wait = retryAfter
		if wait == 0 {
			wait = c.backoff(attempt + 1)
		}
	}
	return lastErr
}

// attempt performs one round trip.  Non-2xx statuses come back as *APIError
// along with any Retry-After delay the server asked for.
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte) ([]byte, time.Duration, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("keyprice: %s %s: %v", method, path, err)
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	c.logger.Debugf("keyprice: %s %s -> %d in %v", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 400 {
		return data, 0, nil
	}

	var retryAfter time.Duration
	if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && s > 0 {
		retryAfter = time.Duration(s) * time.Second
	}
	return nil, retryAfter, decodeAPIError(resp.StatusCode, requestID, data)
}

func decodeAPIError(status int, requestID string, data []byte) *APIError {
	apiErr := &APIError{StatusCode: status, RequestID: requestID}
	if len(data) == 0 {
		return apiErr
	}
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Code == "" && apiErr.Message == "" {
		apiErr.Message = string(data)
	}
	apiErr.StatusCode = status
	apiErr.RequestID = requestID
	return apiErr
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) put(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// backoff doubles from retryWaitMin, caps at retryWaitMax and adds up to a
// quarter of jitter.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.retryWaitMin << uint(attempt-1)
	if d <= 0 || d > c.retryWaitMax {
		d = c.retryWaitMax
	}
	if q := int64(d / 4); q > 0 {
		d += time.Duration(rand.Int63n(q))
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func servicePath(serviceID string, rest ...string) string {
	var b strings.Builder
	b.WriteString(apiPrefix + "/services/" + url.PathEscape(serviceID))
	for _, r := range rest {
		b.WriteString("/" + url.PathEscape(r))
	}
	return b.String()
}

//Personal.AI order the ending
