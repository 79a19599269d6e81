// Package tfl is a small SDK for the Transport for London Unified API.
//
// The Client is the single point of network egress: every outbound request
// goes through Get, which injects the app_key header and applies the
// outbound rate limit. Get never interprets status codes; classification
// of non-2xx responses belongs to the operation methods (StopPointTypes,
// StopPointsByType, PlanJourney), which map them onto the tool error
// taxonomy (ClientError for retryable input problems, plain errors for
// fatal failures).
package tfl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public TFL Unified API endpoint.
	DefaultBaseURL = "https://api.tfl.gov.uk"

	// DefaultTimeout is the overall per-call budget, including connection
	// setup and body transfer.
	DefaultTimeout = 60 * time.Second

	// DefaultStopTypesTTL bounds how long the meta/stoptypes payload is
	// served from the in-process cache before being refetched.
	DefaultStopTypesTTL = time.Hour
)

// Doer executes HTTP requests. *http.Client implements it; tests substitute
// a scripted transport.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Gate serializes a class of calls. Implementations must release on every
// exit path and honor ctx while waiting to acquire.
type Gate interface {
	Do(ctx context.Context, fn func() error) error
}

// Client talks to the TFL Unified API. Safe for concurrent use.
type Client struct {
	baseURL    string
	appKey     string
	httpClient Doer
	limiter    *rate.Limiter
	gate       Gate
	logger     *slog.Logger

	typesTTL     time.Duration
	typesMu      sync.Mutex
	typesRaw     json.RawMessage
	typesFetched time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithAppKey sets the TFL application key. An empty key is valid: requests
// go out unauthenticated (the header is sent empty) and are subject to
// remote-side rate limits.
func WithAppKey(key string) Option {
	return func(c *Client) { c.appKey = key }
}

// WithBaseURL overrides the API endpoint (e.g. a test server).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient substitutes the HTTP client. The client must be safe for
// concurrent use; its timeout is the per-call budget.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.httpClient = d }
}

// WithRateLimit caps outbound requests per second across all operations.
// Pass rps <= 0 to disable (the default). Burst below 1 is raised to 1,
// since a zero-burst limiter rejects every request.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			if burst < 1 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithGate substitutes the serializer guarding the stop-point-list calls.
func WithGate(g Gate) Option {
	return func(c *Client) {
		if g != nil {
			c.gate = g
		}
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStopTypesTTL sets the stop-type cache lifetime. Zero or negative
// disables caching.
func WithStopTypesTTL(d time.Duration) Option {
	return func(c *Client) { c.typesTTL = d }
}

// NewHTTPClient returns an *http.Client with the given overall per-call
// budget (connection setup through body transfer).
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// NewClient creates a Client with the default base URL, a shared HTTP
// client with the 60-second budget, and an exclusive CallGate.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		gate:       NewCallGate(),
		logger:     slog.Default(),
		typesTTL:   DefaultStopTypesTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues exactly one outbound GET for the given API path. Caller
// headers are copied onto the request; the app_key header is filled in
// from the client's key unless the caller already set one, so it is
// always present (empty when unauthenticated). The response is returned
// as-is: no status validation happens here.
func (c *Client) Get(ctx context.Context, path string, query url.Values, header http.Header) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("tfl: build request for %s: %w", path, err)
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	if len(req.Header.Values("app_key")) == 0 {
		req.Header.Set("app_key", c.appKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tfl: GET %s: %w", path, err)
	}
	return resp, nil
}

// drainBody reads and closes the response body.
func drainBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tfl: read response body: %w", err)
	}
	return body, nil
}

func statusOK(code int) bool {
	return code >= 200 && code < 300
}
