package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/semmy-space/bazaar/internal/config"
)

const defaultUserAgent = "bazaar"

// Client is the single point of HTTP egress to the listings backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryWait  time.Duration
	userAgent  string
	log        zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithUserAgent sets the User-Agent sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRetryWait sets the initial backoff between retries of safe requests.
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) { c.retryWait = d }
}

// WithMaxRetries overrides the configured retry budget.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithTransport replaces the underlying transport (the bearer transport
// still wraps it).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

// NewClient creates a Client for the configured backend. tokens supplies the
// credential before each dispatch; it may be nil for a purely anonymous client.
func NewClient(cfg *config.Config, tokens oauth2.TokenSource, logger zerolog.Logger, opts ...Option) (*Client, error) {
	base := cfg.BaseURLOrDefault()
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", base)
	}

	limit := rate.Inf
	if rps := cfg.RateLimitPerSecond(); rps > 0 {
		limit = rate.Limit(rps)
	}

	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: cfg.TimeoutDuration(), Transport: http.DefaultTransport},
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: cfg.MaxRetriesOrDefault(),
		retryWait:  500 * time.Millisecond,
		userAgent:  defaultUserAgent,
		log:        logger.With().Str("component", "api").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.httpClient.Transport = &bearerTransport{
		base:      c.httpClient.Transport,
		tokens:    tokens,
		userAgent: c.userAgent,
		log:       c.log,
	}

	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// response is a fully read 2xx response.
type response struct {
	status int
	body   []byte
}

// do sends one logical request. Safe methods are retried with exponential
// backoff on network failures and transient statuses; everything else is
// dispatched at most once.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string) (*response, error) {
	if !safeMethod(method) || c.maxRetries == 0 {
		return c.attempt(ctx, method, path, body, contentType)
	}

	var res *response
	op := func() error {
		r, err := c.attempt(ctx, method, path, body, contentType)
		if err == nil {
			res = r
			return nil
		}
		if retryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.retryWait
	eb.MaxElapsedTime = 0 // bounded by maxRetries and ctx instead
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.maxRetries)), ctx)

	notify := func(err error, wait time.Duration) {
		c.log.Debug().Err(err).Dur("wait", wait).Str("method", method).Str("path", path).Msg("retrying")
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		// context ended between attempts
		return nil, &Error{Kind: KindNetwork, Method: method, Path: path, Err: err}
	}
	return res, nil
}

// attempt performs exactly one HTTP exchange.
func (c *Client) attempt(ctx context.Context, method, path string, body []byte, contentType string) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &Error{Kind: KindNetwork, Method: method, Path: path, Err: err}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("request failed")
		return nil, &Error{Kind: KindNetwork, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Method: method, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	ev := c.log.Debug()
	if resp.StatusCode >= 500 {
		ev = c.log.Warn()
	}
	ev.Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Str("request_id", requestID).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(method, path, resp.StatusCode, data)
	}
	return &response{status: resp.StatusCode, body: data}, nil
}

// doJSON encodes in (if non-nil) as the request body and decodes the
// response into out (if non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	res, err := c.do(ctx, method, path, body, "application/json")
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(res.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return &Error{Kind: KindDecode, Status: res.status, Method: method, Path: path, Body: res.body, Err: err}
	}
	return nil
}

func safeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

func retryable(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Kind == KindNetwork {
		return !errors.Is(apiErr.Err, context.Canceled)
	}
	switch apiErr.Status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
