// Package httpclient provides the single outbound HTTP client shared by every
// lookup. It is constructed once at startup and is safe for concurrent use.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"oras.land/oras-go/v2/registry/remote/retry"

	"lookupbot/internal/platform/metrics"
	"lookupbot/pkg/platform/circuit"
)

const (
	defaultUserAgent = "LookupBot/1.0"
	defaultMaxBody   = 2 << 20
)

// RetryableStatuses are the responses the transport retries automatically.
var RetryableStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Response is a fully read upstream response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client issues GET requests with a per-call timeout over a retrying transport.
// Each upstream host has a circuit breaker; while it is open, calls to that
// host go out once without retries.
type Client struct {
	http      *http.Client
	direct    *http.Client
	userAgent string
	maxBody   int64
	metrics   *metrics.Metrics
	logger    *slog.Logger

	breakerOpts []circuit.Option
	mu          sync.Mutex
	breakers    map[string]*circuit.Breaker
}

type options struct {
	base       http.RoundTripper
	userAgent  string
	maxRetries int
	minWait    time.Duration
	maxWait    time.Duration
	maxBody    int64
	metrics    *metrics.Metrics
	logger     *slog.Logger
	breaker    []circuit.Option
}

// Option configures a Client.
type Option func(*options)

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithMaxRetries bounds automatic retries on RetryableStatuses.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		o.maxRetries = n
	}
}

// WithRetryWait sets the backoff window between retries.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(o *options) {
		o.minWait = minWait
		o.maxWait = maxWait
	}
}

// WithBaseTransport replaces the underlying round tripper.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.base = rt
	}
}

// WithMaxBody caps how many response bytes are read.
func WithMaxBody(n int64) Option {
	return func(o *options) {
		o.maxBody = n
	}
}

// WithMetrics records upstream call outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithLogger reports circuit transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithBreaker configures the per-host circuit breakers.
func WithBreaker(opts ...circuit.Option) Option {
	return func(o *options) {
		o.breaker = append(o.breaker, opts...)
	}
}

// New builds the shared client.
func New(opts ...Option) *Client {
	o := &options{
		userAgent:  defaultUserAgent,
		maxRetries: 3,
		minWait:    300 * time.Millisecond,
		maxWait:    3 * time.Second,
		maxBody:    defaultMaxBody,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	base := o.base
	if base == nil {
		base = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
		}
	}

	transport := retry.NewTransport(base)
	policy := statusPolicy(o.maxRetries, o.minWait, o.maxWait)
	transport.Policy = func() retry.Policy { return policy }

	return &Client{
		http:        &http.Client{Transport: transport},
		direct:      &http.Client{Transport: base},
		userAgent:   o.userAgent,
		maxBody:     o.maxBody,
		metrics:     o.metrics,
		logger:      o.logger,
		breakerOpts: o.breaker,
		breakers:    make(map[string]*circuit.Breaker),
	}
}

// Get fetches rawURL, bounded by timeout across all retries.
// A non-nil error means no response was obtained.
func (c *Client) Get(ctx context.Context, rawURL string, timeout time.Duration) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// A nil body keeps the request replayable by the retry transport.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	host := req.URL.Host
	breaker := c.breaker(host)
	doer := c.http
	if breaker.IsOpen() {
		doer = c.direct
	}

	resp, err := doer.Do(req)
	if err != nil {
		c.metrics.IncrementUpstreamCall(host, "error")
		if ctx.Err() == nil {
			c.recordFailure(breaker)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		c.metrics.IncrementUpstreamCall(host, "error")
		return nil, fmt.Errorf("read body: %w", err)
	}
	c.metrics.IncrementUpstreamCall(host, statusClass(resp.StatusCode))
	if RetryableStatuses[resp.StatusCode] {
		c.recordFailure(breaker)
	} else {
		c.recordSuccess(breaker)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// CircuitOpen reports whether host is currently served without retries.
func (c *Client) CircuitOpen(host string) bool {
	return c.breaker(host).IsOpen()
}

func (c *Client) breaker(host string) *circuit.Breaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.breakers[host]
	if !ok {
		b = circuit.New(host, c.breakerOpts...)
		c.breakers[host] = b
	}
	return b
}

func (c *Client) recordFailure(b *circuit.Breaker) {
	if _, change := b.RecordFailure(); change.Opened {
		c.logger.Warn("upstream circuit opened, retries disabled", "host", b.Name())
	}
}

func (c *Client) recordSuccess(b *circuit.Breaker) {
	if _, change := b.RecordSuccess(); change.Closed {
		c.logger.Info("upstream circuit closed", "host", b.Name())
	}
}

func statusPolicy(maxRetries int, minWait, maxWait time.Duration) retry.Policy {
	return &retry.GenericPolicy{
		Retryable: retryable,
		Backoff:   retry.ExponentialBackoff(minWait, 2, 0.1),
		MinWait:   minWait,
		MaxWait:   maxWait,
		MaxRetry:  maxRetries,
	}
}

// retryable retries the configured statuses and connection failures, but
// never a request whose own deadline or context has ended.
func retryable(resp *http.Response, err error) (bool, error) {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, nil
		}
		var uerr *url.Error
		if errors.As(err, &uerr) && uerr.Timeout() {
			return false, nil
		}
		return true, nil
	}
	return RetryableStatuses[resp.StatusCode], nil
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
