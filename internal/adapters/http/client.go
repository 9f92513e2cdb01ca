// Package http provides the resty-based HTTP adapter used by the PVE client.
package http

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	// Rate limiting configuration.
	rateLimitRequestsPerSecond = 10
	rateLimitBurst             = 20
)

// Options configures the HTTP adapter. Zero-value timeouts mean unbounded.
type Options struct {
	BaseURL            string
	InsecureSkipVerify bool
	Timeout            time.Duration
	ConnectTimeout     time.Duration
}

// Adapter is an HTTP client adapter using resty with rate limiting.
// Requests are never retried here; retry policy belongs to the caller.
type Adapter struct {
	client *resty.Client
	logger *slog.Logger

	// mu guards limiter, which SetRateLimit may swap while in-flight
	// requests read it from the middleware.
	mu      sync.RWMutex
	limiter *rate.Limiter
}

// NewAdapter creates a new HTTP adapter with rate limiting.
// Rate limit: 10 requests per second with burst of 20.
func NewAdapter(opts Options, logger *slog.Logger) *Adapter {
	dialer := &net.Dialer{}
	if opts.ConnectTimeout > 0 {
		dialer.Timeout = opts.ConnectTimeout
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: opts.InsecureSkipVerify, //nolint:gosec // PVE hosts commonly run self-signed certificates
		},
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTransport(transport).
		SetDoNotParseResponse(true)

	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	limiter := rate.NewLimiter(rate.Limit(rateLimitRequestsPerSecond), rateLimitBurst)

	adapter := &Adapter{
		client:  client,
		limiter: limiter,
		logger:  logger,
	}

	// Rate limiting middleware
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return adapter.rateLimiter().Wait(req.Context())
	})

	// Logging middleware
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		logger.DebugContext(req.Context(), "HTTP request",
			"method", req.Method,
			"url", req.URL,
		)
		return nil
	})

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.DebugContext(resp.Request.Context(), "HTTP response",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"duration", resp.Time(),
		)
		return nil
	})

	return adapter
}

// R returns a new request bound to the given context. The response body is
// left unparsed so callers can unwrap the API envelope themselves.
func (a *Adapter) R(ctx context.Context) *resty.Request {
	return a.client.R().SetContext(ctx)
}

// BaseURL returns the configured base URL.
func (a *Adapter) BaseURL() string {
	return a.client.BaseURL
}

// SetRateLimit allows configuring the rate limiter after creation.
// Useful for different rate limits per PVE host. Safe to call while
// requests are in flight; they pick up the new limiter on their next
// dispatch.
func (a *Adapter) SetRateLimit(requestsPerSecond float64, burst int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func (a *Adapter) rateLimiter() *rate.Limiter {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.limiter
}
