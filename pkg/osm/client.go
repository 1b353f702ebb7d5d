package osm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/NERVsystems/osmsurvey/pkg/tracing"
)

// ClientOptions configures a Client for one external service.
type ClientOptions struct {
	// Service names the endpoint in logs, metrics and traces
	Service string

	// UserAgent is sent on every request; DefaultUserAgent when empty
	UserAgent string

	// RequestsPerSecond and Burst size the client's rate limiter.
	// A non-positive rate disables limiting.
	RequestsPerSecond float64
	Burst             int

	HTTPClient *http.Client
	Hooks      *MonitoringHooks
	Logger     *slog.Logger
}

// Client performs rate-limited, monitored requests against one service.
type Client struct {
	service   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	hooks     *MonitoringHooks
	logger    *slog.Logger
}

// NewClient creates a Client from opts, filling in defaults.
func NewClient(opts ClientOptions) *Client {
	c := &Client{
		service:   opts.Service,
		userAgent: opts.UserAgent,
		http:      opts.HTTPClient,
		hooks:     opts.Hooks,
		logger:    opts.Logger,
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.http == nil {
		c.http = NewHTTPClient(60 * time.Second)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("service", c.service)

	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c
}

// Service returns the service name the client was created for.
func (c *Client) Service() string {
	return c.service
}

// waitForRateLimit blocks until the limiter admits a request
func (c *Client) waitForRateLimit(ctx context.Context) error {
	if c.limiter == nil || c.limiter.Allow() {
		return nil
	}

	start := time.Now()
	tracing.AddEvent(ctx, "rate_limit_wait",
		trace.WithAttributes(attribute.String(tracing.AttrRateLimitService, c.service)),
	)

	err := c.limiter.Wait(ctx)

	wait := time.Since(start)
	tracing.SetAttributes(ctx,
		attribute.String(tracing.AttrRateLimitService, c.service),
		attribute.Int64(tracing.AttrRateLimitWaitMs, wait.Milliseconds()),
	)
	c.hooks.rateLimit(c.service, wait)

	return err
}

// Do sends req after waiting for the rate limiter. The caller owns the
// response body. Non-2xx statuses are returned as responses, not errors.
func (c *Client) Do(ctx context.Context, req *http.Request, operation string) (*http.Response, error) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("%s.%s", c.service, operation),
		trace.WithAttributes(
			attribute.String(tracing.AttrServiceName, c.service),
			attribute.String(tracing.AttrServiceOperation, operation),
			attribute.String(tracing.AttrHTTPMethod, req.Method),
		),
	)
	defer span.End()

	c.hooks.request(c.service, operation)

	if err := c.waitForRateLimit(ctx); err != nil {
		c.hooks.fail(c.service, "rate_limit_wait_error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "rate limit wait aborted")
		return nil, fmt.Errorf("%s: waiting for rate limiter: %w", c.service, err)
	}

	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)

	success := err == nil && resp.StatusCode < 400
	c.hooks.response(c.service, operation, duration, success)

	if err != nil {
		c.hooks.fail(c.service, "request_error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		c.logger.Error("request failed", "operation", operation, "error", err, "duration", duration)
		return nil, err
	}

	span.SetAttributes(attribute.Int(tracing.AttrHTTPStatusCode, resp.StatusCode))
	if !success {
		span.SetStatus(codes.Error, resp.Status)
	}
	c.logger.Debug("request completed",
		"operation", operation,
		"status", resp.StatusCode,
		"duration", duration,
	)
	return resp, nil
}
