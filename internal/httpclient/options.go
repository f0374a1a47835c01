// Package httpclient provides an instrumented HTTP client with OTEL tracing and metrics.
package httpclient

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Waiter throttles outbound requests. *ratelimit.Limiter satisfies it.
type Waiter interface {
	Wait(ctx context.Context) error
}

// StatusMapper turns a non-2xx response into a domain error. Returning nil
// accepts the response.
type StatusMapper func(statusCode int, body []byte) error

// ClientOptions holds configuration for the instrumented HTTP client.
type ClientOptions struct {
	client         *http.Client
	meterProvider  metric.MeterProvider
	tracer         trace.Tracer
	providerName   string
	roundTripper   http.RoundTripper
	requestTimeout *time.Duration
	headers        map[string]string
	baseURL        string
	limiter        Waiter
	statusMapper   StatusMapper
	logResponse    bool
}

// ClientOption is a function that configures ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient uses c instead of a fresh client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *ClientOptions) { o.client = c }
}

// WithMeterProvider sets the OTEL meter provider.
func WithMeterProvider(mp metric.MeterProvider) ClientOption {
	return func(o *ClientOptions) { o.meterProvider = mp }
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) ClientOption {
	return func(o *ClientOptions) { o.tracer = t }
}

// WithProviderName names the upstream in metrics and spans.
func WithProviderName(name string) ClientOption {
	return func(o *ClientOptions) { o.providerName = name }
}

// WithRoundTripper sets a custom HTTP transport.
func WithRoundTripper(rt http.RoundTripper) ClientOption {
	return func(o *ClientOptions) { o.roundTripper = rt }
}

// WithRequestTimeout sets the per request timeout.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(o *ClientOptions) { o.requestTimeout = &timeout }
}

// WithHeaders sets default headers for all requests.
func WithHeaders(headers map[string]string) ClientOption {
	return func(o *ClientOptions) { o.headers = headers }
}

// WithBaseURL sets the base URL relative paths are resolved against.
func WithBaseURL(url string) ClientOption {
	return func(o *ClientOptions) { o.baseURL = url }
}

// WithLimiter makes every request wait on w first.
func WithLimiter(w Waiter) ClientOption {
	return func(o *ClientOptions) { o.limiter = w }
}

// WithStatusMapper sets the default mapping for error statuses.
func WithStatusMapper(m StatusMapper) ClientOption {
	return func(o *ClientOptions) { o.statusMapper = m }
}

// WithResponseLogging records response bodies as span events.
func WithResponseLogging() ClientOption {
	return func(o *ClientOptions) { o.logResponse = true }
}
