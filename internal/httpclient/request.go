package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/liquidity-vector/internal/apperror"
)

// maxErrorBody bounds how much of an error body is kept on StatusError.
const maxErrorBody = 512

// Request is a single use request builder.
type Request interface {
	Get(ctx context.Context, path string) (*Response, error)
	Post(ctx context.Context, path string) (*Response, error)

	SetBody(body any) Request
	SetHeader(key, value string) Request
	SetQueryParam(key, value string) Request
	SetQueryParams(params map[string]string) Request
	SetResult(result any) Request
	SetStatusMapper(m StatusMapper) Request
}

// Response wraps http.Response with the already read body.
type Response struct {
	*http.Response
	body []byte
}

// Body returns the response body.
func (r *Response) Body() []byte { return r.body }

// IsError reports a status >= 400.
func (r *Response) IsError() bool { return r.StatusCode >= 400 }

// StatusError is returned for error statuses when no StatusMapper claims them.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// StatusCodeOf extracts the HTTP status from err, or 0.
func StatusCodeOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

type requestBuilder struct {
	c            *InstrumentedClient
	headers      http.Header
	query        url.Values
	body         any
	result       any
	statusMapper StatusMapper
}

func (r *requestBuilder) Get(ctx context.Context, path string) (*Response, error) {
	return r.execute(ctx, http.MethodGet, path)
}

func (r *requestBuilder) Post(ctx context.Context, path string) (*Response, error) {
	return r.execute(ctx, http.MethodPost, path)
}

func (r *requestBuilder) SetBody(body any) Request {
	r.body = body
	return r
}

func (r *requestBuilder) SetHeader(key, value string) Request {
	r.headers.Set(key, value)
	return r
}

func (r *requestBuilder) SetQueryParam(key, value string) Request {
	r.query.Set(key, value)
	return r
}

func (r *requestBuilder) SetQueryParams(params map[string]string) Request {
	for k, v := range params {
		r.query.Set(k, v)
	}
	return r
}

// SetResult decodes a successful JSON body into result.
func (r *requestBuilder) SetResult(result any) Request {
	r.result = result
	return r
}

// SetStatusMapper overrides the client's mapper for this request.
func (r *requestBuilder) SetStatusMapper(m StatusMapper) Request {
	r.statusMapper = m
	return r
}

func (r *requestBuilder) resolve(path string) string {
	full := path
	if r.c.baseURL != "" && !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		full = strings.TrimSuffix(r.c.baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	if len(r.query) > 0 {
		sep := "?"
		if strings.Contains(full, "?") {
			sep = "&"
		}
		full += sep + r.query.Encode()
	}
	return full
}

func (r *requestBuilder) execute(ctx context.Context, method, path string) (*Response, error) {
	// The span URL omits the query string; explorer keys travel there.
	ctx, span := r.c.tracer.Start(ctx, "http."+strings.ToLower(method),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
			attribute.String("provider", r.c.providerName),
		),
	)
	defer span.End()

	if r.c.limiter != nil {
		if err := r.c.limiter.Wait(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "rate limiter")
			return nil, err
		}
	}

	var bodyReader io.Reader
	switch b := r.body.(type) {
	case nil:
	case []byte:
		bodyReader = bytes.NewReader(b)
	case string:
		bodyReader = strings.NewReader(b)
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
		if r.headers.Get("Content-Type") == "" {
			r.headers.Set("Content-Type", "application/json")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, r.resolve(path), bodyReader)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = r.headers

	start := time.Now()
	resp, err := r.c.client.Do(req)
	if err != nil {
		r.recordError(ctx, span, err, start)
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		r.recordError(ctx, span, err, start)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if r.c.logResponse {
		span.AddEvent("response.body", trace.WithAttributes(
			attribute.String("http.response_body", string(body)),
		))
	}

	response := &Response{Response: resp, body: body}

	if response.IsError() {
		err := r.statusError(resp.StatusCode, body)
		span.SetStatus(codes.Error, err.Error())
		r.record(ctx, start, false)
		return response, err
	}

	if r.result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, r.result); err != nil {
			span.RecordError(err)
			r.record(ctx, start, false)
			return response, apperror.New(apperror.CodeInvalidResponse,
				apperror.WithCause(err),
				apperror.WithContext(r.c.providerName))
		}
	}

	r.record(ctx, start, true)
	return response, nil
}

func (r *requestBuilder) statusError(status int, body []byte) error {
	if r.statusMapper != nil {
		if err := r.statusMapper(status, body); err != nil {
			return err
		}
	}
	text := string(body)
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return &StatusError{Provider: r.c.providerName, StatusCode: status, Body: text}
}

func (r *requestBuilder) recordError(ctx context.Context, span trace.Span, err error, start time.Time) {
	span.RecordError(err)

	var netErr net.Error
	if errors.Is(err, context.Canceled) {
		span.SetAttributes(attribute.Bool("context.cancelled", true))
	}
	if errors.As(err, &netErr) && netErr.Timeout() {
		span.SetAttributes(attribute.Bool("request.timeout", true))
	}

	span.SetStatus(codes.Error, err.Error())
	r.record(ctx, start, false)
}

func (r *requestBuilder) record(ctx context.Context, start time.Time, success bool) {
	attrs := metric.WithAttributes(
		attribute.String("provider", r.c.providerName),
		attribute.Bool("success", success),
	)
	r.c.requests.Add(ctx, 1, attrs)
	r.c.duration.Record(ctx, time.Since(start).Seconds(), attrs)
}
