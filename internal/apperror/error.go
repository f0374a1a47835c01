package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// AppError is a coded error. Code drives retry, breaker exclusion and
// fallback decisions; Context names the upstream or input involved.
type AppError struct {
	Code       Code      `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"statusCode"`
	Context    string    `json:"context,omitempty"`
	TraceID    string    `json:"traceId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	cause      error
	stack      []uintptr
}

func (e *AppError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Code))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Context != "" {
		sb.WriteString(" (context: " + e.Context + ")")
	}
	if e.cause != nil {
		sb.WriteString(": " + e.cause.Error())
	}
	return sb.String()
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches on code, so errors.Is(err, New(CodeCircuitOpen)) works through
// wrapping.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Code == t.Code
}

// InSpan records the trace id of the span in ctx, if any.
func (e *AppError) InSpan(ctx context.Context) *AppError {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		e.TraceID = sc.TraceID().String()
	}
	return e
}

// Response is the client-facing shape of an AppError.
type Response struct {
	Code      Code   `json:"code"`
	Message   string `json:"message"`
	Context   string `json:"context,omitempty"`
	TraceID   string `json:"traceId,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ToResponse drops the cause and stack.
func (e *AppError) ToResponse() Response {
	return Response{
		Code:      e.Code,
		Message:   e.Message,
		Context:   e.Context,
		TraceID:   e.TraceID,
		Timestamp: e.Timestamp.Format(time.RFC3339),
	}
}

// ToLog returns key/value pairs for the structured logger.
func (e *AppError) ToLog() []any {
	kv := []any{"code", e.Code, "status", e.StatusCode}
	if e.Context != "" {
		kv = append(kv, "context", e.Context)
	}
	if e.TraceID != "" {
		kv = append(kv, "trace_id", e.TraceID)
	}
	if e.cause != nil {
		kv = append(kv, "cause", e.cause.Error())
	}
	if len(e.stack) > 0 {
		kv = append(kv, "stack", e.formatStack())
	}
	return kv
}

func (e *AppError) formatStack() string {
	var sb strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", frame.File, frame.Line, frame.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[:n]
}

// New creates an AppError. The message defaults to the code's catalogue
// entry, then to the code itself.
func New(code Code, opts ...Option) *AppError {
	err := &AppError{
		Code:       code,
		Message:    messages[code],
		StatusCode: defaultStatus(code),
		Timestamp:  time.Now(),
		stack:      captureStack(),
	}
	for _, opt := range opts {
		opt(err)
	}
	if err.Message == "" {
		err.Message = string(code)
	}
	return err
}

// Option configures an AppError.
type Option func(*AppError)

func WithMessage(message string) Option {
	return func(e *AppError) { e.Message = message }
}

func WithContext(context string) Option {
	return func(e *AppError) { e.Context = context }
}

func WithStatusCode(statusCode int) Option {
	return func(e *AppError) { e.StatusCode = statusCode }
}

func WithCause(cause error) Option {
	return func(e *AppError) { e.cause = cause }
}

// Validation reports bad input.
func Validation(code Code, context string) *AppError {
	return New(code, WithContext(context), WithStatusCode(http.StatusBadRequest))
}

// External reports a failed upstream call.
func External(code Code, upstream string, cause error) *AppError {
	return New(code, WithContext(upstream), WithCause(cause), WithStatusCode(http.StatusServiceUnavailable))
}

// DependencyUnavailable reports that a required upstream could not be reached
// and no safe default exists.
func DependencyUnavailable(dependency string, cause error) *AppError {
	return New(CodeDependencyUnavailable,
		WithContext(dependency),
		WithCause(cause),
		WithMessage(dependency+" unavailable"))
}

// RateLimited reports a 429 from upstream.
func RateLimited(upstream string) *AppError {
	return New(CodeRateLimitExceeded, WithContext(upstream))
}

// Wrap returns err's AppError, filling in context, or wraps a plain error
// under code.
func Wrap(err error, code Code, context string) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		if context != "" && appErr.Context == "" {
			appErr.Context = context
		}
		return appErr
	}
	return New(code, WithContext(context), WithCause(err))
}

// IsAppError reports whether err's chain holds an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode is the outermost AppError code in err's chain.
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknownError
}

func defaultStatus(code Code) int {
	switch code {
	case CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case CodeInsufficientLiquidity:
		return http.StatusUnprocessableEntity
	case CodeRouteUnavailable, CodeValidationError, CodeRequiredField:
		return http.StatusBadRequest
	case CodeDependencyUnavailable, CodeCircuitOpen, CodeCircuitHalfOpen:
		return http.StatusServiceUnavailable
	}

	s := string(code)
	switch {
	case strings.Contains(s, "NOT_FOUND"):
		return http.StatusNotFound
	case strings.Contains(s, "INVALID"):
		return http.StatusBadRequest
	case strings.Contains(s, "CONNECTION"),
		strings.Contains(s, "TIMEOUT"),
		strings.Contains(s, "FETCH_FAILED"):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
