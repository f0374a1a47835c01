package infra

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/fd1az/liquidity-vector/business/route/app"
	"github.com/fd1az/liquidity-vector/internal/apperror"
)

// JSONReporter implements app.Reporter as one JSON document per line.
type JSONReporter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONReporter creates a JSONReporter writing to stdout.
func NewJSONReporter() *JSONReporter {
	return NewJSONReporterTo(os.Stdout)
}

// NewJSONReporterTo creates a JSONReporter writing to out.
func NewJSONReporterTo(out io.Writer) *JSONReporter {
	return &JSONReporter{enc: json.NewEncoder(out)}
}

type jsonError struct {
	Error  string             `json:"error"`
	Detail *apperror.Response `json:"detail,omitempty"`
}

func (r *JSONReporter) Start(ctx context.Context) error { return nil }

func (r *JSONReporter) Report(a app.Analysis) { r.write(a) }

// ReportError adds the coded detail when err carries an AppError.
func (r *JSONReporter) ReportError(err error) {
	out := jsonError{Error: err.Error()}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		resp := appErr.ToResponse()
		out.Detail = &resp
	}
	r.write(out)
}

// UpdateCircuits writes nothing: the health server serves circuit state.
func (r *JSONReporter) UpdateCircuits(app.CircuitStates) {}

func (r *JSONReporter) Stop() error { return nil }

func (r *JSONReporter) write(v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.enc.Encode(v)
}
