package infra

import (
	"context"

	"github.com/fd1az/liquidity-vector/business/route/app"
	"github.com/fd1az/liquidity-vector/pkg/ui"
)

// TUIReporter implements app.Reporter by forwarding to the watch dashboard.
type TUIReporter struct {
	send func(msg any)
}

// NewTUIReporter creates a TUIReporter bound to the running ui program.
func NewTUIReporter() *TUIReporter {
	return &TUIReporter{send: func(msg any) { ui.Send(msg) }}
}

// Start marks the dashboard ready.
func (r *TUIReporter) Start(ctx context.Context) error {
	r.send(ui.ReadyMsg{})
	return nil
}

// Report forwards one analysis.
func (r *TUIReporter) Report(a app.Analysis) {
	r.send(ui.AnalysisMsg{Analysis: a})
}

// ReportError forwards a failed run.
func (r *TUIReporter) ReportError(err error) {
	r.send(ui.ErrorMsg{Error: err})
}

// UpdateCircuits forwards dependency health.
func (r *TUIReporter) UpdateCircuits(states app.CircuitStates) {
	r.send(ui.CircuitsMsg{States: states})
}

// Stop is a no-op; the program exits on its own quit key.
func (r *TUIReporter) Stop() error {
	return nil
}
