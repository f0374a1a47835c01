package ui

import (
	"github.com/fd1az/liquidity-vector/business/route/app"
)

// AnalysisMsg is sent when an analysis run completes.
type AnalysisMsg struct {
	Analysis app.Analysis
}

// CircuitsMsg is sent with fresh dependency health.
type CircuitsMsg struct {
	States app.CircuitStates
}

// ErrorMsg is sent when an analysis run fails.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// StartupMsg reports progress while the modules start.
type StartupMsg struct {
	Step   string
	Status string // "connecting", "connected", "failed"
}

// ReadyMsg signals that startup finished and the dashboard can show.
type ReadyMsg struct{}
