// Package app contains the route analysis services and their ports.
package app

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"

	blockchainDomain "github.com/fd1az/liquidity-vector/business/blockchain/domain"
	bridgeDomain "github.com/fd1az/liquidity-vector/business/bridge/domain"
	riskDomain "github.com/fd1az/liquidity-vector/business/risk/domain"
	"github.com/fd1az/liquidity-vector/business/route/domain"
	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/fetch"
)

// GasEstimator prices one bridge transaction on a chain.
type GasEstimator interface {
	Estimate(ctx context.Context, c chain.Chain, wallet string) (blockchainDomain.GasEstimate, error)
}

// GasPricer reads the current gas price of a chain, in wei.
type GasPricer interface {
	GasPrice(ctx context.Context, c chain.Chain) fetch.Result[*big.Int]
}

// QuoteSource quotes a bridge transfer.
type QuoteSource interface {
	Quote(ctx context.Context, src, dst chain.Chain, amountUSD decimal.Decimal, wallet string) fetch.Result[bridgeDomain.QuoteSet]
}

// RiskAssessor scores the bridge a quote was routed through.
type RiskAssessor interface {
	Assess(ctx context.Context, src, dst chain.Chain, bridgeName string) riskDomain.Assessment
}

// Analysis is one analysis run with its pre-flight report.
type Analysis struct {
	Result    domain.Result `json:"result"`
	Preflight domain.Report `json:"preflight"`
}

// Reporter displays analyses as they complete.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Report displays one analysis.
	Report(a Analysis)

	// ReportError displays a failed analysis run.
	ReportError(err error)

	// UpdateCircuits refreshes the dependency health display.
	UpdateCircuits(states CircuitStates)

	// Stop gracefully shuts down the reporter.
	Stop() error
}
