// Package app contains application services and port definitions for the bridge context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/liquidity-vector/business/bridge/domain"
	"github.com/fd1az/liquidity-vector/internal/chain"
)

// QuoteRequest asks for the cost of moving AmountUSD of USDC.
type QuoteRequest struct {
	From      chain.Chain
	To        chain.Chain
	AmountUSD decimal.Decimal
	Wallet    string
}

// QuoteProvider fetches bridge quotes from an aggregator.
type QuoteProvider interface {
	// Quote returns the aggregator's best route for req.
	Quote(ctx context.Context, req QuoteRequest) (domain.Quote, error)
}
