// Package app contains application services and port definitions for the pricing context.
package app

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceOracle quotes a token in USD.
type PriceOracle interface {
	USDPrice(ctx context.Context, tokenID string) (decimal.Decimal, error)
}
