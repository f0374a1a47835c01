// Package domain contains the core domain types for the pricing context.
package domain

import "github.com/shopspring/decimal"

// Price oracle ids of the gas tokens.
const (
	TokenEthereum  = "ethereum"
	TokenMatic     = "matic-network"
	TokenAvalanche = "avalanche-2"
	TokenBNB       = "binancecoin"
)

var fallbackPrices = map[string]decimal.Decimal{
	TokenEthereum:  decimal.NewFromInt(2500),
	TokenMatic:     decimal.RequireFromString("0.8"),
	TokenAvalanche: decimal.NewFromInt(35),
	TokenBNB:       decimal.NewFromInt(300),
}

// DefaultUnknownPrice is used for tokens missing from the fallback table.
var DefaultUnknownPrice = decimal.NewFromInt(100)

// FallbackPrice returns the static USD price of tokenID.
func FallbackPrice(tokenID string) decimal.Decimal {
	if p, ok := fallbackPrices[tokenID]; ok {
		return p
	}
	return DefaultUnknownPrice
}
