// Package domain contains the economics of a capital migration: round trip
// costs, breakeven, profitability and the pre-flight checks.
package domain

import (
	"github.com/shopspring/decimal"

	"github.com/fd1az/liquidity-vector/internal/chain"
)

// ExitGasMultiplier scales the exit leg's destination gas when capital
// returns to the root chain from a rollup.
var ExitGasMultiplier = decimal.RequireFromString("2.5")

// Leg is the cost of moving capital across once.
type Leg struct {
	BridgeFee decimal.Decimal `json:"bridge_fee"`
	SourceGas decimal.Decimal `json:"source_gas"`
	DestGas   decimal.Decimal `json:"dest_gas"`
	Total     decimal.Decimal `json:"total"`
}

// NewLeg sums the parts of a leg.
func NewLeg(bridgeFee, sourceGas, destGas decimal.Decimal) Leg {
	return Leg{
		BridgeFee: bridgeFee,
		SourceGas: sourceGas,
		DestGas:   destGas,
		Total:     bridgeFee.Add(sourceGas).Add(destGas),
	}
}

// Mirror is the way back over the same bridge: same fee, gas legs swapped.
func Mirror(entry Leg) Leg {
	return NewLeg(entry.BridgeFee, entry.DestGas, entry.SourceGas)
}

// RoundTripCosts is the cost of entering a position and leaving it again.
type RoundTripCosts struct {
	Entry Leg             `json:"entry"`
	Exit  Leg             `json:"exit"`
	Total decimal.Decimal `json:"round_trip_total"`
}

// RoundTrip combines both legs. Leg totals are recomputed from their parts.
func RoundTrip(entry, exit Leg) RoundTripCosts {
	entry = NewLeg(entry.BridgeFee, entry.SourceGas, entry.DestGas)
	exit = NewLeg(exit.BridgeFee, exit.SourceGas, exit.DestGas)
	return RoundTripCosts{
		Entry: entry,
		Exit:  exit,
		Total: entry.Total.Add(exit.Total),
	}
}

// GasCost is the gas paid on the way in.
func (r RoundTripCosts) GasCost() decimal.Decimal {
	return r.Entry.SourceGas.Add(r.Entry.DestGas)
}

// ExitDestGas prices the final transaction of the exit leg from the
// source chain's gas estimate.
func ExitDestGas(sourceGas decimal.Decimal, src, dst chain.Chain) decimal.Decimal {
	if src.IsRoot() && !dst.IsRoot() {
		return sourceGas.Mul(ExitGasMultiplier)
	}
	return sourceGas
}

// CostRatio is cost as a fraction of capital, zero without capital.
func CostRatio(cost, capital decimal.Decimal) decimal.Decimal {
	if !capital.IsPositive() {
		return decimal.Zero
	}
	return cost.Div(capital)
}
