package domain

import (
	"github.com/shopspring/decimal"
)

const (
	ProviderLiFi     = "Li.Fi"
	ProviderNative   = "Native"
	ProviderFallback = "Fallback"

	// DefaultDurationSec applies when the quote omits its execution time.
	DefaultDurationSec = 300
	// DefaultSlippageBps applies when the quoted input amount is zero.
	DefaultSlippageBps = 50
)

var (
	// LiveConfidence is attached to quotes parsed from the aggregator.
	LiveConfidence = decimal.RequireFromString("0.9")
	// FallbackFeeRatio is the fee charged by a fallback quote.
	FallbackFeeRatio = decimal.RequireFromString("0.002")
	// FallbackConfidence is attached to fallback quotes.
	FallbackConfidence = decimal.RequireFromString("0.5")

	usdcUnit = decimal.New(1, 6)
	bpsScale = decimal.NewFromInt(10_000)
)

// Quote is the cost of moving an amount across one bridge.
type Quote struct {
	Provider          string          `json:"provider"`
	BridgeName        string          `json:"bridge_name"`
	TotalFeeUSD       decimal.Decimal `json:"total_fee_usd"`
	MinAmountReceived decimal.Decimal `json:"min_amount_received"`
	DurationSec       int             `json:"duration_sec"`
	SlippageBps       int             `json:"slippage_bps"`
}

// QuoteSet is the selected quote with the candidates it was chosen from.
type QuoteSet struct {
	Selected   Quote           `json:"selected"`
	Candidates []Quote         `json:"candidates"`
	Confidence decimal.Decimal `json:"confidence"`
}

// Single wraps one quote as a set.
func Single(q Quote, confidence decimal.Decimal) QuoteSet {
	return QuoteSet{Selected: q, Candidates: []Quote{q}, Confidence: confidence}
}

// AggregatorAmounts is the raw part of an aggregator quote, in USDC base
// units (6 decimals) except for the gas costs.
type AggregatorAmounts struct {
	FromAmount  decimal.Decimal
	ToAmount    decimal.Decimal
	ToAmountMin decimal.Decimal
	GasCostsUSD []decimal.Decimal
	DurationSec int
}

// NewAggregatorQuote prices a parsed aggregator response. The fee is the
// amount lost in transit plus the quoted gas, rounded to cents.
func NewAggregatorQuote(bridgeName string, a AggregatorAmounts) Quote {
	lost := a.FromAmount.Sub(a.ToAmount).Div(usdcUnit)
	if lost.IsNegative() {
		lost = decimal.Zero
	}
	fee := lost
	for _, g := range a.GasCostsUSD {
		fee = fee.Add(g)
	}

	slippage := DefaultSlippageBps
	if a.FromAmount.IsPositive() {
		slippage = int(a.FromAmount.Sub(a.ToAmountMin).Div(a.FromAmount).Mul(bpsScale).IntPart())
	}

	duration := a.DurationSec
	if duration <= 0 {
		duration = DefaultDurationSec
	}

	return Quote{
		Provider:          ProviderLiFi,
		BridgeName:        bridgeName,
		TotalFeeUSD:       fee.Round(2),
		MinAmountReceived: a.ToAmountMin.Div(usdcUnit),
		DurationSec:       duration,
		SlippageBps:       slippage,
	}
}

// NativeQuote is a transfer within one chain: free and quick.
func NativeQuote(amountUSD decimal.Decimal) QuoteSet {
	return Single(Quote{
		Provider:          ProviderNative,
		BridgeName:        "Local Transfer",
		TotalFeeUSD:       decimal.Zero,
		MinAmountReceived: amountUSD,
		DurationSec:       30,
		SlippageBps:       0,
	}, decimal.NewFromInt(1))
}

// FallbackQuote is the conservative estimate used when no live quote exists.
func FallbackQuote(amountUSD decimal.Decimal) QuoteSet {
	return Single(Quote{
		Provider:          ProviderFallback,
		BridgeName:        "Estimated",
		TotalFeeUSD:       amountUSD.Mul(FallbackFeeRatio),
		MinAmountReceived: amountUSD.Mul(decimal.NewFromInt(1).Sub(FallbackFeeRatio)),
		DurationSec:       DefaultDurationSec,
		SlippageBps:       DefaultSlippageBps,
	}, FallbackConfidence)
}
