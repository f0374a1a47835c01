package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNewAggregatorQuote(t *testing.T) {
	q := NewAggregatorQuote("Stargate", AggregatorAmounts{
		FromAmount:  dec("1000000000"),
		ToAmount:    dec("998500000"),
		ToAmountMin: dec("993500000"),
		GasCostsUSD: []decimal.Decimal{dec("0.42"), dec("0.1")},
		DurationSec: 64,
	})

	if q.Provider != ProviderLiFi || q.BridgeName != "Stargate" {
		t.Errorf("provider/bridge = %s/%s", q.Provider, q.BridgeName)
	}
	if !q.TotalFeeUSD.Equal(dec("2.02")) {
		t.Errorf("fee = %s, want 2.02", q.TotalFeeUSD)
	}
	if !q.MinAmountReceived.Equal(dec("993.5")) {
		t.Errorf("min received = %s", q.MinAmountReceived)
	}
	if q.SlippageBps != 65 {
		t.Errorf("slippage = %d, want 65", q.SlippageBps)
	}
	if q.DurationSec != 64 {
		t.Errorf("duration = %d", q.DurationSec)
	}
}

func TestNewAggregatorQuoteEdges(t *testing.T) {
	// Receiving more than sent costs nothing beyond gas.
	q := NewAggregatorQuote("Across", AggregatorAmounts{
		FromAmount:  dec("100000000"),
		ToAmount:    dec("100200000"),
		ToAmountMin: dec("100000000"),
	})
	if !q.TotalFeeUSD.IsZero() {
		t.Errorf("fee = %s, want 0", q.TotalFeeUSD)
	}
	if q.DurationSec != DefaultDurationSec {
		t.Errorf("duration = %d, want default", q.DurationSec)
	}

	zero := NewAggregatorQuote("x", AggregatorAmounts{})
	if zero.SlippageBps != DefaultSlippageBps {
		t.Errorf("slippage = %d, want %d", zero.SlippageBps, DefaultSlippageBps)
	}
}

func TestFallbackQuote(t *testing.T) {
	set := FallbackQuote(dec("10000"))
	q := set.Selected
	if !q.TotalFeeUSD.Equal(dec("20")) {
		t.Errorf("fee = %s, want 20", q.TotalFeeUSD)
	}
	if !q.MinAmountReceived.Equal(dec("9980")) {
		t.Errorf("received = %s, want 9980", q.MinAmountReceived)
	}
	if q.SlippageBps != 50 || q.DurationSec != 300 {
		t.Errorf("slippage/duration = %d/%d", q.SlippageBps, q.DurationSec)
	}
	if q.Provider != "Fallback" || q.BridgeName != "Estimated" {
		t.Errorf("provider/bridge = %s/%s", q.Provider, q.BridgeName)
	}
	if !set.Confidence.Equal(dec("0.5")) || len(set.Candidates) != 1 {
		t.Errorf("confidence = %s, candidates = %d", set.Confidence, len(set.Candidates))
	}
}

func TestNativeQuote(t *testing.T) {
	set := NativeQuote(dec("5000"))
	if set.Selected.BridgeName != "Local Transfer" || !set.Selected.TotalFeeUSD.IsZero() {
		t.Errorf("unexpected native quote %+v", set.Selected)
	}
	if !set.Selected.MinAmountReceived.Equal(dec("5000")) || !set.Confidence.Equal(decimal.NewFromInt(1)) {
		t.Errorf("unexpected native quote %+v", set)
	}
}
