package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"

	bridgeDomain "github.com/fd1az/liquidity-vector/business/bridge/domain"
	riskDomain "github.com/fd1az/liquidity-vector/business/risk/domain"
	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/fetch"
)

func TestRouteRiskLevel(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{100, 1}, {90, 1}, {89, 2}, {80, 2}, {79, 3}, {70, 3}, {69, 4}, {60, 4}, {59, 5}, {0, 5},
	}
	for _, tt := range tests {
		if got := RouteRiskLevel(tt.score); got != tt.want {
			t.Errorf("RouteRiskLevel(%d) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func testRequest(src, dst chain.Chain, apy string) Request {
	return Request{
		Source:     src,
		Dest:       dst,
		CapitalUSD: d("10000"),
		PoolAPY:    d(apy),
		Project:    "aave-v3",
		Symbol:     "USDC",
		PoolTVLUSD: d("200000000"),
	}
}

func TestBuildResultNative(t *testing.T) {
	req := testRequest(chain.Base, chain.Base, "5")
	id := uuid.New()
	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	r := BuildResult(id, at, NativeInputs(req))

	if r.AnalysisID != id || !r.CreatedAt.Equal(at) {
		t.Errorf("id/time not carried: %s %s", r.AnalysisID, r.CreatedAt)
	}
	if !r.TotalCost.IsZero() || !r.BridgeCost.IsZero() || !r.GasCost.IsZero() {
		t.Errorf("costs = %s/%s/%s, want zero", r.BridgeCost, r.GasCost, r.TotalCost)
	}
	if r.RiskScore != 100 || r.RiskLevel != 1 {
		t.Errorf("risk = %d/%d, want 100/1", r.RiskScore, r.RiskLevel)
	}
	if r.BridgeName != "Native Transfer" || r.EstimatedTime != "Instant" {
		t.Errorf("bridge = %q %q", r.BridgeName, r.EstimatedTime)
	}
	if r.Quote.DurationSec != 0 {
		t.Errorf("duration = %d, want 0", r.Quote.DurationSec)
	}
	if !r.HasBreakeven || !r.BreakevenDays.IsZero() {
		t.Errorf("breakeven = %v/%s, want immediate", r.HasBreakeven, r.BreakevenDays)
	}
	if r.HasExploits {
		t.Error("native transfer has no exploits")
	}
}

func TestBuildResult(t *testing.T) {
	req := testRequest(chain.Ethereum, chain.Arbitrum, "36.5")
	profile := bridgeDomain.Profile{Name: "Across Protocol", Architecture: bridgeDomain.Intent}
	breakdown := riskDomain.Breakdown{OverallScore: 84, Level: 2, Warnings: []string{"Low TVL: $40.0M"}}

	in := Inputs{
		Request: req,
		Costs:   RoundTrip(NewLeg(d("10"), d("2"), d("3")), NewLeg(d("8"), d("3"), d("2"))),
		Quote:   bridgeDomain.Quote{Provider: bridgeDomain.ProviderLiFi, BridgeName: "across", DurationSec: 60},
		Assessment: riskDomain.Assessment{
			Profile:       profile,
			BridgeLabel:   profile.Label(),
			EstimatedTime: "~1 min",
			Breakdown:     breakdown,
		},
		Provenance: Provenance{
			SourceGas:    fetch.SourceLive,
			DestGas:      fetch.SourceCached,
			EntryQuote:   fetch.SourceLive,
			ExitQuote:    fetch.SourceFallback,
			TVL:          fetch.SourceLive,
			Verification: fetch.SourceLive,
			Exploits:     fetch.SourceDefault,
		},
	}

	r := BuildResult(uuid.New(), time.Now(), in)

	checks := []struct {
		name string
		got  string
		want string
	}{
		{"bridge cost", r.BridgeCost.String(), "10"},
		{"gas cost", r.GasCost.String(), "5"},
		{"total cost", r.TotalCost.String(), "28"},
		{"daily yield", r.DailyYieldUSD.String(), "10"},
		{"breakeven days", r.BreakevenDays.String(), "2.8"},
		{"breakeven hours", r.BreakevenHours.String(), "67.2"},
		{"gross 30d", r.GrossYield30d.String(), "300"},
		{"net 30d", r.NetProfit30d.String(), "272"},
	}
	for _, c := range checks {
		if !d(c.got).Equal(d(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}

	if r.RiskScore != 84 || r.RiskLevel != 2 {
		t.Errorf("risk = %d/%d, want 84/2", r.RiskScore, r.RiskLevel)
	}
	if r.BridgeName != "across" || r.BridgeMetadata.Name != "Across Protocol" {
		t.Errorf("bridge = %q / %q", r.BridgeName, r.BridgeMetadata.Name)
	}
	if len(r.Warnings) != 1 || r.Warnings[0] != "Low TVL: $40.0M" {
		t.Errorf("warnings = %v", r.Warnings)
	}
	if r.MinProfitableCapital == nil {
		t.Error("expected a minimum profitable capital")
	}
	if len(r.Matrix.Rows) != 7 || len(r.Chart) == 0 {
		t.Errorf("matrix rows = %d, chart points = %d", len(r.Matrix.Rows), len(r.Chart))
	}
	if !r.Provenance.Degraded() {
		t.Error("a fallback exit quote should mark the result degraded")
	}
}

func TestProvenanceDegraded(t *testing.T) {
	live := Provenance{
		SourceGas: fetch.SourceLive, DestGas: fetch.SourceLive,
		EntryQuote: fetch.SourceCached, ExitQuote: fetch.SourceLive,
		TVL: fetch.SourceLive, Verification: fetch.SourceCached, Exploits: fetch.SourceLive,
	}
	if live.Degraded() {
		t.Error("live and cached data is not degraded")
	}
}
