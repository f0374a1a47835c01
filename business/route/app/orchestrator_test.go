package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	blockchainDomain "github.com/fd1az/liquidity-vector/business/blockchain/domain"
	bridgeDomain "github.com/fd1az/liquidity-vector/business/bridge/domain"
	riskDomain "github.com/fd1az/liquidity-vector/business/risk/domain"
	"github.com/fd1az/liquidity-vector/business/route/domain"
	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/fetch"
	"github.com/fd1az/liquidity-vector/internal/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeGas struct {
	mu    sync.Mutex
	usd   map[chain.Chain]string
	fail  map[chain.Chain]error
	calls int
}

func (f *fakeGas) Estimate(_ context.Context, c chain.Chain, _ string) (blockchainDomain.GasEstimate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.fail[c]; err != nil {
		return blockchainDomain.GasEstimate{}, err
	}
	return blockchainDomain.GasEstimate{Chain: c, TotalCostUSD: d(f.usd[c]), Source: fetch.SourceLive}, nil
}

type fakeQuotes struct {
	mu     sync.Mutex
	quotes map[chain.Chain]fetch.Result[bridgeDomain.QuoteSet] // keyed by source chain
	calls  int
}

func (f *fakeQuotes) Quote(_ context.Context, src, _ chain.Chain, _ decimal.Decimal, _ string) fetch.Result[bridgeDomain.QuoteSet] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if r, ok := f.quotes[src]; ok {
		return r
	}
	return fetch.Failed[bridgeDomain.QuoteSet](apperror.New(apperror.CodeQuoteFetchFailed))
}

type fakeRisk struct {
	mu     sync.Mutex
	bridge string
	calls  int
}

func (f *fakeRisk) Assess(_ context.Context, src, dst chain.Chain, bridgeName string) riskDomain.Assessment {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.bridge = bridgeName
	p := bridgeDomain.Profile{Name: "Across Protocol", Architecture: bridgeDomain.Intent, AgeYears: 3}
	return riskDomain.Assessment{
		Profile:       p,
		BridgeLabel:   p.Label(),
		EstimatedTime: "~1 min",
		Breakdown:     riskDomain.Breakdown{OverallScore: 86, Level: 2, Warnings: []string{}},
		Provenance: riskDomain.Provenance{
			TVL:          fetch.SourceLive,
			Verification: fetch.SourceFallback,
			Exploits:     fetch.SourceDefault,
		},
	}
}

func liveQuote(bridge, fee string) fetch.Result[bridgeDomain.QuoteSet] {
	return fetch.Live(bridgeDomain.Single(bridgeDomain.Quote{
		Provider:    bridgeDomain.ProviderLiFi,
		BridgeName:  bridge,
		TotalFeeUSD: d(fee),
		DurationSec: 120,
	}, bridgeDomain.LiveConfidence))
}

func newTestOrchestrator(gas *fakeGas, quotes *fakeQuotes, risk *fakeRisk) *Orchestrator {
	o := NewOrchestrator(gas, quotes, risk, logger.NewNop())
	o.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	o.newID = func() uuid.UUID { return uuid.MustParse("00000000-0000-0000-0000-000000000001") }
	return o
}

func request(src, dst chain.Chain) domain.Request {
	return domain.Request{
		Source:     src,
		Dest:       dst,
		CapitalUSD: d("10000"),
		PoolAPY:    d("36.5"),
		Project:    "aave-v3",
		Symbol:     "USDC",
		PoolTVLUSD: d("500000000"),
	}
}

func TestAnalyzeSameChain(t *testing.T) {
	gas, quotes, risk := &fakeGas{}, &fakeQuotes{}, &fakeRisk{}
	o := newTestOrchestrator(gas, quotes, risk)

	r, err := o.Analyze(context.Background(), request(chain.Base, chain.Base))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if gas.calls+quotes.calls+risk.calls != 0 {
		t.Errorf("same chain made calls: gas %d quotes %d risk %d", gas.calls, quotes.calls, risk.calls)
	}
	if r.RiskScore != 100 || !r.BridgeCost.IsZero() || r.Quote.DurationSec != 0 {
		t.Errorf("result = score %d fee %s duration %d", r.RiskScore, r.BridgeCost, r.Quote.DurationSec)
	}
	if r.BridgeName != "Native Transfer" {
		t.Errorf("bridge = %q", r.BridgeName)
	}
}

func TestAnalyze(t *testing.T) {
	gas := &fakeGas{usd: map[chain.Chain]string{chain.Ethereum: "4", chain.Arbitrum: "1"}}
	quotes := &fakeQuotes{quotes: map[chain.Chain]fetch.Result[bridgeDomain.QuoteSet]{
		chain.Ethereum: liveQuote("across", "10"),
		chain.Arbitrum: fetch.Cached(bridgeDomain.Single(bridgeDomain.Quote{BridgeName: "stargate", TotalFeeUSD: d("8")}, bridgeDomain.LiveConfidence)),
	}}
	risk := &fakeRisk{}
	o := newTestOrchestrator(gas, quotes, risk)

	r, err := o.Analyze(context.Background(), request(chain.Ethereum, chain.Arbitrum))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if gas.calls != 2 || quotes.calls != 2 || risk.calls != 1 {
		t.Errorf("calls: gas %d quotes %d risk %d", gas.calls, quotes.calls, risk.calls)
	}
	if risk.bridge != "across" {
		t.Errorf("risk assessed %q, want the entry quote's bridge", risk.bridge)
	}

	// Exit leg: source gas from Arbitrum, final gas is Ethereum × 2.5.
	legs := []struct {
		name string
		got  domain.Leg
		want [4]string
	}{
		{"entry", r.Costs.Entry, [4]string{"10", "4", "1", "15"}},
		{"exit", r.Costs.Exit, [4]string{"8", "1", "10", "19"}},
	}
	for _, l := range legs {
		got := [4]decimal.Decimal{l.got.BridgeFee, l.got.SourceGas, l.got.DestGas, l.got.Total}
		for i, want := range l.want {
			if !got[i].Equal(d(want)) {
				t.Errorf("%s leg part %d = %s, want %s", l.name, i, got[i], want)
			}
		}
	}
	if !r.TotalCost.Equal(d("34")) || !r.GasCost.Equal(d("5")) || !r.BridgeCost.Equal(d("10")) {
		t.Errorf("costs = total %s gas %s bridge %s", r.TotalCost, r.GasCost, r.BridgeCost)
	}

	if r.AnalysisID.String() != "00000000-0000-0000-0000-000000000001" {
		t.Errorf("analysis id = %s", r.AnalysisID)
	}
	if r.RiskScore != 86 || r.RiskLevel != 2 || r.EstimatedTime != "~1 min" {
		t.Errorf("risk = %d/%d %q", r.RiskScore, r.RiskLevel, r.EstimatedTime)
	}

	want := domain.Provenance{
		SourceGas:    fetch.SourceLive,
		DestGas:      fetch.SourceLive,
		EntryQuote:   fetch.SourceLive,
		ExitQuote:    fetch.SourceCached,
		TVL:          fetch.SourceLive,
		Verification: fetch.SourceFallback,
		Exploits:     fetch.SourceDefault,
	}
	if r.Provenance != want {
		t.Errorf("provenance = %+v, want %+v", r.Provenance, want)
	}
}

func TestAnalyzeQuoteFailureUsesFallback(t *testing.T) {
	gas := &fakeGas{usd: map[chain.Chain]string{chain.Arbitrum: "1", chain.Base: "0.5"}}
	quotes := &fakeQuotes{quotes: map[chain.Chain]fetch.Result[bridgeDomain.QuoteSet]{
		chain.Base: liveQuote("hop", "6"),
	}}
	risk := &fakeRisk{}
	o := newTestOrchestrator(gas, quotes, risk)

	r, err := o.Analyze(context.Background(), request(chain.Arbitrum, chain.Base))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if r.BridgeName != "Estimated" || risk.bridge != "Estimated" {
		t.Errorf("bridge = %q, risk assessed %q", r.BridgeName, risk.bridge)
	}
	if !r.BridgeCost.Equal(d("20")) {
		t.Errorf("fallback fee = %s, want 20", r.BridgeCost)
	}
	if r.Quote.Provider != bridgeDomain.ProviderFallback || r.Quote.DurationSec != 300 || r.Quote.SlippageBps != 50 {
		t.Errorf("fallback quote = %+v", r.Quote)
	}
	if r.Provenance.EntryQuote != fetch.SourceFallback || r.Provenance.ExitQuote != fetch.SourceLive {
		t.Errorf("quote provenance = %s/%s", r.Provenance.EntryQuote, r.Provenance.ExitQuote)
	}
	// Neither end is the root chain: the exit gas is not scaled.
	if !r.Costs.Exit.DestGas.Equal(d("1")) {
		t.Errorf("exit dest gas = %s, want 1", r.Costs.Exit.DestGas)
	}
}

func TestAnalyzeGasFailure(t *testing.T) {
	gas := &fakeGas{
		usd:  map[chain.Chain]string{chain.Ethereum: "4"},
		fail: map[chain.Chain]error{chain.Optimism: errors.New("rpc down")},
	}
	quotes := &fakeQuotes{quotes: map[chain.Chain]fetch.Result[bridgeDomain.QuoteSet]{
		chain.Ethereum: liveQuote("across", "10"),
		chain.Optimism: liveQuote("across", "10"),
	}}
	risk := &fakeRisk{}
	o := newTestOrchestrator(gas, quotes, risk)

	_, err := o.Analyze(context.Background(), request(chain.Ethereum, chain.Optimism))
	if !apperror.HasCode(err, apperror.CodeDependencyUnavailable) {
		t.Fatalf("error = %v, want DEPENDENCY_UNAVAILABLE", err)
	}
	// The other branches still ran to completion.
	if gas.calls != 2 || quotes.calls != 2 {
		t.Errorf("calls: gas %d quotes %d", gas.calls, quotes.calls)
	}
	if risk.calls != 0 {
		t.Error("risk should not be assessed without gas")
	}
}

func TestAnalyzeValidation(t *testing.T) {
	gas, quotes, risk := &fakeGas{}, &fakeQuotes{}, &fakeRisk{}
	o := newTestOrchestrator(gas, quotes, risk)

	req := request(chain.Ethereum, chain.Base)
	req.CapitalUSD = decimal.Zero

	_, err := o.Analyze(context.Background(), req)
	if !apperror.IsValidation(err) {
		t.Fatalf("error = %v, want a validation error", err)
	}
	if gas.calls+quotes.calls != 0 {
		t.Error("invalid requests should not reach upstreams")
	}
}
