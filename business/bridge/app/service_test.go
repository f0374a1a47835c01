package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/liquidity-vector/business/bridge/domain"
	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/circuitbreaker"
	"github.com/fd1az/liquidity-vector/internal/fetch"
	"github.com/fd1az/liquidity-vector/internal/logger"
)

type fakeProvider struct {
	calls atomic.Int32
	quote domain.Quote
	err   error
	last  QuoteRequest
}

func (f *fakeProvider) Quote(_ context.Context, req QuoteRequest) (domain.Quote, error) {
	f.calls.Add(1)
	f.last = req
	return f.quote, f.err
}

func newService(p *fakeProvider, failMax uint32) *BridgeService {
	breaker := circuitbreaker.New(circuitbreaker.Config{
		Name:         "lifi",
		FailMax:      failMax,
		ResetTimeout: time.Minute,
		Excluded:     []apperror.Code{apperror.CodeRouteUnavailable, apperror.CodeInsufficientLiquidity},
	})
	f := fetch.New[domain.QuoteSet](fetch.CacheConfig{Name: "bridge_quote", Capacity: 50, TTL: 10 * time.Second}, breaker)
	return NewBridgeService(p, f, domain.DefaultProfiles(), "0xdefault", logger.NewNop())
}

func TestQuoteSameChain(t *testing.T) {
	p := &fakeProvider{}
	s := newService(p, 5)

	res := s.Quote(context.Background(), chain.Base, chain.Base, decimal.NewFromInt(500), "")
	if res.Failed() || res.Value.Selected.BridgeName != "Local Transfer" {
		t.Fatalf("unexpected result %+v", res)
	}
	if p.calls.Load() != 0 {
		t.Error("same chain quote must not call the aggregator")
	}
}

func TestQuoteLiveThenCached(t *testing.T) {
	p := &fakeProvider{quote: domain.Quote{Provider: domain.ProviderLiFi, BridgeName: "Across", TotalFeeUSD: decimal.NewFromInt(3)}}
	s := newService(p, 5)
	ctx := context.Background()

	first := s.Quote(ctx, chain.Arbitrum, chain.Optimism, decimal.RequireFromString("1000.75"), "")
	if first.Source != fetch.SourceLive {
		t.Fatalf("source = %s, want live", first.Source)
	}
	if !first.Value.Confidence.Equal(domain.LiveConfidence) {
		t.Errorf("confidence = %s", first.Value.Confidence)
	}
	if p.last.Wallet != "0xdefault" {
		t.Errorf("wallet = %q, want default", p.last.Wallet)
	}

	// Same integer amount shares the cache entry.
	second := s.Quote(ctx, chain.Arbitrum, chain.Optimism, decimal.NewFromInt(1000), "0xabc")
	if second.Source != fetch.SourceCached {
		t.Errorf("source = %s, want cached", second.Source)
	}
	if p.calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", p.calls.Load())
	}
}

func TestQuoteFailureIsReturned(t *testing.T) {
	p := &fakeProvider{err: apperror.New(apperror.CodeRouteUnavailable)}
	s := newService(p, 1)

	for i := 0; i < 3; i++ {
		res := s.Quote(context.Background(), chain.Polygon, chain.BNB, decimal.NewFromInt(100), "")
		if !res.Failed() || !apperror.IsRouteUnavailable(res.Err) {
			t.Fatalf("call %d: got %+v, want route unavailable", i, res)
		}
	}
	// Excluded codes never trip the breaker.
	if p.calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", p.calls.Load())
	}
}

func TestQuoteBreakerOpenFallsBack(t *testing.T) {
	p := &fakeProvider{err: apperror.External(apperror.CodeQuoteFetchFailed, "lifi", errors.New("502"))}
	s := newService(p, 1)
	ctx := context.Background()

	if res := s.Quote(ctx, chain.Ethereum, chain.Base, decimal.NewFromInt(10000), ""); !res.Failed() {
		t.Fatalf("first failure should be returned, got %+v", res)
	}

	res := s.Quote(ctx, chain.Ethereum, chain.Base, decimal.NewFromInt(10000), "")
	if res.Source != fetch.SourceFallback {
		t.Fatalf("source = %s, want fallback", res.Source)
	}
	if !apperror.IsCircuitOpen(res.Err) {
		t.Errorf("cause = %v, want circuit open", res.Err)
	}
	if !res.Value.Selected.TotalFeeUSD.Equal(decimal.NewFromInt(20)) {
		t.Errorf("fallback fee = %s", res.Value.Selected.TotalFeeUSD)
	}
	if p.calls.Load() != 1 {
		t.Errorf("calls = %d, open breaker must not call", p.calls.Load())
	}
}

func TestProfilesIsCopy(t *testing.T) {
	s := newService(&fakeProvider{}, 5)
	ps := s.Profiles()
	ps[0].Name = "changed"
	if s.Profiles()[0].Name == "changed" {
		t.Error("Profiles must return a copy")
	}
}
