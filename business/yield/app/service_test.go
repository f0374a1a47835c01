package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fd1az/liquidity-vector/business/yield/domain"
	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/circuitbreaker"
	"github.com/fd1az/liquidity-vector/internal/fetch"
	"github.com/fd1az/liquidity-vector/internal/logger"
)

type fakeSource struct {
	calls atomic.Int32
	pools []domain.RawPool
	err   error
}

func (f *fakeSource) Pools(context.Context) ([]domain.RawPool, error) {
	f.calls.Add(1)
	return f.pools, f.err
}

func newService(src *fakeSource, failMax uint32) *YieldService {
	breaker := circuitbreaker.New(circuitbreaker.Config{Name: "defillama", FailMax: failMax, ResetTimeout: time.Minute})
	f := fetch.New[[]domain.Pool](fetch.CacheConfig{Name: "pools", Capacity: 4, TTL: time.Minute}, breaker)
	return NewYieldService(src, f, logger.NewNop())
}

func TestTopPoolsCached(t *testing.T) {
	src := &fakeSource{pools: []domain.RawPool{
		{Chain: "Base", Symbol: "USDC", TVLUSD: 40e6, APY: 6, ID: "p1"},
		{Chain: "Base", Symbol: "USDC", TVLUSD: 40e6, APY: 4, ID: "p2"},
		{Chain: "Base", Symbol: "DAI", TVLUSD: 40e6, APY: 9, ID: "p3"},
	}}
	s := newService(src, 3)
	ctx := context.Background()

	pools, err := s.TopPools(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pools) != 2 || pools[0].ID != "p1" {
		t.Errorf("pools = %+v", pools)
	}

	y, err := s.CurrentYield(ctx, chain.Base)
	if err != nil {
		t.Fatal(err)
	}
	if y.CurrentYield != 5 || y.Source != domain.SourceMarketAverage {
		t.Errorf("yield = %+v", y)
	}
	if src.calls.Load() != 1 {
		t.Errorf("source called %d times", src.calls.Load())
	}
}

func TestTopPoolsFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("connection reset")}
	s := newService(src, 1)
	ctx := context.Background()

	_, err := s.TopPools(ctx)
	if apperror.GetCode(err) != apperror.CodePoolsFetchFailed {
		t.Errorf("first error = %v", err)
	}

	_, err = s.CurrentYield(ctx, chain.Ethereum)
	if apperror.GetCode(err) != apperror.CodeDependencyUnavailable {
		t.Errorf("open breaker error = %v", err)
	}
	if src.calls.Load() != 1 {
		t.Errorf("source called %d times", src.calls.Load())
	}
}
