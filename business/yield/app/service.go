// Package app serves yield pools and per chain market yields.
package app

import (
	"context"

	"github.com/fd1az/liquidity-vector/business/yield/domain"
	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/fetch"
	"github.com/fd1az/liquidity-vector/internal/logger"
)

// poolsKey caches the filtered listing under one entry.
const poolsKey = "top_usdc"

// YieldService answers pool questions from the yield aggregator. There is
// no static pool list to fall back to, so failures are returned.
type YieldService struct {
	source  PoolSource
	fetcher *fetch.Fetcher[[]domain.Pool]
	log     logger.LoggerInterface
}

// NewYieldService creates a YieldService.
func NewYieldService(source PoolSource, fetcher *fetch.Fetcher[[]domain.Pool], log logger.LoggerInterface) *YieldService {
	return &YieldService{source: source, fetcher: fetcher, log: log}
}

// TopPools returns the best USDC pools, at most three per chain.
func (s *YieldService) TopPools(ctx context.Context) ([]domain.Pool, error) {
	res := s.fetcher.Fetch(ctx, poolsKey, func(ctx context.Context) ([]domain.Pool, error) {
		raw, err := s.source.Pools(ctx)
		if err != nil {
			return nil, err
		}
		return domain.TopPools(raw), nil
	})
	if res.Failed() {
		s.log.Error(ctx, "yield pools unavailable", "error", res.Err)
		if apperror.IsCircuitOpen(res.Err) {
			return nil, apperror.DependencyUnavailable("defillama", res.Err)
		}
		if apperror.IsAppError(res.Err) {
			return nil, res.Err
		}
		return nil, apperror.External(apperror.CodePoolsFetchFailed, "pools", res.Err)
	}

	s.log.Debug(ctx, "yield pools", "count", len(res.Value), "source", res.Source)
	return res.Value, nil
}

// CurrentYield is the average APY of c's top pools.
func (s *YieldService) CurrentYield(ctx context.Context, c chain.Chain) (domain.Yield, error) {
	pools, err := s.TopPools(ctx)
	if err != nil {
		return domain.Yield{}, err
	}
	return domain.CurrentYield(pools, c), nil
}
