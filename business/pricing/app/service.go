package app

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fd1az/liquidity-vector/business/pricing/domain"
	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/fetch"
	"github.com/fd1az/liquidity-vector/internal/logger"
)

// PricingService resolves native token prices. It never fails: when the
// oracle is unavailable it answers with the last known price, then with the
// static table.
type PricingService struct {
	oracle  PriceOracle
	fetcher *fetch.Fetcher[decimal.Decimal]
	log     logger.LoggerInterface

	mu        sync.RWMutex
	lastKnown map[string]decimal.Decimal
}

// NewPricingService creates a PricingService. The fetcher should carry the
// rate limit retry policy.
func NewPricingService(oracle PriceOracle, fetcher *fetch.Fetcher[decimal.Decimal], log logger.LoggerInterface) *PricingService {
	return &PricingService{
		oracle:    oracle,
		fetcher:   fetcher,
		log:       log,
		lastKnown: make(map[string]decimal.Decimal),
	}
}

// NativePrice returns the USD price of c's gas token.
func (s *PricingService) NativePrice(ctx context.Context, c chain.Chain) fetch.Result[decimal.Decimal] {
	return s.TokenPrice(ctx, c.Info().NativeTokenID)
}

// TokenPrice returns the USD price of a price oracle id.
func (s *PricingService) TokenPrice(ctx context.Context, tokenID string) fetch.Result[decimal.Decimal] {
	res := s.fetcher.Fetch(ctx, tokenID, func(ctx context.Context) (decimal.Decimal, error) {
		return s.oracle.USDPrice(ctx, tokenID)
	})
	if !res.Failed() {
		s.mu.Lock()
		s.lastKnown[tokenID] = res.Value
		s.mu.Unlock()
		return res
	}

	s.mu.RLock()
	stale, ok := s.lastKnown[tokenID]
	s.mu.RUnlock()
	if ok {
		s.log.Warn(ctx, "using last known price", "token", tokenID, "price", stale.String(), "error", res.Err)
		return fetch.Fallback(stale, res.Err)
	}

	fallback := domain.FallbackPrice(tokenID)
	s.log.Warn(ctx, "using static price", "token", tokenID, "price", fallback.String(), "error", res.Err)
	return fetch.Default(fallback, res.Err)
}
