package app

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fd1az/liquidity-vector/business/bridge/domain"
	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/fetch"
	"github.com/fd1az/liquidity-vector/internal/logger"
)

// BridgeService quotes transfers and owns the bridge reference data.
type BridgeService struct {
	provider      QuoteProvider
	fetcher       *fetch.Fetcher[domain.QuoteSet]
	profiles      []domain.Profile
	defaultWallet string
	log           logger.LoggerInterface
}

// NewBridgeService creates a BridgeService. defaultWallet is sent when a
// request carries no wallet.
func NewBridgeService(
	provider QuoteProvider,
	fetcher *fetch.Fetcher[domain.QuoteSet],
	profiles []domain.Profile,
	defaultWallet string,
	log logger.LoggerInterface,
) *BridgeService {
	return &BridgeService{
		provider:      provider,
		fetcher:       fetcher,
		profiles:      profiles,
		defaultWallet: defaultWallet,
		log:           log,
	}
}

// Profiles returns a copy of the known bridges.
func (s *BridgeService) Profiles() []domain.Profile {
	out := make([]domain.Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// Quote prices moving amountUSD from src to dst. A transfer within one chain
// is answered locally. An open breaker yields the fallback quote; any other
// failure is returned for the caller to decide.
func (s *BridgeService) Quote(ctx context.Context, src, dst chain.Chain, amountUSD decimal.Decimal, wallet string) fetch.Result[domain.QuoteSet] {
	if src == dst {
		return fetch.Live(domain.NativeQuote(amountUSD))
	}
	if wallet == "" {
		wallet = s.defaultWallet
	}

	key := fmt.Sprintf("bridge_%s_%s_%d", src.Slug(), dst.Slug(), amountUSD.IntPart())
	res := s.fetcher.Fetch(ctx, key, func(ctx context.Context) (domain.QuoteSet, error) {
		q, err := s.provider.Quote(ctx, QuoteRequest{From: src, To: dst, AmountUSD: amountUSD, Wallet: wallet})
		if err != nil {
			return domain.QuoteSet{}, err
		}
		return domain.Single(q, domain.LiveConfidence), nil
	})
	if !res.Failed() {
		return res
	}

	if apperror.IsCircuitOpen(res.Err) {
		s.log.Warn(ctx, "bridge quotes unavailable, using fallback quote", "from", src, "to", dst)
		return fetch.Fallback(domain.FallbackQuote(amountUSD), res.Err)
	}

	s.log.Warn(ctx, "bridge quote failed", "from", src, "to", dst, "code", apperror.GetCode(res.Err), "error", res.Err)
	return res
}
