package app

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/liquidity-vector/business/blockchain/domain"
	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/circuitbreaker"
	"github.com/fd1az/liquidity-vector/internal/fetch"
	"github.com/fd1az/liquidity-vector/internal/logger"
)

// DefaultWallet is the sender used for gas probes when none is given.
var DefaultWallet = common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")

var (
	feeHistoryBlocks      uint64 = 5
	feeHistoryPercentiles        = []float64{25, 50, 75}

	// approve(0x...dead, type(uint256).max)
	approveProbe = append(
		append(common.FromHex("0x095ea7b3"), common.LeftPadBytes(common.FromHex("0xdead"), 32)...),
		common.FromHex(strings.Repeat("ff", 32))...,
	)
)

// BlockchainService estimates transaction costs from chain RPC data.
type BlockchainService struct {
	rpcs       RPCProvider
	prices     PriceSource
	gasPrices  *fetch.Fetcher[*big.Int]
	feeHistory *fetch.Fetcher[domain.FeeHistory]
	log        logger.LoggerInterface
}

// NewBlockchainService creates a BlockchainService. Both fetchers must be
// guarded by the RPC breaker; GasLimit and TxTime reuse it.
func NewBlockchainService(
	rpcs RPCProvider,
	prices PriceSource,
	gasPrices *fetch.Fetcher[*big.Int],
	feeHistory *fetch.Fetcher[domain.FeeHistory],
	log logger.LoggerInterface,
) *BlockchainService {
	return &BlockchainService{
		rpcs:       rpcs,
		prices:     prices,
		gasPrices:  gasPrices,
		feeHistory: feeHistory,
		log:        log,
	}
}

func (s *BlockchainService) breaker() *circuitbreaker.Breaker {
	return s.gasPrices.Breaker()
}

// GasPrice returns the legacy gas price in wei. An open breaker yields the
// 25 gwei default; other failures come back as a failed result.
func (s *BlockchainService) GasPrice(ctx context.Context, c chain.Chain) fetch.Result[*big.Int] {
	res := s.gasPrices.Fetch(ctx, c.Slug(), func(ctx context.Context) (*big.Int, error) {
		rpc, err := s.rpcs.RPC(c)
		if err != nil {
			return nil, err
		}
		return rpc.GasPrice(ctx)
	})
	if res.Failed() && apperror.IsCircuitOpen(res.Err) {
		s.log.Warn(ctx, "rpc circuit open, using default gas price", "chain", c)
		return fetch.Fallback(new(big.Int).Set(domain.DefaultGasPriceWei), res.Err)
	}
	return res
}

// FeeHistory returns recent EIP-1559 fee data.
func (s *BlockchainService) FeeHistory(ctx context.Context, c chain.Chain) fetch.Result[domain.FeeHistory] {
	return s.feeHistory.Fetch(ctx, c.Slug(), func(ctx context.Context) (domain.FeeHistory, error) {
		rpc, err := s.rpcs.RPC(c)
		if err != nil {
			return domain.FeeHistory{}, err
		}
		return rpc.FeeHistory(ctx, feeHistoryBlocks, feeHistoryPercentiles)
	})
}

// GasLimit sizes a bridge transaction from an approve() probe on the chain's
// USDC. Any failure yields the chain's base limit.
func (s *BlockchainService) GasLimit(ctx context.Context, c chain.Chain, wallet string) uint64 {
	info := c.Info()
	if info.USDC == (common.Address{}) {
		return info.BaseGasLimit
	}

	from := DefaultWallet
	if common.IsHexAddress(wallet) {
		from = common.HexToAddress(wallet)
	}

	approveGas, err := circuitbreaker.Execute(s.breaker(), func() (uint64, error) {
		rpc, err := s.rpcs.RPC(c)
		if err != nil {
			return 0, err
		}
		return rpc.EstimateGas(ctx, from, info.USDC, approveProbe)
	})
	if err != nil {
		s.log.Debug(ctx, "gas limit probe failed, using base limit", "chain", c, "error", err)
		return info.BaseGasLimit
	}
	return domain.ScaleGasLimit(approveGas, info.BaseGasLimit)
}

// Estimate predicts the USD cost of one bridge transaction on c. Fee history
// and native price are fetched in parallel. Without fee history the base fee
// comes from eth_gasPrice; when that fails too the estimate is unavailable.
func (s *BlockchainService) Estimate(ctx context.Context, c chain.Chain, wallet string) (domain.GasEstimate, error) {
	var (
		history fetch.Result[domain.FeeHistory]
		price   fetch.Result[decimal.Decimal]
		limit   uint64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		history = s.FeeHistory(gctx, c)
		return nil
	})
	g.Go(func() error {
		price = s.prices.NativePrice(gctx, c)
		return nil
	})
	g.Go(func() error {
		limit = s.GasLimit(gctx, c, wallet)
		return nil
	})
	_ = g.Wait()

	var (
		baseFee    *big.Int
		priority   *big.Int
		baseSource = history.Source
		ok         bool
	)
	if !history.Failed() {
		baseFee, ok = domain.PredictBaseFee(history.Value.BaseFees)
		priority = domain.PriorityFee(history.Value.Rewards)
	}
	if !ok {
		gp := s.GasPrice(ctx, c)
		if gp.Failed() {
			cause := errors.Join(history.Err, gp.Err)
			s.log.Error(ctx, "gas estimation unavailable", "chain", c, "error", cause)
			return domain.GasEstimate{}, apperror.DependencyUnavailable("rpc:"+c.Slug(), cause)
		}
		// eth_gasPrice already includes the tip.
		baseFee, priority, baseSource = gp.Value, new(big.Int), gp.Source
	}

	est := domain.NewGasEstimate(c, limit, baseFee, priority, price.Value)
	est.Source = domain.WorstSource(baseSource, price.Source)

	s.log.Debug(ctx, "gas estimated",
		"chain", c,
		"limit", limit,
		"max_fee_gwei", est.MaxFeeGwei().StringFixed(4),
		"usd", est.TotalCostUSD.StringFixed(4),
		"source", est.Source)

	return est, nil
}

// TxTime returns when a transaction was mined on c.
func (s *BlockchainService) TxTime(ctx context.Context, c chain.Chain, hash common.Hash) (time.Time, error) {
	return circuitbreaker.Execute(s.breaker(), func() (time.Time, error) {
		rpc, err := s.rpcs.RPC(c)
		if err != nil {
			return time.Time{}, err
		}
		return rpc.TxTime(ctx, hash)
	})
}
