// Package domain contains the core domain types for the blockchain context.
package domain

import (
	"math/big"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/fetch"
)

var (
	// DefaultGasPriceWei answers GasPrice while the RPC breaker is open.
	DefaultGasPriceWei = big.NewInt(25_000_000_000)
	// DefaultPriorityFeeWei applies when fee history has no usable rewards.
	DefaultPriorityFeeWei = big.NewInt(1_500_000_000)

	// Confidence attached to every gas estimate.
	Confidence = decimal.RequireFromString("0.85")
)

const (
	feeBufferPercent   = 110
	approvalMultiplier = 4
	minLimitScale      = 0.5
	maxLimitScale      = 3.0
)

// FeeHistory is the useful part of eth_feeHistory.
type FeeHistory struct {
	BaseFees []*big.Int   `json:"base_fees"`
	Rewards  [][]*big.Int `json:"rewards"` // per block, percentiles 25/50/75
}

// PredictBaseFee is an EMA (alpha 0.5) over the base fees, oldest first.
// It reports false when there is nothing to average.
func PredictBaseFee(baseFees []*big.Int) (*big.Int, bool) {
	var ema *big.Int
	for _, fee := range baseFees {
		if fee == nil {
			continue
		}
		if ema == nil {
			ema = new(big.Int).Set(fee)
			continue
		}
		ema.Add(ema, fee)
		ema.Rsh(ema, 1)
	}
	return ema, ema != nil
}

// PriorityFee is the median of the p50 rewards, or DefaultPriorityFeeWei.
func PriorityFee(rewards [][]*big.Int) *big.Int {
	p50 := make([]*big.Int, 0, len(rewards))
	for _, r := range rewards {
		if len(r) > 1 && r[1] != nil {
			p50 = append(p50, r[1])
		}
	}
	if len(p50) == 0 {
		return new(big.Int).Set(DefaultPriorityFeeWei)
	}
	sort.Slice(p50, func(i, j int) bool { return p50[i].Cmp(p50[j]) < 0 })
	return new(big.Int).Set(p50[len(p50)/2])
}

// MaxFee adds a 10% buffer to base + priority.
func MaxFee(baseFee, priorityFee *big.Int) *big.Int {
	sum := new(big.Int).Add(baseFee, priorityFee)
	sum.Mul(sum, big.NewInt(feeBufferPercent))
	return sum.Div(sum, big.NewInt(100))
}

// ScaleGasLimit turns an approve() estimate into a bridge transaction limit:
// four approvals, clamped to [0.5, 3] times the chain's base limit. A zero
// estimate yields the base limit.
func ScaleGasLimit(approveGas, baseLimit uint64) uint64 {
	if approveGas == 0 {
		return baseLimit
	}
	limit := approveGas * approvalMultiplier
	lo := uint64(float64(baseLimit) * minLimitScale)
	hi := uint64(float64(baseLimit) * maxLimitScale)
	if limit < lo {
		return lo
	}
	if limit > hi {
		return hi
	}
	return limit
}

// GasEstimate is the predicted cost of one bridge transaction.
type GasEstimate struct {
	Chain          chain.Chain     `json:"chain"`
	GasLimit       uint64          `json:"gas_limit"`
	BaseFee        *big.Int        `json:"base_fee_wei"`
	PriorityFee    *big.Int        `json:"priority_fee_wei"`
	MaxFee         *big.Int        `json:"max_fee_wei"`
	NativePriceUSD decimal.Decimal `json:"native_price_usd"`
	TotalCostUSD   decimal.Decimal `json:"total_cost_usd"`
	Confidence     decimal.Decimal `json:"confidence"`
	ErrorBoundUSD  decimal.Decimal `json:"error_bound_usd"`
	Source         fetch.Source    `json:"source"`
}

// NewGasEstimate prices limit × max fee in USD.
func NewGasEstimate(c chain.Chain, limit uint64, baseFee, priorityFee *big.Int, nativePrice decimal.Decimal) GasEstimate {
	maxFee := MaxFee(baseFee, priorityFee)
	totalWei := new(big.Int).Mul(maxFee, new(big.Int).SetUint64(limit))
	total := chain.WeiToNative(totalWei).Mul(nativePrice)

	return GasEstimate{
		Chain:          c,
		GasLimit:       limit,
		BaseFee:        baseFee,
		PriorityFee:    priorityFee,
		MaxFee:         maxFee,
		NativePriceUSD: nativePrice,
		TotalCostUSD:   total,
		Confidence:     Confidence,
		ErrorBoundUSD:  total.Mul(decimal.NewFromInt(1).Sub(Confidence)),
		Source:         fetch.SourceLive,
	}
}

// MaxFeeGwei is the max fee per gas in gwei.
func (g GasEstimate) MaxFeeGwei() decimal.Decimal { return chain.WeiToGwei(g.MaxFee) }

// BaseFeeGwei is the predicted base fee in gwei.
func (g GasEstimate) BaseFeeGwei() decimal.Decimal { return chain.WeiToGwei(g.BaseFee) }

// WorstSource ranks provenance: default < fallback < cached < live.
func WorstSource(sources ...fetch.Source) fetch.Source {
	rank := map[fetch.Source]int{
		fetch.SourceDefault:  0,
		fetch.SourceFallback: 1,
		fetch.SourceCached:   2,
		fetch.SourceLive:     3,
	}
	worst := fetch.SourceLive
	for _, s := range sources {
		if r, ok := rank[s]; ok && r < rank[worst] {
			worst = s
		}
	}
	return worst
}
