// Package domain holds the yield pool model and the pool selection rules.
package domain

import (
	"math"
	"sort"

	"github.com/fd1az/liquidity-vector/internal/chain"
)

const (
	// Symbol is the only asset the analyzer migrates.
	Symbol = "USDC"
	// MinTVLUSD excludes pools too shallow to absorb a migration.
	MinTVLUSD = 10_000_000
	// PerChain caps how many pools are kept for each chain.
	PerChain = 3
)

// Yield sources.
const (
	SourceMarketAverage = "market_average"
	SourceFallback      = "fallback"
)

// upstreamChains maps the aggregator's chain names to ours. Only these are
// considered.
var upstreamChains = map[string]chain.Chain{
	"Ethereum":  chain.Ethereum,
	"Arbitrum":  chain.Arbitrum,
	"Base":      chain.Base,
	"Optimism":  chain.Optimism,
	"Polygon":   chain.Polygon,
	"Avalanche": chain.Avalanche,
	"BSC":       chain.BNB,
	"BNB Chain": chain.BNB,
}

// RawPool is a pool as listed by the yield aggregator.
type RawPool struct {
	Chain   string
	Project string
	Symbol  string
	TVLUSD  float64
	APY     float64
	ID      string
}

// Pool is a candidate destination for capital.
type Pool struct {
	Chain   chain.Chain `json:"chain"`
	Project string      `json:"project"`
	Symbol  string      `json:"symbol"`
	TVLUSD  float64     `json:"tvlUsd"`
	APY     float64     `json:"apy"`
	ID      string      `json:"pool"`
}

// TopPools keeps USDC pools on supported chains with more than MinTVLUSD and
// a positive APY, highest APY first, at most PerChain per chain.
func TopPools(raw []RawPool) []Pool {
	candidates := make([]Pool, 0, len(raw))
	for _, p := range raw {
		c, ok := upstreamChains[p.Chain]
		if !ok || p.Symbol != Symbol || p.TVLUSD <= MinTVLUSD || p.APY <= 0 {
			continue
		}
		candidates = append(candidates, Pool{
			Chain:   c,
			Project: p.Project,
			Symbol:  p.Symbol,
			TVLUSD:  p.TVLUSD,
			APY:     p.APY,
			ID:      p.ID,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].APY > candidates[j].APY })

	counts := make(map[chain.Chain]int)
	out := make([]Pool, 0, len(chain.All())*PerChain)
	for _, p := range candidates {
		if counts[p.Chain] >= PerChain {
			continue
		}
		counts[p.Chain]++
		out = append(out, p)
	}
	return out
}

// Yield is the market yield of one chain.
type Yield struct {
	Chain        chain.Chain `json:"chain"`
	CurrentYield float64     `json:"current_yield"`
	Source       string      `json:"source"`
}

// CurrentYield averages the APY of c's pools, rounded to two decimals. A
// chain without pools yields zero from the fallback source.
func CurrentYield(pools []Pool, c chain.Chain) Yield {
	var sum float64
	var n int
	for _, p := range pools {
		if p.Chain == c {
			sum += p.APY
			n++
		}
	}
	if n == 0 {
		return Yield{Chain: c, Source: SourceFallback}
	}
	return Yield{
		Chain:        c,
		CurrentYield: math.Round(sum/float64(n)*100) / 100,
		Source:       SourceMarketAverage,
	}
}

// ForChain returns the pools on c, in their existing order.
func ForChain(pools []Pool, c chain.Chain) []Pool {
	var out []Pool
	for _, p := range pools {
		if p.Chain == c {
			out = append(out, p)
		}
	}
	return out
}
