package domain

import (
	"testing"

	"github.com/fd1az/liquidity-vector/internal/chain"
)

func raw(c, symbol string, tvl, apy float64, id string) RawPool {
	return RawPool{Chain: c, Project: "proj-" + id, Symbol: symbol, TVLUSD: tvl, APY: apy, ID: id}
}

func TestTopPoolsFilters(t *testing.T) {
	pools := TopPools([]RawPool{
		raw("Ethereum", "USDC", 50e6, 4.2, "keep"),
		raw("Ethereum", "USDT", 50e6, 9.9, "wrong-symbol"),
		raw("Solana", "USDC", 50e6, 9.9, "unsupported-chain"),
		raw("Ethereum", "USDC", 10e6, 9.9, "tvl-at-threshold"),
		raw("Ethereum", "USDC", 50e6, 0, "no-apy"),
		raw("ethereum", "USDC", 50e6, 9.9, "case-sensitive-chain"),
	})
	if len(pools) != 1 || pools[0].ID != "keep" {
		t.Fatalf("pools = %+v", pools)
	}
}

func TestTopPoolsOrderAndCap(t *testing.T) {
	pools := TopPools([]RawPool{
		raw("Arbitrum", "USDC", 20e6, 3, "a3"),
		raw("Arbitrum", "USDC", 20e6, 7, "a7"),
		raw("Arbitrum", "USDC", 20e6, 5, "a5"),
		raw("Arbitrum", "USDC", 20e6, 6, "a6"),
		raw("BSC", "USDC", 20e6, 8, "b8"),
		raw("BNB Chain", "USDC", 20e6, 2, "b2"),
	})

	want := []string{"b8", "a7", "a6", "a5", "b2"}
	if len(pools) != len(want) {
		t.Fatalf("got %d pools", len(pools))
	}
	for i, id := range want {
		if pools[i].ID != id {
			t.Errorf("pools[%d] = %s, want %s", i, pools[i].ID, id)
		}
	}
	if pools[0].Chain != chain.BNB {
		t.Errorf("BSC should map to %s, got %s", chain.BNB, pools[0].Chain)
	}
}

func TestCurrentYield(t *testing.T) {
	pools := []Pool{
		{Chain: chain.Base, APY: 5.111},
		{Chain: chain.Base, APY: 6.222},
		{Chain: chain.Base, APY: 4},
		{Chain: chain.Polygon, APY: 12},
	}

	y := CurrentYield(pools, chain.Base)
	if y.CurrentYield != 5.11 || y.Source != SourceMarketAverage {
		t.Errorf("base yield = %+v", y)
	}

	y = CurrentYield(pools, chain.Avalanche)
	if y.CurrentYield != 0 || y.Source != SourceFallback {
		t.Errorf("avalanche yield = %+v", y)
	}

	if got := ForChain(pools, chain.Polygon); len(got) != 1 || got[0].APY != 12 {
		t.Errorf("ForChain = %+v", got)
	}
}
