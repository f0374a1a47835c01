package domain

import (
	"testing"

	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/chain"
)

func TestParamsRequest(t *testing.T) {
	req, err := Params{
		Source:  " ethereum ",
		Dest:    "bsc",
		Capital: 10000,
		PoolAPY: 5.5,
		PoolID:  "pool-1",
		Project: "aave-v3",
		PoolTVL: 2e8,
	}.Request()
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if req.Source != chain.Ethereum || req.Dest != chain.BNB {
		t.Errorf("chains = %s -> %s", req.Source, req.Dest)
	}
	if req.Symbol != "USDC" {
		t.Errorf("Symbol = %q, want USDC", req.Symbol)
	}
	if !req.CapitalUSD.Equal(d("10000")) || !req.PoolAPY.Equal(d("5.5")) {
		t.Errorf("amounts = %s / %s", req.CapitalUSD, req.PoolAPY)
	}
	if req.SameChain() {
		t.Error("Ethereum -> BNB Chain is not a same chain route")
	}

	pool := req.TargetPool()
	if pool.Chain != chain.BNB || pool.ID != "pool-1" || pool.TVLUSD != 2e8 {
		t.Errorf("TargetPool = %+v", pool)
	}
}

func TestParamsRequestErrors(t *testing.T) {
	base := Params{Source: "Ethereum", Dest: "Arbitrum", Capital: 1000, PoolAPY: 5}

	tests := []struct {
		name   string
		mutate func(p *Params)
		code   apperror.Code
	}{
		{"unknown source", func(p *Params) { p.Source = "Solana" }, apperror.CodeInvalidChain},
		{"unknown dest", func(p *Params) { p.Dest = "" }, apperror.CodeInvalidChain},
		{"zero capital", func(p *Params) { p.Capital = 0 }, apperror.CodeInvalidInput},
		{"negative capital", func(p *Params) { p.Capital = -5 }, apperror.CodeInvalidInput},
		{"negative apy", func(p *Params) { p.PoolAPY = -1 }, apperror.CodeInvalidInput},
		{"negative tvl", func(p *Params) { p.PoolTVL = -1 }, apperror.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			_, err := p.Request()
			if !apperror.IsValidation(err) {
				t.Fatalf("error = %v, want a validation error", err)
			}
			if apperror.GetCode(err) != tt.code {
				t.Errorf("code = %s, want %s", apperror.GetCode(err), tt.code)
			}
		})
	}
}
