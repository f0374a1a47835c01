package domain

import (
	"strings"

	"github.com/shopspring/decimal"

	yieldDomain "github.com/fd1az/liquidity-vector/business/yield/domain"
	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/chain"
)

// Params is an analysis request as a user types it.
type Params struct {
	Source  string  `json:"current_chain"`
	Dest    string  `json:"target_chain"`
	Capital float64 `json:"capital"`
	PoolID  string  `json:"pool_id"`
	PoolAPY float64 `json:"pool_apy"`
	Project string  `json:"project"`
	Symbol  string  `json:"token_symbol"`
	PoolTVL float64 `json:"tvl_usd"`
	Wallet  string  `json:"wallet_address"`
}

// Request is a normalized analysis request.
type Request struct {
	Source     chain.Chain
	Dest       chain.Chain
	CapitalUSD decimal.Decimal
	PoolID     string
	PoolAPY    decimal.Decimal
	Project    string
	Symbol     string
	PoolTVLUSD decimal.Decimal
	Wallet     string
}

// Request normalizes both chains and validates the amounts.
func (p Params) Request() (Request, error) {
	src, err := chain.Parse(p.Source)
	if err != nil {
		return Request{}, err
	}
	dst, err := chain.Parse(p.Dest)
	if err != nil {
		return Request{}, err
	}

	symbol := strings.TrimSpace(p.Symbol)
	if symbol == "" {
		symbol = yieldDomain.Symbol
	}

	req := Request{
		Source:     src,
		Dest:       dst,
		CapitalUSD: decimal.NewFromFloat(p.Capital),
		PoolID:     strings.TrimSpace(p.PoolID),
		PoolAPY:    decimal.NewFromFloat(p.PoolAPY),
		Project:    strings.TrimSpace(p.Project),
		Symbol:     symbol,
		PoolTVLUSD: decimal.NewFromFloat(p.PoolTVL),
		Wallet:     strings.TrimSpace(p.Wallet),
	}
	return req, req.Validate()
}

// Validate checks the amounts of r.
func (r Request) Validate() error {
	if r.Source == "" || r.Dest == "" {
		return apperror.Validation(apperror.CodeRequiredField, "source and destination chains")
	}
	if !r.CapitalUSD.IsPositive() {
		return apperror.Validation(apperror.CodeInvalidInput, "capital must be greater than zero")
	}
	if r.PoolAPY.IsNegative() {
		return apperror.Validation(apperror.CodeInvalidInput, "pool apy must not be negative")
	}
	if r.PoolTVLUSD.IsNegative() {
		return apperror.Validation(apperror.CodeInvalidInput, "pool tvl must not be negative")
	}
	return nil
}

// SameChain reports whether no bridge is involved.
func (r Request) SameChain() bool { return r.Source == r.Dest }

// TargetPool is the destination pool as described by the request.
func (r Request) TargetPool() yieldDomain.Pool {
	return yieldDomain.Pool{
		Chain:   r.Dest,
		Project: r.Project,
		Symbol:  r.Symbol,
		TVLUSD:  r.PoolTVLUSD.InexactFloat64(),
		APY:     r.PoolAPY.InexactFloat64(),
		ID:      r.PoolID,
	}
}
