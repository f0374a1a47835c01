// Package app contains application services and port definitions for the blockchain context.
package app

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/fd1az/liquidity-vector/business/blockchain/domain"
	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/fetch"
)

// RPC is the JSON-RPC surface of one chain.
type RPC interface {
	// GasPrice is eth_gasPrice.
	GasPrice(ctx context.Context) (*big.Int, error)

	// FeeHistory is eth_feeHistory over the last blocks at the given reward percentiles.
	FeeHistory(ctx context.Context, blocks uint64, percentiles []float64) (domain.FeeHistory, error)

	// EstimateGas is eth_estimateGas of a call.
	EstimateGas(ctx context.Context, from, to common.Address, data []byte) (uint64, error)

	// TxTime returns the timestamp of the block that mined hash.
	TxTime(ctx context.Context, hash common.Hash) (time.Time, error)
}

// RPCProvider hands out the RPC of a chain.
type RPCProvider interface {
	RPC(c chain.Chain) (RPC, error)
}

// PriceSource prices a chain's gas token. Implementations never fail; the
// result carries its provenance.
type PriceSource interface {
	NativePrice(ctx context.Context, c chain.Chain) fetch.Result[decimal.Decimal]
}
