package app

import (
	"context"

	"github.com/fd1az/liquidity-vector/business/yield/domain"
)

// PoolSource lists the pools known to the yield aggregator.
type PoolSource interface {
	Pools(ctx context.Context) ([]domain.RawPool, error)
}
