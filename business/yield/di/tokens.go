// Package di contains dependency injection tokens for the yield context.
package di

import (
	"github.com/fd1az/liquidity-vector/business/yield/app"
	"github.com/fd1az/liquidity-vector/internal/di"
)

// Public service tokens - exposed to other modules
var (
	YieldService = di.NewToken[*app.YieldService]("yield.YieldService")
)

// Private dependency tokens - internal to yield module
var (
	PoolSource = di.NewToken[app.PoolSource]("yield:poolSource")
)

func GetYieldService(c di.ServiceRegistry) *app.YieldService {
	return di.GetToken(c, YieldService)
}

func GetPoolSource(c di.ServiceRegistry) app.PoolSource {
	return di.GetToken(c, PoolSource)
}
