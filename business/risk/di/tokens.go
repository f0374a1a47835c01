// Package di contains dependency injection tokens for the risk context.
package di

import (
	"github.com/fd1az/liquidity-vector/business/risk/app"
	"github.com/fd1az/liquidity-vector/business/risk/infra/rekt"
	"github.com/fd1az/liquidity-vector/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Engine          = di.NewToken[*app.Engine]("risk.Engine")
	ExploitDatabase = di.NewToken[*rekt.Database]("risk.ExploitDatabase")
)

// Private dependency tokens - internal to risk module
var (
	TVLSource        = di.NewToken[app.TVLSource]("risk:tvlSource")
	ContractExplorer = di.NewToken[app.ContractExplorer]("risk:contractExplorer")
)

func GetEngine(c di.ServiceRegistry) *app.Engine {
	return di.GetToken(c, Engine)
}

func GetExploitDatabase(c di.ServiceRegistry) *rekt.Database {
	return di.GetToken(c, ExploitDatabase)
}

func GetTVLSource(c di.ServiceRegistry) app.TVLSource {
	return di.GetToken(c, TVLSource)
}

func GetContractExplorer(c di.ServiceRegistry) app.ContractExplorer {
	return di.GetToken(c, ContractExplorer)
}
