// Package di contains dependency injection tokens for the blockchain context.
package di

import (
	"github.com/fd1az/liquidity-vector/business/blockchain/app"
	"github.com/fd1az/liquidity-vector/business/blockchain/infra/ethereum"
	"github.com/fd1az/liquidity-vector/internal/di"
)

// Public service tokens - exposed to other modules
var (
	BlockchainService = di.NewToken[*app.BlockchainService]("blockchain.BlockchainService")
)

// Private dependency tokens - internal to blockchain module
var (
	RPCPool = di.NewToken[*ethereum.Pool]("blockchain:rpcPool")
)

func GetBlockchainService(c di.ServiceRegistry) *app.BlockchainService {
	return di.GetToken(c, BlockchainService)
}

func GetRPCPool(c di.ServiceRegistry) *ethereum.Pool {
	return di.GetToken(c, RPCPool)
}
