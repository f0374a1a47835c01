// Package blockchain implements the blockchain bounded context: gas prices,
// fee history and transaction cost estimates over EVM JSON-RPC.
package blockchain

import (
	"context"
	"math/big"

	"github.com/fd1az/liquidity-vector/business/blockchain/app"
	blockchainDI "github.com/fd1az/liquidity-vector/business/blockchain/di"
	"github.com/fd1az/liquidity-vector/business/blockchain/domain"
	"github.com/fd1az/liquidity-vector/business/blockchain/infra/ethereum"
	pricingDI "github.com/fd1az/liquidity-vector/business/pricing/di"
	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/di"
	"github.com/fd1az/liquidity-vector/internal/monolith"
)

// Module implements the blockchain bounded context.
type Module struct{}

// RegisterServices registers all blockchain services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, blockchainDI.RPCPool, func(sr di.ServiceRegistry) *ethereum.Pool {
		cfg := di.GetToken(sr, monolith.ConfigToken)
		log := di.GetToken(sr, monolith.LoggerToken)

		configs := make([]ethereum.ClientConfig, 0, len(chain.All()))
		for _, ch := range chain.All() {
			cc := ethereum.DefaultClientConfig(ch, cfg.RPC.URL(ch))
			cc.Timeout = cfg.RPC.Timeout
			cc.EstimateTimeout = cfg.RPC.EstimateTimeout
			configs = append(configs, cc)
		}

		pool, err := ethereum.NewPool(configs, log)
		if err != nil {
			panic("failed to create rpc pool: " + err.Error())
		}
		return pool
	})

	// Depends on pricing.PricingService for the gas token price.
	di.RegisterToken(c, blockchainDI.BlockchainService, func(sr di.ServiceRegistry) *app.BlockchainService {
		return app.NewBlockchainService(
			blockchainDI.GetRPCPool(sr),
			pricingDI.GetPricingService(sr),
			monolith.NewFetcher[*big.Int](sr, "gas_price", "rpc"),
			monolith.NewFetcher[domain.FeeHistory](sr, "fee_history", "rpc"),
			di.GetToken(sr, monolith.LoggerToken),
		)
	})

	return nil
}

// Startup initializes the blockchain module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	for _, ch := range chain.All() {
		mono.Logger().Debug(ctx, "rpc endpoint", "chain", ch, "url", cfg.RPC.URL(ch))
	}
	mono.Logger().Info(ctx, "blockchain module started", "chains", len(chain.All()))
	return nil
}
