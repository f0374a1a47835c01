// Package yield implements the yield bounded context: USDC pool discovery
// and market average yields per chain.
package yield

import (
	"context"

	"github.com/fd1az/liquidity-vector/business/yield/app"
	yieldDI "github.com/fd1az/liquidity-vector/business/yield/di"
	"github.com/fd1az/liquidity-vector/business/yield/domain"
	"github.com/fd1az/liquidity-vector/business/yield/infra/defillama"
	"github.com/fd1az/liquidity-vector/internal/di"
	"github.com/fd1az/liquidity-vector/internal/monolith"
)

// Module implements the yield bounded context.
type Module struct{}

// RegisterServices registers all yield services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, yieldDI.PoolSource, func(sr di.ServiceRegistry) app.PoolSource {
		cfg := di.GetToken(sr, monolith.ConfigToken)

		client, err := defillama.NewClient(defillama.Config{
			BaseURL: cfg.Endpoints.YieldPools,
			Timeout: cfg.Endpoints.PoolsTimeout,
		})
		if err != nil {
			panic("failed to create pool source: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, yieldDI.YieldService, func(sr di.ServiceRegistry) *app.YieldService {
		return app.NewYieldService(
			yieldDI.GetPoolSource(sr),
			monolith.NewFetcher[[]domain.Pool](sr, "pools", "defillama"),
			di.GetToken(sr, monolith.LoggerToken),
		)
	})

	return nil
}

// Startup initializes the yield module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "yield module started", "endpoint", mono.Config().Endpoints.YieldPools)
	return nil
}
