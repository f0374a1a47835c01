// Package risk implements the risk bounded context: bridge risk scores
// enriched with live TVL, contract verification and exploit history.
package risk

import (
	"context"

	blockchainDI "github.com/fd1az/liquidity-vector/business/blockchain/di"
	bridgeDI "github.com/fd1az/liquidity-vector/business/bridge/di"
	"github.com/fd1az/liquidity-vector/business/risk/app"
	riskDI "github.com/fd1az/liquidity-vector/business/risk/di"
	"github.com/fd1az/liquidity-vector/business/risk/domain"
	"github.com/fd1az/liquidity-vector/business/risk/infra/defillama"
	"github.com/fd1az/liquidity-vector/business/risk/infra/explorer"
	"github.com/fd1az/liquidity-vector/business/risk/infra/rekt"
	"github.com/fd1az/liquidity-vector/internal/di"
	"github.com/fd1az/liquidity-vector/internal/monolith"
	"github.com/fd1az/liquidity-vector/internal/ratelimit"
)

// Module implements the risk bounded context.
type Module struct{}

// RegisterServices registers all risk services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, riskDI.TVLSource, func(sr di.ServiceRegistry) app.TVLSource {
		cfg := di.GetToken(sr, monolith.ConfigToken)

		client, err := defillama.NewClient(defillama.Config{
			BaseURL: cfg.Endpoints.BridgesTVL,
			Timeout: cfg.Endpoints.TVLTimeout,
		})
		if err != nil {
			panic("failed to create tvl source: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, riskDI.ContractExplorer, func(sr di.ServiceRegistry) app.ContractExplorer {
		cfg := di.GetToken(sr, monolith.ConfigToken)

		client, err := explorer.NewClient(explorer.Config{
			APIKeys: cfg.Explorer.APIKeys,
			Timeout: cfg.Explorer.Timeout,
		}, ratelimit.New("explorer", cfg.RateLimit.ExplorerRequestsPerMinute))
		if err != nil {
			panic("failed to create contract explorer: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, riskDI.ExploitDatabase, func(sr di.ServiceRegistry) *rekt.Database {
		db, err := rekt.New()
		if err != nil {
			panic("failed to load exploit database: " + err.Error())
		}
		return db
	})

	// Depends on bridge.BridgeService for profiles and
	// blockchain.BlockchainService for contract creation times.
	di.RegisterToken(c, riskDI.Engine, func(sr di.ServiceRegistry) *app.Engine {
		return app.NewEngine(
			bridgeDI.GetBridgeService(sr).Profiles(),
			app.Sources{
				TVL:       riskDI.GetTVLSource(sr),
				Explorer:  riskDI.GetContractExplorer(sr),
				Clock:     blockchainDI.GetBlockchainService(sr),
				Exploits:  riskDI.GetExploitDatabase(sr),
				Volumes:   monolith.NewFetcher[[]domain.BridgeVolume](sr, "bridge_tvl", "defillama"),
				Contracts: monolith.NewFetcher[domain.ContractInfo](sr, "contract", "explorer"),
			},
			di.GetToken(sr, monolith.LoggerToken),
		)
	})

	return nil
}

// Startup initializes the risk module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	db := riskDI.GetExploitDatabase(mono.Services())
	mono.Logger().Info(ctx, "risk module started",
		"tvl_endpoint", mono.Config().Endpoints.BridgesTVL,
		"exploit_protocols", len(db.Protocols()))
	return nil
}
