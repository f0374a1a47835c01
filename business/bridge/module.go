// Package bridge implements the bridge bounded context: aggregator quotes,
// bridge reference data and deterministic bridge selection.
package bridge

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/liquidity-vector/business/bridge/app"
	bridgeDI "github.com/fd1az/liquidity-vector/business/bridge/di"
	"github.com/fd1az/liquidity-vector/business/bridge/domain"
	"github.com/fd1az/liquidity-vector/business/bridge/infra/lifi"
	"github.com/fd1az/liquidity-vector/internal/di"
	"github.com/fd1az/liquidity-vector/internal/monolith"
)

// Module implements the bridge bounded context.
type Module struct{}

// RegisterServices registers all bridge services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, bridgeDI.QuoteProvider, func(sr di.ServiceRegistry) app.QuoteProvider {
		cfg := di.GetToken(sr, monolith.ConfigToken)

		client, err := lifi.NewClient(lifi.Config{
			BaseURL:  cfg.Endpoints.BridgeQuote,
			Timeout:  cfg.Endpoints.QuoteTimeout,
			Slippage: decimal.NewFromFloat(cfg.Analysis.QuoteSlippage),
		})
		if err != nil {
			panic("failed to create quote provider: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, bridgeDI.BridgeService, func(sr di.ServiceRegistry) *app.BridgeService {
		cfg := di.GetToken(sr, monolith.ConfigToken)
		return app.NewBridgeService(
			bridgeDI.GetQuoteProvider(sr),
			monolith.NewFetcher[domain.QuoteSet](sr, "bridge_quote", "lifi"),
			domain.DefaultProfiles(),
			cfg.Analysis.DefaultWallet,
			di.GetToken(sr, monolith.LoggerToken),
		)
	})

	return nil
}

// Startup initializes the bridge module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "bridge module started",
		"endpoint", mono.Config().Endpoints.BridgeQuote,
		"profiles", len(domain.DefaultProfiles()))
	return nil
}
