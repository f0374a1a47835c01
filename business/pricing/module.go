// Package pricing implements the pricing bounded context: native gas token
// prices in USD.
package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/liquidity-vector/business/pricing/app"
	pricingDI "github.com/fd1az/liquidity-vector/business/pricing/di"
	"github.com/fd1az/liquidity-vector/business/pricing/infra/coingecko"
	"github.com/fd1az/liquidity-vector/internal/di"
	"github.com/fd1az/liquidity-vector/internal/monolith"
	"github.com/fd1az/liquidity-vector/internal/ratelimit"
)

// Module implements the pricing bounded context.
type Module struct{}

// RegisterServices registers all pricing services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, pricingDI.PriceOracle, func(sr di.ServiceRegistry) app.PriceOracle {
		cfg := di.GetToken(sr, monolith.ConfigToken)

		client, err := coingecko.NewClient(coingecko.Config{
			BaseURL: cfg.Endpoints.PriceOracle,
			Timeout: cfg.Endpoints.PriceTimeout,
		}, ratelimit.New("coingecko", cfg.RateLimit.PriceRequestsPerMinute))
		if err != nil {
			panic("failed to create price oracle: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, pricingDI.PricingService, func(sr di.ServiceRegistry) *app.PricingService {
		fetcher := monolith.NewFetcher[decimal.Decimal](sr, "native_price", "coingecko")
		return app.NewPricingService(pricingDI.GetPriceOracle(sr), fetcher, di.GetToken(sr, monolith.LoggerToken))
	})

	return nil
}

// Startup initializes the pricing module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "pricing module started",
		"endpoint", mono.Config().Endpoints.PriceOracle,
		"rpm", mono.Config().RateLimit.PriceRequestsPerMinute)
	return nil
}
