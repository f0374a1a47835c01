// Package route implements the route bounded context: round trip cost,
// breakeven and pre-flight analysis of a capital migration.
package route

import (
	"context"

	blockchainDI "github.com/fd1az/liquidity-vector/business/blockchain/di"
	bridgeDI "github.com/fd1az/liquidity-vector/business/bridge/di"
	riskDI "github.com/fd1az/liquidity-vector/business/risk/di"
	"github.com/fd1az/liquidity-vector/business/route/app"
	routeDI "github.com/fd1az/liquidity-vector/business/route/di"
	"github.com/fd1az/liquidity-vector/internal/di"
	"github.com/fd1az/liquidity-vector/internal/monolith"
)

// Module implements the route bounded context.
type Module struct{}

// RegisterServices registers all route services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Depends on blockchain for gas, bridge for quotes and risk for scores.
	di.RegisterToken(c, routeDI.Orchestrator, func(sr di.ServiceRegistry) *app.Orchestrator {
		return app.NewOrchestrator(
			blockchainDI.GetBlockchainService(sr),
			bridgeDI.GetBridgeService(sr),
			riskDI.GetEngine(sr),
			di.GetToken(sr, monolith.LoggerToken),
		)
	})

	di.RegisterToken(c, routeDI.Sentinel, func(sr di.ServiceRegistry) *app.Sentinel {
		return app.NewSentinel(
			blockchainDI.GetBlockchainService(sr),
			di.GetToken(sr, monolith.LoggerToken),
		)
	})

	di.RegisterToken(c, routeDI.CircuitInspector, func(sr di.ServiceRegistry) *app.CircuitInspector {
		return app.NewCircuitInspector(
			di.GetToken(sr, monolith.BreakersToken),
			di.GetToken(sr, monolith.CachesToken),
		)
	})

	return nil
}

// Startup initializes the route module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	// Resolve eagerly so a wiring error surfaces at startup.
	_ = routeDI.GetOrchestrator(mono.Services())
	_ = routeDI.GetSentinel(mono.Services())

	states := routeDI.GetCircuitInspector(mono.Services()).CircuitStates()
	mono.Logger().Info(ctx, "route module started",
		"breakers", len(states.Breakers),
		"caches", len(states.Caches))
	return nil
}
