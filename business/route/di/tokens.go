// Package di contains dependency injection tokens for the route context.
package di

import (
	"github.com/fd1az/liquidity-vector/business/route/app"
	"github.com/fd1az/liquidity-vector/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Orchestrator     = di.NewToken[*app.Orchestrator]("route.Orchestrator")
	Sentinel         = di.NewToken[*app.Sentinel]("route.Sentinel")
	CircuitInspector = di.NewToken[*app.CircuitInspector]("route.CircuitInspector")
)

func GetOrchestrator(c di.ServiceRegistry) *app.Orchestrator {
	return di.GetToken(c, Orchestrator)
}

func GetSentinel(c di.ServiceRegistry) *app.Sentinel {
	return di.GetToken(c, Sentinel)
}

func GetCircuitInspector(c di.ServiceRegistry) *app.CircuitInspector {
	return di.GetToken(c, CircuitInspector)
}
