// Package di contains dependency injection tokens for the bridge context.
package di

import (
	"github.com/fd1az/liquidity-vector/business/bridge/app"
	"github.com/fd1az/liquidity-vector/internal/di"
)

// Public service tokens - exposed to other modules
var (
	BridgeService = di.NewToken[*app.BridgeService]("bridge.BridgeService")
)

// Private dependency tokens - internal to bridge module
var (
	QuoteProvider = di.NewToken[app.QuoteProvider]("bridge:quoteProvider")
)

func GetBridgeService(c di.ServiceRegistry) *app.BridgeService {
	return di.GetToken(c, BridgeService)
}

func GetQuoteProvider(c di.ServiceRegistry) app.QuoteProvider {
	return di.GetToken(c, QuoteProvider)
}
