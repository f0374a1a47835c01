// Package chain holds the supported networks and their reference data.
package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/liquidity-vector/internal/apperror"
)

// Chain is a supported network, named the way users and reports name it.
type Chain string

const (
	Ethereum  Chain = "Ethereum"
	Arbitrum  Chain = "Arbitrum"
	Base      Chain = "Base"
	Optimism  Chain = "Optimism"
	Polygon   Chain = "Polygon"
	Avalanche Chain = "Avalanche"
	BNB       Chain = "BNB Chain"
)

// Info is the static reference data of a chain.
type Info struct {
	ID            uint64
	NativeTokenID string // price oracle id of the gas token
	USDC          common.Address
	BaseGasLimit  uint64
	NormalGasGwei float64
	Mature        bool
	DefaultRPC    string
	ExplorerAPI   string
}

const (
	// DefaultGasLimit applies to chains without a tuned base limit.
	DefaultGasLimit uint64 = 200_000
	// DefaultNormalGasGwei is the "typical" gas price for unknown chains.
	DefaultNormalGasGwei = 30.0
	// DefaultNativeTokenID is the price oracle id used when none is known.
	DefaultNativeTokenID = "ethereum"
)

var registry = map[Chain]Info{
	Ethereum: {
		ID:            1,
		NativeTokenID: "ethereum",
		USDC:          common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
		BaseGasLimit:  220_000,
		NormalGasGwei: 30,
		Mature:        true,
		DefaultRPC:    "https://eth.llamarpc.com",
		ExplorerAPI:   "https://api.etherscan.io/api",
	},
	Arbitrum: {
		ID:            42161,
		NativeTokenID: "ethereum",
		USDC:          common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831"),
		BaseGasLimit:  600_000,
		NormalGasGwei: 0.1,
		Mature:        true,
		DefaultRPC:    "https://arb1.arbitrum.io/rpc",
		ExplorerAPI:   "https://api.arbiscan.io/api",
	},
	Base: {
		ID:            8453,
		NativeTokenID: "ethereum",
		USDC:          common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
		BaseGasLimit:  350_000,
		NormalGasGwei: 0.01,
		DefaultRPC:    "https://mainnet.base.org",
		ExplorerAPI:   "https://api.basescan.org/api",
	},
	Optimism: {
		ID:            10,
		NativeTokenID: "ethereum",
		USDC:          common.HexToAddress("0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85"),
		BaseGasLimit:  400_000,
		NormalGasGwei: 0.01,
		Mature:        true,
		DefaultRPC:    "https://mainnet.optimism.io",
		ExplorerAPI:   "https://api-optimistic.etherscan.io/api",
	},
	Polygon: {
		ID:            137,
		NativeTokenID: "matic-network",
		USDC:          common.HexToAddress("0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359"),
		BaseGasLimit:  300_000,
		NormalGasGwei: 50,
		Mature:        true,
		DefaultRPC:    "https://polygon-rpc.com",
		ExplorerAPI:   "https://api.polygonscan.com/api",
	},
	Avalanche: {
		ID:            43114,
		NativeTokenID: "avalanche-2",
		USDC:          common.HexToAddress("0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E"),
		BaseGasLimit:  250_000,
		NormalGasGwei: 30,
		DefaultRPC:    "https://api.avax.network/ext/bc/C/rpc",
		ExplorerAPI:   "https://api.snowtrace.io/api",
	},
	BNB: {
		ID:            56,
		NativeTokenID: "binancecoin",
		USDC:          common.HexToAddress("0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d"),
		BaseGasLimit:  200_000,
		NormalGasGwei: 5,
		DefaultRPC:    "https://bsc-dataseed.binance.org",
		ExplorerAPI:   "https://api.bscscan.com/api",
	},
}

// All lists the supported chains in display order.
func All() []Chain {
	return []Chain{Ethereum, Arbitrum, Base, Optimism, Polygon, Avalanche, BNB}
}

var aliases = map[string]Chain{
	"bsc":                 BNB,
	"bnb":                 BNB,
	"bnb chain":           BNB,
	"binance":             BNB,
	"binance smart chain": BNB,
	"avax":                Avalanche,
	"eth":                 Ethereum,
	"mainnet":             Ethereum,
	"arbitrum one":        Arbitrum,
	"op mainnet":          Optimism,
	"matic":               Polygon,
}

// Parse normalizes a user or upstream supplied chain name.
func Parse(name string) (Chain, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := aliases[key]; ok {
		return c, nil
	}
	for _, c := range All() {
		if strings.ToLower(string(c)) == key {
			return c, nil
		}
	}
	return "", apperror.Validation(apperror.CodeInvalidChain, name)
}

// MustParse is Parse for constants and tests.
func MustParse(name string) Chain {
	c, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Info returns the reference data of c. Unknown chains get the defaults.
func (c Chain) Info() Info {
	if info, ok := registry[c]; ok {
		return info
	}
	return Info{
		NativeTokenID: DefaultNativeTokenID,
		BaseGasLimit:  DefaultGasLimit,
		NormalGasGwei: DefaultNormalGasGwei,
	}
}

func (c Chain) String() string { return string(c) }

// ID returns the EVM chain id.
func (c Chain) ID() uint64 { return c.Info().ID }

// IsRoot reports whether c is the settlement layer other chains bridge to.
func (c Chain) IsRoot() bool { return c == Ethereum }

// IsMature reports whether c has long standing production infrastructure.
func (c Chain) IsMature() bool { return c.Info().Mature }

// Slug is the lower case form used in cache keys and URLs.
func (c Chain) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(c)), " ", "-")
}
