// Package domain contains the bridge reference data, quote types and the
// deterministic bridge selection used when a quote names no known bridge.
package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/liquidity-vector/internal/chain"
)

// Architecture is the trust model of a bridge.
type Architecture string

const (
	Canonical  Architecture = "Canonical"
	Intent     Architecture = "Intent"
	LayerZero  Architecture = "LayerZero"
	Liquidity  Architecture = "Liquidity"
	Optimistic Architecture = "Optimistic"
	Guardian   Architecture = "Guardian"
	Native     Architecture = "Native"
)

// ExploitNote is the headline of a past incident, for display.
type ExploitNote struct {
	Year        int    `json:"year"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	ReportURL   string `json:"report_url"`
}

// Profile is the static description of a bridge.
type Profile struct {
	Name         string       `json:"name"`
	Architecture Architecture `json:"type"`
	AgeYears     float64      `json:"age_years"`
	TVLUSD       float64      `json:"tvl_usd"`
	HasExploits  bool         `json:"has_exploits"`
	BaseTimeMin  int          `json:"base_time_min"`
	Exploit      *ExploitNote `json:"exploit,omitempty"`

	// LlamaName is the bridge name on the DefiLlama bridges API.
	LlamaName string `json:"-"`
	// Contract is the main bridge contract, looked up on ContractChain's
	// explorer. The zero address means none is known.
	Contract      common.Address `json:"contract,omitempty"`
	ContractChain chain.Chain    `json:"contract_chain,omitempty"`
}

// HasContract reports whether p carries a contract address.
func (p Profile) HasContract() bool {
	return p.Contract != (common.Address{})
}

// Label is the display name with the architecture, e.g. "Hop Protocol (Liquidity)".
func (p Profile) Label() string {
	return p.Name + " (" + string(p.Architecture) + ")"
}

// NativeProfile describes a transfer that never leaves its chain.
func NativeProfile() Profile {
	return Profile{Name: "Native", Architecture: Native, AgeYears: 10}
}

const million = 1_000_000

// DefaultProfiles returns the bridges the analyzer knows about, in selection
// order. The slice is fresh on every call.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Name: "Stargate V2", Architecture: LayerZero, AgeYears: 3.0, TVLUSD: 320 * million, BaseTimeMin: 2,
			LlamaName: "stargate", Contract: common.HexToAddress("0xc026395860Db2d07ee33e05fE50ed7bD583189C7"), ContractChain: chain.Ethereum,
		},
		{
			Name: "Across Protocol", Architecture: Intent, AgeYears: 2.5, TVLUSD: 450 * million, BaseTimeMin: 1,
			LlamaName: "across", Contract: common.HexToAddress("0x5c7BCd6E7De5423a257D81B442095A1a6ced35C5"), ContractChain: chain.Ethereum,
		},
		{
			Name: "Hop Protocol", Architecture: Liquidity, AgeYears: 4.0, TVLUSD: 65 * million, BaseTimeMin: 8,
			LlamaName: "hop", Contract: common.HexToAddress("0x3666f603Cc164936C1b87e207F36BEBa4AC5f18a"), ContractChain: chain.Ethereum,
		},
		{
			Name: "Synapse", Architecture: Liquidity, AgeYears: 3.5, TVLUSD: 120 * million, HasExploits: true, BaseTimeMin: 4,
			LlamaName: "synapse", Contract: common.HexToAddress("0x2796317b0fF8538F253012862c06787Adfb8cEb6"), ContractChain: chain.Ethereum,
			Exploit: &ExploitNote{
				Year:        2021,
				Amount:      "$8M",
				Description: "Metapool logic error allowed unbalanced AMM trades during high volatility.",
				ReportURL:   "https://rekt.news/synapse-rekt/",
			},
		},
		{
			Name: "Multichain (Legacy)", Architecture: Liquidity, AgeYears: 5.0, TVLUSD: 0, HasExploits: true, BaseTimeMin: 999,
			LlamaName: "multichain",
			Exploit: &ExploitNote{
				Year:        2023,
				Amount:      "$126M",
				Description: "Unauthorized access to MPC keys lead to massive drain of Fantom/Moonriver bridges.",
				ReportURL:   "https://rekt.news/multichain-rekt/",
			},
		},
		{
			Name: "Nomad", Architecture: Optimistic, AgeYears: 2.0, TVLUSD: 5 * million, HasExploits: true, BaseTimeMin: 35,
			LlamaName: "nomad",
			Exploit: &ExploitNote{
				Year:        2022,
				Amount:      "$190M",
				Description: "Improper root validation allowed attackers to spoof messages and drain all funds.",
				ReportURL:   "https://rekt.news/nomad-rekt/",
			},
		},
		{
			Name: "Wormhole", Architecture: Guardian, AgeYears: 3.5, TVLUSD: 850 * million, HasExploits: true, BaseTimeMin: 5,
			LlamaName: "portal",
			Exploit: &ExploitNote{
				Year:        2022,
				Amount:      "$320M",
				Description: "Signature verification bypass on Solana-Ethereum bridge (replenished by VC).",
				ReportURL:   "https://rekt.news/wormhole-rekt/",
			},
		},
		{
			Name: "Hyphen", Architecture: Liquidity, AgeYears: 2.5, TVLUSD: 80 * million, BaseTimeMin: 2,
			LlamaName: "hyphen",
		},
		{
			Name: "Arbitrum Bridge", Architecture: Canonical, AgeYears: 3.0, TVLUSD: 2800 * million, BaseTimeMin: 15,
			LlamaName: "arbitrum", Contract: common.HexToAddress("0x72Ce9c846789fdB6fC1f34aC4AD25Dd9ef7031ef"), ContractChain: chain.Ethereum,
		},
		{
			Name: "Optimism Gateway", Architecture: Canonical, AgeYears: 3.0, TVLUSD: 1200 * million, BaseTimeMin: 15,
			LlamaName: "optimism", Contract: common.HexToAddress("0x99C9fc46f92E8a1c0deC1b1747d010903E884bE1"), ContractChain: chain.Ethereum,
		},
		{
			Name: "Base Bridge", Architecture: Canonical, AgeYears: 1.5, TVLUSD: 1500 * million, BaseTimeMin: 15,
			LlamaName: "base", Contract: common.HexToAddress("0x3154Cf16ccdb4C6d922629664174b904d80F2C35"), ContractChain: chain.Ethereum,
		},
	}
}

// NameMatches reports whether two bridge names refer to the same bridge: one
// contains the other, ignoring case. Empty names never match.
func NameMatches(a, b string) bool {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
