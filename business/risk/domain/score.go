// Package domain contains the bridge risk model: a six factor score where
// higher is safer, its 1-5 level and the records it is computed from.
package domain

import (
	"fmt"

	bridgeDomain "github.com/fd1az/liquidity-vector/business/bridge/domain"
	"github.com/fd1az/liquidity-vector/internal/chain"
)

// Factor names one component of the score.
type Factor string

const (
	FactorBridgeType    Factor = "bridge_type"
	FactorProtocolAge   Factor = "protocol_age"
	FactorTVLDepth      Factor = "tvl_depth"
	FactorExploits      Factor = "exploit_history"
	FactorVerification  Factor = "contract_verification"
	FactorChainMaturity Factor = "chain_maturity"
)

// Factors lists every factor in scoring order.
func Factors() []Factor {
	return []Factor{FactorBridgeType, FactorProtocolAge, FactorTVLDepth, FactorExploits, FactorVerification, FactorChainMaturity}
}

const (
	MaxScore = 100

	maxAgePoints     = 20
	agePointsPerYear = 4

	lowTVLWarning = 50_000_000
)

var architecturePoints = map[bridgeDomain.Architecture]int{
	bridgeDomain.Canonical: 25,
	bridgeDomain.Intent:    22,
	bridgeDomain.LayerZero: 20,
	bridgeDomain.Liquidity: 15,
}

// unknownArchitecturePoints scores any other trust model.
const unknownArchitecturePoints = 10

// Inputs is everything the score depends on.
type Inputs struct {
	Architecture   bridgeDomain.Architecture `json:"bridge_type"`
	TVLUSD         float64                   `json:"tvl_usd"`
	AgeYears       float64                   `json:"age_years"`
	HasExploits    bool                      `json:"has_exploits"`
	ExploitLossUSD float64                   `json:"exploit_loss_usd"`
	Verified       bool                      `json:"is_verified"`
	Source         chain.Chain               `json:"source_chain"`
	Dest           chain.Chain               `json:"dest_chain"`
}

// Breakdown is a computed score with its parts.
type Breakdown struct {
	OverallScore int            `json:"overall_score"`
	Level        int            `json:"risk_level"`
	Factors      map[Factor]int `json:"factors"`
	Warnings     []string       `json:"warnings"`
	Metadata     Inputs         `json:"metadata"`
}

// Label is the level's human name.
func (b Breakdown) Label() string { return LevelLabel(b.Level) }

// Score computes the breakdown for in. Every factor stays within its own
// range and the total within [0, MaxScore].
func Score(in Inputs) Breakdown {
	factors := make(map[Factor]int, 6)
	var warnings []string

	arch, ok := architecturePoints[in.Architecture]
	if !ok {
		arch = unknownArchitecturePoints
	}
	factors[FactorBridgeType] = arch

	factors[FactorProtocolAge] = clamp(int(in.AgeYears*agePointsPerYear), 0, maxAgePoints)
	if in.AgeYears < 1 {
		warnings = append(warnings, "Protocol less than 1 year old")
	}

	factors[FactorTVLDepth] = tvlPoints(in.TVLUSD)
	if in.TVLUSD < lowTVLWarning {
		warnings = append(warnings, fmt.Sprintf("Low TVL: $%.1fM", in.TVLUSD/1e6))
	}

	exploit, warning := exploitPoints(in.HasExploits, in.ExploitLossUSD)
	factors[FactorExploits] = exploit
	if warning != "" {
		warnings = append(warnings, warning)
	}

	if in.Verified {
		factors[FactorVerification] = 10
	} else {
		factors[FactorVerification] = 0
		warnings = append(warnings, "Contract not verified on block explorer")
	}

	maturity := maturityPoints(in.Source, in.Dest)
	factors[FactorChainMaturity] = maturity
	if maturity == 1 {
		warnings = append(warnings, "Route involves newer chain infrastructure")
	}

	total := 0
	for _, p := range factors {
		total += p
	}
	total = clamp(total, 0, MaxScore)

	return Breakdown{
		OverallScore: total,
		Level:        Level(total),
		Factors:      factors,
		Warnings:     warnings,
		Metadata:     in,
	}
}

// Perfect is the breakdown of a transfer that never leaves its chain.
func Perfect() Breakdown {
	return Breakdown{OverallScore: MaxScore, Level: 1, Factors: map[Factor]int{}}
}

func tvlPoints(tvl float64) int {
	switch {
	case tvl >= 1_000_000_000:
		return 20
	case tvl >= 500_000_000:
		return 16
	case tvl >= 100_000_000:
		return 12
	case tvl >= 50_000_000:
		return 8
	default:
		return 4
	}
}

func exploitPoints(hasExploits bool, netLoss float64) (int, string) {
	switch {
	case !hasExploits:
		return 20, ""
	case netLoss >= 100_000_000:
		return 0, fmt.Sprintf("Major exploit: $%.0fM lost", netLoss/1e6)
	case netLoss >= 10_000_000:
		return 5, fmt.Sprintf("Significant exploit: $%.0fM lost", netLoss/1e6)
	default:
		return 10, fmt.Sprintf("Minor exploit: $%.1fM lost", netLoss/1e6)
	}
}

func maturityPoints(src, dst chain.Chain) int {
	switch {
	case src.IsMature() && dst.IsMature():
		return 5
	case src.IsMature() || dst.IsMature():
		return 3
	default:
		return 1
	}
}

// Level maps a score to 1 (safest) through 5.
func Level(score int) int {
	switch {
	case score >= 90:
		return 1
	case score >= 75:
		return 2
	case score >= 60:
		return 3
	case score >= 40:
		return 4
	default:
		return 5
	}
}

// LevelLabel names a level.
func LevelLabel(level int) string {
	switch level {
	case 1:
		return "Very Safe"
	case 2:
		return "Safe"
	case 3:
		return "Moderate"
	case 4:
		return "Risky"
	case 5:
		return "Very Risky"
	default:
		return "Unknown"
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
