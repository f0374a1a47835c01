package domain

import (
	"strings"
	"time"

	bridgeDomain "github.com/fd1az/liquidity-vector/business/bridge/domain"
	"github.com/fd1az/liquidity-vector/internal/fetch"
)

const (
	// DefaultTVLUSD is assumed when neither a live value nor a profile exists.
	DefaultTVLUSD = 50_000_000
	// DefaultAgeYears is assumed when the contract age is unknown.
	DefaultAgeYears = 1.0
)

// BridgeVolume is one bridge as listed by the bridges TVL API.
type BridgeVolume struct {
	Name            string   `json:"name"`
	DisplayName     string   `json:"display_name"`
	LastDailyVolume float64  `json:"last_daily_volume"`
	CurrentVolume   float64  `json:"current_day_volume"`
	Change1d        float64  `json:"change_1d"`
	Chains          []string `json:"chains"`
}

// ContractInfo is what the block explorer knows about a contract.
type ContractInfo struct {
	Verified   bool      `json:"verified"`
	Name       string    `json:"name,omitempty"`
	Compiler   string    `json:"compiler,omitempty"`
	CreationTx string    `json:"creation_tx,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// AgeYears is the contract age at now, zero when the creation time is unknown.
func (c ContractInfo) AgeYears(now time.Time) float64 {
	if c.CreatedAt.IsZero() {
		return 0
	}
	days := int(now.Sub(c.CreatedAt).Hours() / 24)
	return float64(days) / 365
}

// HasCreation reports whether the creation time is known.
func (c ContractInfo) HasCreation() bool { return !c.CreatedAt.IsZero() }

// Provenance records where each enrichment came from.
type Provenance struct {
	TVL          fetch.Source `json:"tvl"`
	Verification fetch.Source `json:"verification"`
	Exploits     fetch.Source `json:"exploits"`
}

// Assessment is the risk of using one bridge on one route.
type Assessment struct {
	Profile       bridgeDomain.Profile `json:"profile"`
	BridgeLabel   string               `json:"bridge_name"`
	EstimatedTime string               `json:"estimated_time"`
	TVLUSD        float64              `json:"tvl_usd"`
	AgeYears      float64              `json:"age_years"`
	Verified      bool                 `json:"verified"`
	Exploits      ExploitHistory       `json:"exploits"`
	Breakdown     Breakdown            `json:"breakdown"`
	Provenance    Provenance           `json:"provenance"`
}

// HasExploits reports whether the bridge has a recorded incident.
func (a Assessment) HasExploits() bool {
	return a.Exploits.HasExploits() || a.Profile.HasExploits
}

// NativeAssessment is the assessment of a transfer within one chain.
func NativeAssessment() Assessment {
	return Assessment{
		Profile:       bridgeDomain.NativeProfile(),
		BridgeLabel:   "Native Transfer",
		EstimatedTime: "Instant",
		Verified:      true,
		AgeYears:      bridgeDomain.NativeProfile().AgeYears,
		Breakdown:     Perfect(),
		Provenance: Provenance{
			TVL:          fetch.SourceDefault,
			Verification: fetch.SourceDefault,
			Exploits:     fetch.SourceDefault,
		},
	}
}

// MatchVolume finds the bridge p is listed as. Names compare case-insensitively
// against both the listing name and its display name.
func MatchVolume(volumes []BridgeVolume, p bridgeDomain.Profile) (BridgeVolume, bool) {
	for _, want := range []string{p.LlamaName, p.Name} {
		if want == "" {
			continue
		}
		for _, v := range volumes {
			if strings.EqualFold(v.Name, want) || strings.EqualFold(v.DisplayName, want) {
				return v, true
			}
		}
	}
	return BridgeVolume{}, false
}
