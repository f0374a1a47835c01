package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	bridgeDomain "github.com/fd1az/liquidity-vector/business/bridge/domain"
	riskDomain "github.com/fd1az/liquidity-vector/business/risk/domain"
	yieldDomain "github.com/fd1az/liquidity-vector/business/yield/domain"
	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/fetch"
)

// MinCapitalHorizonDays is the holding period MinProfitableCapital targets.
const MinCapitalHorizonDays = 30

// Provenance records where every externally sourced field came from.
type Provenance struct {
	SourceGas    fetch.Source `json:"source_gas"`
	DestGas      fetch.Source `json:"dest_gas"`
	EntryQuote   fetch.Source `json:"entry_quote"`
	ExitQuote    fetch.Source `json:"exit_quote"`
	TVL          fetch.Source `json:"tvl"`
	Verification fetch.Source `json:"verification"`
	Exploits     fetch.Source `json:"exploits"`
}

// Degraded reports whether any field is not live or cached.
func (p Provenance) Degraded() bool {
	for _, s := range []fetch.Source{p.SourceGas, p.DestGas, p.EntryQuote, p.ExitQuote, p.TVL, p.Verification, p.Exploits} {
		if s != fetch.SourceLive && s != fetch.SourceCached {
			return true
		}
	}
	return false
}

// Result is the full analysis of one migration.
type Result struct {
	AnalysisID uuid.UUID        `json:"analysis_id"`
	CreatedAt  time.Time        `json:"created_at"`
	Source     chain.Chain      `json:"current_chain"`
	Dest       chain.Chain      `json:"target_chain"`
	CapitalUSD decimal.Decimal  `json:"capital"`
	TargetPool yieldDomain.Pool `json:"target_pool"`

	BridgeCost     decimal.Decimal `json:"bridge_cost"`
	GasCost        decimal.Decimal `json:"gas_cost"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	Costs          RoundTripCosts  `json:"cost_breakdown"`
	DailyYieldUSD  decimal.Decimal `json:"daily_yield_usd"`
	BreakevenDays  decimal.Decimal `json:"breakeven_days"`
	BreakevenHours decimal.Decimal `json:"breakeven_hours"`
	HasBreakeven   bool            `json:"has_breakeven"`
	GrossYield30d  decimal.Decimal `json:"gross_yield_30d"`
	NetProfit30d   decimal.Decimal `json:"net_profit_30d"`
	Chart          []ChartPoint    `json:"breakeven_chart_data"`
	Matrix         Matrix          `json:"profitability_matrix"`
	// MinProfitableCapital is nil when no capital up to ten times the
	// analysed amount pays back within MinCapitalHorizonDays.
	MinProfitableCapital *decimal.Decimal `json:"min_profitable_capital,omitempty"`

	RiskScore      int                  `json:"risk_score"`
	RiskLevel      int                  `json:"risk_level"`
	Risk           riskDomain.Breakdown `json:"risk_breakdown"`
	Warnings       []string             `json:"risk_warnings"`
	HasExploits    bool                 `json:"has_exploits"`
	BridgeName     string               `json:"bridge_name"`
	EstimatedTime  string               `json:"estimated_time"`
	BridgeMetadata bridgeDomain.Profile `json:"bridge_metadata"`
	Quote          bridgeDomain.Quote   `json:"quote"`

	Provenance Provenance `json:"provenance"`
}

// RouteRiskLevel maps a 0-100 safety score to 1 (safest) .. 5.
func RouteRiskLevel(score int) int {
	switch {
	case score >= 90:
		return 1
	case score >= 80:
		return 2
	case score >= 70:
		return 3
	case score >= 60:
		return 4
	default:
		return 5
	}
}

// Inputs are the fetched values a Result is derived from.
type Inputs struct {
	Request    Request
	Costs      RoundTripCosts
	Quote      bridgeDomain.Quote
	Assessment riskDomain.Assessment
	Provenance Provenance
}

// BuildResult derives the economics of in. It is a pure function of its
// arguments.
func BuildResult(id uuid.UUID, at time.Time, in Inputs) Result {
	req := in.Request
	total := in.Costs.Total
	be := ComputeBreakeven(total, req.CapitalUSD, req.PoolAPY)
	gross, net := ThirtyDay(be.DailyYieldUSD, total)

	var minCapital *decimal.Decimal
	if v, ok := MinProfitableCapital(req.CapitalUSD, total, req.PoolAPY, MinCapitalHorizonDays, MinCapitalPrecision); ok {
		minCapital = &v
	}

	breakdown := in.Assessment.Breakdown
	warnings := make([]string, len(breakdown.Warnings))
	copy(warnings, breakdown.Warnings)

	return Result{
		AnalysisID: id,
		CreatedAt:  at,
		Source:     req.Source,
		Dest:       req.Dest,
		CapitalUSD: req.CapitalUSD,
		TargetPool: req.TargetPool(),

		BridgeCost:           in.Costs.Entry.BridgeFee,
		GasCost:              in.Costs.GasCost(),
		TotalCost:            total,
		Costs:                in.Costs,
		DailyYieldUSD:        be.DailyYieldUSD,
		BreakevenDays:        be.Days,
		BreakevenHours:       be.Hours,
		HasBreakeven:         be.HasBreakeven,
		GrossYield30d:        gross,
		NetProfit30d:         net,
		Chart:                be.Chart,
		Matrix:               ProfitabilityMatrix(req.CapitalUSD, total, req.PoolAPY),
		MinProfitableCapital: minCapital,

		RiskScore:      breakdown.OverallScore,
		RiskLevel:      RouteRiskLevel(breakdown.OverallScore),
		Risk:           breakdown,
		Warnings:       warnings,
		HasExploits:    in.Assessment.HasExploits(),
		BridgeName:     in.Quote.BridgeName,
		EstimatedTime:  in.Assessment.EstimatedTime,
		BridgeMetadata: in.Assessment.Profile,
		Quote:          in.Quote,

		Provenance: in.Provenance,
	}
}

// NativeInputs describes a transfer that never leaves its chain: nothing
// to pay, nothing to wait for, nothing to trust.
func NativeInputs(req Request) Inputs {
	zero := NewLeg(decimal.Zero, decimal.Zero, decimal.Zero)
	a := riskDomain.NativeAssessment()
	return Inputs{
		Request: req,
		Costs:   RoundTrip(zero, zero),
		Quote: bridgeDomain.Quote{
			Provider:          bridgeDomain.ProviderNative,
			BridgeName:        a.BridgeLabel,
			TotalFeeUSD:       decimal.Zero,
			MinAmountReceived: req.CapitalUSD,
		},
		Assessment: a,
		Provenance: Provenance{
			SourceGas:    fetch.SourceDefault,
			DestGas:      fetch.SourceDefault,
			EntryQuote:   fetch.SourceDefault,
			ExitQuote:    fetch.SourceDefault,
			TVL:          a.Provenance.TVL,
			Verification: a.Provenance.Verification,
			Exploits:     a.Provenance.Exploits,
		},
	}
}
