package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// MinChartDays is the shortest chart timeframe.
	MinChartDays = 90
	// MaxChartDays bounds the timeframe of a barely reachable breakeven.
	MaxChartDays = 36_500
	// MaxChartPoints bounds the points of one chart.
	MaxChartPoints = 100
)

var (
	hundred     = decimal.NewFromInt(100)
	daysPerYear = decimal.NewFromInt(365)
	hoursPerDay = decimal.NewFromInt(24)
	chartExtend = decimal.RequireFromString("1.5")
)

// ChartPoint is the net profit after Day days.
type ChartPoint struct {
	Day    int             `json:"day"`
	Profit decimal.Decimal `json:"profit"`
}

// Breakeven is when cumulative yield pays back the migration cost.
type Breakeven struct {
	DailyYieldUSD decimal.Decimal `json:"daily_yield_usd"`
	Days          decimal.Decimal `json:"breakeven_days"`
	Hours         decimal.Decimal `json:"breakeven_hours"`
	// HasBreakeven is false when the cost is never recovered; Days and
	// Hours are zero then.
	HasBreakeven bool         `json:"has_breakeven"`
	Chart        []ChartPoint `json:"chart"`
}

// DailyYield is what capital earns per day at apy percent.
func DailyYield(capital, apy decimal.Decimal) decimal.Decimal {
	return capital.Mul(apy).Div(hundred).Div(daysPerYear)
}

// ComputeBreakeven finds the breakeven of paying cost to earn apy percent on
// capital, with the profit chart over the relevant timeframe.
func ComputeBreakeven(cost, capital, apy decimal.Decimal) Breakeven {
	daily := DailyYield(capital, apy)

	b := Breakeven{DailyYieldUSD: daily}
	switch {
	case daily.IsPositive():
		b.Days = cost.Div(daily)
		b.HasBreakeven = true
	case !cost.IsPositive():
		b.Days = decimal.Zero
		b.HasBreakeven = true
	}
	b.Hours = b.Days.Mul(hoursPerDay)
	b.Chart = Chart(daily, cost, ChartTimeframe(b))
	return b
}

// ChartTimeframe is 90 days, stretched to 1.5 times a later breakeven.
func ChartTimeframe(b Breakeven) int {
	timeframe := MinChartDays
	if !b.HasBreakeven {
		return timeframe
	}
	if b.Days.GreaterThan(decimal.NewFromInt(MaxChartDays)) {
		return MaxChartDays
	}
	if extended := int(b.Days.Mul(chartExtend).IntPart()); extended > timeframe {
		timeframe = extended
	}
	return timeframe
}

// Chart samples net profit over [0, timeframe] in at most MaxChartPoints
// evenly spaced days.
func Chart(daily, cost decimal.Decimal, timeframe int) []ChartPoint {
	n := timeframe + 1
	if n > MaxChartPoints {
		n = MaxChartPoints
	}
	step := 1.0
	if n > 1 {
		step = float64(timeframe) / float64(n-1)
	}

	points := make([]ChartPoint, 0, n)
	for i := 0; i < n; i++ {
		day := int(math.Round(float64(i) * step))
		points = append(points, ChartPoint{
			Day:    day,
			Profit: ProfitAtDay(day, daily, cost).Round(2),
		})
	}
	return points
}

// ProfitAtDay is the net profit after day days.
func ProfitAtDay(day int, daily, cost decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(day)).Mul(daily).Sub(cost)
}

// ThirtyDay returns gross yield and net profit over 30 days, in cents.
func ThirtyDay(daily, cost decimal.Decimal) (gross, net decimal.Decimal) {
	gross = daily.Mul(decimal.NewFromInt(30)).Round(2)
	return gross, gross.Sub(cost).Round(2)
}
