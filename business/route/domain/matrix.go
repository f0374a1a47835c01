package domain

import (
	"github.com/shopspring/decimal"
)

// MinCapitalPrecision is the default resolution of MinProfitableCapital.
var MinCapitalPrecision = decimal.NewFromInt(100)

// CapitalMultipliers scale the analysed capital in the matrix rows.
func CapitalMultipliers() []decimal.Decimal {
	return []decimal.Decimal{
		decimal.RequireFromString("0.5"),
		decimal.RequireFromString("0.75"),
		decimal.NewFromInt(1),
		decimal.RequireFromString("1.25"),
		decimal.RequireFromString("1.5"),
		decimal.NewFromInt(2),
		decimal.NewFromInt(5),
	}
}

// Horizons are the matrix columns, in days.
func Horizons() []int { return []int{7, 14, 30, 90, 180, 365} }

// MatrixRow is the net profit of one capital level at every horizon.
type MatrixRow struct {
	Multiplier decimal.Decimal   `json:"multiplier"`
	Capital    decimal.Decimal   `json:"capital"`
	NetProfit  []decimal.Decimal `json:"net_profit"`
}

// Matrix is net profit by capital level and holding period. Costs scale
// with capital at the analysed cost ratio.
type Matrix struct {
	Horizons []int       `json:"time_horizons"`
	Rows     []MatrixRow `json:"rows"`
}

// ProfitabilityMatrix builds the matrix around capital.
func ProfitabilityMatrix(capital, cost, apy decimal.Decimal) Matrix {
	ratio := CostRatio(cost, capital)
	horizons := Horizons()

	m := Matrix{Horizons: horizons}
	for _, mult := range CapitalMultipliers() {
		simCapital := capital.Mul(mult)
		row := MatrixRow{
			Multiplier: mult,
			Capital:    simCapital,
			NetProfit:  make([]decimal.Decimal, 0, len(horizons)),
		}
		for _, days := range horizons {
			row.NetProfit = append(row.NetProfit, scaledProfit(simCapital, ratio, apy, days).Round(2))
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}

// At returns the net profit for a multiplier and horizon.
func (m Matrix) At(multiplier decimal.Decimal, days int) (decimal.Decimal, bool) {
	col := -1
	for i, h := range m.Horizons {
		if h == days {
			col = i
		}
	}
	if col < 0 {
		return decimal.Zero, false
	}
	for _, r := range m.Rows {
		if r.Multiplier.Equal(multiplier) && col < len(r.NetProfit) {
			return r.NetProfit[col], true
		}
	}
	return decimal.Zero, false
}

func scaledProfit(capital, costRatio, apy decimal.Decimal, days int) decimal.Decimal {
	return DailyYield(capital, apy).Mul(decimal.NewFromInt(int64(days))).Sub(capital.Mul(costRatio))
}

// MinProfitableCapital searches [precision, 10 × base] for the smallest
// capital that is profitable after days, costs scaling with capital at the
// base cost ratio. It reports false when even 10 × base loses money.
func MinProfitableCapital(base, cost, apy decimal.Decimal, days int, precision decimal.Decimal) (decimal.Decimal, bool) {
	if !precision.IsPositive() {
		precision = MinCapitalPrecision
	}
	ratio := CostRatio(cost, base)

	low := precision
	high := base.Mul(decimal.NewFromInt(10))
	if !scaledProfit(high, ratio, apy, days).IsPositive() {
		return decimal.Zero, false
	}

	two := decimal.NewFromInt(2)
	for high.Sub(low).GreaterThan(precision) {
		mid := low.Add(high).Div(two)
		if scaledProfit(mid, ratio, apy, days).IsPositive() {
			high = mid
		} else {
			low = mid
		}
	}
	return high.Round(2), true
}
