package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeBreakeven(t *testing.T) {
	tests := []struct {
		name      string
		cost      string
		capital   string
		apy       string
		wantHas   bool
		wantDays  string
		wantHours string
		wantLast  ChartPoint
		wantLen   int
	}{
		{
			name: "free migration", cost: "0", capital: "10000", apy: "5",
			wantHas: true, wantDays: "0", wantHours: "0",
			wantLast: ChartPoint{Day: 90, Profit: d("123.29")}, wantLen: 91,
		},
		{
			name: "no yield", cost: "100", capital: "10000", apy: "0",
			wantHas: false, wantDays: "0", wantHours: "0",
			wantLast: ChartPoint{Day: 90, Profit: d("-100")}, wantLen: 91,
		},
		{
			name: "ten days", cost: "100", capital: "10000", apy: "36.5",
			wantHas: true, wantDays: "10", wantHours: "240",
			wantLast: ChartPoint{Day: 90, Profit: d("800")}, wantLen: 91,
		},
		{
			name: "stretched chart", cost: "1000", capital: "10000", apy: "36.5",
			wantHas: true, wantDays: "100", wantHours: "2400",
			wantLast: ChartPoint{Day: 150, Profit: d("500")}, wantLen: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ComputeBreakeven(d(tt.cost), d(tt.capital), d(tt.apy))

			if b.HasBreakeven != tt.wantHas {
				t.Fatalf("HasBreakeven = %v, want %v", b.HasBreakeven, tt.wantHas)
			}
			if !b.Days.Equal(d(tt.wantDays)) {
				t.Errorf("Days = %s, want %s", b.Days, tt.wantDays)
			}
			if !b.Hours.Equal(d(tt.wantHours)) {
				t.Errorf("Hours = %s, want %s", b.Hours, tt.wantHours)
			}
			if len(b.Chart) != tt.wantLen {
				t.Fatalf("chart has %d points, want %d", len(b.Chart), tt.wantLen)
			}
			if b.Chart[0].Day != 0 {
				t.Errorf("first day = %d, want 0", b.Chart[0].Day)
			}
			last := b.Chart[len(b.Chart)-1]
			if last.Day != tt.wantLast.Day || !last.Profit.Equal(tt.wantLast.Profit) {
				t.Errorf("last point = %d/%s, want %d/%s", last.Day, last.Profit, tt.wantLast.Day, tt.wantLast.Profit)
			}
		})
	}
}

func TestChartDaysIncrease(t *testing.T) {
	b := ComputeBreakeven(d("1000"), d("10000"), d("36.5"))
	for i := 1; i < len(b.Chart); i++ {
		if b.Chart[i].Day <= b.Chart[i-1].Day {
			t.Fatalf("day %d at %d does not follow %d", b.Chart[i].Day, i, b.Chart[i-1].Day)
		}
	}
}

func TestChartTimeframeIsBounded(t *testing.T) {
	b := ComputeBreakeven(d("1000000000"), d("100"), d("0.01"))
	if !b.HasBreakeven {
		t.Fatal("positive yield should break even eventually")
	}
	if got := ChartTimeframe(b); got != MaxChartDays {
		t.Errorf("timeframe = %d, want %d", got, MaxChartDays)
	}
	if len(b.Chart) != MaxChartPoints {
		t.Errorf("chart has %d points, want %d", len(b.Chart), MaxChartPoints)
	}
}

func TestProfitAtDay(t *testing.T) {
	if got := ProfitAtDay(5, d("10"), d("100")); !got.Equal(d("-50")) {
		t.Errorf("ProfitAtDay = %s, want -50", got)
	}
}

func TestThirtyDay(t *testing.T) {
	gross, net := ThirtyDay(d("10"), d("100"))
	if !gross.Equal(d("300")) || !net.Equal(d("200")) {
		t.Errorf("ThirtyDay = %s/%s, want 300/200", gross, net)
	}

	gross, net = ThirtyDay(DailyYield(d("10000"), d("5")), decimal.Zero)
	if !gross.Equal(d("41.1")) || !net.Equal(d("41.1")) {
		t.Errorf("ThirtyDay = %s/%s, want 41.1/41.1", gross, net)
	}
}
