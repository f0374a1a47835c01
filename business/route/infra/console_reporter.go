// Package infra contains the route analysis reporters.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/fd1az/liquidity-vector/business/route/app"
	"github.com/fd1az/liquidity-vector/business/route/domain"
	"github.com/fd1az/liquidity-vector/internal/circuitbreaker"
)

const (
	rule = "================================================================================"
	sep  = "--------------------------------------------------------------------------------"
)

var (
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
)

// ConsoleReporter implements app.Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer
	// Matrix prints the profitability matrix with each analysis.
	Matrix bool
}

// NewConsoleReporter creates a ConsoleReporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return NewConsoleReporterTo(os.Stdout)
}

// NewConsoleReporterTo creates a ConsoleReporter writing to out.
func NewConsoleReporterTo(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out, Matrix: true}
}

// Start prints the banner.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, titleStyle.Render("Liquidity Vector"))
	fmt.Fprintln(r.out, "================")
	return nil
}

// Report prints one analysis.
func (r *ConsoleReporter) Report(a app.Analysis) {
	res := a.Result

	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "MIGRATION %s -> %s\n", res.Source, res.Dest)
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "Analysis:       %s\n", res.AnalysisID)
	fmt.Fprintf(r.out, "Timestamp:      %s\n", res.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(r.out, "Capital:        $%s\n", res.CapitalUSD.StringFixed(2))
	if p := res.TargetPool; p.Project != "" {
		fmt.Fprintf(r.out, "Target pool:    %s %s (%s%% APY)\n", p.Project, p.Symbol, decimal.NewFromFloat(p.APY).StringFixed(2))
	}
	fmt.Fprintf(r.out, "Bridge:         %s (%s)\n", res.BridgeName, res.EstimatedTime)

	fmt.Fprintln(r.out, sep)
	fmt.Fprintln(r.out, "COSTS")
	r.leg("Entry", res.Costs.Entry)
	r.leg("Exit", res.Costs.Exit)
	fmt.Fprintf(r.out, "  Round trip:     $%s\n", res.TotalCost.StringFixed(2))

	fmt.Fprintln(r.out, sep)
	fmt.Fprintln(r.out, "BREAKEVEN")
	fmt.Fprintf(r.out, "  Daily yield:    $%s\n", res.DailyYieldUSD.StringFixed(2))
	if res.HasBreakeven {
		fmt.Fprintf(r.out, "  Breakeven:      %s days (%s hours)\n", res.BreakevenDays.StringFixed(1), res.BreakevenHours.StringFixed(1))
	} else {
		fmt.Fprintln(r.out, "  Breakeven:      "+failStyle.Render("never"))
	}
	fmt.Fprintf(r.out, "  30d gross:      $%s\n", res.GrossYield30d.StringFixed(2))
	fmt.Fprintf(r.out, "  30d net:        %s\n", money(res.NetProfit30d))
	if res.MinProfitableCapital != nil {
		fmt.Fprintf(r.out, "  Min capital:    $%s (%dd payback)\n", res.MinProfitableCapital.StringFixed(2), domain.MinCapitalHorizonDays)
	} else {
		fmt.Fprintf(r.out, "  Min capital:    %s\n", mutedStyle.Render("none"))
	}

	if r.Matrix {
		fmt.Fprintln(r.out, sep)
		fmt.Fprintln(r.out, "PROFITABILITY (net USD)")
		r.matrix(res.Matrix)
	}

	fmt.Fprintln(r.out, sep)
	fmt.Fprintln(r.out, "RISK")
	fmt.Fprintf(r.out, "  Score:          %d/100 (level %d)\n", res.RiskScore, res.RiskLevel)
	if res.HasExploits {
		fmt.Fprintln(r.out, "  Exploits:       "+failStyle.Render("yes"))
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(r.out, "  "+warnStyle.Render("! "+w))
	}

	if len(a.Preflight.Checks) > 0 {
		fmt.Fprintln(r.out, sep)
		fmt.Fprintf(r.out, "PRE-FLIGHT  %s\n", status(a.Preflight.Overall))
		for _, c := range a.Preflight.Checks {
			fmt.Fprintf(r.out, "  %-20s %s  %s\n", c.Name, status(c.Status), c.Message)
		}
	}

	if res.Provenance.Degraded() {
		fmt.Fprintln(r.out, sep)
		fmt.Fprintln(r.out, "DATA SOURCES "+warnStyle.Render("(degraded)"))
		p := res.Provenance
		fmt.Fprintf(r.out, "  gas %s/%s  quotes %s/%s  tvl %s  verification %s  exploits %s\n",
			p.SourceGas, p.DestGas, p.EntryQuote, p.ExitQuote, p.TVL, p.Verification, p.Exploits)
	}
	fmt.Fprintln(r.out, rule)
}

func (r *ConsoleReporter) leg(name string, l domain.Leg) {
	fmt.Fprintf(r.out, "  %-6s bridge $%s + gas $%s / $%s = $%s\n",
		name,
		l.BridgeFee.StringFixed(2),
		l.SourceGas.StringFixed(2),
		l.DestGas.StringFixed(2),
		l.Total.StringFixed(2),
	)
}

func (r *ConsoleReporter) matrix(m domain.Matrix) {
	var b strings.Builder
	b.WriteString("  capital     ")
	for _, h := range m.Horizons {
		fmt.Fprintf(&b, "%10s", fmt.Sprintf("%dd", h))
	}
	fmt.Fprintln(r.out, b.String())

	for _, row := range m.Rows {
		b.Reset()
		fmt.Fprintf(&b, "  %-11s ", "$"+row.Capital.StringFixed(0))
		for _, p := range row.NetProfit {
			cell := fmt.Sprintf("%10s", p.StringFixed(0))
			if p.IsNegative() {
				cell = failStyle.Render(cell)
			}
			b.WriteString(cell)
		}
		fmt.Fprintln(r.out, b.String())
	}
}

// ReportError prints a failed analysis run.
func (r *ConsoleReporter) ReportError(err error) {
	fmt.Fprintf(r.out, "[%s] %s %v\n", time.Now().Format("15:04:05"), failStyle.Render("analysis failed:"), err)
}

// UpdateCircuits prints breakers that are not closed.
func (r *ConsoleReporter) UpdateCircuits(states app.CircuitStates) {
	for _, b := range states.Breakers {
		if b.State == circuitbreaker.StateClosed {
			continue
		}
		fmt.Fprintf(r.out, "[%s] circuit %s: %s (%d/%d failures)\n",
			time.Now().Format("15:04:05"), b.Name, warnStyle.Render(b.State), b.ConsecutiveFailures, b.FailMax)
	}
}

// Stop prints the footer.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, mutedStyle.Render("Liquidity Vector stopped"))
	return nil
}

func money(v decimal.Decimal) string {
	s := "$" + v.Abs().StringFixed(2)
	if v.IsNegative() {
		return failStyle.Render("-" + s)
	}
	return passStyle.Render(s)
}

func status(s domain.Status) string {
	label := strings.ToUpper(string(s))
	switch s {
	case domain.StatusPass:
		return passStyle.Render(label)
	case domain.StatusWarn:
		return warnStyle.Render(label)
	default:
		return failStyle.Render(label)
	}
}
