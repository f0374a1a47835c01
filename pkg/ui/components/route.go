package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// RouteSummary holds the latest analysis for display. All values are
// computed by the route domain.
type RouteSummary struct {
	Source        string
	Dest          string
	Bridge        string
	EstimatedTime string
	CapitalUSD    decimal.Decimal
	APY           float64
	EntryCost     decimal.Decimal
	ExitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	DailyYield    decimal.Decimal
	BreakevenDays decimal.Decimal
	HasBreakeven  bool
	NetProfit30d  decimal.Decimal
	MinCapital    *decimal.Decimal
	RiskScore     int
	RiskLevel     int
	Warnings      []string
}

// CheckRow is one pre-flight check.
type CheckRow struct {
	Name    string
	Status  string
	Message string
}

// RouteComponent renders the latest analysis with its pre-flight checks.
type RouteComponent struct {
	summary *RouteSummary
	checks  []CheckRow
	overall string
}

// NewRouteComponent creates a new route component.
func NewRouteComponent() *RouteComponent {
	return &RouteComponent{}
}

// Update replaces the displayed analysis.
func (r *RouteComponent) Update(s RouteSummary, checks []CheckRow, overall string) {
	r.summary = &s
	r.checks = checks
	r.overall = overall
}

// View renders the route component.
func (r *RouteComponent) View() string {
	if r.summary == nil {
		return "Waiting for the first analysis..."
	}
	s := r.summary

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	goodStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	badStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))

	line := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-14s", label)) + value + "\n"
	}

	var b strings.Builder
	b.WriteString(valueStyle.Render(fmt.Sprintf("%s → %s", s.Source, s.Dest)) + "\n")
	b.WriteString(line("Bridge", fmt.Sprintf("%s (%s)", s.Bridge, s.EstimatedTime)))
	b.WriteString(line("Capital", fmt.Sprintf("$%s at %.2f%% APY", s.CapitalUSD.StringFixed(2), s.APY)))
	b.WriteString(line("Round trip", fmt.Sprintf("$%s  (entry $%s, exit $%s)",
		s.TotalCost.StringFixed(2), s.EntryCost.StringFixed(2), s.ExitCost.StringFixed(2))))
	b.WriteString(line("Daily yield", "$"+s.DailyYield.StringFixed(2)))

	if s.HasBreakeven {
		b.WriteString(line("Breakeven", s.BreakevenDays.StringFixed(1)+" days"))
	} else {
		b.WriteString(line("Breakeven", badStyle.Render("never")))
	}

	net := goodStyle.Render("$" + s.NetProfit30d.StringFixed(2))
	if s.NetProfit30d.IsNegative() {
		net = badStyle.Render("-$" + s.NetProfit30d.Abs().StringFixed(2))
	}
	b.WriteString(line("Net 30d", net))

	if s.MinCapital != nil {
		b.WriteString(line("Min capital", "$"+s.MinCapital.StringFixed(2)))
	}

	riskStyle := goodStyle
	switch {
	case s.RiskLevel >= 4:
		riskStyle = badStyle
	case s.RiskLevel == 3:
		riskStyle = warnStyle
	}
	b.WriteString(line("Risk", riskStyle.Render(fmt.Sprintf("%d/100 (level %d)", s.RiskScore, s.RiskLevel))))
	for _, w := range s.Warnings {
		b.WriteString("  " + warnStyle.Render("! "+w) + "\n")
	}

	if len(r.checks) > 0 {
		b.WriteString("\n" + labelStyle.Render("PRE-FLIGHT ") + statusStyle(r.overall).Render(strings.ToUpper(r.overall)) + "\n")
		for _, c := range r.checks {
			b.WriteString(fmt.Sprintf("  %s %-19s %s\n",
				statusStyle(c.Status).Render(statusIcon(c.Status)), c.Name, labelStyle.Render(c.Message)))
		}
	}
	return b.String()
}

func statusStyle(s string) lipgloss.Style {
	switch s {
	case "pass":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	case "warn":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	}
}

func statusIcon(s string) string {
	switch s {
	case "pass":
		return "✓"
	case "warn":
		return "!"
	default:
		return "✗"
	}
}
