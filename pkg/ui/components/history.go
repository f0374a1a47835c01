// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// RunRow is one completed analysis in the history list.
type RunRow struct {
	Timestamp     string
	Route         string
	Bridge        string
	TotalCost     decimal.Decimal
	BreakevenDays decimal.Decimal
	HasBreakeven  bool
	NetProfit30d  decimal.Decimal
	RiskScore     int
	Preflight     string
	Degraded      bool
}

// HistoryComponent renders the analysis runs, newest first.
type HistoryComponent struct {
	rows    []RunRow
	maxRows int
	visible int
	offset  int
}

// NewHistoryComponent keeps up to maxRows runs and shows visible of them.
func NewHistoryComponent(maxRows, visible int) *HistoryComponent {
	return &HistoryComponent{
		rows:    make([]RunRow, 0, maxRows),
		maxRows: maxRows,
		visible: visible,
	}
}

// Add prepends a run.
func (h *HistoryComponent) Add(row RunRow) {
	h.rows = append([]RunRow{row}, h.rows...)
	if len(h.rows) > h.maxRows {
		h.rows = h.rows[:h.maxRows]
	}
	h.offset = 0
}

// Len is the number of stored runs.
func (h *HistoryComponent) Len() int { return len(h.rows) }

// Clear drops all runs.
func (h *HistoryComponent) Clear() {
	h.rows = h.rows[:0]
	h.offset = 0
}

func (h *HistoryComponent) ScrollUp() {
	if h.offset > 0 {
		h.offset--
	}
}

func (h *HistoryComponent) ScrollDown() {
	if h.offset+h.visible < len(h.rows) {
		h.offset++
	}
}

// View renders the history table.
func (h *HistoryComponent) View() string {
	if len(h.rows) == 0 {
		return "No analyses yet..."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	goodStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	badStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	end := min(h.offset+h.visible, len(h.rows))

	result := headerStyle.Render(fmt.Sprintf("HISTORY (%d-%d of %d)", h.offset+1, end, len(h.rows))) + "\n"
	result += "┌──────────┬─────────────────────┬──────────┬───────────┬───────────┬──────┬────────┐\n"
	result += "│   Time   │ Route               │   Cost   │ Breakeven │  Net 30d  │ Risk │ Checks │\n"
	result += "├──────────┼─────────────────────┼──────────┼───────────┼───────────┼──────┼────────┤\n"

	for _, row := range h.rows[h.offset:end] {
		breakeven := "never"
		if row.HasBreakeven {
			breakeven = row.BreakevenDays.StringFixed(1) + "d"
		}

		netStyle := goodStyle
		if row.NetProfit30d.IsNegative() {
			netStyle = badStyle
		}

		route := row.Route
		if row.Degraded {
			route += "*"
		}

		result += fmt.Sprintf("│ %8s │ %-19s │%9s │%10s │ %s │ %4d │ %-6s │\n",
			row.Timestamp,
			truncate(route, 19),
			"$"+row.TotalCost.StringFixed(2),
			breakeven,
			netStyle.Render(fmt.Sprintf("%9s", "$"+row.NetProfit30d.StringFixed(2))),
			row.RiskScore,
			row.Preflight,
		)
	}

	result += "└──────────┴─────────────────────┴──────────┴───────────┴───────────┴──────┴────────┘\n"
	result += mutedStyle.Render("* degraded data sources")
	return result
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
