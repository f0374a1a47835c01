package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// CircuitStatus is the state of one upstream breaker.
type CircuitStatus struct {
	Name         string
	State        string
	Failures     uint32
	FailMax      uint32
	ResetTimeout time.Duration
}

// CacheStatus is the fill level of one cache kind.
type CacheStatus struct {
	Name     string
	Entries  int
	Capacity int
}

// CircuitsComponent renders dependency health.
type CircuitsComponent struct {
	circuits []CircuitStatus
	caches   []CacheStatus
	updated  time.Time
}

// NewCircuitsComponent creates a new circuits component.
func NewCircuitsComponent() *CircuitsComponent {
	return &CircuitsComponent{}
}

// Update replaces the displayed state.
func (c *CircuitsComponent) Update(circuits []CircuitStatus, caches []CacheStatus) {
	c.circuits = circuits
	c.caches = caches
	c.updated = time.Now()
}

// Open counts breakers in the open state.
func (c *CircuitsComponent) Open() int {
	n := 0
	for _, cs := range c.circuits {
		if cs.State == "open" {
			n++
		}
	}
	return n
}

// View renders the circuits component.
func (c *CircuitsComponent) View() string {
	if len(c.circuits) == 0 {
		return "No circuits registered"
	}

	closed := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	halfOpen := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	open := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var b strings.Builder
	for _, cs := range c.circuits {
		style, icon := closed, "●"
		switch cs.State {
		case "open":
			style, icon = open, "○"
		case "half_open":
			style, icon = halfOpen, "◐"
		}
		line := fmt.Sprintf("├─ %-14s %s", cs.Name, style.Render(icon+" "+cs.State))
		if cs.Failures > 0 {
			line += muted.Render(fmt.Sprintf(" (%d/%d)", cs.Failures, cs.FailMax))
		}
		b.WriteString(line + "\n")
	}

	if len(c.caches) > 0 {
		b.WriteString(muted.Render("caches:"))
		for _, cache := range c.caches {
			b.WriteString(muted.Render(fmt.Sprintf(" %s %d/%d", cache.Name, cache.Entries, cache.Capacity)))
		}
		b.WriteString("\n")
	}
	return b.String()
}
