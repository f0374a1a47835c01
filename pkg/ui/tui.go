package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/liquidity-vector/business/route/app"
	"github.com/fd1az/liquidity-vector/pkg/ui/components"
)

// Phase represents the current UI phase.
type Phase string

const (
	PhaseStartup   Phase = "startup"
	PhaseDashboard Phase = "dashboard"
)

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

const maxErrors = 3

// StartupStep represents a step in the startup process.
type StartupStep struct {
	Name   string
	Status string
}

// Model is the main Bubble Tea model for the watch dashboard.
type Model struct {
	route    *components.RouteComponent
	history  *components.HistoryComponent
	circuits *components.CircuitsComponent

	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	phase        Phase
	startupSteps []StartupStep

	quitting   bool
	paused     bool
	refreshing bool
	width      int
	height     int
	runs       int
	failures   int
	lastUpdate time.Time
	errors     []ErrorEntry
}

// New creates a new TUI model.
func New() Model {
	return Model{
		route:    components.NewRouteComponent(),
		history:  components.NewHistoryComponent(50, 8),
		circuits: components.NewCircuitsComponent(),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		phase:    PhaseStartup,
		errors:   make([]ErrorEntry, 0, maxErrors),
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spinner.Tick)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case m.phase != PhaseDashboard:
			// The remaining keys act on the dashboard only.
		case key.Matches(msg, m.keys.Refresh):
			if !m.refreshing && OnRefresh != nil {
				m.refreshing = true
				go OnRefresh()
			}
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
			if OnPause != nil {
				OnPause(m.paused)
			}
		case key.Matches(msg, m.keys.Clear):
			m.history.Clear()
		case key.Matches(msg, m.keys.Errors):
			m.errors = m.errors[:0]
		case key.Matches(msg, m.keys.Up):
			m.history.ScrollUp()
		case key.Matches(msg, m.keys.Down):
			m.history.ScrollDown()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case TickMsg:
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StartupMsg:
		m.setStep(msg.Step, msg.Status)

	case ReadyMsg:
		m.phase = PhaseDashboard

	case AnalysisMsg:
		m.phase = PhaseDashboard
		m.refreshing = false
		m.runs++
		m.lastUpdate = time.Now()
		a := msg.Analysis
		m.route.Update(summaryOf(a), checksOf(a), string(a.Preflight.Overall))
		m.history.Add(runRowOf(a))

	case CircuitsMsg:
		m.circuits.Update(circuitsOf(msg.States))

	case ErrorMsg:
		m.refreshing = false
		m.failures++
		if msg.Error != nil {
			m.addError(msg.Error.Error())
		}
	}

	return m, nil
}

func (m *Model) setStep(name, status string) {
	for i := range m.startupSteps {
		if m.startupSteps[i].Name == name {
			m.startupSteps[i].Status = status
			return
		}
	}
	m.startupSteps = append(m.startupSteps, StartupStep{Name: name, Status: status})
}

func (m *Model) addError(message string) {
	m.errors = append(m.errors, ErrorEntry{Message: message, Timestamp: time.Now()})
	if len(m.errors) > maxErrors {
		m.errors = m.errors[len(m.errors)-maxErrors:]
	}
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.phase == PhaseStartup {
		return m.startupView()
	}
	return m.dashboardView()
}

func (m Model) startupView() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("LIQUIDITY VECTOR") + "\n\n")
	b.WriteString(m.spinner.View() + " Starting modules...\n\n")
	for _, step := range m.startupSteps {
		icon, style := "…", MutedValue
		switch step.Status {
		case "connected":
			icon, style = "✓", PositiveValue
		case "failed":
			icon, style = "✗", NegativeValue
		}
		b.WriteString(style.Render(fmt.Sprintf("  %s %s", icon, step.Name)) + "\n")
	}
	b.WriteString("\n" + HelpStyle.Render(m.help.View(m.keys)))
	return BoxStyle.Render(b.String())
}

func (m Model) dashboardView() string {
	header := TitleStyle.Render("LIQUIDITY VECTOR") + "  " + m.statusLine()

	left := BoxStyle.Render(HeaderStyle.Render("LATEST ROUTE") + "\n" + m.route.View())
	right := BoxStyle.Render(HeaderStyle.Render("DEPENDENCIES") + "\n" + m.circuits.View())
	top := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	sections := []string{header, top, m.history.View()}

	if len(m.errors) > 0 {
		var eb strings.Builder
		for _, e := range m.errors {
			eb.WriteString(fmt.Sprintf("[%s] %s\n", e.Timestamp.Format("15:04:05"), e.Message))
		}
		sections = append(sections, BoxStyle.BorderForeground(ColorDanger).Render(
			NegativeValue.Render("ERRORS")+"\n"+strings.TrimRight(eb.String(), "\n")))
	}

	sections = append(sections, HelpStyle.Render(m.help.View(m.keys)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) statusLine() string {
	var parts []string

	switch {
	case m.paused:
		parts = append(parts, StatusPaused.Render("⏸ PAUSED"))
	case m.refreshing:
		parts = append(parts, m.spinner.View()+" analyzing")
	}

	parts = append(parts, PositiveValue.Render(fmt.Sprintf("Runs: %d", m.runs)))
	if m.failures > 0 {
		parts = append(parts, NegativeValue.Render(fmt.Sprintf("Failed: %d", m.failures)))
	}

	if open := m.circuits.Open(); open > 0 {
		parts = append(parts, StatusTripped.Render(fmt.Sprintf("○ %d circuit(s) open", open)))
	} else {
		parts = append(parts, StatusHealthy.Render("● upstreams healthy"))
	}

	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Updated: %s ago", ago)))
	}

	return strings.Join(parts, "  │  ")
}

func summaryOf(a app.Analysis) components.RouteSummary {
	r := a.Result
	return components.RouteSummary{
		Source:        r.Source.String(),
		Dest:          r.Dest.String(),
		Bridge:        r.BridgeName,
		EstimatedTime: r.EstimatedTime,
		CapitalUSD:    r.CapitalUSD,
		APY:           r.TargetPool.APY,
		EntryCost:     r.Costs.Entry.Total,
		ExitCost:      r.Costs.Exit.Total,
		TotalCost:     r.TotalCost,
		DailyYield:    r.DailyYieldUSD,
		BreakevenDays: r.BreakevenDays,
		HasBreakeven:  r.HasBreakeven,
		NetProfit30d:  r.NetProfit30d,
		MinCapital:    r.MinProfitableCapital,
		RiskScore:     r.RiskScore,
		RiskLevel:     r.RiskLevel,
		Warnings:      r.Warnings,
	}
}

func checksOf(a app.Analysis) []components.CheckRow {
	rows := make([]components.CheckRow, 0, len(a.Preflight.Checks))
	for _, c := range a.Preflight.Checks {
		rows = append(rows, components.CheckRow{Name: c.Name, Status: string(c.Status), Message: c.Message})
	}
	return rows
}

func runRowOf(a app.Analysis) components.RunRow {
	r := a.Result
	return components.RunRow{
		Timestamp:     r.CreatedAt.Local().Format("15:04:05"),
		Route:         fmt.Sprintf("%s→%s", r.Source, r.Dest),
		Bridge:        r.BridgeName,
		TotalCost:     r.TotalCost,
		BreakevenDays: r.BreakevenDays,
		HasBreakeven:  r.HasBreakeven,
		NetProfit30d:  r.NetProfit30d,
		RiskScore:     r.RiskScore,
		Preflight:     string(a.Preflight.Overall),
		Degraded:      r.Provenance.Degraded(),
	}
}

func circuitsOf(s app.CircuitStates) ([]components.CircuitStatus, []components.CacheStatus) {
	circuits := make([]components.CircuitStatus, 0, len(s.Breakers))
	for _, b := range s.Breakers {
		circuits = append(circuits, components.CircuitStatus{
			Name:         b.Name,
			State:        b.State,
			Failures:     b.ConsecutiveFailures,
			FailMax:      b.FailMax,
			ResetTimeout: b.ResetTimeout,
		})
	}
	caches := make([]components.CacheStatus, 0, len(s.Caches))
	for _, c := range s.Caches {
		caches = append(caches, components.CacheStatus{Name: c.Name, Entries: c.Entries, Capacity: c.Capacity})
	}
	return circuits, caches
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnRefresh is called when the user asks for an analysis run now.
var OnRefresh func()

// OnPause is called when the user pauses or resumes the watch loop.
var OnPause func(paused bool)

// Run starts the Bubble Tea program.
func Run() error {
	Program = tea.NewProgram(New(), tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
