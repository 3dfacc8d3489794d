// Package presenter renders live assessment progress: a bubbletea TUI when
// --dashboard is set, or a plain mpb progress bar otherwise. Both implement application.ProgressObserver so
// ReportBuilder never knows which is wired in.
package presenter

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handlebauer/ar-io-observer/internal/entity"
)

type gatewayState struct {
	status string // "running", "pass", "fail"
}

type refreshMsg struct{}
type tickMsg time.Time

// Dashboard is a TUI showing live per-gateway pass/fail/in-flight status
// and epoch-level summary counters.
type Dashboard struct {
	program   *tea.Program
	mu        sync.RWMutex
	gateways  map[string]gatewayState
	startTime time.Time
	width     int
	height    int
}

// NewDashboard creates an unstarted Dashboard.
func NewDashboard() *Dashboard {
	return &Dashboard{
		gateways:  make(map[string]gatewayState),
		startTime: time.Now(),
	}
}

// Start wires the tea.Program so subsequent progress notifications trigger
// a re-render. Callers run the returned program (typically in a goroutine)
// and must call it before wiring the Dashboard as a ProgressObserver.
func (d *Dashboard) Start() *tea.Program {
	d.program = tea.NewProgram(d, tea.WithAltScreen())
	return d.program
}

// OnGatewayStarted marks fqdn as in-flight.
func (d *Dashboard) OnGatewayStarted(fqdn string) {
	d.mu.Lock()
	d.gateways[fqdn] = gatewayState{status: "running"}
	d.mu.Unlock()
	d.notify()
}

// OnGatewayAssessed marks fqdn as pass or fail.
func (d *Dashboard) OnGatewayAssessed(fqdn string, assessment entity.GatewayAssessment) {
	status := "fail"
	if assessment.Pass {
		status = "pass"
	}
	d.mu.Lock()
	d.gateways[fqdn] = gatewayState{status: status}
	d.mu.Unlock()
	d.notify()
}

func (d *Dashboard) notify() {
	if d.program != nil {
		d.program.Send(refreshMsg{})
	}
}

// Init satisfies tea.Model.
func (d *Dashboard) Init() tea.Cmd {
	return tea.Batch(tickCmd(), tea.EnterAltScreen)
}

// Update satisfies tea.Model.
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "Q", "ctrl+c":
			return d, tea.Quit
		}
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
	case tickMsg:
		return d, tickCmd()
	case refreshMsg:
		return d, nil
	}
	return d, nil
}

// View satisfies tea.Model.
func (d *Dashboard) View() string {
	if d.width == 0 {
		return "Initializing..."
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	header := d.renderHeader()
	body := d.renderGateways(d.width)
	footer := lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Padding(1, 0).Render("Press 'q' or 'Ctrl+C' to quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (d *Dashboard) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	countStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))

	var running, pass, fail int
	for _, g := range d.gateways {
		switch g.status {
		case "running":
			running++
		case "pass":
			pass++
		case "fail":
			fail++
		}
	}

	title := titleStyle.Render("ArNS Gateway Observer")
	counts := countStyle.Render(fmt.Sprintf(" running=%d pass=%d fail=%d elapsed=%s", running, pass, fail, time.Since(d.startTime).Round(time.Second)))
	return title + counts
}

func (d *Dashboard) renderGateways(width int) string {
	fqdns := make([]string, 0, len(d.gateways))
	for fqdn := range d.gateways {
		fqdns = append(fqdns, fqdn)
	}
	sort.Strings(fqdns)

	style := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#874BFD")).Padding(1, 2).Width(width - 4)

	var lines []string
	for _, fqdn := range fqdns {
		lines = append(lines, fmt.Sprintf("%s %s", glyph(d.gateways[fqdn].status), fqdn))
	}
	if len(lines) == 0 {
		lines = append(lines, "Waiting for the first gateway assessment...")
	}
	return style.Render(strings.Join(lines, "\n"))
}

func glyph(status string) string {
	switch status {
	case "pass":
		return "[PASS]"
	case "fail":
		return "[FAIL]"
	default:
		return "[....]"
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}
