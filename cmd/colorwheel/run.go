package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/colorwheel/pkg/spinner"
	"github.com/gwillem/colorwheel/pkg/wheel"
)

type RunCommand struct{}

const (
	headerHeight = 2 // title + blank line
	panelHeight  = 4 // status panel + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
	maxPending   = 999
	rawDataSet   = "raw"
)

// Terminal colors for the wheel faces
var faceColors = map[wheel.Color]string{
	wheel.Unknown: "240",
	wheel.Red:     "196",
	wheel.Yellow:  "226",
	wheel.Blue:    "33",
	wheel.Green:   "46",
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// colorBlock renders a small swatch of the face color.
func colorBlock(c wheel.Color) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(faceColors[c])).Render("  ")
}

type dashboardModel struct {
	ctx      context.Context
	runner   *spinner.Runner
	cal      wheel.Calibration
	chart    *streamlinechart.Model
	width    int // terminal width
	height   int // terminal height
	logs     []string
	state    spinner.State
	pending  int // transitions to spin on enter
	quitting bool
}

func (m *dashboardModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// Messages from the runner
type stateMsg spinner.State
type logMsg string

func waitForState(r *spinner.Runner) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-r.States())
	}
}

func waitForLog(r *spinner.Runner) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-r.Logs())
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *dashboardModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 16
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - panelHeight - footerHeight - borderSize
	if height < 8 {
		height = 8
	}
	return width, height
}

func (m *dashboardModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

func newDashboardModel(ctx context.Context, r *spinner.Runner, cal wheel.Calibration, pending int) dashboardModel {
	lo, hi := cal.Range()
	pad := (hi - lo) * 0.1
	chart := streamlinechart.New(80, 16,
		streamlinechart.WithYRange(lo-pad, hi+pad),
	)

	// One flat line per band center, and the raw reading on top
	for _, col := range wheel.Colors() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(faceColors[col]))
		chart.SetDataSetStyles(col.String(), runes.ThinLineStyle, style)
	}
	chart.SetDataSetStyles(rawDataSet, runes.ThinLineStyle, lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true))

	return dashboardModel{
		ctx:     ctx,
		runner:  r,
		cal:     cal,
		chart:   &chart,
		pending: pending,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.runner),
		waitForLog(m.runner),
	)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r", "y", "b", "g":
			if err := m.runner.SeekColor(m.ctx, strings.ToUpper(key)[0]); err != nil {
				m.addLog(err.Error())
			}
		case "+", "=":
			m.pending = min(m.pending+1, maxPending)
		case "-":
			m.pending = max(m.pending-1, 0)
		case "enter":
			if err := m.runner.SpinRotations(m.ctx, m.pending); err != nil {
				m.addLog(err.Error())
			}
		case " ":
			m.runner.Stop(m.ctx)
		}
		return m, nil

	case stateMsg:
		m.state = spinner.State(msg)
		if m.state.Error == nil {
			for _, col := range wheel.Colors() {
				m.chart.PushDataSet(col.String(), m.cal[col].Mid())
			}
			m.chart.PushDataSet(rawDataSet, m.state.Raw)
			m.chart.DrawAll()
		}
		return m, waitForState(m.runner)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.runner)
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return "Wheel stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("Color Wheel"))
	sb.WriteString(fmt.Sprintf(" - %d Hz", m.runner.Hz()))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	// Chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	sb.WriteString(m.renderStatus())
	sb.WriteString("\n\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(m.width-4, 20))

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("r/y/b/g seek · +/- count · enter spin · space stop · q quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func (m dashboardModel) renderStatus() string {
	s := m.state
	field := func(label, value string) string {
		return labelStyle.Render(label+" ") + value
	}

	target := "-"
	if s.Target != wheel.Unknown {
		target = colorBlock(s.Target) + " " + s.Target.String()
	}
	line1 := strings.Join([]string{
		field("state", string(s.State)),
		field("color", colorBlock(s.Color)+" "+s.Color.String()),
		field("previous", colorBlock(s.Previous)+" "+s.Previous.String()),
		field("target", target),
	}, "   ")
	line2 := strings.Join([]string{
		field("remaining", fmt.Sprintf("%d", s.Remaining)),
		field("pending", fmt.Sprintf("%d", m.pending)),
		field("speed", fmt.Sprintf("%+.2f", s.Speed)),
		field("raw", fmt.Sprintf("%.1f", s.Raw)),
		field("no progress", s.Stalled.String()),
	}, "   ")

	if s.Error != nil {
		line2 += "   " + errorStyle.Render(s.Error.Error())
	}
	return line1 + "\n" + line2
}

func (c *RunCommand) Execute(args []string) error {
	rg, err := openRig()
	if err != nil {
		fail(err)
	}
	defer rg.Close()

	fmt.Printf("Loaded configuration from %s\n", opts.Config)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := rg.runner.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Runner error: %v", err)
		}
	}()

	model := newDashboardModel(ctx, rg.runner, rg.cfg.Calibration, rg.cfg.SegmentsPerRevolution)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}

	cancel()
	<-done
	return nil
}
