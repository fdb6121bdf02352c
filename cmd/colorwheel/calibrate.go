package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/colorwheel/pkg/robot"
	"github.com/gwillem/colorwheel/pkg/wheel"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type CalibrateCommand struct {
	Margin float64 `long:"margin" default:"2" description:"Padding added to each side of a recorded band"`
	Jog    float64 `long:"jog" default:"0.1" description:"Motor speed while jogging with space"`
}

func (c *CalibrateCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Color Wheel Calibration"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println()

	cfg, err := robot.LoadConfigFrom(opts.Config)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = robot.DefaultConfig(), nil
		cfg.Calibration = nil
	}
	if err != nil {
		fail(err)
	}
	if opts.Sim {
		cfg.Sensor.Kind = robot.SensorSim
	}
	if err := cfg.Validate(); err != nil {
		fail(fmt.Errorf("invalid configuration %s: %w", opts.Config, err))
	}

	motor, sensor, err := robot.Open(cfg)
	if err != nil {
		fail(fmt.Errorf("open hardware: %w", err))
	}
	defer func() {
		if any(sensor) != any(motor) {
			sensor.Close()
		}
		motor.Close()
	}()

	recorded := make(wheel.Calibration)
	for _, col := range wheel.Colors() {
		fmt.Println(subHeaderStyle.Render(fmt.Sprintf("━━━ %s %s ━━━", colorBlock(col), strings.Title(col.String()))))
		waitForUser(fmt.Sprintf("Put the %s face under the sensor.", col))

		model := newCalibrationModel(col, motor, sensor, recorded, c.Jog)
		p := tea.NewProgram(model)
		final, err := p.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running calibration: %v\n", err)
			os.Exit(1)
		}
		cm := final.(calibrationModel)
		if cm.aborted {
			fmt.Println("Calibration aborted, nothing saved.")
			return nil
		}
		if !cm.seen {
			fail(fmt.Errorf("no readings for %s", col))
		}
		recorded[col] = cm.bounds.Widen(c.Margin)
		fmt.Printf("%s: %.1f .. %.1f\n\n", col, recorded[col].Lower, recorded[col].Upper)
	}

	for _, pair := range recorded.Overlaps() {
		fmt.Println(warnStyle.Render(fmt.Sprintf("Warning: %s and %s bands overlap; %s wins in between", pair[0], pair[1], pair[0])))
	}

	cfg.Calibration = recorded
	if err := cfg.SaveTo(opts.Config); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Calibration complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Start the dashboard with: " + headerStyle.Render("colorwheel run"))
	return nil
}

func waitForUser(prompt string) {
	fmt.Println(prompt)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("").
				Affirmative("Record").
				Negative("").
				Value(new(bool)),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
}

// Calibration TUI model. Records the band of one color while showing the
// bands recorded so far.
type calibrationModel struct {
	color    wheel.Color
	motor    robot.Motor
	sensor   robot.Sensor
	recorded wheel.Calibration
	jogSpeed float64

	current float64
	bounds  wheel.Bounds
	seen    bool
	jogging bool
	err     error
	aborted bool
	done    bool
}

type tickMsg time.Time

func newCalibrationModel(col wheel.Color, motor robot.Motor, sensor robot.Sensor, recorded wheel.Calibration, jog float64) calibrationModel {
	return calibrationModel{
		color:    col,
		motor:    motor,
		sensor:   sensor,
		recorded: recorded,
		jogSpeed: jog,
	}
}

func tick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m calibrationModel) Init() tea.Cmd {
	return tick()
}

func (m calibrationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			m.stopJog(ctx)
			m.done = true
			return m, tea.Quit
		case "q", "ctrl+c":
			m.stopJog(ctx)
			m.aborted = true
			return m, tea.Quit
		case " ":
			m.jogging = !m.jogging
			speed := 0.0
			if m.jogging {
				speed = m.jogSpeed
			}
			m.err = m.motor.SetSpeed(ctx, speed)
		case "r":
			m.seen = false
		}

	case tickMsg:
		if m.jogging {
			// Readings taken while the wheel moves would smear neighbouring faces.
			m.current, m.err = m.sensor.Read(ctx)
			return m, tick()
		}
		raw, err := m.sensor.Read(ctx)
		m.err = err
		if err == nil {
			m.current = raw
			if m.seen {
				m.bounds = m.bounds.Observe(raw)
			} else {
				m.bounds = wheel.NewBounds(raw)
				m.seen = true
			}
		}
		return m, tick()
	}

	return m, nil
}

func (m *calibrationModel) stopJog(ctx context.Context) {
	if m.jogging {
		m.jogging = false
		m.motor.SetSpeed(ctx, 0)
	}
}

func (m calibrationModel) View() string {
	if m.done || m.aborted {
		return ""
	}

	var sb strings.Builder

	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableColorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableCurrentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Padding(0, 1)
	tableOverlapStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)

	rows := [][]string{}
	overlap := []bool{}
	for _, col := range wheel.Colors() {
		b, ok := m.recorded[col]
		current := ""
		if col == m.color {
			if !m.seen {
				continue
			}
			b, ok = m.bounds, true
			current = fmt.Sprintf("%.1f", m.current)
		}
		if !ok {
			continue
		}
		clash := false
		for other, ob := range m.recorded {
			if other != col && ob.Overlaps(b) {
				clash = true
			}
		}
		if col != m.color && m.seen && m.bounds.Overlaps(b) {
			clash = true
		}
		overlap = append(overlap, clash)
		rows = append(rows, []string{
			colorBlock(col) + " " + col.String(),
			current,
			fmt.Sprintf("%.1f", b.Lower),
			fmt.Sprintf("%.1f", b.Upper),
			fmt.Sprintf("%.1f", b.Width()),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Color", "Current", "Min", "Max", "Width").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			switch col {
			case 0:
				return tableColorStyle
			case 1:
				return tableCurrentStyle
			case 4:
				if row >= 0 && row < len(overlap) && overlap[row] {
					return tableOverlapStyle
				}
				return tableCellStyle
			default:
				return tableCellStyle
			}
		})

	sb.WriteString(t.Render())
	sb.WriteString("\n")
	if m.jogging {
		sb.WriteString(warnStyle.Render("Jogging, press space to stop and record"))
		sb.WriteString("\n")
	}
	if m.err != nil {
		sb.WriteString(warnStyle.Render(m.err.Error()))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("Enter to accept · space to jog · r to restart · q to abort"))

	return sb.String()
}
