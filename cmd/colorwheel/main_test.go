package main

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/colorwheel/pkg/journal"
	"github.com/gwillem/colorwheel/pkg/robot"
	"github.com/gwillem/colorwheel/pkg/wheel"
)

func withOptions(t *testing.T, o Options) {
	t.Helper()
	saved := opts
	opts = o
	t.Cleanup(func() { opts = saved })
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.json")

	t.Run("missing file with sim uses defaults", func(t *testing.T) {
		withOptions(t, Options{Config: missing, Sim: true})
		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.True(t, cfg.IsCalibrated())
		assert.Equal(t, robot.SensorSim, cfg.Sensor.Kind)
	})

	t.Run("missing file without sim", func(t *testing.T) {
		withOptions(t, Options{Config: missing})
		_, err := loadConfig()
		assert.ErrorContains(t, err, "calibrate")
	})

	t.Run("sim overrides sensor", func(t *testing.T) {
		path := filepath.Join(dir, "serial.json")
		cfg := robot.DefaultConfig()
		cfg.Sensor = robot.SensorConfig{Kind: robot.SensorSerial, Port: "/dev/ttyUSB0"}
		require.NoError(t, cfg.SaveTo(path))

		withOptions(t, Options{Config: path, Sim: true})
		got, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, robot.SensorSim, got.Sensor.Kind)
	})

	t.Run("invalid file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		cfg := robot.DefaultConfig()
		cfg.Hz = 0
		require.NoError(t, cfg.SaveTo(path))

		withOptions(t, Options{Config: path})
		_, err := loadConfig()
		assert.ErrorContains(t, err, "hz")
	})
}

func update(t *testing.T, m calibrationModel, msg tea.Msg) calibrationModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(calibrationModel)
}

func TestCalibrationModel(t *testing.T) {
	cfg := robot.DefaultSimConfig()
	cfg.Noise = 2
	sim := robot.NewSimWheel(cfg, wheel.DefaultCalibration())

	m := newCalibrationModel(wheel.Red, sim, sim, wheel.Calibration{}, 0.1)
	for i := 0; i < 20; i++ {
		m = update(t, m, tickMsg(time.Now()))
	}
	require.True(t, m.seen)
	assert.True(t, m.bounds.Contains(m.current))
	assert.Greater(t, m.bounds.Width(), 0.0)
	assert.Contains(t, m.View(), "red")

	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.True(t, m.jogging)
	assert.Equal(t, 0.1, sim.Speed())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.done)
	assert.False(t, m.jogging)
	assert.Zero(t, sim.Speed())
}

func TestRenderHistory(t *testing.T) {
	start := time.Date(2020, 3, 7, 18, 0, 0, 0, time.UTC)
	out := renderHistory([]journal.Operation{
		{Kind: journal.KindSpin, Requested: 16, Outcome: journal.OutcomeStalled, Accepted: 9, Skipped: 1,
			StartedAt: start, FinishedAt: start.Add(3 * time.Second)},
		{Kind: journal.KindSeek, Target: "Y", Outcome: journal.OutcomeCompleted,
			StartedAt: start, FinishedAt: start.Add(250 * time.Millisecond)},
	})

	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 4)
	assert.Contains(t, out, "stalled")
	assert.Contains(t, out, "9/1")
	assert.Contains(t, out, "250ms")
	assert.Contains(t, out, " Y ")
}
