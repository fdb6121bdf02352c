package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/gwillem/colorwheel/pkg/journal"
	"github.com/gwillem/colorwheel/pkg/robot"
	"github.com/gwillem/colorwheel/pkg/spinner"
)

type Options struct {
	Config string `long:"config" short:"c" default:"colorwheel.json" description:"Configuration file"`
	Sim    bool   `long:"sim" description:"Drive the simulated wheel instead of hardware"`

	Run       RunCommand       `command:"run" description:"Interactive dashboard"`
	Seek      SeekCommand      `command:"seek" description:"Turn the wheel until a color is in the field"`
	Spin      SpinCommand      `command:"spin" description:"Turn the wheel through a number of color transitions"`
	Calibrate CalibrateCommand `command:"calibrate" description:"Record the sensor band for each color"`
	Ports     PortsCommand     `command:"ports" description:"List serial ports"`
	History   HistoryCommand   `command:"history" description:"Show recent operations"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "colorwheel - turn a four-color wheel to a color or through a number of transitions"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}

// loadConfig reads the configuration file. With --sim a missing file is
// replaced by the defaults.
func loadConfig() (*robot.Config, error) {
	cfg, err := robot.LoadConfigFrom(opts.Config)
	switch {
	case errors.Is(err, os.ErrNotExist) && opts.Sim:
		cfg = robot.DefaultConfig()
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("no configuration at %s, run 'colorwheel calibrate' first", opts.Config)
	case err != nil:
		return nil, err
	}
	if opts.Sim {
		cfg.Sensor.Kind = robot.SensorSim
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", opts.Config, err)
	}
	return cfg, nil
}

// rig is the opened hardware and runner for one command.
type rig struct {
	cfg     *robot.Config
	motor   robot.Motor
	sensor  robot.Sensor
	journal *journal.Journal
	runner  *spinner.Runner
}

// openRig loads the configuration and connects everything a wheel operation needs.
func openRig() (*rig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.IsCalibrated() {
		return nil, fmt.Errorf("wheel not calibrated, run 'colorwheel calibrate' first")
	}

	motor, sensor, err := robot.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open hardware: %w", err)
	}
	rg := &rig{cfg: cfg, motor: motor, sensor: sensor}

	rcfg := spinner.Config{
		Hz:           cfg.Hz,
		Wheel:        cfg.WheelConfig(),
		Calibration:  cfg.Calibration,
		StallTimeout: cfg.StallTimeout(),
	}
	if cfg.Journal != "" {
		j, err := journal.Open(cfg.Journal)
		if err != nil {
			rg.Close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		rg.journal = j
		rcfg.Recorder = j
	}
	rg.runner = spinner.NewRunner(motor, sensor, rcfg)
	return rg, nil
}

func (rg *rig) Close() {
	if rg.journal != nil {
		rg.journal.Close()
	}
	if any(rg.sensor) != any(rg.motor) {
		rg.sensor.Close()
	}
	rg.motor.Close()
}

// fail prints err and exits, as the CLI does for configuration problems.
func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
