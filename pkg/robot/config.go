package robot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gwillem/colorwheel/pkg/wheel"
)

const DefaultConfigFile = "colorwheel.json"

// Sensor kinds.
const (
	SensorSerial = "serial"
	SensorCamera = "camera"
	SensorSim    = "sim"
)

// Config holds the wheel configuration
type Config struct {
	Motor       MotorConfig       `json:"motor"`
	Sensor      SensorConfig      `json:"sensor"`
	Calibration wheel.Calibration `json:"calibration,omitempty"`

	SeekSpeed             float64 `json:"seek_speed"`
	RotationSpeed         float64 `json:"rotation_speed"`
	FieldOffset           int     `json:"field_offset"`
	SegmentsPerRevolution int     `json:"segments_per_revolution"`
	Hz                    int     `json:"hz"`
	StallTimeoutSeconds   float64 `json:"stall_timeout_s"`
	Journal               string  `json:"journal,omitempty"`
}

// MotorConfig holds the motor controller's serial settings
type MotorConfig struct {
	Port     string `json:"port"`
	BaudRate int    `json:"baud_rate"`
}

// SensorConfig selects and configures the intensity sensor
type SensorConfig struct {
	Kind     string `json:"kind"`
	Port     string `json:"port,omitempty"`
	BaudRate int    `json:"baud_rate,omitempty"`
	Camera   int    `json:"camera"`
	// MaxAgeMillis rejects serial readings older than this; zero disables the check.
	MaxAgeMillis int `json:"max_age_ms,omitempty"`
}

// DefaultConfig returns a configuration with default speeds and the default
// calibration, set up for the simulated wheel.
func DefaultConfig() *Config {
	w := wheel.DefaultConfig()
	return &Config{
		Motor:                 MotorConfig{BaudRate: 9600},
		Sensor:                SensorConfig{Kind: SensorSim, BaudRate: 115200, MaxAgeMillis: 250},
		Calibration:           wheel.DefaultCalibration(),
		SeekSpeed:             w.SeekSpeed,
		RotationSpeed:         w.RotationSpeed,
		FieldOffset:           w.FieldOffset,
		SegmentsPerRevolution: 8,
		Hz:                    50,
		Journal:               "colorwheel.db",
	}
}

// IsCalibrated returns true if every color has a band
func (c *Config) IsCalibrated() bool {
	return c.Calibration.Complete()
}

// WheelConfig returns the controller settings.
func (c *Config) WheelConfig() wheel.Config {
	return wheel.Config{
		SeekSpeed:     c.SeekSpeed,
		RotationSpeed: c.RotationSpeed,
		FieldOffset:   c.FieldOffset,
	}
}

// StallTimeout returns the watchdog timeout, zero when disabled.
func (c *Config) StallTimeout() time.Duration {
	return time.Duration(c.StallTimeoutSeconds * float64(time.Second))
}

// Validate checks that the configuration can drive the wheel.
func (c *Config) Validate() error {
	var errs []error
	if c.SeekSpeed <= 0 || c.SeekSpeed > 1 {
		errs = append(errs, fmt.Errorf("seek_speed %v outside (0, 1]", c.SeekSpeed))
	}
	if c.RotationSpeed <= 0 || c.RotationSpeed > 1 {
		errs = append(errs, fmt.Errorf("rotation_speed %v outside (0, 1]", c.RotationSpeed))
	}
	if c.SeekSpeed == c.RotationSpeed {
		errs = append(errs, errors.New("seek_speed and rotation_speed must differ"))
	}
	if c.Hz <= 0 {
		errs = append(errs, fmt.Errorf("hz %d must be positive", c.Hz))
	}
	if c.SegmentsPerRevolution <= 0 || c.SegmentsPerRevolution%wheel.RingSize != 0 {
		errs = append(errs, fmt.Errorf("segments_per_revolution %d must be a positive multiple of %d",
			c.SegmentsPerRevolution, wheel.RingSize))
	}
	if c.StallTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("stall_timeout_s %v must not be negative", c.StallTimeoutSeconds))
	}
	switch c.Sensor.Kind {
	case SensorSim, SensorCamera:
	case SensorSerial:
		if c.Sensor.Port == "" {
			errs = append(errs, errors.New("serial sensor needs a port"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown sensor kind %q", c.Sensor.Kind))
	}
	return errors.Join(errs...)
}

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file. Fields missing
// from the file keep their defaults.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Calibration = nil
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the default config file exists
func ConfigExists() bool {
	return ConfigExistsAt(DefaultConfigFile)
}

// ConfigExistsAt returns true if a config file exists at path
func ConfigExistsAt(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
