package robot

import (
	"fmt"
	"time"

	"github.com/gwillem/colorwheel/pkg/wheel"
)

// Open connects the motor and sensor described by cfg. A sim sensor makes
// the simulated wheel serve as both, and the motor port is ignored.
func Open(cfg *Config) (Motor, Sensor, error) {
	if cfg.Sensor.Kind == SensorSim {
		sim := DefaultSimConfig()
		sim.Period = time.Second / time.Duration(cfg.Hz)
		sim.Segments = cfg.SegmentsPerRevolution
		sim.Seed = uint64(time.Now().UnixNano())
		// An uncalibrated sim still needs bands to produce readings.
		cal := cfg.Calibration
		if !cal.Complete() {
			cal = wheel.DefaultCalibration()
		}
		w := NewSimWheel(sim, cal)
		return w, w, nil
	}

	if cfg.Motor.Port == "" {
		return nil, nil, fmt.Errorf("motor port not configured")
	}
	motor, err := OpenSMCMotor(cfg.Motor.Port, cfg.Motor.BaudRate)
	if err != nil {
		return nil, nil, err
	}

	var sensor Sensor
	switch cfg.Sensor.Kind {
	case SensorSerial:
		maxAge := time.Duration(cfg.Sensor.MaxAgeMillis) * time.Millisecond
		sensor, err = OpenSerialSensor(cfg.Sensor.Port, cfg.Sensor.BaudRate, maxAge)
	case SensorCamera:
		sensor, err = OpenCameraSensor(cfg.Sensor.Camera)
	default:
		err = fmt.Errorf("unknown sensor kind %q", cfg.Sensor.Kind)
	}
	if err != nil {
		motor.Close()
		return nil, nil, err
	}
	return motor, sensor, nil
}
