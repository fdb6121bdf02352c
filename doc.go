// Package colorwheel turns a four-color wheel until a chosen color is in the
// field, or through a counted number of color transitions.
//
// A motor drives the wheel and a single intensity sensor reads the face in
// front of it. Readings are classified against calibrated bands; the
// controller only counts a transition when the new color is the ring
// successor of the last one, so sensor bounce is ignored.
//
// # Installation
//
//	go install github.com/gwillem/colorwheel/cmd/colorwheel@latest
//
// # Usage
//
// Record the sensor band of each color first:
//
//	colorwheel calibrate
//
// Then open the dashboard, or run a single operation:
//
//	colorwheel run
//	colorwheel seek --color B
//	colorwheel spin --revolutions 3
//
// Every command accepts --sim to drive a simulated wheel instead of hardware.
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/colorwheel: CLI with run, seek, spin, calibrate, ports and history commands
//   - pkg/wheel: Colors, calibration bands, classifier and rotation controller
//   - pkg/robot: Motor, sensors, simulated wheel and configuration
//   - pkg/spinner: Control loop that ticks the controller and drives the motor
//   - pkg/journal: SQLite history of finished operations
package colorwheel
