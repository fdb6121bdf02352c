package wheel

import (
	"errors"
	"fmt"
)

// ErrNegativeCount is returned when asked to spin through fewer than zero transitions.
var ErrNegativeCount = errors.New("negative transition count")

// State is the controller's current mode.
type State string

const (
	Idle              State = "IDLE"               // No operation, motor untouched
	SeekingTarget     State = "SEEKING_TARGET"     // Driving until the target color is read
	CountingRotations State = "COUNTING_ROTATIONS" // Driving through a number of transitions
	Stopped           State = "STOPPED"            // Operation finished, motor at zero
)

// Active reports whether s drives the motor.
func (s State) Active() bool {
	return s == SeekingTarget || s == CountingRotations
}

// Config holds the controller's motor speeds and target offset.
type Config struct {
	SeekSpeed     float64 // Speed while seeking a target color
	RotationSpeed float64 // Speed while counting transitions
	// FieldOffset shifts a requested target by this many segments, for a
	// target read by a sensor mounted elsewhere around the wheel.
	FieldOffset int
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig() Config {
	return Config{
		SeekSpeed:     0.25,
		RotationSpeed: 0.15,
	}
}

// Telemetry is a read-only snapshot of the controller.
type Telemetry struct {
	State     State
	Color     Color // Classification of the latest reading
	Previous  Color // Latest non-Unknown classification
	Target    Color
	Remaining int
	Speed     float64

	Ticks              int // Ticks since the operation started
	TicksSinceReading  int // Ticks since a non-Unknown reading
	TicksSinceProgress int // Ticks since an accepted transition or the operation start
	Accepted           int // Transitions counted in this operation
	Skipped            int // Color changes that were not the expected successor
}

// Controller drives the wheel toward a target color or through a number of
// color transitions, one Tick per control period.
//
// A Controller is not safe for concurrent use. The caller serializes Tick and
// the operation methods.
type Controller struct {
	classifier *Classifier
	cfg        Config

	state     State
	color     Color
	previous  Color
	target    Color
	remaining int
	speed     float64

	ticks              int
	ticksSinceReading  int
	ticksSinceProgress int
	accepted           int
	skipped            int
}

// NewController creates an idle controller.
func NewController(classifier *Classifier, cfg Config) *Controller {
	return &Controller{
		classifier: classifier,
		cfg:        cfg,
		state:      Idle,
	}
}

// SeekColor starts driving the wheel until the color with code ch is read.
// An unrecognised code leaves the controller unchanged.
func (c *Controller) SeekColor(ch byte) error {
	col, err := ParseColor(ch)
	if err != nil {
		return fmt.Errorf("seek color: %w", err)
	}
	c.begin(SeekingTarget, c.cfg.SeekSpeed)
	c.target = col.Offset(c.cfg.FieldOffset)
	return nil
}

// SpinRotations starts driving the wheel through n color transitions.
// Zero stops at once without ever commanding the motor.
func (c *Controller) SpinRotations(n int) error {
	if n < 0 {
		return fmt.Errorf("spin rotations: %w: %d", ErrNegativeCount, n)
	}
	c.begin(CountingRotations, c.cfg.RotationSpeed)
	c.remaining = n
	if n == 0 {
		c.finish()
	}
	return nil
}

// Stop cancels any operation and returns to Idle.
func (c *Controller) Stop() {
	c.state = Idle
	c.speed = 0
	c.target = Unknown
	c.remaining = 0
}

// Acknowledge returns a Stopped controller to Idle. It does nothing in other states.
func (c *Controller) Acknowledge() {
	if c.state == Stopped {
		c.state = Idle
	}
}

// Tick classifies one reading, advances the operation and returns the motor
// speed to command for this period.
func (c *Controller) Tick(raw float64) float64 {
	col := c.classifier.Classify(raw)
	c.color = col

	c.ticks++
	c.ticksSinceProgress++
	if col == Unknown {
		c.ticksSinceReading++
	} else {
		c.ticksSinceReading = 0
	}

	switch c.state {
	case SeekingTarget:
		c.track(col)
		if col == c.target {
			c.finish()
		}
	case CountingRotations:
		if col != Unknown && col != c.previous {
			switch {
			case col == c.previous.Next():
				c.remaining--
				c.accepted++
				c.ticksSinceProgress = 0
			case c.previous != Unknown:
				c.skipped++
			}
			c.previous = col
		}
		if c.remaining <= 0 {
			c.finish()
		}
	default:
		c.track(col)
	}

	return c.speed
}

// Miss advances the tick counters for a period without a reading. The mode,
// the previous color and the commanded speed are left unchanged.
func (c *Controller) Miss() float64 {
	c.color = Unknown
	c.ticks++
	c.ticksSinceProgress++
	c.ticksSinceReading++
	return c.speed
}

func (c *Controller) begin(s State, speed float64) {
	c.state = s
	c.speed = speed
	c.target = Unknown
	c.remaining = 0
	c.ticks = 0
	c.ticksSinceProgress = 0
	c.accepted = 0
	c.skipped = 0
}

func (c *Controller) finish() {
	c.state = Stopped
	c.speed = 0
}

func (c *Controller) track(col Color) {
	if col != Unknown {
		c.previous = col
	}
}

// State returns the current mode.
func (c *Controller) State() State { return c.state }

// RemainingTransitions returns the transitions left in a counting operation.
func (c *Controller) RemainingTransitions() int { return c.remaining }

// Target returns the color being sought, or Unknown.
func (c *Controller) Target() Color { return c.target }

// Previous returns the latest non-Unknown classification.
func (c *Controller) Previous() Color { return c.previous }

// Speed returns the motor speed currently commanded.
func (c *Controller) Speed() float64 { return c.speed }

// Telemetry returns a snapshot of the controller.
func (c *Controller) Telemetry() Telemetry {
	return Telemetry{
		State:              c.state,
		Color:              c.color,
		Previous:           c.previous,
		Target:             c.target,
		Remaining:          c.remaining,
		Speed:              c.speed,
		Ticks:              c.ticks,
		TicksSinceReading:  c.ticksSinceReading,
		TicksSinceProgress: c.ticksSinceProgress,
		Accepted:           c.accepted,
		Skipped:            c.skipped,
	}
}

// Transitions converts whole wheel revolutions to a transition count for a
// wheel with segments faces.
func Transitions(revolutions, segments int) int {
	return revolutions * segments
}
