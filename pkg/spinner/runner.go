// Package spinner runs the color wheel controller on a fixed control period.
package spinner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gwillem/colorwheel/pkg/journal"
	"github.com/gwillem/colorwheel/pkg/robot"
	"github.com/gwillem/colorwheel/pkg/wheel"
)

// ErrRunning is returned by Start when the control loop is already running.
var ErrRunning = errors.New("runner already running")

// Recorder stores finished operations.
type Recorder interface {
	Record(ctx context.Context, op journal.Operation) error
}

// State is the telemetry published after each tick.
type State struct {
	wheel.Telemetry
	Raw        float64
	OpID       string
	SinceStart time.Duration // Time since the operation started
	Stalled    time.Duration // Time since the last progress event
	Timestamp  time.Time
	Error      error
}

// Config holds configuration for the runner.
type Config struct {
	Hz          int
	Wheel       wheel.Config
	Calibration wheel.Calibration
	// StallTimeout stops an operation that makes no progress for this long.
	// Zero leaves stalled operations running.
	StallTimeout time.Duration
	Recorder     Recorder // Optional
}

// operation tracks the seek or spin in progress for the journal.
type operation struct {
	id        string
	kind      string
	target    string
	requested int
	started   time.Time
}

// Runner owns the controller and serializes all access to it.
type Runner struct {
	motor  robot.Motor
	sensor robot.Sensor
	hz     int
	stall  time.Duration
	rec    Recorder
	now    func() time.Time

	mu      sync.Mutex
	ctrl    *wheel.Controller
	op      *operation
	raw     float64
	running bool
	stateCh chan State
	logCh   chan string
}

// NewRunner creates a runner for the given motor and sensor.
func NewRunner(motor robot.Motor, sensor robot.Sensor, cfg Config) *Runner {
	if cfg.Hz <= 0 {
		cfg.Hz = 50
	}
	return &Runner{
		motor:   motor,
		sensor:  sensor,
		hz:      cfg.Hz,
		stall:   cfg.StallTimeout,
		rec:     cfg.Recorder,
		now:     time.Now,
		ctrl:    wheel.NewController(wheel.NewClassifier(cfg.Calibration), cfg.Wheel),
		stateCh: make(chan State, 1),
		logCh:   make(chan string, 10),
	}
}

// States returns a channel that always holds the newest state.
func (r *Runner) States() <-chan State {
	return r.stateCh
}

// Logs returns a channel that receives log messages.
func (r *Runner) Logs() <-chan string {
	return r.logCh
}

// Hz returns the control frequency.
func (r *Runner) Hz() int {
	return r.hz
}

// Period returns the control period.
func (r *Runner) Period() time.Duration {
	return time.Second / time.Duration(r.hz)
}

func (r *Runner) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", r.now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case r.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// SeekColor starts seeking the color with code ch. The code is checked
// before returning; the motor follows on the next tick.
func (r *Runner) SeekColor(ctx context.Context, ch byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Validate before canceling so a bad code leaves the current operation running.
	if _, err := wheel.ParseColor(ch); err != nil {
		return fmt.Errorf("seek color: %w", err)
	}
	r.cancelLocked(ctx)
	if err := r.ctrl.SeekColor(ch); err != nil {
		return err
	}
	r.op = &operation{id: journal.NewID(), kind: journal.KindSeek, target: string(ch), started: r.now()}
	r.log("Seeking %c (target %s under the sensor)", ch, r.ctrl.Target())
	return nil
}

// SpinRotations starts counting n color transitions.
func (r *Runner) SpinRotations(ctx context.Context, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n < 0 {
		return fmt.Errorf("spin rotations: %w: %d", wheel.ErrNegativeCount, n)
	}
	r.cancelLocked(ctx)
	if err := r.ctrl.SpinRotations(n); err != nil {
		return err
	}
	r.op = &operation{id: journal.NewID(), kind: journal.KindSpin, requested: n, started: r.now()}
	r.log("Spinning through %d transitions", n)
	if r.ctrl.State() == wheel.Stopped {
		r.finishLocked(ctx, journal.OutcomeCompleted)
	}
	return nil
}

// Stop cancels the current operation. The motor stops on the next tick.
func (r *Runner) Stop(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancelLocked(ctx)
	r.ctrl.Stop()
}

// Telemetry returns a snapshot of the controller.
func (r *Runner) Telemetry() wheel.Telemetry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctrl.Telemetry()
}

// Start runs the control loop until ctx is canceled, then stops the motor.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrRunning
	}
	r.running = true
	r.mu.Unlock()

	r.log("Control loop started at %d Hz", r.hz)

	ticker := time.NewTicker(r.Period())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return ctx.Err()
		case <-ticker.C:
			r.step(ctx)
		}
	}
}

// step runs one control period: read, tick, command.
func (r *Runner) step(ctx context.Context) {
	raw, err := r.sensor.Read(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	var speed float64
	if err != nil {
		// Hold the last command; a missed reading is not a color but still
		// counts toward the stall clock.
		r.log("Read error: %v", err)
		speed = r.ctrl.Miss()
	} else {
		r.raw = raw
		wasActive := r.ctrl.State().Active()
		speed = r.ctrl.Tick(raw)
		if wasActive && r.ctrl.State() == wheel.Stopped {
			r.finishLocked(ctx, journal.OutcomeCompleted)
		}
	}

	if r.stall > 0 && r.ctrl.State().Active() {
		if since := r.sinceProgressLocked(); since >= r.stall {
			r.log("No progress for %s, stopping", since.Round(time.Millisecond))
			r.finishLocked(ctx, journal.OutcomeStalled)
			r.ctrl.Stop()
			speed = r.ctrl.Speed()
		}
	}

	// Sent every period, held or not, so the motor controller's serial
	// timeout never lapses.
	werr := r.motor.SetSpeed(ctx, speed)
	if werr != nil {
		r.log("Write error: %v", werr)
	}
	if err == nil {
		err = werr
	}
	r.sendState(r.stateLocked(err))
}

func (r *Runner) sinceProgressLocked() time.Duration {
	return time.Duration(r.ctrl.Telemetry().TicksSinceProgress) * r.Period()
}

func (r *Runner) stateLocked(err error) State {
	tm := r.ctrl.Telemetry()
	s := State{
		Telemetry: tm,
		Raw:       r.raw,
		Stalled:   time.Duration(tm.TicksSinceProgress) * r.Period(),
		Timestamp: r.now(),
		Error:     err,
	}
	if r.op != nil {
		s.OpID = r.op.id
		s.SinceStart = s.Timestamp.Sub(r.op.started)
	}
	return s
}

// cancelLocked journals an operation that is being replaced or stopped.
func (r *Runner) cancelLocked(ctx context.Context) {
	if r.op != nil && r.ctrl.State().Active() {
		r.log("Canceled %s", r.op.kind)
		r.finishLocked(ctx, journal.OutcomeCanceled)
	}
}

func (r *Runner) finishLocked(ctx context.Context, outcome string) {
	op := r.op
	r.op = nil
	if op == nil {
		return
	}
	tm := r.ctrl.Telemetry()
	finished := r.now()
	if outcome == journal.OutcomeCompleted {
		r.log("Finished %s in %s (%d ticks)", op.kind, finished.Sub(op.started).Round(time.Millisecond), tm.Ticks)
	}
	if r.rec == nil {
		return
	}
	err := r.rec.Record(ctx, journal.Operation{
		ID:         op.id,
		Kind:       op.kind,
		Target:     op.target,
		Requested:  op.requested,
		Outcome:    outcome,
		Ticks:      tm.Ticks,
		Accepted:   tm.Accepted,
		Skipped:    tm.Skipped,
		StartedAt:  op.started,
		FinishedAt: finished,
	})
	if err != nil {
		r.log("Journal error: %v", err)
	}
}

func (r *Runner) sendState(s State) {
	select {
	case r.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-r.stateCh:
		default:
		}
		r.stateCh <- s
	}
}

func (r *Runner) shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running = false
	ctx := context.Background()
	r.cancelLocked(ctx)
	r.ctrl.Stop()
	if err := r.motor.SetSpeed(ctx, 0); err != nil {
		r.log("Warning: failed to stop motor: %v", err)
	}
	r.log("Control loop stopped")
}
