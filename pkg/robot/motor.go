// Package robot provides the hardware around the color wheel: its motor,
// intensity sensors, a simulated wheel and the configuration file.
package robot

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"

	"go.bug.st/serial"
)

// Motor drives the wheel at a signed speed in [-1, 1].
type Motor interface {
	SetSpeed(ctx context.Context, speed float64) error
	Close() error
}

// Simple Motor Controller compact protocol commands.
const (
	smcExitSafeStart byte = 0x83
	smcForward       byte = 0x85
	smcReverse       byte = 0x86

	smcMaxSpeed = 3200
)

// SMCMotor drives a Pololu Simple Motor Controller over a serial port.
type SMCMotor struct {
	mu    sync.Mutex
	port  io.WriteCloser
	speed float64
}

// OpenSMCMotor opens the serial port of a Simple Motor Controller and
// clears its safe-start latch.
func OpenSMCMotor(portName string, baudRate int) (*SMCMotor, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("open motor port: %w", err)
	}

	m, err := NewSMCMotor(port)
	if err != nil {
		port.Close()
		return nil, err
	}
	return m, nil
}

// NewSMCMotor wraps an already open port.
func NewSMCMotor(port io.WriteCloser) (*SMCMotor, error) {
	m := &SMCMotor{port: port}
	if _, err := port.Write([]byte{smcExitSafeStart}); err != nil {
		return nil, fmt.Errorf("exit safe start: %w", err)
	}
	return m, nil
}

// SetSpeed sends a speed command. Speeds outside [-1, 1] are clamped.
// The command is sent even when unchanged so the controller's serial
// timeout keeps being refreshed.
func (m *SMCMotor) SetSpeed(ctx context.Context, speed float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	speed = clampSpeed(speed)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.port.Write(smcSpeedFrame(speed)); err != nil {
		return fmt.Errorf("set speed: %w", err)
	}
	m.speed = speed
	return nil
}

// Speed returns the last speed sent.
func (m *SMCMotor) Speed() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speed
}

// Close stops the motor and closes the port.
func (m *SMCMotor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, werr := m.port.Write(smcSpeedFrame(0))
	if err := m.port.Close(); err != nil {
		return fmt.Errorf("close motor port: %w", err)
	}
	if werr != nil {
		return fmt.Errorf("stop motor: %w", werr)
	}
	return nil
}

// smcSpeedFrame encodes speed as a forward or reverse command with the
// 0..3200 magnitude split into low 5 bits and high 7 bits.
func smcSpeedFrame(speed float64) []byte {
	cmd := smcForward
	if speed < 0 {
		cmd = smcReverse
		speed = -speed
	}
	v := int(math.Round(speed * smcMaxSpeed))
	return []byte{cmd, byte(v & 0x1F), byte(v >> 5)}
}

func clampSpeed(speed float64) float64 {
	if math.IsNaN(speed) {
		return 0
	}
	return math.Max(-1, math.Min(1, speed))
}
