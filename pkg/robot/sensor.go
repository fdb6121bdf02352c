package robot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

var (
	// ErrNoReading is returned before a sensor has produced its first value.
	ErrNoReading = errors.New("no sensor reading yet")
	// ErrStaleReading is returned when the newest value is too old to use.
	ErrStaleReading = errors.New("stale sensor reading")
)

// Sensor supplies one raw intensity reading per control tick.
type Sensor interface {
	Read(ctx context.Context) (float64, error)
	Close() error
}

// SerialSensor reads intensity values streamed one per line by a
// microcontroller and keeps the newest.
type SerialSensor struct {
	port   io.ReadCloser
	maxAge time.Duration
	now    func() time.Time

	mu      sync.Mutex
	value   float64
	at      time.Time
	have    bool
	skipped int
	err     error
	done    chan struct{}
}

// OpenSerialSensor opens a sensor stream on a serial port. Readings older
// than maxAge are rejected; zero disables the check.
func OpenSerialSensor(portName string, baudRate int, maxAge time.Duration) (*SerialSensor, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("open sensor port: %w", err)
	}
	return NewSerialSensor(port, maxAge), nil
}

// NewSerialSensor starts reading lines from port.
func NewSerialSensor(port io.ReadCloser, maxAge time.Duration) *SerialSensor {
	s := &SerialSensor{
		port:   port,
		maxAge: maxAge,
		now:    time.Now,
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *SerialSensor) readLoop() {
	defer close(s.done)

	scanner := bufio.NewScanner(s.port)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)

		s.mu.Lock()
		if err != nil {
			s.skipped++
		} else {
			s.value, s.at, s.have = v, s.now(), true
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.err = scanner.Err()
	if s.err == nil {
		s.err = io.EOF
	}
	s.mu.Unlock()
}

// Read returns the newest reading.
func (s *SerialSensor) Read(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.have {
		if s.err != nil {
			return 0, fmt.Errorf("sensor stream: %w", s.err)
		}
		return 0, ErrNoReading
	}
	if age := s.now().Sub(s.at); s.maxAge > 0 && age > s.maxAge {
		return 0, fmt.Errorf("%w: %s old", ErrStaleReading, age.Round(time.Millisecond))
	}
	return s.value, nil
}

// Skipped returns the number of lines that were not valid numbers.
func (s *SerialSensor) Skipped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}

// Close closes the port and waits for the reader to finish.
func (s *SerialSensor) Close() error {
	err := s.port.Close()
	<-s.done
	if err != nil {
		return fmt.Errorf("close sensor port: %w", err)
	}
	return nil
}
