package robot

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gwillem/colorwheel/pkg/wheel"
)

// SimConfig describes a simulated wheel.
type SimConfig struct {
	Segments         int           // Faces on the wheel, ring order repeated
	MaxRevsPerSecond float64       // Revolutions per second at speed 1
	Period           time.Duration // Time advanced by each Read
	Noise            float64       // Standard deviation of reading noise
	// EdgeFraction is the share of each segment, split across both ends,
	// where the sensor straddles two faces and reads between their bands.
	EdgeFraction float64
	Seed         uint64
}

// DefaultSimConfig returns a wheel with eight faces read at 50 Hz.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Segments:         8,
		MaxRevsPerSecond: 1,
		Period:           20 * time.Millisecond,
		Noise:            1.5,
		EdgeFraction:     0.15,
		Seed:             1,
	}
}

// SimWheel is an in-memory wheel that is both the Motor and the Sensor.
type SimWheel struct {
	cfg   SimConfig
	cal   wheel.Calibration
	rng   *rand.Rand
	mu    sync.Mutex
	angle float64 // Revolutions turned, in [0, 1)
	speed float64
	reads int
}

// NewSimWheel creates a simulated wheel whose faces read at the middle of
// their calibration bands.
func NewSimWheel(cfg SimConfig, cal wheel.Calibration) *SimWheel {
	if cfg.Segments < wheel.RingSize {
		cfg.Segments = wheel.RingSize
	}
	return &SimWheel{
		cfg: cfg,
		cal: cal,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
}

// SetSpeed sets the wheel speed. Values outside [-1, 1] are clamped.
func (s *SimWheel) SetSpeed(ctx context.Context, speed float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.speed = clampSpeed(speed)
	s.mu.Unlock()
	return nil
}

// Read advances the wheel by one period and returns the reading at the sensor.
func (s *SimWheel) Read(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.angle += s.speed * s.cfg.MaxRevsPerSecond * s.cfg.Period.Seconds()
	s.angle -= math.Floor(s.angle)
	s.reads++

	return s.readingAt(s.angle) + s.rng.NormFloat64()*s.cfg.Noise, nil
}

// Face returns the color under the sensor, or Unknown on a face boundary.
func (s *SimWheel) Face() wheel.Color {
	s.mu.Lock()
	defer s.mu.Unlock()

	seg, frac := s.segmentAt(s.angle)
	if s.onEdge(frac) {
		return wheel.Unknown
	}
	return wheel.Red.Offset(seg)
}

// Speed returns the current wheel speed.
func (s *SimWheel) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

// Reads returns the number of readings taken.
func (s *SimWheel) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Close stops the wheel.
func (s *SimWheel) Close() error {
	s.mu.Lock()
	s.speed = 0
	s.mu.Unlock()
	return nil
}

func (s *SimWheel) segmentAt(angle float64) (int, float64) {
	pos := angle * float64(s.cfg.Segments)
	seg := int(pos) % s.cfg.Segments
	return seg, pos - math.Floor(pos)
}

func (s *SimWheel) onEdge(frac float64) bool {
	half := s.cfg.EdgeFraction / 2
	return frac < half || frac > 1-half
}

func (s *SimWheel) readingAt(angle float64) float64 {
	seg, frac := s.segmentAt(angle)
	face := wheel.Red.Offset(seg)
	if !s.onEdge(frac) {
		return s.cal[face].Mid()
	}

	// Straddling two faces: read halfway between the neighbouring bands.
	other := face.Offset(-1)
	if frac > 0.5 {
		other = face.Next()
	}
	return (s.cal[face].Mid() + s.cal[other].Mid()) / 2
}
