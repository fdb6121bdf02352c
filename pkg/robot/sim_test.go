package robot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/colorwheel/pkg/wheel"
)

func newTestSim(noise float64) *SimWheel {
	cfg := DefaultSimConfig()
	cfg.Noise = noise
	cfg.MaxRevsPerSecond = 1
	cfg.Period = 10 * time.Millisecond
	return NewSimWheel(cfg, wheel.DefaultCalibration())
}

func TestSimWheel_StillWhenStopped(t *testing.T) {
	sim := newTestSim(0)
	ctx := context.Background()

	first, err := sim.Read(ctx)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		v, err := sim.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, v)
	}
	assert.Equal(t, 11, sim.Reads())
}

func TestSimWheel_FacesInRingOrder(t *testing.T) {
	sim := newTestSim(0)
	cl := wheel.NewClassifier(wheel.DefaultCalibration())
	ctx := context.Background()
	require.NoError(t, sim.SetSpeed(ctx, 0.5))

	// Half a revolution per second for four seconds: two full turns.
	var seen []wheel.Color
	for i := 0; i < 400; i++ {
		v, err := sim.Read(ctx)
		require.NoError(t, err)
		col := cl.Classify(v)
		assert.Equal(t, sim.Face(), col, "read %d", i)
		if col != wheel.Unknown && (len(seen) == 0 || seen[len(seen)-1] != col) {
			seen = append(seen, col)
		}
	}

	require.GreaterOrEqual(t, len(seen), 15)
	for i := 1; i < len(seen); i++ {
		assert.Equal(t, seen[i-1].Next(), seen[i], "change %d", i)
	}
}

func TestSimWheel_Reverse(t *testing.T) {
	sim := newTestSim(0)
	cl := wheel.NewClassifier(wheel.DefaultCalibration())
	ctx := context.Background()
	require.NoError(t, sim.SetSpeed(ctx, -0.5))

	var seen []wheel.Color
	for i := 0; i < 100; i++ {
		v, _ := sim.Read(ctx)
		if col := cl.Classify(v); col != wheel.Unknown && (len(seen) == 0 || seen[len(seen)-1] != col) {
			seen = append(seen, col)
		}
	}

	require.GreaterOrEqual(t, len(seen), 3)
	for i := 1; i < len(seen); i++ {
		assert.Equal(t, seen[i-1].Offset(-1), seen[i])
	}
}

func TestSimWheel_Clamp(t *testing.T) {
	sim := newTestSim(0)

	require.NoError(t, sim.SetSpeed(context.Background(), 3))
	assert.Equal(t, 1.0, sim.Speed())

	require.NoError(t, sim.Close())
	assert.Zero(t, sim.Speed())
}

func TestSimWheel_NoiseIsSeeded(t *testing.T) {
	a, b := newTestSim(2), newTestSim(2)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		va, _ := a.Read(ctx)
		vb, _ := b.Read(ctx)
		assert.Equal(t, va, vb)
	}
}
