package wheel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_Classify(t *testing.T) {
	cl := NewClassifier(DefaultCalibration())

	tests := []struct {
		raw  float64
		want Color
	}{
		{10, Red}, // lower edge is inclusive
		{25, Red},
		{40, Red}, // upper edge is inclusive
		{60, Yellow},
		{125, Blue},
		{190, Green},
		{0, Unknown},
		{50, Unknown}, // gap between red and yellow
		{150, Unknown},
		{1e9, Unknown},
		{-5, Unknown},
		{math.NaN(), Unknown},
		{math.Inf(1), Unknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, cl.Classify(tt.raw), "Classify(%v)", tt.raw)
	}
}

func TestClassifier_EveryValueInBand(t *testing.T) {
	cal := DefaultCalibration()
	cl := NewClassifier(cal)

	for col, b := range cal {
		for raw := b.Lower; raw <= b.Upper; raw += 0.5 {
			assert.Equal(t, col, cl.Classify(raw), "Classify(%v)", raw)
		}
	}
}

func TestClassifier_MissingColorNeverMatches(t *testing.T) {
	cl := NewClassifier(Calibration{Blue: {Lower: 0, Upper: 10}})

	assert.Equal(t, Blue, cl.Classify(5))
	assert.Equal(t, Unknown, cl.Classify(-1))

	_, ok := cl.Bounds(Red)
	assert.False(t, ok)
	b, ok := cl.Bounds(Blue)
	assert.True(t, ok)
	assert.Equal(t, 10.0, b.Upper)
}

func TestClassifier_OverlapPrefersRingOrder(t *testing.T) {
	cl := NewClassifier(Calibration{
		Green: {Lower: 0, Upper: 20},
		Red:   {Lower: 10, Upper: 30},
	})

	assert.Equal(t, Red, cl.Classify(15))
	assert.Equal(t, Green, cl.Classify(5))
}

func TestBounds_Observe(t *testing.T) {
	b := NewBounds(50)
	for _, raw := range []float64{48, 53, 51, math.NaN(), 47.5} {
		b = b.Observe(raw)
	}

	assert.Equal(t, Bounds{Lower: 47.5, Upper: 53}, b)
	assert.InDelta(t, 5.5, b.Width(), 1e-9)
	assert.InDelta(t, 50.25, b.Mid(), 1e-9)
}

func TestBounds_Widen(t *testing.T) {
	b := Bounds{Lower: 10, Upper: 20}.Widen(2.5)

	assert.Equal(t, Bounds{Lower: 7.5, Upper: 22.5}, b)
	assert.True(t, b.Contains(8))
	assert.False(t, b.Contains(23))
}

func TestCalibration_Overlaps(t *testing.T) {
	assert.Empty(t, DefaultCalibration().Overlaps())

	cal := DefaultCalibration()
	cal[Yellow] = Bounds{Lower: 35, Upper: 115}
	assert.Equal(t, [][2]Color{{Red, Yellow}, {Yellow, Blue}}, cal.Overlaps())
}

func TestCalibration_Complete(t *testing.T) {
	cal := DefaultCalibration()
	assert.True(t, cal.Complete())

	delete(cal, Green)
	assert.False(t, cal.Complete())
}

func TestCalibration_Range(t *testing.T) {
	lo, hi := DefaultCalibration().Range()
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 190.0, hi)

	lo, hi = Calibration{}.Range()
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}
