package wheel

import "math"

// Bounds is the closed band of raw readings that identifies one color.
type Bounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// NewBounds returns a zero-width band holding a single sample.
func NewBounds(raw float64) Bounds {
	return Bounds{Lower: raw, Upper: raw}
}

// Contains reports whether raw lies within the band, inclusive at both ends.
func (b Bounds) Contains(raw float64) bool {
	return raw >= b.Lower && raw <= b.Upper
}

// Width returns the size of the band.
func (b Bounds) Width() float64 {
	return b.Upper - b.Lower
}

// Mid returns the center of the band.
func (b Bounds) Mid() float64 {
	return (b.Lower + b.Upper) / 2
}

// Observe grows the band to include raw. NaN samples are ignored.
func (b Bounds) Observe(raw float64) Bounds {
	if math.IsNaN(raw) {
		return b
	}
	b.Lower = math.Min(b.Lower, raw)
	b.Upper = math.Max(b.Upper, raw)
	return b
}

// Widen pads the band by margin on each side.
func (b Bounds) Widen(margin float64) Bounds {
	return Bounds{Lower: b.Lower - margin, Upper: b.Upper + margin}
}

// Overlaps reports whether the two bands share any reading.
func (b Bounds) Overlaps(o Bounds) bool {
	return b.Lower <= o.Upper && o.Lower <= b.Upper
}

// Calibration holds the band for each color.
type Calibration map[Color]Bounds

// DefaultCalibration returns evenly spaced bands with gaps between neighbours.
func DefaultCalibration() Calibration {
	return Calibration{
		Red:    {Lower: 10, Upper: 40},
		Yellow: {Lower: 60, Upper: 90},
		Blue:   {Lower: 110, Upper: 140},
		Green:  {Lower: 160, Upper: 190},
	}
}

// Complete reports whether every color has a band.
func (c Calibration) Complete() bool {
	for _, col := range ring {
		if _, ok := c[col]; !ok {
			return false
		}
	}
	return true
}

// Overlaps returns each pair of colors whose bands share readings.
func (c Calibration) Overlaps() [][2]Color {
	var pairs [][2]Color
	for i, a := range ring {
		ba, ok := c[a]
		if !ok {
			continue
		}
		for _, b := range ring[i+1:] {
			if bb, ok := c[b]; ok && ba.Overlaps(bb) {
				pairs = append(pairs, [2]Color{a, b})
			}
		}
	}
	return pairs
}

// Range returns the lowest and highest reading covered by any band.
func (c Calibration) Range() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, b := range c {
		lo = math.Min(lo, b.Lower)
		hi = math.Max(hi, b.Upper)
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}
