package wheel

// Classifier maps raw sensor readings to wheel colors.
// It is immutable once built and safe to share.
type Classifier struct {
	bounds [RingSize]Bounds
	known  [RingSize]bool
}

// NewClassifier builds a classifier from a calibration. Colors missing from
// cal never match.
func NewClassifier(cal Calibration) *Classifier {
	c := &Classifier{}
	for col, b := range cal {
		pos, ok := col.Position()
		if !ok {
			continue
		}
		c.bounds[pos] = b
		c.known[pos] = true
	}
	return c
}

// Classify returns the first color, in ring order, whose band contains raw,
// or Unknown when none does.
func (c *Classifier) Classify(raw float64) Color {
	for pos, col := range ring {
		if c.known[pos] && c.bounds[pos].Contains(raw) {
			return col
		}
	}
	return Unknown
}

// Bounds returns the band configured for col.
func (c *Classifier) Bounds(col Color) (Bounds, bool) {
	pos, ok := col.Position()
	if !ok || !c.known[pos] {
		return Bounds{}, false
	}
	return c.bounds[pos], true
}
