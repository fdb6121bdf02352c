// Package wheel classifies color wheel readings and controls wheel rotation.
package wheel

import (
	"errors"
	"fmt"
)

// ErrInvalidColor is returned for a color code outside R, Y, B, G.
var ErrInvalidColor = errors.New("invalid color")

// Color is a face of the color wheel. The zero value is Unknown.
type Color int

// Wheel colors. Red through Green are listed in ring order.
const (
	Unknown Color = iota
	Red
	Yellow
	Blue
	Green
)

// RingSize is the number of colors in one cycle of the ring.
const RingSize = 4

// ring maps ring position to color.
var ring = [RingSize]Color{Red, Yellow, Blue, Green}

var (
	colorChars = [...]byte{Unknown: '?', Red: 'R', Yellow: 'Y', Blue: 'B', Green: 'G'}
	colorNames = [...]string{Unknown: "unknown", Red: "red", Yellow: "yellow", Blue: "blue", Green: "green"}
)

// Colors returns the four wheel colors in ring order.
func Colors() []Color {
	return ring[:]
}

// Valid reports whether c is one of the four wheel colors.
func (c Color) Valid() bool {
	return c >= Red && c <= Green
}

// Position returns the ring position of c (0 for Red through 3 for Green).
func (c Color) Position() (int, bool) {
	if !c.Valid() {
		return 0, false
	}
	return int(c - Red), true
}

// Next returns the color that follows c on the wheel.
// Unknown has no successor and yields Unknown.
func (c Color) Next() Color {
	return c.Offset(1)
}

// Offset returns the color n steps after c. Negative n walks backwards.
func (c Color) Offset(n int) Color {
	pos, ok := c.Position()
	if !ok {
		return Unknown
	}
	pos = (pos + n%RingSize + RingSize) % RingSize
	return ring[pos]
}

// Char returns the single-character code of c, or '?' for Unknown.
func (c Color) Char() byte {
	if !c.Valid() {
		return colorChars[Unknown]
	}
	return colorChars[c]
}

func (c Color) String() string {
	if !c.Valid() {
		return colorNames[Unknown]
	}
	return colorNames[c]
}

// MarshalText encodes c by name, so calibrations key JSON objects by color.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a color name as written by MarshalText.
func (c *Color) UnmarshalText(text []byte) error {
	for _, col := range ring {
		if colorNames[col] == string(text) {
			*c = col
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidColor, text)
}

// ParseColor maps a color code (R, Y, B or G) to its color.
func ParseColor(ch byte) (Color, error) {
	for _, col := range ring {
		if colorChars[col] == ch {
			return col, nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrInvalidColor, ch)
}
