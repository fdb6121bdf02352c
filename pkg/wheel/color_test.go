package wheel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColor_NextCycle(t *testing.T) {
	for _, c := range Colors() {
		assert.Equal(t, c, c.Next().Next().Next().Next(), "four steps from %s", c)
		assert.NotEqual(t, c, c.Next(), "%s is its own successor", c)
	}
}

func TestColor_NextOrder(t *testing.T) {
	tests := []struct {
		from, want Color
	}{
		{Red, Yellow},
		{Yellow, Blue},
		{Blue, Green},
		{Green, Red}, // wraps
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.Next(), "Next(%s)", tt.from)
	}
}

func TestColor_Offset(t *testing.T) {
	for _, c := range Colors() {
		assert.Equal(t, c, c.Offset(4))
		assert.Equal(t, c, c.Offset(0))
		for n := 0; n < 1000; n++ {
			assert.Equal(t, c.Offset(n%4), c.Offset(n), "Offset(%s, %d)", c, n)
		}
	}

	assert.Equal(t, Blue, Red.Offset(2))
	assert.Equal(t, Yellow, Green.Offset(2))
	assert.Equal(t, Green, Red.Offset(-1))
	assert.Equal(t, Blue, Yellow.Offset(1<<20+1))
}

func TestColor_UnknownHasNoSuccessor(t *testing.T) {
	assert.Equal(t, Unknown, Unknown.Next())
	assert.Equal(t, Unknown, Unknown.Offset(3))
	assert.Equal(t, Unknown, Color(42).Next())
	_, ok := Unknown.Position()
	assert.False(t, ok)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		ch   byte
		want Color
	}{
		{'R', Red},
		{'Y', Yellow},
		{'B', Blue},
		{'G', Green},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.ch)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.ch, got.Char(), "round trip of %q", tt.ch)
	}
}

func TestParseColor_Invalid(t *testing.T) {
	for _, ch := range []byte{'X', 'r', '?', 0, ' '} {
		got, err := ParseColor(ch)
		assert.ErrorIs(t, err, ErrInvalidColor, "code %q", ch)
		assert.Equal(t, Unknown, got)
	}
}

func TestColor_Char(t *testing.T) {
	assert.Equal(t, byte('?'), Unknown.Char())
	assert.Equal(t, byte('?'), Color(-3).Char())
	assert.Equal(t, "unknown", Color(9).String())
	assert.Equal(t, "blue", Blue.String())
}

func TestCalibration_JSONKeys(t *testing.T) {
	data, err := json.Marshal(Calibration{Red: {Lower: 1, Upper: 2}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"red":{"lower":1,"upper":2}}`, string(data))

	var cal Calibration
	require.NoError(t, json.Unmarshal([]byte(`{"green":{"lower":5,"upper":6}}`), &cal))
	assert.Equal(t, Bounds{Lower: 5, Upper: 6}, cal[Green])

	err = json.Unmarshal([]byte(`{"purple":{"lower":5,"upper":6}}`), &cal)
	assert.ErrorIs(t, err, ErrInvalidColor)
}
