package robot

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPort records writes in place of a serial port.
type mockPort struct {
	mu       sync.Mutex
	writeBuf bytes.Buffer
	writeErr error
	closed   bool
}

func (m *mockPort) Write(b []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, errors.New("port closed")
	}
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	return m.writeBuf.Write(b)
}

func (m *mockPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// written returns and clears everything written so far.
func (m *mockPort) written() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := bytes.Clone(m.writeBuf.Bytes())
	m.writeBuf.Reset()
	return b
}

func TestSMCSpeedFrame(t *testing.T) {
	tests := []struct {
		speed float64
		want  []byte
	}{
		{0, []byte{0x85, 0x00, 0x00}},
		{1, []byte{0x85, 0x00, 0x64}},    // 3200 = 100<<5
		{-1, []byte{0x86, 0x00, 0x64}},   // reverse
		{0.5, []byte{0x85, 0x00, 0x32}},  // 1600 = 50<<5
		{0.25, []byte{0x85, 0x00, 0x19}}, // 800 = 25<<5
		{0.001, []byte{0x85, 0x03, 0x00}},
		{-0.1, []byte{0x86, 0x00, 0x0A}}, // 320 = 10<<5
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, smcSpeedFrame(tt.speed), "speed %v", tt.speed)
	}
}

func TestSMCMotor_SetSpeed(t *testing.T) {
	port := &mockPort{}
	m, err := NewSMCMotor(port)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x83}, port.written(), "exit safe start on open")

	ctx := context.Background()
	require.NoError(t, m.SetSpeed(ctx, 0.5))
	assert.Equal(t, []byte{0x85, 0x00, 0x32}, port.written())
	assert.Equal(t, 0.5, m.Speed())

	// Clamped to full reverse.
	require.NoError(t, m.SetSpeed(ctx, -7))
	assert.Equal(t, []byte{0x86, 0x00, 0x64}, port.written())
	assert.Equal(t, -1.0, m.Speed())

	// Repeated commands are still sent.
	require.NoError(t, m.SetSpeed(ctx, -1))
	assert.Equal(t, []byte{0x86, 0x00, 0x64}, port.written())
}

func TestSMCMotor_WriteError(t *testing.T) {
	port := &mockPort{}
	m, err := NewSMCMotor(port)
	require.NoError(t, err)

	port.writeErr = errors.New("unplugged")
	err = m.SetSpeed(context.Background(), 0.2)
	assert.ErrorContains(t, err, "unplugged")
	assert.Zero(t, m.Speed())
}

func TestSMCMotor_CanceledContext(t *testing.T) {
	port := &mockPort{}
	m, err := NewSMCMotor(port)
	require.NoError(t, err)
	port.written()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.SetSpeed(ctx, 0.2), context.Canceled)
	assert.Empty(t, port.written())
}

func TestSMCMotor_CloseStops(t *testing.T) {
	port := &mockPort{}
	m, err := NewSMCMotor(port)
	require.NoError(t, err)
	require.NoError(t, m.SetSpeed(context.Background(), 0.3))
	port.written()

	require.NoError(t, m.Close())

	assert.Equal(t, []byte{0x85, 0x00, 0x00}, port.written())
	assert.True(t, port.closed)
}
