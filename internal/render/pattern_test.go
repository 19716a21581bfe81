package render

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junsooki/renderlink/internal/pixel"
	"github.com/junsooki/renderlink/internal/state"
)

func TestPatternEightBit(t *testing.T) {
	p := NewTestPattern()
	ctl := state.ControlState{Width: 4, Height: 2}
	dst := make([]byte, pixel.U8.FrameSize(4, 2))

	shared, err := p.Render(ctl, pixel.U8, dst)
	require.NoError(t, err)
	assert.Equal(t, int32(1), shared.Samples)

	// first pixel: red 0, green 0, blue 8, alpha 255
	assert.Equal(t, []byte{0, 0, 8, 255}, dst[:4])
	// last pixel of the first row is fully red
	assert.Equal(t, byte(255), dst[3*4])
	// second row is fully green
	assert.Equal(t, byte(255), dst[4*4+1])
}

func TestPatternSamplesAccumulateUntilReset(t *testing.T) {
	p := NewTestPattern()
	ctl := state.ControlState{Width: 2, Height: 2}
	dst := make([]byte, pixel.U8.FrameSize(2, 2))

	for i := 0; i < 3; i++ {
		_, err := p.Render(ctl, pixel.U8, dst)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), p.Samples())

	p.Reset()
	shared, err := p.Render(ctl, pixel.U8, dst)
	require.NoError(t, err)
	assert.Equal(t, int32(1), shared.Samples)
}

func TestPatternWideFormats(t *testing.T) {
	ctl := state.ControlState{Width: 2, Height: 2}

	half := make([]byte, pixel.U16Half.FrameSize(2, 2))
	_, err := NewTestPattern().Render(ctl, pixel.U16Half, half)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x3C00), binary.NativeEndian.Uint16(half[6:8]), "opaque alpha")

	f32 := make([]byte, pixel.F32.FrameSize(2, 2))
	_, err = NewTestPattern().Render(ctl, pixel.F32, f32)
	require.NoError(t, err)
	alpha := math.Float32frombits(binary.NativeEndian.Uint32(f32[12:16]))
	assert.InDelta(t, 1.0, alpha, 1e-6)
}

func TestPatternValidatesDestination(t *testing.T) {
	p := NewTestPattern()
	_, err := p.Render(state.ControlState{Width: 2, Height: 2}, pixel.U8, make([]byte, 3))
	require.Error(t, err)
	_, err = p.Render(state.ControlState{}, pixel.U8, nil)
	require.Error(t, err)
}
