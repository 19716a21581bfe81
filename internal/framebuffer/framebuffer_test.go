package framebuffer

import (
	"bytes"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junsooki/renderlink/internal/pixel"
)

type countingAllocator struct {
	allocs []int
	frees  int
}

func (a *countingAllocator) Alloc(size int) ([]byte, error) {
	a.allocs = append(a.allocs, size)
	return make([]byte, size), nil
}

func (a *countingAllocator) Free([]byte) error {
	a.frees++
	return nil
}

func TestResizeAllocatesOnce(t *testing.T) {
	tests := []struct {
		bits   int
		format pixel.Format
	}{
		{8, pixel.U8},
		{16, pixel.U16Half},
		{32, pixel.F32},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			alloc := &countingAllocator{}
			m := New(alloc, nil, zerolog.Nop())
			require.Equal(t, tt.format, m.SetFormat(tt.bits))

			small := tt.format.FrameSize(4, 2)
			require.NoError(t, m.Resize(4, 2))
			assert.Equal(t, []int{small}, alloc.allocs)
			assert.Equal(t, small, m.Size())
			assert.NotZero(t, m.DeviceHandle())

			require.NoError(t, m.Resize(4, 2))
			assert.Len(t, alloc.allocs, 1, "same dimensions do not reallocate")
			assert.Equal(t, 0, alloc.frees)

			require.NoError(t, m.Resize(8, 2))
			assert.Equal(t, []int{small, tt.format.FrameSize(8, 2)}, alloc.allocs)
			assert.Equal(t, 1, alloc.frees)
		})
	}
}

func TestResizeRejectsOversizedFrames(t *testing.T) {
	alloc := &countingAllocator{}
	m := New(alloc, nil, zerolog.Nop())
	m.SetFormat(32)

	require.ErrorIs(t, m.Resize(math.MaxInt32, math.MaxInt32), ErrInvalidSize)
	require.ErrorIs(t, m.Resize(MaxDimension+1, 1), ErrInvalidSize)
	require.ErrorIs(t, m.ForceResize(1, MaxDimension+1), ErrInvalidSize)
	assert.Empty(t, alloc.allocs)
	assert.Nil(t, m.Pixels())

	heap := New(HeapAllocator{}, nil, zerolog.Nop())
	require.ErrorIs(t, heap.Resize(math.MaxInt32, math.MaxInt32), ErrInvalidSize)
}

func TestResizeRejectsEmptyFrames(t *testing.T) {
	m := New(nil, nil, zerolog.Nop())
	require.ErrorIs(t, m.Resize(0, 10), ErrInvalidSize)
	require.ErrorIs(t, m.Resize(10, -1), ErrInvalidSize)
	require.ErrorIs(t, m.ForceResize(0, 0), ErrInvalidSize)
	assert.Nil(t, m.Pixels())
}

func TestFormatChangeTakesEffectOnResize(t *testing.T) {
	alloc := &countingAllocator{}
	m := New(alloc, nil, zerolog.Nop())
	require.NoError(t, m.Resize(2, 2))

	assert.Equal(t, pixel.F32, m.SetFormat(32))
	assert.Equal(t, 16, m.Size(), "no reallocation from SetFormat alone")

	require.NoError(t, m.Resize(2, 2))
	assert.Equal(t, 2*2*4*4, m.Size())
	assert.Len(t, alloc.allocs, 2)
}

func TestSetFormatFallsBackToEightBits(t *testing.T) {
	m := New(nil, nil, zerolog.Nop())
	m.SetFormat(16)
	assert.Equal(t, pixel.U16Half, m.Format())

	assert.Equal(t, pixel.U8, m.SetFormat(12))
	assert.Equal(t, pixel.U8, m.Format())
}

func TestForceResizeReallocates(t *testing.T) {
	alloc := &countingAllocator{}
	m := New(alloc, nil, zerolog.Nop())
	require.NoError(t, m.Resize(2, 2))
	require.NoError(t, m.ForceResize(2, 2))
	assert.Len(t, alloc.allocs, 2)
	assert.Equal(t, 1, alloc.frees)
}

func TestPixelsRoundTripThroughDevice(t *testing.T) {
	dev := NewHostDevice()
	m := New(nil, dev, zerolog.Nop())
	require.NoError(t, m.Resize(2, 1))

	frame := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	require.NoError(t, m.SetPixels(frame))
	require.NoError(t, m.Upload())

	require.NoError(t, m.SetPixels(make([]byte, 8)))
	require.NoError(t, m.Download())
	assert.Equal(t, frame, m.Pixels())

	out := make([]byte, 8)
	require.NoError(t, m.CopyPixels(out))
	assert.Equal(t, frame, out)

	require.Error(t, m.SetPixels(make([]byte, 3)))
	require.Error(t, m.CopyPixels(make([]byte, 3)))
}

func TestSetDevicePixels(t *testing.T) {
	dev := NewHostDevice()
	m := New(nil, dev, zerolog.Nop())
	require.NoError(t, m.Resize(1, 1))

	src, err := dev.Alloc(4)
	require.NoError(t, err)
	copy(src.(*hostBuffer).Bytes(), []byte{9, 8, 7, 6})

	require.NoError(t, m.SetDevicePixels(src))
	require.NoError(t, m.Download())
	assert.Equal(t, []byte{9, 8, 7, 6}, m.Pixels())
}

func TestCloseReleasesEverything(t *testing.T) {
	alloc := &countingAllocator{}
	m := New(alloc, nil, zerolog.Nop())
	require.NoError(t, m.Resize(3, 3))
	require.NoError(t, m.Close())

	assert.Equal(t, 1, alloc.frees)
	assert.Nil(t, m.Pixels())
	assert.Zero(t, m.DeviceHandle())
	assert.Zero(t, m.Width())
}

func TestPinnedAllocator(t *testing.T) {
	a := NewPinnedAllocator(zerolog.Nop())
	buf, err := a.Alloc(1 << 16)
	require.NoError(t, err)
	require.Len(t, buf, 1<<16)

	copy(buf, bytes.Repeat([]byte{0x5A}, 16))
	assert.Equal(t, byte(0x5A), buf[15])
	require.NoError(t, a.Free(buf))
}
