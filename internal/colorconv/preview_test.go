package colorconv

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatFromHalf(t *testing.T) {
	assert.Equal(t, float32(0), FloatFromHalf(0))
	assert.Equal(t, float32(1), FloatFromHalf(0x3C00))
	assert.Equal(t, float32(0.5), FloatFromHalf(0x3800))
	assert.Equal(t, float32(65504), FloatFromHalf(0x7BFF))

	for _, f := range []float32{0.25, 1, 2, 1024} {
		assert.Equal(t, f, FloatFromHalf(HalfFromFloat(f)), "exact halves survive the trip: %v", f)
	}
}

func TestHalfBytesToRGBARoundTrip(t *testing.T) {
	src := []byte{0, 255, 51, 128, 10, 20, 200, 255}
	half := make([]byte, len(src)*2)
	require.NoError(t, RGBAToHalfBytes(half, src, 2, 1))

	got := make([]byte, len(src))
	require.NoError(t, HalfBytesToRGBA(got, half, 2, 1))
	for i := range src {
		assert.InDelta(t, src[i], got[i], 1, "channel %d", i)
	}
}

func TestFloatBytesToRGBAClamps(t *testing.T) {
	vals := []float32{-1, 0.2, 1, 7}
	src := make([]byte, 16)
	for i, v := range vals {
		binary.NativeEndian.PutUint32(src[i*4:], math.Float32bits(v))
	}

	dst := make([]byte, 4)
	require.NoError(t, FloatBytesToRGBA(dst, src, 1, 1))
	assert.Equal(t, []byte{0, 51, 255, 255}, dst)
}

func TestPreviewSizeMismatch(t *testing.T) {
	assert.ErrorIs(t, HalfBytesToRGBA(make([]byte, 4), make([]byte, 4), 1, 1), ErrBufferSize)
	assert.ErrorIs(t, FloatBytesToRGBA(make([]byte, 4), make([]byte, 8), 1, 1), ErrBufferSize)
}
