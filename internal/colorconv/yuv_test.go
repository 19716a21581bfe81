package colorconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, r, g, b byte) []byte {
	img := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		img[i*4+0] = r
		img[i*4+1] = g
		img[i*4+2] = b
		img[i*4+3] = 255
	}
	return img
}

func TestRGBAToI420PureRed(t *testing.T) {
	const w, h = 4, 4
	dst := make([]byte, I420Size(w, h))
	require.NoError(t, RGBAToI420(dst, solid(w, h, 255, 0, 0), w, h))

	plane := w * h
	for i := 0; i < plane; i++ {
		require.Equal(t, byte(81), dst[i], "Y[%d]", i)
	}
	for i := 0; i < plane/4; i++ {
		require.Equal(t, byte(90), dst[plane+i], "U[%d]", i)
		require.Equal(t, byte(239), dst[plane+plane/4+i], "V[%d]", i)
	}
}

func TestI420RoundTripGray(t *testing.T) {
	const w, h = 64, 48
	src := solid(w, h, 128, 128, 128)
	yuv := make([]byte, I420Size(w, h))
	require.NoError(t, RGBAToI420(yuv, src, w, h))

	out := make([]byte, len(src))
	require.NoError(t, I420ToRGBA(out, yuv, w, h))
	assert.Equal(t, src, out)
}

func TestI420ToRGBAKeepsByteWrap(t *testing.T) {
	const w, h = 2, 2
	yuv := make([]byte, I420Size(w, h))
	require.NoError(t, RGBAToI420(yuv, solid(w, h, 255, 0, 0), w, h))

	out := make([]byte, w*h*4)
	require.NoError(t, I420ToRGBA(out, yuv, w, h))
	for i := 0; i < w*h; i++ {
		assert.Equal(t, []byte{253, 156, 3, 255}, out[i*4:i*4+4])
	}
}

func TestI420SubsamplesEvenPixels(t *testing.T) {
	const w, h = 2, 2
	src := solid(w, h, 0, 0, 0)
	// only pixel (0,0) feeds chroma
	copy(src[0:4], []byte{0, 0, 255, 255})
	copy(src[4:8], []byte{255, 0, 0, 255})

	yuv := make([]byte, I420Size(w, h))
	require.NoError(t, RGBAToI420(yuv, src, w, h))
	assert.Equal(t, byte(((112*255)>>8)+128), yuv[4])
	assert.Equal(t, byte(((-18*255)>>8)+128), yuv[5])
}

func TestI420Validation(t *testing.T) {
	assert.ErrorIs(t, RGBAToI420(make([]byte, 6), make([]byte, 12), 3, 1), ErrOddDimensions)
	assert.ErrorIs(t, RGBAToI420(make([]byte, 6), make([]byte, 16), 2, 2), ErrBufferSize)
	assert.ErrorIs(t, I420ToRGBA(make([]byte, 16), make([]byte, 6), 0, 2), ErrInvalidDimensions)
}

func TestForRowsCoversEveryRowOnce(t *testing.T) {
	for _, h := range []int{0, 1, 15, 16, 17, 1000} {
		seen := make([]int, h)
		forRows(h, func(y0, y1 int) {
			for y := y0; y < y1; y++ {
				seen[y]++
			}
		})
		for y, n := range seen {
			require.Equal(t, 1, n, "height %d row %d", h, y)
		}
	}
}
