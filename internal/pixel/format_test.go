package pixel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBits(t *testing.T) {
	for bits, want := range map[int]Format{8: U8, 16: U16Half, 32: F32} {
		got, err := FromBits(bits)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, bits, got.Bits())
	}

	f, err := FromBits(12)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	assert.Equal(t, U8, f)
}

func TestFrameSize(t *testing.T) {
	assert.Equal(t, 640*480*4, U8.FrameSize(640, 480))
	assert.Equal(t, 640*480*8, U16Half.FrameSize(640, 480))
	assert.Equal(t, 640*480*16, F32.FrameSize(640, 480))
	assert.Equal(t, 0, F32.FrameSize(0, 10))
}
