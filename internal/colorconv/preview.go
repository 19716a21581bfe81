package colorconv

import (
	"encoding/binary"
	"fmt"
	"math"
)

// FloatFromHalf inverts HalfFromFloat for the non-negative normal range it
// produces. Zero maps to zero.
func FloatFromHalf(h uint16) float32 {
	h &= 0x7FFF
	if h == 0 {
		return 0
	}
	return math.Float32frombits(uint32(h)<<13 + 0x38000000)
}

func byteFromUnit(f float32) byte {
	switch {
	case !(f > 0):
		return 0
	case f >= 1:
		return 255
	}
	return byte(f*255 + 0.5)
}

// HalfBytesToRGBA converts a U16Half frame to RGBA8, clamping to [0, 1].
func HalfBytesToRGBA(dst, src []byte, width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	n := width * height * 4
	if len(dst) != n || len(src) != n*2 {
		return fmt.Errorf("%w: rgba=%d half=%d for %dx%d", ErrBufferSize, len(dst), len(src), width, height)
	}

	row := width * 4
	forRows(height, func(y0, y1 int) {
		for i := y0 * row; i < y1*row; i++ {
			dst[i] = byteFromUnit(FloatFromHalf(binary.NativeEndian.Uint16(src[i*2:])))
		}
	})
	return nil
}

// FloatBytesToRGBA converts an F32 frame to RGBA8, clamping to [0, 1].
func FloatBytesToRGBA(dst, src []byte, width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	n := width * height * 4
	if len(dst) != n || len(src) != n*4 {
		return fmt.Errorf("%w: rgba=%d float=%d for %dx%d", ErrBufferSize, len(dst), len(src), width, height)
	}

	row := width * 4
	forRows(height, func(y0, y1 int) {
		for i := y0 * row; i < y1*row; i++ {
			dst[i] = byteFromUnit(math.Float32frombits(binary.NativeEndian.Uint32(src[i*4:])))
		}
	})
	return nil
}
