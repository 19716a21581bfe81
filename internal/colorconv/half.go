package colorconv

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	halfMax       = 65504.0
	halfBias      = 0xC8000000
	halfThreshold = 0x38800000
	byteScale     = float32(1.0 / 255.0)
)

// HalfFromFloat converts a non-negative float32 into a half-precision bit
// pattern by rebiasing the exponent and truncating the mantissa. Inputs are
// clamped to [0, 65504] and anything below the smallest normal half
// (2^-14) becomes zero. There is no round-to-nearest step, which makes the
// output differ from IEEE conversion in the last mantissa bit for some inputs.
func HalfFromFloat(f float32) uint16 {
	switch {
	case !(f > 0):
		f = 0
	case f >= halfMax:
		f = halfMax
	}
	abs := math.Float32bits(f) & 0x7FFFFFFF
	z := abs + halfBias
	if abs < halfThreshold {
		z = 0
	}
	return uint16((z >> 13) & 0x7FFF)
}

// HalfFromByte scales an 8-bit channel to [0, 1] and converts it to half.
func HalfFromByte(b byte) uint16 {
	return HalfFromFloat(float32(b) * byteScale)
}

// RGBAToHalf converts an RGBA8 image to RGBA16 half floats, channel by channel.
func RGBAToHalf(dst []uint16, src []byte, width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	n := width * height * 4
	if len(src) != n || len(dst) != n {
		return fmt.Errorf("%w: rgba=%d half=%d for %dx%d", ErrBufferSize, len(src), len(dst), width, height)
	}

	row := width * 4
	forRows(height, func(y0, y1 int) {
		for i := y0 * row; i < y1*row; i++ {
			dst[i] = HalfFromByte(src[i])
		}
	})
	return nil
}

// RGBAToHalfBytes is RGBAToHalf writing host-order bytes, the layout a
// U16Half frame buffer stores.
func RGBAToHalfBytes(dst, src []byte, width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	n := width * height * 4
	if len(src) != n || len(dst) != n*2 {
		return fmt.Errorf("%w: rgba=%d half=%d for %dx%d", ErrBufferSize, len(src), len(dst), width, height)
	}

	row := width * 4
	forRows(height, func(y0, y1 int) {
		for i := y0 * row; i < y1*row; i++ {
			binary.NativeEndian.PutUint16(dst[i*2:], HalfFromByte(src[i]))
		}
	})
	return nil
}

// RGBAToFloatBytes converts an RGBA8 image to RGBA float32 in [0, 1],
// written as host-order bytes.
func RGBAToFloatBytes(dst, src []byte, width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	n := width * height * 4
	if len(src) != n || len(dst) != n*4 {
		return fmt.Errorf("%w: rgba=%d float=%d for %dx%d", ErrBufferSize, len(src), len(dst), width, height)
	}

	row := width * 4
	forRows(height, func(y0, y1 int) {
		for i := y0 * row; i < y1*row; i++ {
			binary.NativeEndian.PutUint32(dst[i*4:], math.Float32bits(float32(src[i])*byteScale))
		}
	})
	return nil
}
