// Package pixel describes the frame pixel layouts carried on the wire.
// Every layout has four channels (RGBA); only the channel width varies.
package pixel

import (
	"errors"
	"fmt"
)

// Channels is the fixed channel count of every frame.
const Channels = 4

var ErrUnsupportedFormat = errors.New("pixel: unsupported format")

// Format selects the per-channel storage type.
type Format int

const (
	U8 Format = iota
	U16Half
	F32
)

// FromBits maps a channel bit depth (8, 16, 32) to a Format.
func FromBits(bits int) (Format, error) {
	switch bits {
	case 8:
		return U8, nil
	case 16:
		return U16Half, nil
	case 32:
		return F32, nil
	default:
		return U8, fmt.Errorf("%w: %d bits", ErrUnsupportedFormat, bits)
	}
}

// BytesPerChannel is 1, 2 or 4.
func (f Format) BytesPerChannel() int {
	switch f {
	case U16Half:
		return 2
	case F32:
		return 4
	default:
		return 1
	}
}

func (f Format) Bits() int {
	return f.BytesPerChannel() * 8
}

// Tag is the numeric format id handed to codecs (0 = U8, 1 = U16Half, 2 = F32).
func (f Format) Tag() int {
	return int(f)
}

// FrameSize returns the byte size of a width x height frame in this format.
func (f Format) FrameSize(width, height int) int {
	return width * height * Channels * f.BytesPerChannel()
}

func (f Format) String() string {
	switch f {
	case U8:
		return "u8"
	case U16Half:
		return "u16half"
	case F32:
		return "f32"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}
