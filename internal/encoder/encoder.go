// Package encoder compresses raw RGBA frames for the wire.
package encoder

import (
	"fmt"

	"github.com/junsooki/renderlink/internal/pixel"
)

// Encoder compresses one width x height frame in the given format.
type Encoder interface {
	Encode(width, height int, format pixel.Format, raw []byte) ([]byte, error)
	SetQuality(quality int)
}

// New creates the encoder registered under name ("jpeg", "zstd", "i420").
func New(name string, quality int) (Encoder, error) {
	switch name {
	case "jpeg":
		return NewJPEGEncoder(quality), nil
	case "zstd":
		return NewZstdEncoder(quality)
	case "i420":
		return NewI420Encoder(), nil
	default:
		return nil, fmt.Errorf("encoder: unknown codec %q", name)
	}
}

func clampQuality(quality int) int {
	return min(max(quality, 1), 100)
}

func checkFrame(width, height int, format pixel.Format, raw []byte) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("encoder: invalid frame %dx%d", width, height)
	}
	if want := format.FrameSize(width, height); len(raw) != want {
		return fmt.Errorf("encoder: frame is %d bytes, want %d", len(raw), want)
	}
	return nil
}
