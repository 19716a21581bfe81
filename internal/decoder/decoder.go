// Package decoder restores raw RGBA frames from their wire encoding.
package decoder

import (
	"fmt"

	"github.com/junsooki/renderlink/internal/pixel"
)

// Decoder decodes data into dst, which holds exactly one width x height
// frame in the given format.
type Decoder interface {
	Decode(data []byte, width, height int, format pixel.Format, dst []byte) error
}

// New creates the decoder registered under name ("jpeg", "zstd", "i420").
func New(name string) (Decoder, error) {
	switch name {
	case "jpeg":
		return NewJPEGDecoder(), nil
	case "zstd":
		return NewZstdDecoder()
	case "i420":
		return NewI420Decoder(), nil
	default:
		return nil, fmt.Errorf("decoder: unknown codec %q", name)
	}
}

func checkDst(width, height int, format pixel.Format, dst []byte) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("decoder: invalid frame %dx%d", width, height)
	}
	if want := format.FrameSize(width, height); len(dst) != want {
		return fmt.Errorf("decoder: destination is %d bytes, want %d", len(dst), want)
	}
	return nil
}
