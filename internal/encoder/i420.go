package encoder

import (
	"fmt"

	"github.com/junsooki/renderlink/internal/colorconv"
	"github.com/junsooki/renderlink/internal/pixel"
)

// I420Encoder converts 8-bit frames to planar YUV 4:2:0. It ignores quality.
type I420Encoder struct{}

func NewI420Encoder() *I420Encoder {
	return &I420Encoder{}
}

func (*I420Encoder) SetQuality(int) {}

func (*I420Encoder) Encode(width, height int, format pixel.Format, raw []byte) ([]byte, error) {
	if format != pixel.U8 {
		return nil, fmt.Errorf("%w: i420 carries %s only, got %s", pixel.ErrUnsupportedFormat, pixel.U8, format)
	}
	if err := checkFrame(width, height, format, raw); err != nil {
		return nil, err
	}
	out := make([]byte, colorconv.I420Size(width, height))
	if err := colorconv.RGBAToI420(out, raw, width, height); err != nil {
		return nil, err
	}
	return out, nil
}
