package decoder

import (
	"fmt"

	"github.com/junsooki/renderlink/internal/colorconv"
	"github.com/junsooki/renderlink/internal/pixel"
)

// I420Decoder converts planar YUV 4:2:0 back to 8-bit RGBA.
type I420Decoder struct{}

func NewI420Decoder() *I420Decoder {
	return &I420Decoder{}
}

func (*I420Decoder) Decode(data []byte, width, height int, format pixel.Format, dst []byte) error {
	if format != pixel.U8 {
		return fmt.Errorf("%w: i420 carries %s only, got %s", pixel.ErrUnsupportedFormat, pixel.U8, format)
	}
	if err := checkDst(width, height, format, dst); err != nil {
		return err
	}
	return colorconv.I420ToRGBA(dst, data, width, height)
}
