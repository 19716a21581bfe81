package encoder

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/junsooki/renderlink/internal/pixel"
)

// JPEGEncoder encodes 8-bit frames as JPEG. Alpha is dropped.
type JPEGEncoder struct {
	quality int
}

// NewJPEGEncoder creates a JPEG encoder with the given quality (1-100).
func NewJPEGEncoder(quality int) *JPEGEncoder {
	return &JPEGEncoder{quality: clampQuality(quality)}
}

func (e *JPEGEncoder) SetQuality(quality int) {
	e.quality = clampQuality(quality)
}

func (e *JPEGEncoder) Encode(width, height int, format pixel.Format, raw []byte) ([]byte, error) {
	if format != pixel.U8 {
		return nil, fmt.Errorf("%w: jpeg carries %s only, got %s", pixel.ErrUnsupportedFormat, pixel.U8, format)
	}
	if err := checkFrame(width, height, format, raw); err != nil {
		return nil, err
	}
	img := &image.RGBA{
		Pix:    raw,
		Stride: width * pixel.Channels,
		Rect:   image.Rect(0, 0, width, height),
	}

	var buf bytes.Buffer
	buf.Grow(256 * 1024)
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
