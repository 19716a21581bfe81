package decoder

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	"github.com/junsooki/renderlink/internal/pixel"
)

// JPEGDecoder decodes JPEG bytes into an 8-bit RGBA frame with opaque alpha.
type JPEGDecoder struct{}

func NewJPEGDecoder() *JPEGDecoder {
	return &JPEGDecoder{}
}

func (d *JPEGDecoder) Decode(data []byte, width, height int, format pixel.Format, dst []byte) error {
	if format != pixel.U8 {
		return fmt.Errorf("%w: jpeg carries %s only, got %s", pixel.ErrUnsupportedFormat, pixel.U8, format)
	}
	if err := checkDst(width, height, format, dst); err != nil {
		return err
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	b := img.Bounds()
	if b.Dx() != width || b.Dy() != height {
		return fmt.Errorf("decoder: jpeg is %dx%d, want %dx%d", b.Dx(), b.Dy(), width, height)
	}
	rgba := &image.RGBA{
		Pix:    dst,
		Stride: width * pixel.Channels,
		Rect:   image.Rect(0, 0, width, height),
	}
	draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	return nil
}
