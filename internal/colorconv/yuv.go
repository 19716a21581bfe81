package colorconv

import (
	"errors"
	"fmt"
)

var (
	ErrBufferSize        = errors.New("colorconv: buffer size mismatch")
	ErrOddDimensions     = errors.New("colorconv: i420 needs even width and height")
	ErrInvalidDimensions = errors.New("colorconv: invalid dimensions")
)

// I420Size is the byte size of a planar YUV 4:2:0 image: a full Y plane
// followed by quarter-size U and V planes.
func I420Size(width, height int) int {
	return width*height + 2*(width*height/4)
}

func checkI420(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width%2 != 0 || height%2 != 0 {
		return fmt.Errorf("%w: %dx%d", ErrOddDimensions, width, height)
	}
	return nil
}

// RGBAToI420 converts an RGBA8 image into [Y][U][V] planes. Chroma is taken
// from the pixel at each even (x, y), not averaged.
func RGBAToI420(dst, src []byte, width, height int) error {
	if err := checkI420(width, height); err != nil {
		return err
	}
	if len(src) != width*height*4 || len(dst) != I420Size(width, height) {
		return fmt.Errorf("%w: rgba=%d i420=%d for %dx%d", ErrBufferSize, len(src), len(dst), width, height)
	}

	plane := width * height
	dstY := dst[:plane]
	dstU := dst[plane : plane+plane/4]
	dstV := dst[plane+plane/4:]
	halfW := width / 2

	forRows(height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < width; x++ {
				i := x + y*width
				r := int(src[i*4+0])
				g := int(src[i*4+1])
				b := int(src[i*4+2])

				dstY[i] = byte(((66*r + 129*g + 25*b) >> 8) + 16)

				if x%2 == 0 && y%2 == 0 {
					c := x/2 + (y/2)*halfW
					dstU[c] = byte(((-38*r - 74*g + 112*b) >> 8) + 128)
					dstV[c] = byte(((112*r - 94*g - 18*b) >> 8) + 128)
				}
			}
		}
	})
	return nil
}

// I420ToRGBA converts planar YUV 4:2:0 back to RGBA8 with alpha 255.
//
// C, D and E are computed in 8-bit unsigned arithmetic, so values below the
// offsets wrap instead of clamping, and the final stores truncate to 8 bits.
func I420ToRGBA(dst, src []byte, width, height int) error {
	if err := checkI420(width, height); err != nil {
		return err
	}
	if len(src) != I420Size(width, height) || len(dst) != width*height*4 {
		return fmt.Errorf("%w: i420=%d rgba=%d for %dx%d", ErrBufferSize, len(src), len(dst), width, height)
	}

	plane := width * height
	srcY := src[:plane]
	srcU := src[plane : plane+plane/4]
	srcV := src[plane+plane/4:]
	halfW := width / 2

	forRows(height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < width; x++ {
				i := x + y*width
				c := x/2 + (y/2)*halfW

				C := int(srcY[i] - 16)
				D := int(srcU[c] - 128)
				E := int(srcV[c] - 128)

				dst[i*4+0] = byte((298*C + 409*E) >> 8)
				dst[i*4+1] = byte((298*C - 100*D - 208*E) >> 8)
				dst[i*4+2] = byte((298*C + 516*D) >> 8)
				dst[i*4+3] = 255
			}
		}
	})
	return nil
}
