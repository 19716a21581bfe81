package render

import (
	"fmt"

	"github.com/junsooki/renderlink/internal/colorconv"
	"github.com/junsooki/renderlink/internal/pixel"
	"github.com/junsooki/renderlink/internal/state"
)

// TestPattern renders a gradient that follows the camera translation, with
// a blue level that grows with the accumulated sample count.
type TestPattern struct {
	samples int32
	scratch []byte
}

func NewTestPattern() *TestPattern {
	return &TestPattern{}
}

func (p *TestPattern) Reset() {
	p.samples = 0
}

// Samples is the number of frames accumulated since the last reset or
// camera change.
func (p *TestPattern) Samples() int32 {
	return p.samples
}

func (p *TestPattern) Render(ctl state.ControlState, format pixel.Format, dst []byte) (state.SharedState, error) {
	w, h := int(ctl.Width), int(ctl.Height)
	if w <= 0 || h <= 0 {
		return state.SharedState{}, fmt.Errorf("render: invalid frame %dx%d", w, h)
	}
	if want := format.FrameSize(w, h); len(dst) != want {
		return state.SharedState{}, fmt.Errorf("render: destination is %d bytes, want %d", len(dst), want)
	}

	p.samples++

	rgba := dst
	if format != pixel.U8 {
		if cap(p.scratch) < w*h*pixel.Channels {
			p.scratch = make([]byte, w*h*pixel.Channels)
		}
		rgba = p.scratch[:w*h*pixel.Channels]
	}
	p.draw(rgba, w, h, ctl.Camera)

	var err error
	switch format {
	case pixel.U16Half:
		err = colorconv.RGBAToHalfBytes(dst, rgba, w, h)
	case pixel.F32:
		err = colorconv.RGBAToFloatBytes(dst, rgba, w, h)
	}
	if err != nil {
		return state.SharedState{}, err
	}

	cam := ctl.Camera
	return state.SharedState{
		BoundsLower: [3]float32{cam.Matrix[3] - 1, cam.Matrix[7] - 1, cam.Matrix[11] - 1},
		BoundsUpper: [3]float32{cam.Matrix[3] + 1, cam.Matrix[7] + 1, cam.Matrix[11] + 1},
		ValueRange:  [2]float32{0, 1},
		Samples:     p.samples,
	}, nil
}

func (p *TestPattern) draw(dst []byte, w, h int, cam state.Camera) {
	ox := int(cam.Matrix[3] * float32(w) / 4)
	oy := int(cam.Matrix[7] * float32(h) / 4)
	blue := byte(min(p.samples*8, 255))
	for y := 0; y < h; y++ {
		green := byte(wrap(y+oy, h) * 255 / max(h-1, 1))
		for x := 0; x < w; x++ {
			i := (y*w + x) * pixel.Channels
			dst[i+0] = byte(wrap(x+ox, w) * 255 / max(w-1, 1))
			dst[i+1] = green
			dst[i+2] = blue
			dst[i+3] = 255
		}
	}
}

func wrap(v, n int) int {
	return ((v % n) + n) % n
}
