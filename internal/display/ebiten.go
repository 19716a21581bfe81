package display

import (
	"image"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/junsooki/renderlink/internal/input"
)

var _ Display = (*EbitenDisplay)(nil)

// EbitenDisplay shows 8-bit RGBA frames using Ebitengine and captures input.
type EbitenDisplay struct {
	mu          sync.Mutex
	frame       *image.RGBA
	dirty       bool
	ebitenImage *ebiten.Image
	onInput     InputCallback
	title       string
	closed      bool

	prevMouseX int
	prevMouseY int
}

// NewEbitenDisplay creates an Ebitengine-based display.
func NewEbitenDisplay(title string, onInput InputCallback) *EbitenDisplay {
	return &EbitenDisplay{
		onInput: onInput,
		title:   title,
	}
}

// SetFrame copies an 8-bit RGBA frame for display (called from the network goroutine).
func (d *EbitenDisplay) SetFrame(width, height int, rgba []byte) {
	if width <= 0 || height <= 0 || len(rgba) < width*height*4 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.frame == nil || d.frame.Rect.Dx() != width || d.frame.Rect.Dy() != height {
		d.frame = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	copy(d.frame.Pix, rgba)
	d.dirty = true
}

// Close ends Run on the next window update. Safe from any goroutine.
func (d *EbitenDisplay) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

// Run starts the Ebitengine game loop. Must be called from the main goroutine.
func (d *EbitenDisplay) Run() error {
	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowTitle(d.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(d)
}

// --- ebiten.Game interface ---

func (d *EbitenDisplay) Update() error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return ebiten.Termination
	}
	d.captureMouseInput()
	d.captureKeyboardInput()
	return nil
}

func (d *EbitenDisplay) Draw(screen *ebiten.Image) {
	d.mu.Lock()
	frame := d.frame
	if frame != nil {
		fw, fh := frame.Rect.Dx(), frame.Rect.Dy()
		if d.ebitenImage == nil || d.ebitenImage.Bounds().Dx() != fw || d.ebitenImage.Bounds().Dy() != fh {
			d.ebitenImage = ebiten.NewImage(fw, fh)
			d.dirty = true
		}
		if d.dirty {
			d.ebitenImage.WritePixels(frame.Pix)
			d.dirty = false
		}
	}
	d.mu.Unlock()

	if frame == nil {
		return
	}

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	fw, fh := float64(frame.Rect.Dx()), float64(frame.Rect.Dy())
	scale, offsetX, offsetY := aspectFitTransform(float64(sw), float64(sh), fw, fh)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	screen.DrawImage(d.ebitenImage, op)
}

func (d *EbitenDisplay) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// --- Input capture ---

func (d *EbitenDisplay) captureMouseInput() {
	mx, my := ebiten.CursorPosition()

	sw, sh := ebiten.WindowSize()
	d.mu.Lock()
	frame := d.frame
	d.mu.Unlock()
	if frame == nil {
		return
	}

	fw := float64(frame.Rect.Dx())
	fh := float64(frame.Rect.Dy())
	scale, offsetX, offsetY := aspectFitTransform(float64(sw), float64(sh), fw, fh)
	x := (float64(mx) - offsetX) / scale / fw
	y := (float64(my) - offsetY) / scale / fh

	if mx != d.prevMouseX || my != d.prevMouseY {
		d.prevMouseX = mx
		d.prevMouseY = my
		d.emit(input.Event{Type: input.EventMouseMove, X: x, Y: y})
	}

	buttons := []struct {
		eb  ebiten.MouseButton
		btn input.MouseButton
	}{
		{ebiten.MouseButtonLeft, input.MouseButtonLeft},
		{ebiten.MouseButtonRight, input.MouseButtonRight},
		{ebiten.MouseButtonMiddle, input.MouseButtonMiddle},
	}
	for _, b := range buttons {
		if inpututil.IsMouseButtonJustPressed(b.eb) {
			d.emit(input.Event{Type: input.EventMouseDown, X: x, Y: y, Button: b.btn})
		}
		if inpututil.IsMouseButtonJustReleased(b.eb) {
			d.emit(input.Event{Type: input.EventMouseUp, X: x, Y: y, Button: b.btn})
		}
	}

	if _, scrollY := ebiten.Wheel(); scrollY != 0 {
		d.emit(input.Event{Type: input.EventMouseScroll, ScrollDY: scrollY})
	}
}

var navigationKeys = map[ebiten.Key]input.Key{
	ebiten.KeyArrowLeft:  input.KeyLeft,
	ebiten.KeyArrowRight: input.KeyRight,
	ebiten.KeyArrowUp:    input.KeyUp,
	ebiten.KeyArrowDown:  input.KeyDown,
	ebiten.KeyEqual:      input.KeyZoomIn,
	ebiten.KeyMinus:      input.KeyZoomOut,
	ebiten.KeyP:          input.KeyPerspective,
	ebiten.KeyR:          input.KeyReset,
}

func (d *EbitenDisplay) captureKeyboardInput() {
	for k, key := range navigationKeys {
		if inpututil.IsKeyJustPressed(k) {
			d.emit(input.Event{Type: input.EventKeyDown, Key: key})
		}
		if inpututil.IsKeyJustReleased(k) {
			d.emit(input.Event{Type: input.EventKeyUp, Key: key})
		}
	}
}

func (d *EbitenDisplay) emit(e input.Event) {
	if d.onInput != nil {
		d.onInput(e)
	}
}

// aspectFitTransform returns scale and offsets to fit frame into view with letterboxing.
func aspectFitTransform(viewW, viewH, frameW, frameH float64) (scale, offsetX, offsetY float64) {
	scale = math.Min(viewW/frameW, viewH/frameH)
	offsetX = (viewW - frameW*scale) / 2
	offsetY = (viewH - frameH*scale) / 2
	return
}
