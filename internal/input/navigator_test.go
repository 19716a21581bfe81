package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeftDragPans(t *testing.T) {
	n := NewNavigator()
	cam := DefaultCamera()

	assert.Equal(t, ActionNone, n.Apply(Event{Type: EventMouseMove, X: 0.5, Y: 0.5}, &cam))
	assert.Equal(t, ActionNone, n.Apply(Event{Type: EventMouseDown, X: 0.5, Y: 0.5, Button: MouseButtonLeft}, &cam))
	assert.Equal(t, ActionCameraChanged, n.Apply(Event{Type: EventMouseMove, X: 0.75, Y: 0.25}, &cam))

	assert.InDelta(t, -1.0, cam.Matrix[tx], 1e-6)
	assert.InDelta(t, -1.0, cam.Matrix[ty], 1e-6)

	n.Apply(Event{Type: EventMouseUp, Button: MouseButtonLeft}, &cam)
	assert.Equal(t, ActionNone, n.Apply(Event{Type: EventMouseMove, X: 0.1, Y: 0.1}, &cam))
}

func TestRightDragChangesLens(t *testing.T) {
	n := NewNavigator()
	cam := DefaultCamera()

	n.Apply(Event{Type: EventMouseDown, X: 0, Y: 0.5, Button: MouseButtonRight}, &cam)
	assert.Equal(t, ActionCameraChanged, n.Apply(Event{Type: EventMouseMove, X: 0, Y: 0.25}, &cam))
	assert.InDelta(t, 60.0, cam.Lens, 1e-4)

	n.Apply(Event{Type: EventMouseMove, X: 0, Y: 10}, &cam)
	assert.Equal(t, float32(minLens), cam.Lens)
}

func TestScrollDollies(t *testing.T) {
	n := NewNavigator()
	cam := DefaultCamera()

	assert.Equal(t, ActionCameraChanged, n.Apply(Event{Type: EventMouseScroll, ScrollDY: 2}, &cam))
	assert.InDelta(t, 4.0, cam.Matrix[tz], 1e-6)
	assert.Equal(t, ActionNone, n.Apply(Event{Type: EventMouseScroll}, &cam))
}

func TestKeys(t *testing.T) {
	n := NewNavigator()
	cam := DefaultCamera()

	assert.Equal(t, ActionCameraChanged, n.Apply(Event{Type: EventKeyDown, Key: KeyRight}, &cam))
	assert.InDelta(t, 0.2, cam.Matrix[tx], 1e-6)

	assert.Equal(t, ActionCameraChanged, n.Apply(Event{Type: EventKeyDown, Key: KeyPerspective}, &cam))
	assert.Equal(t, int32(0), cam.Perspective)

	before := cam
	assert.Equal(t, ActionReset, n.Apply(Event{Type: EventKeyDown, Key: KeyReset}, &cam))
	assert.Equal(t, before, cam)

	assert.Equal(t, ActionNone, n.Apply(Event{Type: EventKeyUp, Key: KeyLeft}, &cam))
}
