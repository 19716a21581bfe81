// Package input maps viewer input onto the camera the client sends to the
// server.
package input

// EventType identifies the kind of input event.
type EventType string

const (
	EventMouseMove   EventType = "mouse_move"
	EventMouseDown   EventType = "mouse_down"
	EventMouseUp     EventType = "mouse_up"
	EventMouseScroll EventType = "mouse_scroll"
	EventKeyDown     EventType = "key_down"
	EventKeyUp       EventType = "key_up"
)

// MouseButton identifies a mouse button.
type MouseButton int

const (
	MouseButtonLeft   MouseButton = 0
	MouseButtonRight  MouseButton = 1
	MouseButtonMiddle MouseButton = 2
)

// Key is a navigation key, independent of the windowing toolkit.
type Key int

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyZoomIn
	KeyZoomOut
	KeyPerspective
	KeyReset
)

// Event is one viewer input. X and Y are frame coordinates normalized to
// [0, 1]; values outside mean the cursor left the frame.
type Event struct {
	Type     EventType
	X        float64
	Y        float64
	Button   MouseButton
	Key      Key
	ScrollDY float64
}
