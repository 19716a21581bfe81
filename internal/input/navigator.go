package input

import "github.com/junsooki/renderlink/internal/state"

// Action is what an event asks the client to do.
type Action int

const (
	ActionNone Action = iota
	ActionCameraChanged
	ActionReset
)

const (
	DefaultPanSpeed  = 4.0
	DefaultZoomSpeed = 0.5
	DefaultLensSpeed = 40.0
	keyStep          = 0.05

	minLens = 1.0
)

// Matrix entries holding the camera translation in a 3x4 row-major matrix.
const (
	tx = 3
	ty = 7
	tz = 11
)

// Navigator turns viewer events into camera edits. Left drag pans, right
// drag changes the lens, the wheel dollies, arrow keys pan in steps.
type Navigator struct {
	PanSpeed  float32
	ZoomSpeed float32
	LensSpeed float32

	pressed [3]bool
	lastX   float64
	lastY   float64
}

func NewNavigator() *Navigator {
	return &Navigator{
		PanSpeed:  DefaultPanSpeed,
		ZoomSpeed: DefaultZoomSpeed,
		LensSpeed: DefaultLensSpeed,
	}
}

// Apply updates cam for ev and reports the resulting action.
func (n *Navigator) Apply(ev Event, cam *state.Camera) Action {
	switch ev.Type {
	case EventMouseDown:
		if ev.Button >= 0 && int(ev.Button) < len(n.pressed) {
			n.pressed[ev.Button] = true
		}
		n.lastX, n.lastY = ev.X, ev.Y
		return ActionNone

	case EventMouseUp:
		if ev.Button >= 0 && int(ev.Button) < len(n.pressed) {
			n.pressed[ev.Button] = false
		}
		return ActionNone

	case EventMouseMove:
		dx := float32(ev.X - n.lastX)
		dy := float32(ev.Y - n.lastY)
		n.lastX, n.lastY = ev.X, ev.Y
		if dx == 0 && dy == 0 {
			return ActionNone
		}
		switch {
		case n.pressed[MouseButtonLeft]:
			cam.Matrix[tx] -= dx * n.PanSpeed
			cam.Matrix[ty] += dy * n.PanSpeed
			return ActionCameraChanged
		case n.pressed[MouseButtonRight]:
			cam.Lens = max(cam.Lens-dy*n.LensSpeed, minLens)
			return ActionCameraChanged
		}
		return ActionNone

	case EventMouseScroll:
		if ev.ScrollDY == 0 {
			return ActionNone
		}
		cam.Matrix[tz] -= float32(ev.ScrollDY) * n.ZoomSpeed
		return ActionCameraChanged

	case EventKeyDown:
		return n.key(ev.Key, cam)
	}
	return ActionNone
}

func (n *Navigator) key(k Key, cam *state.Camera) Action {
	step := keyStep * n.PanSpeed
	switch k {
	case KeyLeft:
		cam.Matrix[tx] -= step
	case KeyRight:
		cam.Matrix[tx] += step
	case KeyUp:
		cam.Matrix[ty] += step
	case KeyDown:
		cam.Matrix[ty] -= step
	case KeyZoomIn:
		cam.Matrix[tz] -= n.ZoomSpeed
	case KeyZoomOut:
		cam.Matrix[tz] += n.ZoomSpeed
	case KeyPerspective:
		if cam.Perspective != 0 {
			cam.Perspective = 0
		} else {
			cam.Perspective = 1
		}
	case KeyReset:
		return ActionReset
	default:
		return ActionNone
	}
	return ActionCameraChanged
}

// DefaultCamera is an identity view five units back from the origin with a
// 50mm lens on a 36x24 sensor.
func DefaultCamera() state.Camera {
	return state.Camera{
		Matrix: [12]float32{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 5,
		},
		Lens:         50,
		ClipStart:    0.1,
		ClipEnd:      1000,
		SensorWidth:  36,
		SensorHeight: 24,
		Zoom:         1,
		Perspective:  1,
	}
}
