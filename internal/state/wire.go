package state

import (
	"encoding/binary"
	"fmt"
)

const (
	// ControlSize is the wire size of ControlState.
	ControlSize = 124
	// SharedSize is the wire size of SharedState.
	SharedSize = 40
)

// Camera is the viewer camera as the renderer consumes it.
type Camera struct {
	// Matrix is the inverse view matrix, 3x4 row major.
	Matrix              [12]float32
	Lens                float32
	ClipStart           float32
	ClipEnd             float32
	SensorWidth         float32
	SensorHeight        float32
	SensorFit           int32
	ShiftX              float32
	ShiftY              float32
	InterocularDistance float32
	ConvergenceDistance float32
	Zoom                float32
	Offset              [2]float32
	UseViewCamera       int32
	Perspective         int32
}

// ControlState travels from client to server every frame.
type ControlState struct {
	Width  int32
	Height int32
	Reset  int32
	Frame  int32
	Camera Camera
}

// IsReset reports whether this is a reset message rather than a frame request.
func (c ControlState) IsReset() bool {
	return c.Reset != 0
}

func (c ControlState) MarshalBinary() ([]byte, error) {
	return binary.Append(make([]byte, 0, ControlSize), binary.NativeEndian, c)
}

func (c *ControlState) UnmarshalBinary(data []byte) error {
	if len(data) != ControlSize {
		return fmt.Errorf("state: control message is %d bytes, want %d", len(data), ControlSize)
	}
	_, err := binary.Decode(data, binary.NativeEndian, c)
	return err
}

// SharedState travels from server to client after every frame.
type SharedState struct {
	BoundsLower [3]float32
	BoundsUpper [3]float32
	ValueRange  [2]float32
	Samples     int32
	FPS         float32
}

func (s SharedState) MarshalBinary() ([]byte, error) {
	return binary.Append(make([]byte, 0, SharedSize), binary.NativeEndian, s)
}

func (s *SharedState) UnmarshalBinary(data []byte) error {
	if len(data) != SharedSize {
		return fmt.Errorf("state: shared state is %d bytes, want %d", len(data), SharedSize)
	}
	_, err := binary.Decode(data, binary.NativeEndian, s)
	return err
}
