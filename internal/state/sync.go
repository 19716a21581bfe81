// Package state defines the fixed-layout control and shared-state messages
// and keeps the last copy of each on either side of a session.
package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/junsooki/renderlink/internal/transport"
)

// MaxRenderDataSize bounds the render-settings blob accepted from a peer.
const MaxRenderDataSize = 64 << 20

var ErrRenderDataSize = errors.New("state: render data size out of range")

// Conn is the data channel the synchronizer talks over.
type Conn interface {
	transport.Sender
	transport.Receiver
}

// Synchronizer holds the current ControlState and SharedState and moves them
// over a data channel. It is not safe for concurrent use.
type Synchronizer struct {
	conn Conn
	ack  bool

	control ControlState
	shared  SharedState
	held    [ControlSize]byte
	scratch [ControlSize]byte
}

type Option func(*Synchronizer)

// WithAck makes every transfer acknowledged. Both peers must agree.
func WithAck(ack bool) Option {
	return func(s *Synchronizer) {
		s.ack = ack
	}
}

func NewSynchronizer(conn Conn, opts ...Option) *Synchronizer {
	s := &Synchronizer{conn: conn}
	for _, opt := range opts {
		opt(s)
	}
	s.encodeHeld()
	return s
}

func (s *Synchronizer) Control() ControlState {
	return s.control
}

func (s *Synchronizer) SetControl(c ControlState) {
	s.control = c
	s.encodeHeld()
}

// UpdateControl edits the held state in place.
func (s *Synchronizer) UpdateControl(fn func(*ControlState)) {
	fn(&s.control)
	s.encodeHeld()
}

func (s *Synchronizer) Shared() SharedState {
	return s.shared
}

func (s *Synchronizer) SetShared(v SharedState) {
	s.shared = v
}

// SendControl sends the held ControlState.
func (s *Synchronizer) SendControl() error {
	return s.conn.Send(s.held[:], s.ack)
}

// ReceiveControl replaces the held ControlState with the next one from the
// peer and reports whether any byte differed. On error the held state is
// left unchanged.
func (s *Synchronizer) ReceiveControl() (bool, error) {
	if err := s.conn.Receive(s.scratch[:], s.ack); err != nil {
		return false, err
	}
	changed := !bytes.Equal(s.held[:], s.scratch[:])
	if err := s.control.UnmarshalBinary(s.scratch[:]); err != nil {
		return false, err
	}
	s.held = s.scratch
	return changed, nil
}

// Reset asks the server to restart accumulation. The message is a zero
// ControlState with Reset set; the held state is not touched.
func (s *Synchronizer) Reset() error {
	raw, err := ControlState{Reset: 1}.MarshalBinary()
	if err != nil {
		return err
	}
	return s.conn.Send(raw, s.ack)
}

func (s *Synchronizer) SendShared() error {
	raw, err := s.shared.MarshalBinary()
	if err != nil {
		return err
	}
	return s.conn.Send(raw, s.ack)
}

func (s *Synchronizer) ReceiveShared() error {
	var raw [SharedSize]byte
	if err := s.conn.Receive(raw[:], s.ack); err != nil {
		return err
	}
	return s.shared.UnmarshalBinary(raw[:])
}

// SendRenderData sends an opaque render-settings blob behind an int32 length.
// An empty blob sends the length only.
func (s *Synchronizer) SendRenderData(blob []byte) error {
	if len(blob) > MaxRenderDataSize {
		return fmt.Errorf("%w: %d bytes", ErrRenderDataSize, len(blob))
	}
	var size [4]byte
	binary.NativeEndian.PutUint32(size[:], uint32(len(blob)))
	if err := s.conn.Send(size[:], s.ack); err != nil {
		return err
	}
	if len(blob) == 0 {
		return nil
	}
	return s.conn.Send(blob, s.ack)
}

// ReceiveRenderData reads a blob sent by SendRenderData. An empty blob is
// the length only, so nothing more is read or acknowledged.
func (s *Synchronizer) ReceiveRenderData() ([]byte, error) {
	var size [4]byte
	if err := s.conn.Receive(size[:], s.ack); err != nil {
		return nil, err
	}
	n := int32(binary.NativeEndian.Uint32(size[:]))
	if n < 0 || n > MaxRenderDataSize {
		return nil, fmt.Errorf("%w: peer announced %d bytes", ErrRenderDataSize, n)
	}
	blob := make([]byte, n)
	if n == 0 {
		return blob, nil
	}
	if err := s.conn.Receive(blob, s.ack); err != nil {
		return nil, err
	}
	return blob, nil
}

func (s *Synchronizer) encodeHeld() {
	// binary.Encode cannot fail for a fixed-size struct and a buffer of its size.
	_, _ = binary.Encode(s.held[:], binary.NativeEndian, s.control)
}
