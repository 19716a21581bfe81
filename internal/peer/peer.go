// Package peer is the API boundary of a render link. A Peer owns the session
// table, the frame buffer, the state synchronizer and an optional codec, and
// exposes the operations both ends of the link share. Server and Client add
// the per-role frame loop.
package peer

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/junsooki/renderlink/internal/codec"
	"github.com/junsooki/renderlink/internal/framebuffer"
	"github.com/junsooki/renderlink/internal/metrics"
	"github.com/junsooki/renderlink/internal/pixel"
	"github.com/junsooki/renderlink/internal/session"
	"github.com/junsooki/renderlink/internal/state"
	"github.com/junsooki/renderlink/internal/transport"
)

// ErrFrameSize is a compressed frame length outside what the frame can hold.
var ErrFrameSize = errors.New("peer: compressed frame size out of range")

// Options configure a Peer.
type Options struct {
	Endpoints session.Endpoints
	Offset    int
	PixelBits int
	// Codec is empty for raw frames.
	Codec        codec.Kind
	CodecQuality int
	Ack          bool
	Retry        transport.RetryPolicy

	// Allocator defaults to page-locked memory, Device to a HostDevice.
	Allocator framebuffer.HostAllocator
	Device    framebuffer.Device

	Metrics *metrics.Collectors
	Logger  zerolog.Logger
}

// Peer is not safe for concurrent use, except Close which may be called
// from another goroutine to unblock a pending transfer.
type Peer struct {
	role    session.Role
	table   *session.Table
	data    channelConn
	cam     channelConn
	sync    *state.Synchronizer
	frame   *framebuffer.Manager
	codec   *codec.Adapter
	ack     bool
	fps     *FPSCounter
	metrics *metrics.Collectors
	log     zerolog.Logger

	packed []byte
}

func newPeer(role session.Role, opts Options) (*Peer, error) {
	log := opts.Logger.With().Str("role", role.String()).Logger()

	retry := opts.Retry
	if retry.Attempts == 0 {
		retry = transport.DefaultRetryPolicy()
	}
	sessOpts := session.Options{
		Role:      role,
		Endpoints: opts.Endpoints,
		Dialer:    transport.NewDialer(retry, log.With().Str("component", "dialer").Logger()),
		Logger:    log,
	}
	if opts.Metrics != nil {
		sessOpts.Observer = opts.Metrics
	}
	table := session.NewTable(sessOpts)

	alloc := opts.Allocator
	if alloc == nil {
		alloc = framebuffer.NewPinnedAllocator(log)
	}

	p := &Peer{
		role:    role,
		table:   table,
		data:    channelConn{table: table, kind: transport.Data},
		cam:     channelConn{table: table, kind: transport.Cam},
		frame:   framebuffer.New(alloc, opts.Device, log),
		ack:     opts.Ack,
		fps:     NewFPSCounter(log),
		metrics: opts.Metrics,
		log:     log,
	}
	p.sync = state.NewSynchronizer(p.data, state.WithAck(opts.Ack))

	if opts.PixelBits != 0 {
		p.frame.SetFormat(opts.PixelBits)
	}
	if opts.Codec != "" {
		p.codec = codec.New(opts.Codec, log)
		if opts.CodecQuality > 0 {
			p.codec.SetQuality(opts.CodecQuality)
		}
		if !opts.Codec.Supports(p.frame.Format()) {
			return nil, fmt.Errorf("%w: %s cannot carry %s", pixel.ErrUnsupportedFormat, opts.Codec, p.frame.Format())
		}
	}
	if err := p.SetOffset(opts.Offset); err != nil {
		return nil, err
	}
	return p, nil
}

// init opens both channels of the active session and sizes the frame.
func (p *Peer) init(width, height int) error {
	s := p.table.Active()
	if s == nil {
		return ErrNoSession
	}
	if err := s.Init(); err != nil {
		return err
	}
	return p.Resize(width, height)
}

func (p *Peer) Role() session.Role {
	return p.role
}

// SetOffset selects the session for offset. Ports become base + offset.
func (p *Peer) SetOffset(offset int) error {
	s, err := p.table.SetOffset(offset)
	if err != nil {
		return err
	}
	p.log.Debug().Int("offset", offset).Str("session", s.ID().String()).Msg("session selected")
	return nil
}

// Offset returns the active offset, or session.NoOffset after Close.
func (p *Peer) Offset() int {
	return p.table.Offset()
}

// Session returns the active session, or nil.
func (p *Peer) Session() *session.Session {
	return p.table.Active()
}

// Resize sizes the frame buffer and records the resolution in the control state.
func (p *Peer) Resize(width, height int) error {
	if err := p.frame.Resize(width, height); err != nil {
		return err
	}
	p.SetResolution(width, height)
	return nil
}

// SetPixelBits selects 8, 16 or 32 bit channels; anything else falls back
// to 8. The frame keeps its storage until the next resize.
func (p *Peer) SetPixelBits(bits int) error {
	if f, err := pixel.FromBits(bits); err == nil && p.codec != nil && !p.codec.Kind().Supports(f) {
		return fmt.Errorf("%w: %s cannot carry %s", pixel.ErrUnsupportedFormat, p.codec.Kind(), f)
	}
	p.frame.SetFormat(bits)
	return nil
}

func (p *Peer) Format() pixel.Format {
	return p.frame.Format()
}

func (p *Peer) Width() int  { return p.frame.Width() }
func (p *Peer) Height() int { return p.frame.Height() }

// SetResolution changes the requested resolution without touching the frame buffer.
func (p *Peer) SetResolution(width, height int) {
	p.sync.UpdateControl(func(c *state.ControlState) {
		c.Width = int32(width)
		c.Height = int32(height)
	})
}

func (p *Peer) Camera() state.Camera {
	return p.sync.Control().Camera
}

func (p *Peer) SetCamera(cam state.Camera) {
	p.sync.UpdateControl(func(c *state.ControlState) {
		c.Camera = cam
	})
}

func (p *Peer) Frame() int {
	return int(p.sync.Control().Frame)
}

func (p *Peer) SetFrame(frame int) {
	p.sync.UpdateControl(func(c *state.ControlState) {
		c.Frame = int32(frame)
	})
}

// Control returns the held control state.
func (p *Peer) Control() state.ControlState {
	return p.sync.Control()
}

// SendControl sends the held control state.
func (p *Peer) SendControl() error {
	return p.sync.SendControl()
}

// ReceiveControl receives the next control state and reports whether it
// differs from the held one. The frame buffer follows the received
// resolution, except for reset messages.
func (p *Peer) ReceiveControl() (bool, error) {
	changed, err := p.sync.ReceiveControl()
	if err != nil {
		return false, err
	}
	ctl := p.sync.Control()
	if ctl.IsReset() {
		return changed, nil
	}
	if err := p.frame.Resize(int(ctl.Width), int(ctl.Height)); err != nil {
		return changed, err
	}
	return changed, nil
}

// Reset asks the server to restart accumulation.
func (p *Peer) Reset() error {
	return p.sync.Reset()
}

func (p *Peer) Shared() state.SharedState {
	return p.sync.Shared()
}

func (p *Peer) SetShared(s state.SharedState) {
	p.sync.SetShared(s)
}

func (p *Peer) SendShared() error {
	return p.sync.SendShared()
}

func (p *Peer) ReceiveShared() error {
	return p.sync.ReceiveShared()
}

func (p *Peer) SendRenderData(blob []byte) error {
	return p.sync.SendRenderData(blob)
}

// ReceiveRenderData receives a render-settings blob. An out-of-range length
// sets the sticky error because the blob is left unread in the stream.
func (p *Peer) ReceiveRenderData() ([]byte, error) {
	blob, err := p.sync.ReceiveRenderData()
	if errors.Is(err, state.ErrRenderDataSize) {
		p.setError(err)
	}
	return blob, err
}

// WriteGlobals sends an opaque block on the data channel.
func (p *Peer) WriteGlobals(blob []byte) error {
	return p.data.Send(blob, p.ack)
}

// ReadGlobals fills buf from the cam channel.
func (p *Peer) ReadGlobals(buf []byte) error {
	return p.cam.Receive(buf, p.ack)
}

// SendPixels sends the frame, raw or encoded, followed by the shared state.
func (p *Peer) SendPixels() error {
	raw := p.frame.Pixels()
	if raw == nil {
		return fmt.Errorf("%w: frame not allocated", framebuffer.ErrInvalidSize)
	}
	if p.codec == nil {
		if err := p.data.Send(raw, p.ack); err != nil {
			return err
		}
	} else {
		packed, err := p.codec.Encode(p.frame.Width(), p.frame.Height(), p.frame.Format(), raw)
		if err != nil {
			return err
		}
		var size [4]byte
		binary.NativeEndian.PutUint32(size[:], uint32(len(packed)))
		if err := p.data.Send(size[:], p.ack); err != nil {
			return err
		}
		if err := p.data.Send(packed, p.ack); err != nil {
			return err
		}
	}
	return p.sync.SendShared()
}

// ReceivePixels receives a frame into the frame buffer, uploads it to the
// device and then receives the shared state.
func (p *Peer) ReceivePixels() error {
	raw := p.frame.Pixels()
	if raw == nil {
		return fmt.Errorf("%w: frame not allocated", framebuffer.ErrInvalidSize)
	}
	if p.codec == nil {
		if err := p.data.Receive(raw, p.ack); err != nil {
			return err
		}
	} else if err := p.receiveEncoded(raw); err != nil {
		return err
	}
	if err := p.frame.Upload(); err != nil {
		return err
	}
	if err := p.sync.ReceiveShared(); err != nil {
		return err
	}
	p.tick()
	return nil
}

func (p *Peer) receiveEncoded(dst []byte) error {
	var size [4]byte
	if err := p.data.Receive(size[:], p.ack); err != nil {
		return err
	}
	n := int32(binary.NativeEndian.Uint32(size[:]))
	// Lossless codecs may expand incompressible frames slightly.
	limit := len(dst) + len(dst)/8 + 1024
	if n <= 0 || int(n) > limit {
		err := fmt.Errorf("%w: %d bytes for a %d byte frame", ErrFrameSize, n, len(dst))
		// The rest of the stream can no longer be framed.
		p.setError(err)
		return err
	}
	if cap(p.packed) < int(n) {
		p.packed = make([]byte, n)
	}
	packed := p.packed[:n]
	if err := p.data.Receive(packed, p.ack); err != nil {
		return err
	}
	return p.codec.Decode(packed, p.frame.Width(), p.frame.Height(), p.frame.Format(), dst)
}

// Pixels returns the host frame. It aliases the frame buffer.
func (p *Peer) Pixels() []byte {
	return p.frame.Pixels()
}

// CopyPixels copies the host frame into dst.
func (p *Peer) CopyPixels(dst []byte) error {
	return p.frame.CopyPixels(dst)
}

// SetPixels replaces the host frame.
func (p *Peer) SetPixels(src []byte) error {
	return p.frame.SetPixels(src)
}

// SetDevicePixels replaces the frame from a device buffer and refreshes the
// host copy that goes on the wire.
func (p *Peer) SetDevicePixels(src framebuffer.DeviceBuffer) error {
	if err := p.frame.SetDevicePixels(src); err != nil {
		return err
	}
	return p.frame.Download()
}

// DeviceHandle identifies the device frame buffer.
func (p *Peer) DeviceHandle() uintptr {
	return p.frame.DeviceHandle()
}

// IsError reports the sticky connection error of the active session.
func (p *Peer) IsError() bool {
	s := p.table.Active()
	return s != nil && s.IsError()
}

// Err returns the failure behind the sticky connection error, or nil.
func (p *Peer) Err() error {
	if s := p.table.Active(); s != nil {
		return s.Errors().Err()
	}
	return nil
}

// Samples is the sample count from the last shared state.
func (p *Peer) Samples() int {
	return int(p.sync.Shared().Samples)
}

// RemoteFPS is the frame rate the other side reported.
func (p *Peer) RemoteFPS() float64 {
	return float64(p.sync.Shared().FPS)
}

// LocalFPS is the frame rate measured here.
func (p *Peer) LocalFPS() float64 {
	return p.fps.FPS()
}

// Close closes every session and resets the offset. The frame buffer and
// codec are kept so the peer can reconnect with SetOffset and Init.
func (p *Peer) Close() error {
	return p.table.Close()
}

// Release closes the sessions and frees the frame buffer and codec.
func (p *Peer) Release() error {
	errs := []error{p.table.Close(), p.frame.Close()}
	if p.codec != nil {
		errs = append(errs, p.codec.Close())
	}
	return errors.Join(errs...)
}

func (p *Peer) setError(err error) {
	if s := p.table.Active(); s != nil {
		s.Errors().Set(err)
	}
}

func (p *Peer) tick() float64 {
	fps := p.fps.Tick(p.Samples(), p.frame.Width(), p.frame.Height())
	p.metrics.SetFPS(fps)
	p.metrics.SetSamples(p.Samples())
	return fps
}
