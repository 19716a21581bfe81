// Package framebuffer owns the frame storage of one peer: host memory that
// the wire reads into and writes from, and a matching device allocation.
// Both are always released and reallocated together.
package framebuffer

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/junsooki/renderlink/internal/pixel"
)

var ErrInvalidSize = errors.New("framebuffer: invalid dimensions")

// MaxDimension bounds the width and height of a frame.
const MaxDimension = 1 << 15

// Manager is not safe for concurrent use.
type Manager struct {
	width  int
	height int
	format pixel.Format

	host   []byte
	device DeviceBuffer

	alloc HostAllocator
	dev   Device
	log   zerolog.Logger
}

// New returns an empty Manager in 8-bit format. A nil alloc uses heap
// memory and a nil dev uses a HostDevice.
func New(alloc HostAllocator, dev Device, log zerolog.Logger) *Manager {
	if alloc == nil {
		alloc = HeapAllocator{}
	}
	if dev == nil {
		dev = NewHostDevice()
	}
	return &Manager{
		format: pixel.U8,
		alloc:  alloc,
		dev:    dev,
		log:    log,
	}
}

func (m *Manager) Width() int           { return m.width }
func (m *Manager) Height() int          { return m.height }
func (m *Manager) Format() pixel.Format { return m.format }

// Size is the byte size of the current storage.
func (m *Manager) Size() int {
	return len(m.host)
}

// SetFormat selects the channel depth used by the next allocation. Unknown
// depths log a warning and select 8 bits.
func (m *Manager) SetFormat(bits int) pixel.Format {
	f, err := pixel.FromBits(bits)
	if err != nil {
		m.log.Warn().Int("bits", bits).Msg("unsupported pixel size, using 8 bits")
	}
	m.format = f
	return f
}

// Resize allocates storage for a width x height frame. It does nothing when
// the dimensions are unchanged and the storage already fits the format.
func (m *Manager) Resize(width, height int) error {
	if err := m.checkSize(width, height); err != nil {
		return err
	}
	if width == m.width && height == m.height && m.host != nil &&
		len(m.host) == m.format.FrameSize(width, height) {
		return nil
	}
	return m.reallocate(width, height)
}

// ForceResize reallocates even when the dimensions are unchanged.
func (m *Manager) ForceResize(width, height int) error {
	if err := m.checkSize(width, height); err != nil {
		return err
	}
	return m.reallocate(width, height)
}

// Pixels returns the host storage. It is nil before the first Resize.
func (m *Manager) Pixels() []byte {
	return m.host
}

// CopyPixels copies the host storage into dst, which must be at least Size bytes.
func (m *Manager) CopyPixels(dst []byte) error {
	if len(dst) < len(m.host) {
		return fmt.Errorf("framebuffer: destination holds %d of %d bytes", len(dst), len(m.host))
	}
	copy(dst, m.host)
	return nil
}

// SetPixels copies a host frame of exactly Size bytes into host storage.
func (m *Manager) SetPixels(src []byte) error {
	if m.host == nil {
		return fmt.Errorf("%w: no storage allocated", ErrInvalidSize)
	}
	if len(src) != len(m.host) {
		return fmt.Errorf("framebuffer: frame is %d bytes, want %d", len(src), len(m.host))
	}
	copy(m.host, src)
	return nil
}

// SetDevicePixels copies a device frame into the device storage.
func (m *Manager) SetDevicePixels(src DeviceBuffer) error {
	if m.device == nil {
		return fmt.Errorf("%w: no storage allocated", ErrInvalidSize)
	}
	return m.dev.Copy(m.device, src)
}

// Upload copies host storage to the device.
func (m *Manager) Upload() error {
	if m.device == nil {
		return nil
	}
	return m.dev.Upload(m.device, m.host)
}

// Download copies device storage to the host.
func (m *Manager) Download() error {
	if m.device == nil {
		return nil
	}
	return m.dev.Download(m.host, m.device)
}

// DeviceHandle identifies the device storage, or 0 when none is allocated.
func (m *Manager) DeviceHandle() uintptr {
	if m.device == nil {
		return 0
	}
	return m.device.Handle()
}

// Close releases host and device storage.
func (m *Manager) Close() error {
	err := m.release()
	m.width, m.height = 0, 0
	return err
}

// checkSize rejects empty frames, sides above MaxDimension and byte sizes
// that do not fit in an int.
func (m *Manager) checkSize(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	perPixel := uint64(pixel.Channels * m.format.BytesPerChannel())
	if uint64(width)*uint64(height)*perPixel > math.MaxInt {
		return fmt.Errorf("%w: %dx%d %s exceeds addressable memory", ErrInvalidSize, width, height, m.format)
	}
	return nil
}

func (m *Manager) reallocate(width, height int) error {
	if err := m.release(); err != nil {
		m.log.Warn().Err(err).Msg("release frame storage")
	}
	m.width, m.height = 0, 0

	size := m.format.FrameSize(width, height)
	host, err := m.alloc.Alloc(size)
	if err != nil {
		return err
	}
	device, err := m.dev.Alloc(size)
	if err != nil {
		_ = m.alloc.Free(host)
		return fmt.Errorf("framebuffer: device alloc %d bytes: %w", size, err)
	}

	m.host = host
	m.device = device
	m.width, m.height = width, height
	m.log.Debug().
		Int("width", width).
		Int("height", height).
		Str("format", m.format.String()).
		Int("bytes", size).
		Msg("frame storage allocated")
	return nil
}

func (m *Manager) release() error {
	var errs []error
	if m.host != nil {
		if err := m.alloc.Free(m.host); err != nil {
			errs = append(errs, err)
		}
		m.host = nil
	}
	if m.device != nil {
		if err := m.dev.Free(m.device); err != nil {
			errs = append(errs, err)
		}
		m.device = nil
	}
	return errors.Join(errs...)
}
