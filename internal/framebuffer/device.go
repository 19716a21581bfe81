package framebuffer

import (
	"fmt"
	"sync"
)

// DeviceBuffer is an opaque accelerator allocation.
type DeviceBuffer interface {
	Handle() uintptr
	Size() int
}

// Device is the accelerator the frame is rendered on or displayed from.
type Device interface {
	Alloc(size int) (DeviceBuffer, error)
	Free(buf DeviceBuffer) error
	Upload(dst DeviceBuffer, src []byte) error
	Download(dst []byte, src DeviceBuffer) error
	Copy(dst, src DeviceBuffer) error
}

// HostDevice is a software Device backed by host memory. It stands in for
// an accelerator on machines without one.
type HostDevice struct {
	mu   sync.Mutex
	next uintptr
}

func NewHostDevice() *HostDevice {
	return &HostDevice{}
}

type hostBuffer struct {
	handle uintptr
	data   []byte
}

func (b *hostBuffer) Handle() uintptr { return b.handle }
func (b *hostBuffer) Size() int       { return len(b.data) }

// Bytes exposes the backing memory of a HostDevice buffer.
func (b *hostBuffer) Bytes() []byte { return b.data }

func (d *HostDevice) Alloc(size int) (DeviceBuffer, error) {
	d.mu.Lock()
	d.next++
	handle := d.next
	d.mu.Unlock()
	return &hostBuffer{handle: handle, data: make([]byte, size)}, nil
}

func (d *HostDevice) Free(DeviceBuffer) error {
	return nil
}

func (d *HostDevice) Upload(dst DeviceBuffer, src []byte) error {
	b, err := d.buffer(dst)
	if err != nil {
		return err
	}
	if len(src) != len(b.data) {
		return fmt.Errorf("framebuffer: upload of %d bytes into %d byte buffer", len(src), len(b.data))
	}
	copy(b.data, src)
	return nil
}

func (d *HostDevice) Download(dst []byte, src DeviceBuffer) error {
	b, err := d.buffer(src)
	if err != nil {
		return err
	}
	if len(dst) != len(b.data) {
		return fmt.Errorf("framebuffer: download of %d byte buffer into %d bytes", len(b.data), len(dst))
	}
	copy(dst, b.data)
	return nil
}

func (d *HostDevice) Copy(dst, src DeviceBuffer) error {
	to, err := d.buffer(dst)
	if err != nil {
		return err
	}
	from, err := d.buffer(src)
	if err != nil {
		return err
	}
	if len(to.data) != len(from.data) {
		return fmt.Errorf("framebuffer: device copy of %d bytes into %d bytes", len(from.data), len(to.data))
	}
	copy(to.data, from.data)
	return nil
}

func (d *HostDevice) buffer(buf DeviceBuffer) (*hostBuffer, error) {
	b, ok := buf.(*hostBuffer)
	if !ok || b == nil {
		return nil, fmt.Errorf("framebuffer: %T is not a host device buffer", buf)
	}
	return b, nil
}
