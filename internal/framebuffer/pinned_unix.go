//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package framebuffer

import (
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// PinnedAllocator maps anonymous pages outside the Go heap and locks them
// in memory. When the lock limit is reached the pages stay mapped unlocked.
type PinnedAllocator struct {
	log zerolog.Logger
}

func NewPinnedAllocator(log zerolog.Logger) *PinnedAllocator {
	return &PinnedAllocator{log: log}
}

func (a *PinnedAllocator) Alloc(size int) ([]byte, error) {
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("framebuffer: map %d bytes: %w", size, err)
	}
	if err := unix.Mlock(buf); err != nil {
		a.log.Debug().Err(err).Int("bytes", size).Msg("page lock unavailable, using unlocked pages")
	}
	return buf, nil
}

func (a *PinnedAllocator) Free(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	_ = unix.Munlock(buf)
	if err := unix.Munmap(buf); err != nil {
		return fmt.Errorf("framebuffer: unmap: %w", err)
	}
	return nil
}
