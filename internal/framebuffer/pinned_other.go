//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package framebuffer

import "github.com/rs/zerolog"

// PinnedAllocator falls back to heap memory where page locking is not
// available.
type PinnedAllocator struct {
	HeapAllocator
}

func NewPinnedAllocator(log zerolog.Logger) *PinnedAllocator {
	log.Debug().Msg("page-locked memory not supported, using heap")
	return &PinnedAllocator{}
}
