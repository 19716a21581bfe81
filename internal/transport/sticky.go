package transport

import (
	"sync"
	"sync/atomic"
)

// ErrorState is the sticky connection error shared by the channels of one
// session. Once set it stays set until Clear, which only happens on close or
// a successful re-establishment of the connection.
type ErrorState struct {
	set atomic.Bool

	mu    sync.Mutex
	cause error
}

func (s *ErrorState) Set(cause error) {
	s.mu.Lock()
	if !s.set.Load() {
		s.cause = cause
	}
	s.set.Store(true)
	s.mu.Unlock()
}

func (s *ErrorState) IsSet() bool {
	return s.set.Load()
}

// Err returns the failure that first set the state, or nil.
func (s *ErrorState) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set.Load() {
		return nil
	}
	return s.cause
}

func (s *ErrorState) Clear() {
	s.mu.Lock()
	s.cause = nil
	s.set.Store(false)
	s.mu.Unlock()
}
