package session

import (
	"errors"
	"fmt"
	"sync"
)

const (
	// Capacity is the number of session offsets a table can address.
	Capacity = 100
	// NoOffset marks a table with no active session.
	NoOffset = -1
)

var ErrOffsetRange = errors.New("session: offset out of range")

// Table indexes sessions by offset and tracks the active one.
type Table struct {
	opts Options

	mu       sync.Mutex
	sessions [Capacity]*Session
	active   int
}

func NewTable(opts Options) *Table {
	return &Table{
		opts:   opts,
		active: NoOffset,
	}
}

// SetOffset makes the session for offset active, creating it on first use.
func (t *Table) SetOffset(offset int) (*Session, error) {
	if offset < 0 || offset >= Capacity {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrOffsetRange, offset, Capacity)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sessions[offset] == nil {
		t.sessions[offset] = New(offset, t.opts)
	}
	t.active = offset
	return t.sessions[offset], nil
}

// Offset returns the active offset or NoOffset.
func (t *Table) Offset() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Active returns the active session, or nil if no offset was set.
func (t *Table) Active() *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == NoOffset {
		return nil
	}
	return t.sessions[t.active]
}

// Close closes every session the table holds and clears the active offset.
// Sessions stay in the table and reconnect on their next Init.
func (t *Table) Close() error {
	t.mu.Lock()
	sessions := t.sessions
	t.active = NoOffset
	t.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
