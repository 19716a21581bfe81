package peer

import (
	"errors"

	"github.com/junsooki/renderlink/internal/session"
	"github.com/junsooki/renderlink/internal/transport"
)

// ErrNoSession is returned while no session offset is selected.
var ErrNoSession = errors.New("peer: no active session")

// channelConn routes transfers to one channel of the table's active session,
// opening the channel on first use.
type channelConn struct {
	table *session.Table
	kind  transport.Kind
}

func (c channelConn) Send(payload []byte, ack bool) error {
	ch, err := c.channel()
	if err != nil {
		return err
	}
	return ch.Send(payload, ack)
}

func (c channelConn) Receive(buf []byte, ack bool) error {
	ch, err := c.channel()
	if err != nil {
		return err
	}
	return ch.Receive(buf, ack)
}

func (c channelConn) channel() (*transport.Channel, error) {
	s := c.table.Active()
	if s == nil {
		return nil, ErrNoSession
	}
	if s.IsError() {
		return nil, transport.ErrConnectionError
	}

	open, get := s.InitData, s.Data
	if c.kind == transport.Cam {
		open, get = s.InitCam, s.Cam
	}
	if ch := get(); ch != nil {
		return ch, nil
	}
	if err := open(); err != nil {
		return nil, err
	}
	return get(), nil
}
