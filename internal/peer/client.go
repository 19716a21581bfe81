package peer

import (
	"time"

	"github.com/junsooki/renderlink/internal/session"
)

// Client is the viewing end: it sends control state and receives frames.
type Client struct {
	*Peer
}

// NewClient prepares a client for opts.Offset without connecting yet.
func NewClient(opts Options) (*Client, error) {
	p, err := newPeer(session.Client, opts)
	if err != nil {
		return nil, err
	}
	return &Client{Peer: p}, nil
}

// Init connects both channels of the active session and requests a
// width x height frame.
func (c *Client) Init(width, height int) error {
	return c.init(width, height)
}

// Step sends the control state and receives the frame rendered for it.
func (c *Client) Step() error {
	start := time.Now()
	ctl := c.Control()
	if err := c.frame.Resize(int(ctl.Width), int(ctl.Height)); err != nil {
		return err
	}
	if err := c.SendControl(); err != nil {
		return err
	}
	if err := c.ReceivePixels(); err != nil {
		return err
	}
	c.metrics.ObserveFrame(session.Client.String(), time.Since(start))
	return nil
}
