package transport

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// MaxChunkSize caps the bytes handed to a single read or write call.
const MaxChunkSize = 128 << 20

// Channel is one connected socket of a session. It is not safe for
// concurrent use; calls block until the whole payload has moved.
type Channel struct {
	kind     Kind
	conn     io.ReadWriter
	errs     *ErrorState
	chunk    int
	observer Observer
	log      zerolog.Logger
}

// ChannelOption customizes a Channel.
type ChannelOption func(*Channel)

// WithObserver attaches a transfer observer.
func WithObserver(o Observer) ChannelOption {
	return func(c *Channel) {
		c.observer = o
	}
}

// WithChunkSize overrides MaxChunkSize.
func WithChunkSize(n int) ChannelOption {
	return func(c *Channel) {
		if n > 0 {
			c.chunk = n
		}
	}
}

// WithLogger sets the channel logger.
func WithLogger(l zerolog.Logger) ChannelOption {
	return func(c *Channel) {
		c.log = l
	}
}

// NewChannel wraps a connected stream. errs is shared with the other
// channel of the same session.
func NewChannel(kind Kind, conn io.ReadWriter, errs *ErrorState, opts ...ChannelOption) *Channel {
	c := &Channel{
		kind:  kind,
		conn:  conn,
		errs:  errs,
		chunk: MaxChunkSize,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Channel) Kind() Kind {
	return c.kind
}

// Send writes payload in chunks of at most the chunk size. With ack it then
// waits for one status byte from the peer; anything but zero is a failure.
func (c *Channel) Send(payload []byte, ack bool) error {
	if c.errs.IsSet() {
		return ErrConnectionError
	}

	sent := 0
	for sent < len(payload) {
		end := min(sent+c.chunk, len(payload))
		n, err := c.conn.Write(payload[sent:end])
		if n > 0 {
			sent += n
		}
		if n <= 0 || err != nil {
			return c.fail(fmt.Errorf("%w: %s sent %d of %d bytes: %v", ErrPartialIO, c.kind, sent, len(payload), err))
		}
	}
	c.observe(Sent, sent)

	if ack {
		var status [1]byte
		if _, err := io.ReadFull(c.conn, status[:]); err != nil {
			return c.fail(fmt.Errorf("%w: %s read ack: %v", ErrAckMismatch, c.kind, err))
		}
		if status[0] != 0 {
			return c.fail(fmt.Errorf("%w: %s peer reported status %d", ErrAckMismatch, c.kind, status[0]))
		}
	}
	return nil
}

// Receive fills buf in chunks of at most the chunk size. With ack it then
// writes a zero status byte back to the peer.
func (c *Channel) Receive(buf []byte, ack bool) error {
	if c.errs.IsSet() {
		return ErrConnectionError
	}

	received := 0
	for received < len(buf) {
		end := min(received+c.chunk, len(buf))
		n, err := c.conn.Read(buf[received:end])
		if n <= 0 {
			return c.fail(fmt.Errorf("%w: %s received %d of %d bytes: %v", ErrPartialIO, c.kind, received, len(buf), err))
		}
		received += n
	}
	c.observe(Received, received)

	if ack {
		if _, err := c.conn.Write([]byte{0}); err != nil {
			return c.fail(fmt.Errorf("%w: %s write ack: %v", ErrAckMismatch, c.kind, err))
		}
	}
	return nil
}

func (c *Channel) fail(err error) error {
	c.errs.Set(err)
	c.log.Error().Err(err).Str("channel", c.kind.String()).Msg("connection error")
	if c.observer != nil {
		c.observer.ObserveFailure(c.kind, err)
	}
	return err
}

func (c *Channel) observe(dir Direction, n int) {
	c.log.Trace().Str("channel", c.kind.String()).Str("dir", string(dir)).Int("bytes", n).Msg("transfer")
	if c.observer != nil {
		c.observer.ObserveTransfer(c.kind, dir, n)
	}
}
