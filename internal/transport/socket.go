package transport

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const (
	// SocketBufferSize is the send and receive buffer requested on client sockets.
	SocketBufferSize = 32 << 20

	listenBacklog = 1
)

// Listen creates a listener on INADDR_ANY:port with address and port reuse
// enabled where the platform has it, and a backlog of one pending peer.
func Listen(port int) (net.Listener, error) {
	return listen(port)
}

// Accept blocks until one peer connects. Closing ln from another goroutine
// unblocks it.
func Accept(ln net.Listener) (net.Conn, error) {
	conn, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAccept, ln.Addr(), err)
	}
	return conn, nil
}

// ListenAndAccept is Listen followed by Accept. The listener stays open and
// is owned by the caller.
func ListenAndAccept(port int) (net.Listener, net.Conn, error) {
	ln, err := Listen(port)
	if err != nil {
		return nil, nil, err
	}
	conn, err := Accept(ln)
	if err != nil {
		ln.Close()
		return nil, nil, err
	}
	return ln, conn, nil
}

// RetryPolicy bounds client connection attempts. Every attempt, including
// the first, is preceded by Delay.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: 2,
		Delay:    2 * time.Second,
	}
}

// Dialer opens client sockets with the retry policy.
type Dialer struct {
	Policy     RetryPolicy
	BufferSize int

	log    zerolog.Logger
	lookup func(host string) ([]net.IPAddr, error)
	dial   func(address string) (net.Conn, error)
	sleep  func(time.Duration)
}

func NewDialer(policy RetryPolicy, log zerolog.Logger) *Dialer {
	d := &Dialer{
		Policy:     policy,
		BufferSize: SocketBufferSize,
		log:        log,
		sleep:      time.Sleep,
	}
	d.lookup = func(host string) ([]net.IPAddr, error) {
		return net.DefaultResolver.LookupIPAddr(context.Background(), host)
	}
	d.dial = d.dialTCP
	return d
}

// Connect resolves host and connects to port. A resolution failure is a
// setup error. Exhausting the retry policy records the failure in errs and
// returns ErrConnectRetryExhausted; a successful connect clears errs.
func (d *Dialer) Connect(host string, port int, errs *ErrorState) (net.Conn, error) {
	ip, err := d.resolve(host)
	if err != nil {
		d.log.Error().Err(err).Str("host", host).Msg("resolve failed")
		return nil, err
	}
	addr := net.JoinHostPort(ip.String(), strconv.Itoa(port))

	attempts := max(d.Policy.Attempts, 1)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		d.sleep(d.Policy.Delay)
		conn, err := d.dial(addr)
		if err == nil {
			errs.Clear()
			d.log.Info().Str("host", host).Int("port", port).Msg("connected")
			return conn, nil
		}
		lastErr = err
		d.log.Warn().Err(err).Int("attempt", attempt).Str("host", host).Int("port", port).Msg("waiting on server")
	}

	err = fmt.Errorf("%w: %s after %d attempts: %v", ErrConnectRetryExhausted, addr, attempts, lastErr)
	errs.Set(err)
	d.log.Error().Err(err).Msg("connect failed")
	return nil, err
}

func (d *Dialer) resolve(host string) (net.IP, error) {
	addrs, err := d.lookup(host)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDNSResolution, host, err)
	}
	for _, a := range addrs {
		if v4 := a.IP.To4(); v4 != nil {
			return v4, nil
		}
	}
	return nil, fmt.Errorf("%w: %s: no IPv4 address", ErrDNSResolution, host)
}

func (d *Dialer) dialTCP(address string) (net.Conn, error) {
	nd := net.Dialer{Control: clientSocketControl(d.BufferSize)}
	conn, err := nd.Dial("tcp4", address)
	if err != nil {
		return nil, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
		tuneConn(tc, d.BufferSize)
	}
	return conn, nil
}
