//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package transport

import (
	"fmt"
	"net"
	"syscall"
)

func listen(port int) (net.Listener, error) {
	ln, err := net.Listen("tcp4", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("%w: port %d: %v", ErrBind, port, err)
	}
	return ln, nil
}

func clientSocketControl(int) func(network, address string, c syscall.RawConn) error {
	return nil
}

func tuneConn(c *net.TCPConn, bufferSize int) {
	_ = c.SetReadBuffer(bufferSize)
	_ = c.SetWriteBuffer(bufferSize)
}
