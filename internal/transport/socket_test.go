package transport

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junsooki/renderlink/internal/testutil/testlog"
)

func loopbackLookup(string) ([]net.IPAddr, error) {
	return []net.IPAddr{{IP: net.ParseIP("127.0.0.1")}}, nil
}

func TestConnectRetryExhausted(t *testing.T) {
	testlog.Start(t)

	d := NewDialer(DefaultRetryPolicy(), zerolog.Nop())
	d.lookup = loopbackLookup

	var sleeps []time.Duration
	d.sleep = func(dur time.Duration) { sleeps = append(sleeps, dur) }
	var dialed []string
	d.dial = func(addr string) (net.Conn, error) {
		dialed = append(dialed, addr)
		return nil, errors.New("connection refused")
	}

	errs := &ErrorState{}
	conn, err := d.Connect("render-node", 7001, errs)
	require.ErrorIs(t, err, ErrConnectRetryExhausted)
	assert.Nil(t, conn)
	assert.Equal(t, []string{"127.0.0.1:7001", "127.0.0.1:7001"}, dialed)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, sleeps)
	assert.True(t, errs.IsSet())
}

func TestConnectSecondAttemptClearsStickyError(t *testing.T) {
	testlog.Start(t)

	d := NewDialer(DefaultRetryPolicy(), zerolog.Nop())
	d.lookup = loopbackLookup
	d.sleep = func(time.Duration) {}

	a, b := net.Pipe()
	defer b.Close()
	attempts := 0
	d.dial = func(string) (net.Conn, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("connection refused")
		}
		return a, nil
	}

	errs := &ErrorState{}
	errs.Set(errors.New("previous session"))

	conn, err := d.Connect("render-node", 7000, errs)
	require.NoError(t, err)
	assert.Same(t, a, conn)
	assert.Equal(t, 2, attempts)
	assert.False(t, errs.IsSet())
}

func TestConnectResolutionFailureIsSetupError(t *testing.T) {
	testlog.Start(t)

	d := NewDialer(DefaultRetryPolicy(), zerolog.Nop())
	d.sleep = func(time.Duration) { t.Fatal("no attempt expected") }
	d.dial = func(string) (net.Conn, error) {
		t.Fatal("no dial expected")
		return nil, nil
	}

	errs := &ErrorState{}

	d.lookup = func(string) ([]net.IPAddr, error) { return nil, errors.New("no such host") }
	_, err := d.Connect("nowhere", 7000, errs)
	require.ErrorIs(t, err, ErrDNSResolution)

	d.lookup = func(string) ([]net.IPAddr, error) {
		return []net.IPAddr{{IP: net.ParseIP("::1")}}, nil
	}
	_, err = d.Connect("v6only", 7000, errs)
	require.ErrorIs(t, err, ErrDNSResolution)

	assert.False(t, errs.IsSet())
}

func TestLoopbackConnectAndTransfer(t *testing.T) {
	testlog.Start(t)

	ln, err := Listen(0)
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := Accept(ln)
		if err != nil {
			close(accepted)
			return
		}
		accepted <- conn
	}()

	d := NewDialer(RetryPolicy{Attempts: 2, Delay: time.Millisecond}, zerolog.Nop())
	client, err := d.Connect("127.0.0.1", port, &ErrorState{})
	require.NoError(t, err)
	defer client.Close()

	server, ok := <-accepted
	require.True(t, ok, "accept failed")
	defer server.Close()

	payload := make([]byte, 1<<20)
	for i := range payload {
		payload[i] = byte(i * 7)
	}
	sender := NewChannel(Data, server, &ErrorState{}, WithChunkSize(64<<10))
	receiver := NewChannel(Data, client, &ErrorState{})

	done := make(chan error, 1)
	go func() {
		done <- sender.Send(payload, true)
	}()

	buf := make([]byte, len(payload))
	require.NoError(t, receiver.Receive(buf, true))
	require.NoError(t, <-done)
	assert.Equal(t, payload, buf)
}

func TestListenBindFailure(t *testing.T) {
	testlog.Start(t)

	taken, err := net.Listen("tcp4", ":0")
	require.NoError(t, err)
	defer taken.Close()

	_, err = Listen(taken.Addr().(*net.TCPAddr).Port)
	require.ErrorIs(t, err, ErrBind)
}

func TestAcceptOnClosedListener(t *testing.T) {
	testlog.Start(t)

	ln, err := Listen(0)
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	_, err = Accept(ln)
	require.ErrorIs(t, err, ErrAccept)
}
