package session

import (
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junsooki/renderlink/internal/testutil/testlog"
	"github.com/junsooki/renderlink/internal/transport"
)

// freePorts returns two distinct ports that were free a moment ago.
func freePorts(t *testing.T) (int, int) {
	t.Helper()
	a, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	b, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	pa, pb := a.Addr().(*net.TCPAddr).Port, b.Addr().(*net.TCPAddr).Port
	require.NoError(t, a.Close())
	require.NoError(t, b.Close())
	return pa, pb
}

func testOptions(role Role, camPort, dataPort int) Options {
	return Options{
		Role: role,
		Endpoints: Endpoints{
			Cam:  Endpoint{Host: "127.0.0.1", Port: camPort},
			Data: Endpoint{Host: "127.0.0.1", Port: dataPort},
		},
		Dialer: transport.NewDialer(transport.RetryPolicy{Attempts: 40, Delay: 25 * time.Millisecond}, zerolog.Nop()),
		Logger: zerolog.Nop(),
	}
}

func TestResolveEndpointsDefaults(t *testing.T) {
	t.Setenv(EnvCamHost, "")
	t.Setenv(EnvCamPort, "")
	t.Setenv(EnvDataHost, "")
	t.Setenv(EnvDataPort, "")

	got := ResolveEndpoints(Endpoints{})
	assert.Equal(t, Endpoint{Host: "localhost", Port: 7000}, got.Cam)
	assert.Equal(t, Endpoint{Host: "localhost", Port: 7001}, got.Data)
}

func TestResolveEndpointsEnvironment(t *testing.T) {
	t.Setenv(EnvCamHost, "gpu-node")
	t.Setenv(EnvCamPort, "9100")
	t.Setenv(EnvDataHost, "gpu-node-2")
	t.Setenv(EnvDataPort, "not-a-port")

	got := ResolveEndpoints(Endpoints{})
	assert.Equal(t, Endpoint{Host: "gpu-node", Port: 9100}, got.Cam)
	assert.Equal(t, Endpoint{Host: "gpu-node-2", Port: 7001}, got.Data)

	explicit := ResolveEndpoints(Endpoints{Cam: Endpoint{Host: "render", Port: 8000}})
	assert.Equal(t, Endpoint{Host: "render", Port: 8000}, explicit.Cam)
}

func TestSessionPortsFollowOffset(t *testing.T) {
	s := New(3, testOptions(Client, 7000, 7001))

	assert.Equal(t, 7003, s.Endpoint(transport.Cam).Port)
	assert.Equal(t, 7004, s.Endpoint(transport.Data).Port)
	assert.Equal(t, 3, s.Offset())
	assert.NotEqual(t, New(3, testOptions(Client, 7000, 7001)).ID(), s.ID())
}

func TestServerAndClientConnect(t *testing.T) {
	testlog.Start(t)

	camPort, dataPort := freePorts(t)
	server := New(0, testOptions(Server, camPort, dataPort))
	client := New(0, testOptions(Client, camPort, dataPort))
	defer server.Close()
	defer client.Close()

	served := make(chan error, 1)
	go func() {
		served <- server.Init()
	}()

	require.NoError(t, client.Init())
	require.NoError(t, <-served)

	require.NotNil(t, server.Cam())
	require.NotNil(t, client.Data())

	go func() {
		_ = client.Data().Send([]byte("frame"), false)
	}()
	buf := make([]byte, 5)
	require.NoError(t, server.Data().Receive(buf, false))
	assert.Equal(t, "frame", string(buf))

	cam := client.Cam()
	require.NoError(t, client.InitCam())
	assert.Same(t, cam, client.Cam(), "init is idempotent")
}

func (s *Session) listening(kind transport.Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listeners[kind] != nil
}

func TestCloseUnblocksAccept(t *testing.T) {
	testlog.Start(t)

	camPort, dataPort := freePorts(t)
	server := New(0, testOptions(Server, camPort, dataPort))

	done := make(chan error, 1)
	go func() {
		done <- server.InitCam()
	}()

	require.Eventually(t, func() bool { return server.listening(transport.Cam) }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, server.Close())

	select {
	case err := <-done:
		require.ErrorIs(t, err, transport.ErrAccept)
	case <-time.After(2 * time.Second):
		t.Fatal("accept still blocked after close")
	}
	assert.Nil(t, server.Cam())
	assert.False(t, server.IsError())
}

func TestCloseClearsStickyError(t *testing.T) {
	s := New(0, testOptions(Client, 7000, 7001))
	s.Errors().Set(transport.ErrPartialIO)
	require.True(t, s.IsError())

	require.NoError(t, s.Close())
	assert.False(t, s.IsError())
	assert.Nil(t, s.Data())
}
