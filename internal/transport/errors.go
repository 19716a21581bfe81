package transport

import "errors"

// Setup-phase errors. Returned to the caller and never recorded in the
// sticky error state, so setup can be retried.
var (
	ErrSocketCreation = errors.New("transport: socket creation failed")
	ErrBind           = errors.New("transport: bind failed")
	ErrListen         = errors.New("transport: listen failed")
	ErrAccept         = errors.New("transport: accept failed")
	ErrDNSResolution  = errors.New("transport: host resolution failed")
)

// Data-plane errors. Each of these sets the sticky error state.
var (
	ErrConnectRetryExhausted = errors.New("transport: connect retries exhausted")
	ErrPartialIO             = errors.New("transport: partial send or receive")
	ErrAckMismatch           = errors.New("transport: acknowledgment failed")
)

// ErrConnectionError is returned without touching the socket while the
// sticky error state is set.
var ErrConnectionError = errors.New("transport: connection error is set")
