// Package transport implements the raw TCP layer: listener and dialer setup
// with the connect retry policy, and chunked, optionally acknowledged
// channels that share a sticky error state.
package transport

// Kind names one of the two logical channels of a session.
type Kind int

const (
	Cam Kind = iota
	Data
)

func (k Kind) String() string {
	switch k {
	case Cam:
		return "cam"
	case Data:
		return "data"
	default:
		return "unknown"
	}
}

// Direction of a transfer, as seen from the local process.
type Direction string

const (
	Sent     Direction = "sent"
	Received Direction = "received"
)

// Sender sends one complete payload.
type Sender interface {
	Send(payload []byte, ack bool) error
}

// Receiver fills buf completely.
type Receiver interface {
	Receive(buf []byte, ack bool) error
}

// Observer is notified about transferred bytes and data-plane failures.
type Observer interface {
	ObserveTransfer(kind Kind, dir Direction, n int)
	ObserveFailure(kind Kind, err error)
}
