package peer

import (
	"time"

	"github.com/junsooki/renderlink/internal/render"
	"github.com/junsooki/renderlink/internal/session"
)

// Server is the rendering end: it accepts the client, receives control
// state and answers every control message with a frame.
type Server struct {
	*Peer
}

// NewServer prepares a server for opts.Offset without accepting yet.
func NewServer(opts Options) (*Server, error) {
	p, err := newPeer(session.Server, opts)
	if err != nil {
		return nil, err
	}
	return &Server{Peer: p}, nil
}

// Init waits for the client on both channels of the active session and
// allocates a width x height frame.
func (s *Server) Init(width, height int) error {
	return s.init(width, height)
}

// ServeFrame answers one control message. Reset messages in front of it
// reset the renderer and are otherwise consumed without a reply. A changed
// control state also restarts accumulation.
func (s *Server) ServeFrame(r render.Renderer) error {
	start := time.Now()
	for {
		changed, err := s.ReceiveControl()
		if err != nil {
			return err
		}
		if s.Control().IsReset() {
			s.log.Debug().Msg("reset requested")
			r.Reset()
			continue
		}
		if changed {
			r.Reset()
		}
		break
	}

	shared, err := r.Render(s.Control(), s.Format(), s.Pixels())
	if err != nil {
		return err
	}
	// tick reads the new sample count.
	s.SetShared(shared)
	shared.FPS = float32(s.tick())
	s.SetShared(shared)

	if err := s.SendPixels(); err != nil {
		return err
	}
	s.metrics.ObserveFrame(session.Server.String(), time.Since(start))
	return nil
}
