// Package session pairs the cam and data channels of one session offset and
// keeps the table of sessions a process can switch between.
package session

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/junsooki/renderlink/internal/transport"
)

// Role decides whether a session listens or dials.
type Role int

const (
	Server Role = iota
	Client
)

func (r Role) String() string {
	switch r {
	case Server:
		return "server"
	case Client:
		return "client"
	default:
		return "unknown"
	}
}

// Options are shared by every session created from them.
type Options struct {
	Role      Role
	Endpoints Endpoints
	// Dialer is used by client sessions. Nil means the default retry policy.
	Dialer   *transport.Dialer
	Observer transport.Observer
	Logger   zerolog.Logger
}

// Session owns the cam and data channels of one offset. Both channels share
// one sticky error state. Calls other than Close must come from a single
// goroutine; Close may be called from any goroutine to unblock them.
type Session struct {
	id        uuid.UUID
	role      Role
	offset    int
	endpoints Endpoints
	dialer    *transport.Dialer
	observer  transport.Observer
	log       zerolog.Logger

	errs transport.ErrorState

	mu        sync.Mutex
	listeners [2]net.Listener
	conns     [2]net.Conn
	channels  [2]*transport.Channel
}

// New creates an unconnected session for offset. Ports are the base ports
// of opts.Endpoints plus offset.
func New(offset int, opts Options) *Session {
	id := uuid.New()
	log := opts.Logger.With().
		Str("session", id.String()).
		Str("role", opts.Role.String()).
		Int("offset", offset).
		Logger()

	dialer := opts.Dialer
	if dialer == nil {
		dialer = transport.NewDialer(transport.DefaultRetryPolicy(), log)
	}

	return &Session{
		id:        id,
		role:      opts.Role,
		offset:    offset,
		endpoints: ResolveEndpoints(opts.Endpoints),
		dialer:    dialer,
		observer:  opts.Observer,
		log:       log,
	}
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

func (s *Session) Role() Role {
	return s.role
}

func (s *Session) Offset() int {
	return s.offset
}

// Endpoint returns the effective host and port of a channel.
func (s *Session) Endpoint(kind transport.Kind) Endpoint {
	ep := s.endpoints.Cam
	if kind == transport.Data {
		ep = s.endpoints.Data
	}
	ep.Port += s.offset
	return ep
}

// Init opens the cam channel, then the data channel.
func (s *Session) Init() error {
	if err := s.InitCam(); err != nil {
		return err
	}
	return s.InitData()
}

func (s *Session) InitCam() error {
	return s.init(transport.Cam)
}

func (s *Session) InitData() error {
	return s.init(transport.Data)
}

// Cam returns the cam channel, or nil before InitCam succeeded.
func (s *Session) Cam() *transport.Channel {
	return s.channel(transport.Cam)
}

// Data returns the data channel, or nil before InitData succeeded.
func (s *Session) Data() *transport.Channel {
	return s.channel(transport.Data)
}

// Errors is the sticky error state shared by both channels.
func (s *Session) Errors() *transport.ErrorState {
	return &s.errs
}

func (s *Session) IsError() bool {
	return s.errs.IsSet()
}

// Close closes listeners and sockets, returns both channels to the
// unconnected state and clears the sticky error.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	closeAll := func(closers ...io.Closer) {
		for _, c := range closers {
			if err := c.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				errs = append(errs, err)
			}
		}
	}
	for i := range s.channels {
		if s.conns[i] != nil {
			closeAll(s.conns[i])
		}
		if s.listeners[i] != nil {
			closeAll(s.listeners[i])
		}
		s.conns[i] = nil
		s.listeners[i] = nil
		s.channels[i] = nil
	}
	s.errs.Clear()
	s.log.Debug().Msg("session closed")
	return errors.Join(errs...)
}

func (s *Session) channel(kind transport.Kind) *transport.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channels[kind]
}

func (s *Session) init(kind transport.Kind) error {
	if s.channel(kind) != nil {
		return nil
	}
	ep := s.Endpoint(kind)
	log := s.log.With().Str("channel", kind.String()).Logger()

	var conn net.Conn
	switch s.role {
	case Server:
		s.mu.Lock()
		ln := s.listeners[kind]
		s.mu.Unlock()
		if ln == nil {
			var err error
			ln, err = transport.Listen(ep.Port)
			if err != nil {
				log.Error().Err(err).Int("port", ep.Port).Msg("listen failed")
				return err
			}
			s.mu.Lock()
			s.listeners[kind] = ln
			s.mu.Unlock()
		}

		var err error
		log.Info().Int("port", ep.Port).Msg("waiting for client")
		conn, err = transport.Accept(ln)
		if err != nil {
			log.Error().Err(err).Int("port", ep.Port).Msg("accept failed")
			return err
		}
		s.errs.Clear()
		log.Info().Str("peer", conn.RemoteAddr().String()).Msg("client connected")
	case Client:
		var err error
		conn, err = s.dialer.Connect(ep.Host, ep.Port, &s.errs)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("session: unknown role %d", s.role)
	}

	opts := []transport.ChannelOption{transport.WithLogger(log)}
	if s.observer != nil {
		opts = append(opts, transport.WithObserver(s.observer))
	}

	s.mu.Lock()
	s.conns[kind] = conn
	s.channels[kind] = transport.NewChannel(kind, conn, &s.errs, opts...)
	s.mu.Unlock()
	return nil
}
