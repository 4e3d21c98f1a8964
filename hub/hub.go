// Package hub implements the CampusLink relay server. It accepts inbound
// reliable connections, spawns one session per connection, and owns the
// campus registry and the single broadcast sender for the life of the
// process. Sessions are tracked rather than detached so the server can
// bound total concurrency and close every live connection on shutdown.
package hub

import (
	"errors"
	"fmt"
	"net"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/markoxley/campuslink/broadcast"
	"github.com/markoxley/campuslink/config"
	"github.com/markoxley/campuslink/registry"
	"github.com/markoxley/campuslink/router"
)

// Server is the relay. It owns the registry, the broadcast sender and the
// TCP listener, and tracks every live session.
type Server struct {
	cfg       *config.Config
	registry  *registry.Registry
	sender    *broadcast.Sender
	router    *router.Router
	listener  net.Listener
	waitGroup sync.WaitGroup

	mutex    sync.Mutex
	sessions map[*session]struct{}

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a Server from the given configuration. The broadcast socket
// is opened here; the TCP listener is not created until Run.
func New(cfg *config.Config) (*Server, error) {
	reg := registry.New()
	sender, err := broadcast.New(reg)
	if err != nil {
		return nil, fmt.Errorf("broadcast socket: %w", err)
	}
	return &Server{
		cfg:      cfg,
		registry: reg,
		sender:   sender,
		router:   router.New(reg, sender),
		sessions: make(map[*session]struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Run binds the listener and starts accepting connections in the
// background. It returns once the relay is listening.
func (s *Server) Run() error {
	l, err := net.Listen("tcp4", fmt.Sprintf("%s:%d", s.cfg.IP, s.cfg.Port))
	if err != nil {
		return err
	}
	s.listener = l
	log.Infof("CampusLink relay listening on %s", l.Addr())

	s.waitGroup.Add(1)
	go func() {
		defer s.waitGroup.Done()
		s.acceptLoop()
	}()
	return nil
}

// acceptLoop holds no per-connection state: every accepted connection is
// handed straight to a session goroutine.
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Errorf("Accept failed: %v", err)
			continue
		}
		log.Infof("New connection accepted from %s", conn.RemoteAddr())

		sess := newSession(conn, s.registry, s.router, s.cfg.BufferSize)
		if !s.track(sess) {
			log.Warnf("Session limit (%d) reached, refusing %s", s.cfg.MaxSessions, conn.RemoteAddr())
			conn.Close()
			continue
		}
		s.waitGroup.Add(1)
		go func() {
			defer s.waitGroup.Done()
			defer s.untrack(sess)
			sess.run()
		}()
	}
}

// track registers a session, refusing it if the configured cap is reached.
func (s *Server) track(sess *session) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		return false
	}
	s.sessions[sess] = struct{}{}
	return true
}

func (s *Server) untrack(sess *session) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.sessions, sess)
}

// Stop shuts the relay down: the listener stops accepting, every live
// session's connection is closed to unblock its read loop, and Stop waits
// for all of them to finish cleanup. Safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.listener != nil {
			s.listener.Close()
		}
		s.mutex.Lock()
		for sess := range s.sessions {
			sess.conn.Close()
		}
		s.mutex.Unlock()
		s.waitGroup.Wait()
		s.sender.Close()
		close(s.done)
	})
}

// Done is closed once the relay has fully stopped.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Addr returns the listener address, or nil before Run.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Registry exposes the campus directory, primarily for observability.
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// SessionCount returns the number of live sessions, registered or not.
func (s *Server) SessionCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.sessions)
}
