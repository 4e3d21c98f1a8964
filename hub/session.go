package hub

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/markoxley/campuslink/registry"
	"github.com/markoxley/campuslink/router"
)

// session is the per-connection unit of work on the relay. It performs the
// registration handshake, inserts the campus into the registry, then loops
// reading messages and handing each to the router. Cleanup is unconditional:
// however the read loop exits, the session removes its own record and
// releases the connection.
type session struct {
	conn       net.Conn
	registry   *registry.Registry
	router     *router.Router
	bufferSize int
	rec        *registry.CampusRecord
	log        *log.Entry
}

func newSession(conn net.Conn, reg *registry.Registry, rt *router.Router, bufferSize int) *session {
	return &session{
		conn:       conn,
		registry:   reg,
		router:     rt,
		bufferSize: bufferSize,
		log:        log.WithField("session", uuid.NewString()),
	}
}

// run drives the session through its whole lifetime. Intended to be run as
// a goroutine, one per accepted connection.
func (s *session) run() {
	defer s.conn.Close()

	if err := s.register(); err != nil {
		s.log.Errorf("Registration failed, closing connection: %v", err)
		return
	}
	defer func() {
		// RemoveRecord, not Remove: if a later registration displaced this
		// session, its record must survive this cleanup.
		s.registry.RemoveRecord(s.rec.Name, s.rec)
		s.log.Infof("Campus %q removed from active list", s.rec.Name)
	}()

	s.serve()
}

// register performs exactly one read and expects <name>:<udp-port>. Any
// parse failure terminates the session without an entry ever being created;
// no reply is sent to the offender. On success the broadcast destination is
// derived from the connection's peer IP plus the self-reported port, the
// record is added (overwriting any prior registration under the name), and
// the welcome acknowledgment is sent.
func (s *session) register() error {
	buf := make([]byte, s.bufferSize)
	n, err := s.conn.Read(buf)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	name, portText, found := strings.Cut(string(buf[:n]), ":")
	if !found {
		return errors.New("missing ':' separator")
	}
	port, err := strconv.ParseUint(strings.TrimSpace(portText), 10, 16)
	if err != nil {
		return fmt.Errorf("invalid UDP port %q", portText)
	}

	peer, ok := s.conn.RemoteAddr().(*net.TCPAddr)
	if !ok {
		return fmt.Errorf("unexpected peer address type %T", s.conn.RemoteAddr())
	}

	s.rec = &registry.CampusRecord{
		Name: name,
		Conn: s.conn,
		// The IP is taken from the live connection, never self-reported.
		UDPAddr: &net.UDPAddr{IP: peer.IP, Port: int(port)},
	}
	s.registry.Add(s.rec)
	s.log = s.log.WithField("campus", name)
	s.log.Infof("Campus %q registered, UDP port %d", name, port)

	welcome := fmt.Sprintf("SERVER: Welcome, %s! TCP and UDP services active.", name)
	if _, err := s.conn.Write([]byte(welcome)); err != nil {
		s.log.Errorf("Failed to send welcome: %v", err)
	}
	return nil
}

// serve reads one message per iteration and routes it. One read is one
// logical message; there is no reassembly of messages split across reads.
func (s *session) serve() {
	buf := make([]byte, s.bufferSize)
	for {
		n, err := s.conn.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Infof("Campus %q disconnected gracefully", s.rec.Name)
			} else {
				s.log.Errorf("Read failed: %v", err)
			}
			return
		}
		s.router.Route(s.rec.Name, string(buf[:n]))
	}
}
