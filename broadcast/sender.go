// Package broadcast implements the relay's fan-out path. A single outbound
// UDP socket is shared by every caller and used to send one best-effort
// datagram per registered campus. Broadcast is inherently partial-failure
// tolerant: individual send errors are counted and logged, never propagated.
package broadcast

import (
	"net"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/markoxley/campuslink/registry"
)

// Sender wraps the relay's one outbound datagram socket. All sends are
// serialized by a mutex so concurrent broadcasts do not interleave on the
// shared socket.
type Sender struct {
	conn     *net.UDPConn
	registry *registry.Registry
	mutex    sync.Mutex
}

// New creates a Sender with its own unconnected UDP socket, bound to an
// ephemeral local port.
//
// Returns:
//   - *Sender: The sender, ready for use
//   - error: If the socket cannot be created
func New(reg *registry.Registry) (*Sender, error) {
	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, err
	}
	return &Sender{
		conn:     conn,
		registry: reg,
	}, nil
}

// Broadcast sends the message to every campus currently in the registry.
// Each destination gets exactly one send attempt; failures are logged and
// counted but do not abort the remaining sends.
//
// Parameters:
//   - message: The payload to fan out
//
// Returns:
//   - int: Number of sends attempted
//   - int: Number of sends that succeeded
func (s *Sender) Broadcast(message string) (int, int) {
	recs := s.registry.Snapshot()
	payload := []byte(message)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	sent := 0
	for _, rec := range recs {
		if _, err := s.conn.WriteToUDP(payload, rec.UDPAddr); err != nil {
			log.Warnf("Broadcast send to %q (%s) failed: %v", rec.Name, rec.UDPAddr, err)
			continue
		}
		sent++
	}
	log.Infof("Broadcast complete: %d/%d campuses reached", sent, len(recs))
	return len(recs), sent
}

// Close releases the shared socket. The sender must not be used afterwards.
func (s *Sender) Close() error {
	return s.conn.Close()
}
