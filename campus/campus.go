// Package campus provides the peer-side session for the CampusLink system.
// A client registers itself with the relay over the reliable channel, then
// concurrently receives unicast messages on that channel and broadcast
// datagrams on its own UDP listener, delivering both to a Handler.
package campus

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/markoxley/campuslink/config"
)

// bufferSize is the receive buffer on both channels; one read is one
// message, matching the relay's framing.
const bufferSize = 1024

// Handler receives inbound messages. Implementations must be safe for
// concurrent calls: unicast and broadcast deliveries arrive on separate
// goroutines.
type Handler interface {
	// HandleUnicast is called for each message arriving on the reliable
	// channel, the welcome acknowledgment included.
	HandleUnicast(message string)

	// HandleBroadcast is called for each datagram arriving on the
	// broadcast channel.
	HandleBroadcast(message string)
}

// Client is a connected campus session. It owns one reliable connection to
// the relay and one UDP listening socket for broadcasts.
type Client struct {
	name    string
	conn    net.Conn
	udp     *net.UDPConn
	handler Handler
	done    chan struct{}
	once    sync.Once
	log     *log.Entry
}

// Dial binds the local broadcast listener, connects to the relay and sends
// the registration message <name>:<udp-port>. Pass udpPort 0 to let the
// system pick a free port; the port actually bound is what gets reported.
// Both receive paths start immediately.
func Dial(cfg *config.Config, name string, udpPort uint16, h Handler) (*Client, error) {
	udp, err := net.ListenUDP("udp4", &net.UDPAddr{Port: int(udpPort)})
	if err != nil {
		return nil, fmt.Errorf("UDP bind: %w", err)
	}
	boundPort := udp.LocalAddr().(*net.UDPAddr).Port

	conn, err := net.Dial("tcp4", fmt.Sprintf("%s:%d", cfg.ServerAddress, cfg.ServerPort))
	if err != nil {
		udp.Close()
		return nil, fmt.Errorf("relay connection: %w", err)
	}

	if _, err := conn.Write([]byte(fmt.Sprintf("%s:%d", name, boundPort))); err != nil {
		conn.Close()
		udp.Close()
		return nil, fmt.Errorf("registration: %w", err)
	}

	c := &Client{
		name:    name,
		conn:    conn,
		udp:     udp,
		handler: h,
		done:    make(chan struct{}),
		log:     log.WithField("campus", name),
	}
	c.log.Infof("Registered with relay at %s, UDP listener on port %d", conn.RemoteAddr(), boundPort)

	go c.readReliable()
	go c.readDatagrams()
	return c, nil
}

// Send forwards one raw application message to the relay. The caller is
// responsible for the <destination>:<payload> convention.
func (c *Client) Send(raw string) error {
	if _, err := c.conn.Write([]byte(raw)); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// SendTo is a convenience wrapper for unicast messages.
func (c *Client) SendTo(destination, content string) error {
	return c.Send(destination + ":" + content)
}

// SendBroadcast is a convenience wrapper for broadcast requests.
func (c *Client) SendBroadcast(content string) error {
	return c.Send("BROADCAST:" + content)
}

// Done is closed when the session ends: the relay closed the reliable
// channel, a read failed, or Close was called.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close shuts both channels down, unblocking the receive paths. Safe to
// call more than once.
func (c *Client) Close() {
	c.once.Do(func() {
		c.conn.Close()
		c.udp.Close()
		close(c.done)
	})
}

// readReliable delivers unicast messages until the reliable channel closes.
// A close from the relay ends the whole session.
func (c *Client) readReliable() {
	buf := make([]byte, bufferSize)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.log.Info("Relay closed the connection")
			} else if !closed(c.done) {
				c.log.Errorf("Reliable channel read failed: %v", err)
			}
			c.Close()
			return
		}
		c.handler.HandleUnicast(string(buf[:n]))
	}
}

// readDatagrams delivers broadcast messages until the UDP socket closes.
func (c *Client) readDatagrams() {
	buf := make([]byte, bufferSize)
	for {
		n, _, err := c.udp.ReadFromUDP(buf)
		if err != nil {
			return
		}
		c.handler.HandleBroadcast(string(buf[:n]))
	}
}

func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
