package broadcast

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/markoxley/campuslink/registry"
)

// udpEndpoint is a campus-side broadcast listener for testing.
type udpEndpoint struct {
	conn *net.UDPConn
}

func newUDPEndpoint(t *testing.T) *udpEndpoint {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("Failed to create UDP endpoint: %v", err)
	}
	return &udpEndpoint{conn: conn}
}

func (e *udpEndpoint) addr() *net.UDPAddr {
	return e.conn.LocalAddr().(*net.UDPAddr)
}

func (e *udpEndpoint) read(t *testing.T) string {
	buf := make([]byte, 1024)
	e.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := e.conn.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("Failed to read broadcast datagram: %v", err)
	}
	return string(buf[:n])
}

func TestBroadcastFanOut(t *testing.T) {
	reg := registry.New()
	sender, err := New(reg)
	if err != nil {
		t.Fatalf("Failed to create sender: %v", err)
	}
	defer sender.Close()

	endpoints := make([]*udpEndpoint, 3)
	for i := range endpoints {
		endpoints[i] = newUDPEndpoint(t)
		defer endpoints[i].conn.Close()
		reg.Add(&registry.CampusRecord{
			Name:    fmt.Sprintf("Campus%d", i),
			UDPAddr: endpoints[i].addr(),
		})
	}

	attempted, sent := sender.Broadcast("BROADCAST FROM A: hi")
	if attempted != 3 || sent != 3 {
		t.Errorf("Expected 3/3 sends, got %d/%d", sent, attempted)
	}

	// Every campus receives the message, the sender included
	for i, e := range endpoints {
		got := e.read(t)
		if got != "BROADCAST FROM A: hi" {
			t.Errorf("Endpoint %d received %q", i, got)
		}
	}
}

func TestBroadcastEmptyRegistry(t *testing.T) {
	reg := registry.New()
	sender, err := New(reg)
	if err != nil {
		t.Fatalf("Failed to create sender: %v", err)
	}
	defer sender.Close()

	attempted, sent := sender.Broadcast("SERVER BROADCAST: nobody home")
	if attempted != 0 || sent != 0 {
		t.Errorf("Expected 0/0 sends on empty registry, got %d/%d", sent, attempted)
	}
}
