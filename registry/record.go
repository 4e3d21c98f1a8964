// Package registry provides thread-safe campus management for the CampusLink
// relay. It implements a directory of currently connected campuses keyed by
// their self-reported name, with concurrent access support. The package is
// designed to be shared by every connection session and the message router,
// where campuses can dynamically join and leave.
package registry

import "net"

// CampusRecord represents a connected campus in the CampusLink system.
// All fields are immutable after creation to ensure thread safety.
type CampusRecord struct {
	Name    string       // Unique identifier, self-reported at registration
	Conn    net.Conn     // Reliable channel, owned by the registering session
	UDPAddr *net.UDPAddr // Broadcast destination for best-effort datagrams
}
