// Package router implements the relay's dispatch logic. One inbound line of
// text from a registered campus becomes either a unicast delivery, a
// broadcast fan-out, or an error reply to the sender.
package router

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/markoxley/campuslink/registry"
)

// BroadcastKeyword is the reserved destination token that requests fan-out
// instead of unicast delivery. The match is exact and case-sensitive.
const BroadcastKeyword = "BROADCAST"

// Broadcaster fans a message out to every registered campus.
type Broadcaster interface {
	Broadcast(message string) (attempted, sent int)
}

// Router decides what to do with each inbound application message.
// Delivery is at-most-once and best-effort: every send is attempted exactly
// once and failures never remove the destination from the registry.
type Router struct {
	registry    *registry.Registry
	broadcaster Broadcaster
}

// New creates a Router over the given registry and broadcaster.
func New(reg *registry.Registry, b Broadcaster) *Router {
	return &Router{
		registry:    reg,
		broadcaster: b,
	}
}

// Route dispatches one raw message from the named sender. The message is
// split on the first ':' into destination and content. A message with no
// separator is logged and silently dropped; the sender is not informed.
// A missing destination produces an error reply to the sender, and only
// then — transport failures while delivering are log-only.
func (r *Router) Route(senderName, raw string) {
	destination, content, found := strings.Cut(raw, ":")
	if !found {
		log.Errorf("Invalid message format from %q: %q", senderName, raw)
		return
	}

	if destination == BroadcastKeyword {
		r.broadcaster.Broadcast("BROADCAST FROM " + senderName + ": " + content)
		return
	}

	log.Infof("Routing %s -> %s", senderName, destination)

	rec, exists := r.registry.Get(destination)
	if exists {
		if _, err := rec.Conn.Write([]byte("FROM " + senderName + ": " + content)); err != nil {
			log.Errorf("Failed to deliver to %q: %v", destination, err)
		}
		return
	}

	// Destination unknown. Tell the sender, unless it vanished mid-operation.
	log.Warnf("Campus %q not found for routing", destination)
	sender, exists := r.registry.Get(senderName)
	if !exists {
		return
	}
	reply := fmt.Sprintf("SERVER: Error: Campus '%s' is not currently active.", destination)
	if _, err := sender.Conn.Write([]byte(reply)); err != nil {
		log.Errorf("Failed to send error reply to %q: %v", senderName, err)
	}
}
