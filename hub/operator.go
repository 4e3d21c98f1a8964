package hub

import (
	"bufio"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Console runs the operator input loop until the input is exhausted or the
// operator quits. 'BROADCAST:<message>' fans an operator announcement out
// to every registered campus over the datagram channel; 'exit' or 'quit'
// stops the relay.
func (s *Server) Console(in io.Reader) {
	log.Info("Console input active. Type 'BROADCAST:<message>' to send a global message.")
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "exit" || line == "quit":
			log.Info("Shutting down relay...")
			s.Stop()
			return
		case strings.HasPrefix(line, "BROADCAST:"):
			s.sender.Broadcast("SERVER BROADCAST: " + strings.TrimPrefix(line, "BROADCAST:"))
		default:
			log.Warn("Unknown command. Use 'BROADCAST:<message>' or 'exit'.")
		}
	}
}
