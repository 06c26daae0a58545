// Package forward defines port-forwarding rules and the colon-delimited
// mini-language used to express them on the command line.
package forward

import (
	"fmt"
	"net"
	"strconv"
)

// WildcardHost is the bind host meaning "all local interfaces".
const WildcardHost = "*"

// Direction says which side of the tunnel a forward listens on.
type Direction int

const (
	// Local forwards listen on this machine and relay to the remote side.
	Local Direction = iota
	// Remote forwards listen on the remote machine and relay back here.
	Remote
)

// String returns the lowercase direction name
func (d Direction) String() string {
	if d == Remote {
		return "remote"
	}
	return "local"
}

// Spec is a fully resolved forwarding rule. It is built once by the factory
// and never mutated afterwards; all hosts are resolved (defaults applied)
// and both ports are valid 16-bit values.
type Spec struct {
	Direction  Direction
	BindHost   string
	BindPort   int
	TargetHost string
	TargetPort int
}

// String renders the spec the way it appears in warnings and logs:
// "<direction> <bindHost>:<bindPort> -> <targetHost>:<targetPort>".
func (s Spec) String() string {
	return fmt.Sprintf("%s %s:%d -> %s:%d",
		s.Direction, s.BindHost, s.BindPort, s.TargetHost, s.TargetPort)
}

// BindAddr returns the listen address for the spec. The wildcard host is
// rendered as an empty host so the listener binds all interfaces.
func (s Spec) BindAddr() string {
	host := s.BindHost
	if host == WildcardHost {
		host = ""
	}
	return net.JoinHostPort(host, strconv.Itoa(s.BindPort))
}

// TargetAddr returns the dial address traffic is relayed to.
func (s Spec) TargetAddr() string {
	return net.JoinHostPort(s.TargetHost, strconv.Itoa(s.TargetPort))
}
