package ssh

import (
	"net"

	"github.com/portbridge/portbridge/internal/forward"
)

// Forward is a live forward bound to the SSH connection. Its lifecycle is
// Created -> Started -> Stopped; Stop is safe to call any number of times.
// Runtime failures after Start are delivered through the OnError callback and
// never stop the handle on their own.
type Forward interface {
	// Start activates the forward (binds its listener and begins relaying)
	Start() error

	// Stop deactivates the forward; repeated calls are no-ops
	Stop() error

	// OnError registers the asynchronous runtime-failure callback. It must be
	// called before Start; callbacks may arrive concurrently.
	OnError(fn func(error))

	// Spec returns the resolved rule this forward implements
	Spec() forward.Spec
}

// dialer is the subset of *ssh.Client (or net) used to reach a forward's
// target. Split out so tests can substitute their own.
type dialer interface {
	Dial(network, addr string) (net.Conn, error)
}

// listenerOpener is the subset of *ssh.Client used to bind a listener on the
// remote side.
type listenerOpener interface {
	Listen(network, addr string) (net.Listener, error)
}

// netDialer adapts the net package to the dialer interface for the local leg
// of remote forwards.
type netDialer struct{}

func (netDialer) Dial(network, addr string) (net.Conn, error) {
	return net.Dial(network, addr)
}
