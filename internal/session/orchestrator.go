// Package session drives a tunnel session from authentication through
// forward activation to teardown.
package session

import (
	"context"
	"sync"

	"github.com/portbridge/portbridge/internal/forward"
	"github.com/portbridge/portbridge/internal/interrupt"
	"github.com/portbridge/portbridge/internal/ssh"
	"github.com/portbridge/portbridge/pkg/errors"
	"github.com/portbridge/portbridge/pkg/logger"
)

// State is the orchestrator lifecycle state
type State int

const (
	StateIdle State = iota
	StateAuthenticating
	StateConnected
	StateForwardsActive
	StateShuttingDown
	StateClosed
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:           "idle",
	StateAuthenticating: "authenticating",
	StateConnected:      "connected",
	StateForwardsActive: "forwards_active",
	StateShuttingDown:   "shutting_down",
	StateClosed:         "closed",
	StateFailed:         "failed",
}

// String returns the state name
func (s State) String() string {
	return stateNames[s]
}

// Orchestrator owns the transport client and sequences the session:
// Connect -> Activate -> Run -> Shutdown. A single control goroutine drives
// it; only the interrupt watcher runs alongside, coupled through the shared
// cancellation signal.
type Orchestrator struct {
	client   ssh.Client
	log      *logger.Logger
	mu       sync.Mutex
	state    State
	forwards []ssh.Forward
}

// New creates an orchestrator over the given transport client
func New(client ssh.Client, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		client: client,
		log:    log,
		state:  StateIdle,
	}
}

// State returns the current lifecycle state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Connect authenticates the transport. No-credential and authentication
// failures surface distinctly from transport failures; either aborts before
// any forward is registered.
func (o *Orchestrator) Connect(ctx context.Context) error {
	o.setState(StateAuthenticating)

	if err := o.client.Connect(ctx); err != nil {
		o.setState(StateFailed)
		return err
	}

	o.setState(StateConnected)
	return nil
}

// Activate registers and starts a live forward per spec, in list order.
// A forward that cannot start aborts the session: unlike runtime failures,
// setup failure points at a configuration problem. Runtime failures reported
// later through the per-forward callback are logged and tolerated.
func (o *Orchestrator) Activate(specs []forward.Spec) error {
	for _, spec := range specs {
		fwd, err := o.client.AddForward(spec)
		if err != nil {
			o.setState(StateFailed)
			return errors.NewForwardSetupError(
				"failed to register forward "+spec.String(), err)
		}

		// The callback shares nothing mutable with the control flow: the
		// description is pre-rendered and the logger is safe for concurrent use.
		desc := spec.String()
		fwd.OnError(func(err error) {
			o.log.Warn("forward %s: %v", desc, err)
		})

		if err := fwd.Start(); err != nil {
			o.setState(StateFailed)
			return errors.NewForwardSetupError(
				"failed to start forward "+desc, err)
		}

		o.mu.Lock()
		o.forwards = append(o.forwards, fwd)
		o.mu.Unlock()

		o.log.Info("forwarding %s", desc)
	}

	o.setState(StateForwardsActive)
	return nil
}

// Run blocks until the cancellation signal is set. No timeout: the session
// lives until interrupted.
func (o *Orchestrator) Run(sig *interrupt.Signal) {
	<-sig.Done()
}

// Shutdown stops every live forward and closes the transport. Each stop is
// attempted independently and its failure swallowed, so one misbehaving
// forward cannot hold up the rest or the connection. Idempotent: a second
// call on a closed session is a no-op.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	if o.state == StateClosed || o.state == StateShuttingDown {
		o.mu.Unlock()
		return
	}
	o.state = StateShuttingDown
	forwards := o.forwards
	o.forwards = nil
	o.mu.Unlock()

	for _, fwd := range forwards {
		if err := fwd.Stop(); err != nil {
			o.log.Warn("failed to stop forward %s: %v", fwd.Spec(), err)
		}
	}

	if err := o.client.Close(); err != nil {
		o.log.Warn("failed to close connection: %v", err)
	}

	o.setState(StateClosed)
}
