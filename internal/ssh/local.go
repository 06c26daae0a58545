package ssh

import (
	"context"
	"net"
	"sync"

	"github.com/pkg/errors"

	"github.com/portbridge/portbridge/internal/forward"
	"github.com/portbridge/portbridge/pkg/logger"
)

// localForward listens on this machine and relays each accepted connection to
// the target through the SSH connection.
type localForward struct {
	spec     forward.Spec
	desc     string // pre-rendered; the only state shared with callbacks
	dialer   dialer
	log      *logger.Logger
	mu       sync.Mutex
	listener net.Listener
	active   bool
	errFn    func(error)
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func newLocalForward(spec forward.Spec, d dialer, log *logger.Logger) *localForward {
	ctx, cancel := context.WithCancel(context.Background())
	return &localForward{
		spec:   spec,
		desc:   spec.String(),
		dialer: d,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Spec returns the resolved rule this forward implements
func (f *localForward) Spec() forward.Spec {
	return f.spec
}

// OnError registers the runtime-failure callback
func (f *localForward) OnError(fn func(error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errFn = fn
}

// Start binds the local listener and begins accepting connections
func (f *localForward) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.active {
		return nil
	}

	listener, err := net.Listen("tcp", f.spec.BindAddr())
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", f.spec.BindAddr())
	}
	f.listener = listener
	f.active = true

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.acceptConnections()
	}()

	f.log.Debug("started %s", f.desc)
	return nil
}

// acceptConnections accepts local connections and relays each one through
// the tunnel. Runtime errors are reported and do not stop the session.
func (f *localForward) acceptConnections() {
	for {
		conn, err := f.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || f.ctx.Err() != nil {
				return
			}
			f.report(errors.Wrap(err, "accept failed"))
			return
		}

		f.wg.Add(1)
		go func() {
			defer f.wg.Done()
			f.handleConnection(conn)
		}()
	}
}

// handleConnection relays a single accepted connection to the target
func (f *localForward) handleConnection(conn net.Conn) {
	remote, err := f.dialer.Dial("tcp", f.spec.TargetAddr())
	if err != nil {
		conn.Close()
		f.report(errors.Wrapf(err, "failed to dial %s", f.spec.TargetAddr()))
		return
	}

	if err := relay(conn, remote); err != nil {
		f.report(errors.Wrap(err, "relay failed"))
	}
}

// report delivers a runtime error through the registered callback
func (f *localForward) report(err error) {
	f.mu.Lock()
	fn := f.errFn
	f.mu.Unlock()

	if fn != nil {
		fn(err)
	} else {
		f.log.Warn("%s: %v", f.desc, err)
	}
}

// Stop closes the listener and waits for in-flight relays to drain.
// Idempotent.
func (f *localForward) Stop() error {
	f.mu.Lock()
	if !f.active {
		f.mu.Unlock()
		return nil
	}
	f.active = false
	f.cancel()
	listener := f.listener
	f.mu.Unlock()

	var err error
	if listener != nil {
		err = listener.Close()
	}
	f.wg.Wait()

	if err != nil && !errors.Is(err, net.ErrClosed) {
		return errors.Wrap(err, "failed to close listener")
	}
	return nil
}

// Ensure localForward implements Forward
var _ Forward = (*localForward)(nil)
