package ssh

import (
	"context"
	"net"
	"sync"

	"github.com/pkg/errors"

	"github.com/portbridge/portbridge/internal/forward"
	"github.com/portbridge/portbridge/pkg/logger"
)

// remoteForward listens on the remote machine (via a tcpip-forward request)
// and relays each accepted connection back to a local target.
type remoteForward struct {
	spec     forward.Spec
	desc     string
	opener   listenerOpener
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

func newRemoteForward(spec forward.Spec, opener listenerOpener, log *logger.Logger) *remoteForward {
	ctx, cancel := context.WithCancel(context.Background())
	return &remoteForward{
		spec:   spec,
		desc:   spec.String(),
		opener: opener,
		dialer: netDialer{},
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Spec returns the resolved rule this forward implements
func (f *remoteForward) Spec() forward.Spec {
	return f.spec
}

// OnError registers the runtime-failure callback
func (f *remoteForward) OnError(fn func(error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errFn = fn
}

// Start requests the remote listener and begins accepting connections
func (f *remoteForward) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.active {
		return nil
	}

	listener, err := f.opener.Listen("tcp", f.spec.BindAddr())
	if err != nil {
		return errors.Wrapf(err, "failed to listen remotely on %s", f.spec.BindAddr())
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

func (f *remoteForward) acceptConnections() {
	for {
		conn, err := f.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || f.ctx.Err() != nil {
				return
			}
			f.report(errors.Wrap(err, "remote accept failed"))
			return
		}

		f.wg.Add(1)
		go func() {
			defer f.wg.Done()
			f.handleConnection(conn)
		}()
	}
}

func (f *remoteForward) handleConnection(conn net.Conn) {
	local, err := f.dialer.Dial("tcp", f.spec.TargetAddr())
	if err != nil {
		conn.Close()
		f.report(errors.Wrapf(err, "failed to dial %s", f.spec.TargetAddr()))
		return
	}

	if err := relay(conn, local); err != nil {
		f.report(errors.Wrap(err, "relay failed"))
	}
}

func (f *remoteForward) report(err error) {
	f.mu.Lock()
	fn := f.errFn
	f.mu.Unlock()

	if fn != nil {
		fn(err)
	} else {
		f.log.Warn("%s: %v", f.desc, err)
	}
}

// Stop cancels the remote listener and waits for in-flight relays to drain.
// Idempotent.
func (f *remoteForward) Stop() error {
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
		return errors.Wrap(err, "failed to close remote listener")
	}
	return nil
}

// Ensure remoteForward implements Forward
var _ Forward = (*remoteForward)(nil)
