package interrupt

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/portbridge/portbridge/pkg/logger"
)

// Watcher observes OS interrupts and funnels the first one into a shared
// cancellation Signal. Further interrupts while shutdown is in progress are
// confirming no-ops.
type Watcher struct {
	log     *logger.Logger
	signals []os.Signal
}

// NewWatcher creates a watcher for SIGINT and SIGTERM.
func NewWatcher(log *logger.Logger) *Watcher {
	return &Watcher{
		log:     log,
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// Watch blocks until an interrupt arrives or ctx is cancelled, setting sig on
// the first interrupt. It is run concurrently with the session run loop and
// never outlives it: cancelling ctx unsubscribes and returns.
func (w *Watcher) Watch(ctx context.Context, sig *Signal) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, w.signals...)
	defer signal.Stop(ch)

	for {
		select {
		case s := <-ch:
			if sig.IsSet() {
				// Shutdown already in progress, nothing more to do.
				w.log.Debug("ignoring repeated signal %v", s)
				continue
			}
			w.log.Info("received %v, shutting down", s)
			sig.Set()
		case <-ctx.Done():
			return
		}
	}
}
