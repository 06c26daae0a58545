// Package interrupt coordinates shutdown between the OS-signal watcher and
// the session run loop through a single shared cancellation signal.
package interrupt

import "sync"

// Signal is a one-shot cancellation flag. It is passed by reference to every
// party that needs to observe or trigger shutdown; setting it more than once
// is a no-op, so concurrent setters never block or race.
type Signal struct {
	once sync.Once
	done chan struct{}
}

// NewSignal returns an unset cancellation signal.
func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Set marks the signal. Idempotent: only the first call has any effect.
func (s *Signal) Set() {
	s.once.Do(func() {
		close(s.done)
	})
}

// Done returns a channel closed when the signal is set.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// IsSet reports whether the signal has been set.
func (s *Signal) IsSet() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
