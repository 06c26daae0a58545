package ssh

import (
	"io"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/portbridge/portbridge/pkg/errors"
)

// relay copies data between the two legs of a forwarded connection until
// either side closes. Both connections are closed on the way out; the first
// real error (not EOF, not our own close) is returned.
func relay(a, b net.Conn) error {
	var g errgroup.Group

	g.Go(func() error {
		_, err := io.Copy(a, b)
		// Unblock the opposite direction.
		a.Close()
		b.Close()
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(b, a)
		a.Close()
		b.Close()
		return err
	})

	err := g.Wait()
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe) {
		return nil
	}
	return err
}
