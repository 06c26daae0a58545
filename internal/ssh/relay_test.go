package ssh

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelay_CleanCloseReturnsNil(t *testing.T) {
	// Pipe-backed legs: the relay closes both conns when one direction
	// finishes, so the opposite copy ends with io.ErrClosedPipe. That is a
	// normal close, not a relay failure.
	left, leftPeer := net.Pipe()
	right, rightPeer := net.Pipe()
	defer right.Close()

	done := make(chan error, 1)
	go func() { done <- relay(leftPeer, rightPeer) }()

	go func() {
		left.Write([]byte("ping"))
		left.Close()
	}()

	buf := make([]byte, 4)
	_, err := io.ReadFull(right, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not finish after the client leg closed")
	}
}
