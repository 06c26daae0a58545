package ssh

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"

	"github.com/portbridge/portbridge/internal/forward"
	bridgeerrors "github.com/portbridge/portbridge/pkg/errors"
	"github.com/portbridge/portbridge/pkg/logger"
)

// Client is the transport provider boundary: it owns the authenticated SSH
// connection and hands out live forward handles bound to it.
type Client interface {
	// Connect establishes and authenticates the SSH connection
	Connect(ctx context.Context) error

	// AddForward creates a live forward for the spec, bound to this connection
	AddForward(spec forward.Spec) (Forward, error)

	// Close terminates the SSH connection
	Close() error

	// IsConnected returns true if the client has an active connection
	IsConnected() bool
}

// ClientConfig holds the configuration for an SSH client
type ClientConfig struct {
	Host              string
	Port              int
	User              string
	Credentials       Credentials
	Timeout           time.Duration
	KeepAliveInterval time.Duration
}

// clientImpl implements the Client interface
type clientImpl struct {
	config    *ClientConfig
	log       *logger.Logger
	sshClient *ssh.Client
	stopKeep  context.CancelFunc
}

// NewClient creates a new SSH client with the given configuration
func NewClient(config *ClientConfig, log *logger.Logger) Client {
	return &clientImpl{
		config: config,
		log:    log,
	}
}

// Connect establishes the SSH connection. Authentication rejections surface
// as auth errors, everything else as connection errors, so the caller can
// report them distinctly.
func (c *clientImpl) Connect(ctx context.Context) error {
	if c.sshClient != nil {
		return nil
	}

	if !c.config.Credentials.Usable() {
		return bridgeerrors.NewNoCredentialError("no password or private key available")
	}

	sshConfig := &ssh.ClientConfig{
		User:            c.config.User,
		Auth:            c.config.Credentials.AuthMethods(),
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // Note: In production, use ssh.FixedHostKey() or ssh.KnownHosts()
		Timeout:         c.config.Timeout,
	}

	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)

	connectCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	type connectResult struct {
		client *ssh.Client
		err    error
	}

	ch := make(chan connectResult, 1)
	go func() {
		client, err := ssh.Dial("tcp", addr, sshConfig)
		ch <- connectResult{client, err}
	}()

	var conn *ssh.Client
	select {
	case <-connectCtx.Done():
		return bridgeerrors.NewConnectionError(
			fmt.Sprintf("connection to %s timed out", addr), connectCtx.Err())
	case res := <-ch:
		if res.err != nil {
			if isAuthFailure(res.err) {
				return bridgeerrors.NewAuthenticationError(
					fmt.Sprintf("authentication to %s as %s failed", addr, c.config.User), res.err)
			}
			return bridgeerrors.NewConnectionError(
				fmt.Sprintf("failed to connect to %s", addr), res.err)
		}
		conn = res.client
	}
	c.sshClient = conn

	if c.config.KeepAliveInterval > 0 {
		keepCtx, stop := context.WithCancel(context.Background())
		c.stopKeep = stop
		// The loop gets its own reference so Close nilling the field can
		// never be observed from the goroutine.
		go c.keepAlive(keepCtx, conn)
	}

	c.log.Debug("connected to %s as %s", addr, c.config.User)
	return nil
}

// isAuthFailure distinguishes an SSH auth rejection from transport failures.
// The ssh package reports it as "ssh: handshake failed: ssh: unable to
// authenticate ...".
func isAuthFailure(err error) bool {
	return strings.Contains(err.Error(), "unable to authenticate")
}

// requestSender is the subset of *ssh.Client the keepalive loop needs.
type requestSender interface {
	SendRequest(name string, wantReply bool, payload []byte) (bool, []byte, error)
}

// keepAlive sends periodic global requests so dead connections are noticed
// even when no forward is carrying traffic. It works off the connection it
// was handed, never the client's mutable field, so it cannot observe Close
// tearing the field down.
func (c *clientImpl) keepAlive(ctx context.Context, conn requestSender) {
	ticker := time.NewTicker(c.config.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, _, err := conn.SendRequest("keepalive@openssh.com", true, nil); err != nil {
				c.log.Debug("keepalive failed: %v", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// AddForward creates a live forward for the spec. The handle is created only;
// the caller starts it and registers its error callback.
func (c *clientImpl) AddForward(spec forward.Spec) (Forward, error) {
	if c.sshClient == nil {
		return nil, errors.New("not connected to SSH server")
	}

	switch spec.Direction {
	case forward.Remote:
		return newRemoteForward(spec, c.sshClient, c.log), nil
	default:
		return newLocalForward(spec, c.sshClient, c.log), nil
	}
}

// Close terminates the SSH connection
func (c *clientImpl) Close() error {
	if c.sshClient == nil {
		return nil
	}

	if c.stopKeep != nil {
		c.stopKeep()
		c.stopKeep = nil
	}

	err := c.sshClient.Close()
	c.sshClient = nil
	if err != nil {
		return errors.Wrap(err, "failed to close SSH client")
	}
	return nil
}

// IsConnected returns true if the client has an active connection
func (c *clientImpl) IsConnected() bool {
	return c.sshClient != nil
}

// Ensure clientImpl implements Client
var _ Client = (*clientImpl)(nil)
