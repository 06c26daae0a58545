package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/portbridge/portbridge/internal/config"
	"github.com/portbridge/portbridge/internal/forward"
	"github.com/portbridge/portbridge/internal/interrupt"
	"github.com/portbridge/portbridge/internal/session"
	"github.com/portbridge/portbridge/internal/ssh"
	"github.com/portbridge/portbridge/pkg/errors"
	"github.com/portbridge/portbridge/pkg/logger"
)

// runTunnel is the root command body: resolve configuration, build the
// forward list, then connect, activate, run until interrupted and tear down.
func runTunnel(cmd *cobra.Command) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return errors.NewConfigError(errors.CodeInvalidConfig, "invalid configuration", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return errors.NewConfigError(errors.CodeInvalidConfig, "invalid logging configuration", err)
	}

	// Local forwards activate before remote forwards.
	specs, err := forward.BuildLocal(cfg.Forwards.Local)
	if err != nil {
		return err
	}
	remoteSpecs, err := forward.BuildRemote(cfg.Forwards.Remote)
	if err != nil {
		return err
	}
	specs = append(specs, remoteSpecs...)

	if len(specs) == 0 {
		log.Warn("no forwarding rules configured; session will only keep the connection open")
	}

	keyExplicit := cmd.Flags().Changed("keyfile")
	creds, err := ssh.LoadCredentials(cfg.SSH.Password, cfg.SSH.KeyPath, keyExplicit)
	if err != nil {
		return errors.NewConfigError(errors.CodeInvalidConfig, "failed to load credentials", err)
	}
	if !creds.Usable() {
		creds, err = promptPassword(cfg.SSH.User, cfg.SSH.Hostname)
		if err != nil {
			return err
		}
	}

	client := ssh.NewClient(&ssh.ClientConfig{
		Host:              cfg.SSH.Hostname,
		Port:              cfg.SSH.Port,
		User:              cfg.SSH.User,
		Credentials:       creds,
		Timeout:           cfg.SSH.Timeout,
		KeepAliveInterval: cfg.SSH.KeepAliveInterval,
	}, log)

	orch := session.New(client, log)
	defer orch.Shutdown()

	// The watcher covers the whole session window, including the dial: an
	// interrupt before the connection is up must still shut down in order.
	// It shares only the cancellation signal with the session; cancelling
	// watchCtx stops it once Run returns.
	sig := interrupt.NewSignal()
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go interrupt.NewWatcher(log).Watch(watchCtx, sig)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() {
		select {
		case <-sig.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Info("connecting to %s:%d as %s", cfg.SSH.Hostname, cfg.SSH.Port, cfg.SSH.User)
	if err := orch.Connect(ctx); err != nil {
		if sig.IsSet() {
			log.Info("interrupted, shutting down")
			return nil
		}
		return err
	}

	if err := orch.Activate(specs); err != nil {
		if sig.IsSet() {
			log.Info("interrupted, shutting down")
			return nil
		}
		return err
	}

	log.Info("session established, press Ctrl+C to stop")
	orch.Run(sig)

	orch.Shutdown()
	log.Info("session closed")
	return nil
}

// resolveConfig loads the layered configuration and applies any flags the
// user set on top of it.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	manager := config.NewManager()
	if err := manager.Load(cfgFile); err != nil {
		return nil, err
	}
	cfg := manager.GetConfig()

	flags := cmd.Flags()
	if flags.Changed("hostname") {
		cfg.SSH.Hostname, _ = flags.GetString("hostname")
	}
	if flags.Changed("port") {
		cfg.SSH.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("user") {
		cfg.SSH.User, _ = flags.GetString("user")
	}
	if flags.Changed("password") {
		cfg.SSH.Password, _ = flags.GetString("password")
	}
	if flags.Changed("keyfile") {
		cfg.SSH.KeyPath, _ = flags.GetString("keyfile")
	}
	if flags.Changed("local") {
		locals, _ := flags.GetStringArray("local")
		cfg.Forwards.Local = locals
	}
	if flags.Changed("remote") {
		remotes, _ := flags.GetStringArray("remote")
		cfg.Forwards.Remote = remotes
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:     cfg.Logging.Level,
		UseColors: cfg.Logging.UseColors,
	})
}

// promptPassword asks for a password interactively when no other credential
// is usable. Off a terminal there is nothing to ask, which is the "no usable
// credential" case.
func promptPassword(user, hostname string) (ssh.Credentials, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ssh.Credentials{}, errors.NewNoCredentialError(
			"no password or usable private key supplied")
	}

	fmt.Fprintf(os.Stderr, "%s@%s password: ", user, hostname)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return ssh.Credentials{}, errors.NewConfigError(errors.CodeNoCredential,
			"failed to read password", err)
	}
	if len(raw) == 0 {
		return ssh.Credentials{}, errors.NewNoCredentialError("empty password")
	}

	return ssh.Credentials{Password: string(raw)}, nil
}
