// Package cli defines the portbridge command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "portbridge",
		Short: "Forward ports over an authenticated SSH tunnel",
		Long: `PortBridge opens an authenticated SSH session to a remote host and keeps
one or more port forwards (local or remote) alive over that single
connection until interrupted.

Forwarding rules use a colon-delimited grammar:
  port                          forward port to the same port
  host:port                     forward port to host:port
  bindport:host:port            forward bindport to host:port
  bindhost:bindport:host:port   fully spelled out

Blank fields fall back to direction-dependent defaults: local forwards bind
all interfaces and target the remote loopback, remote forwards bind and
target the loopback on their respective sides.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTunnel(cmd)
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.portbridge/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	rootCmd.Flags().StringP("hostname", "n", "", "remote host to tunnel through (required)")
	rootCmd.Flags().Int("port", 22, "SSH port")
	rootCmd.Flags().StringP("user", "u", "", "login user (default: invoking user)")
	rootCmd.Flags().StringP("password", "p", "", "login password")
	rootCmd.Flags().StringP("keyfile", "k", "~/.ssh/id_rsa", "path to private key")
	rootCmd.Flags().StringArrayP("local", "l", nil, "local forwarding rule (repeatable)")
	rootCmd.Flags().StringArrayP("remote", "r", nil, "remote forwarding rule (repeatable)")
}
