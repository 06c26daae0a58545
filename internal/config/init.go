package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// InitializeDefaultConfig creates the default configuration directory and
// file in the user's home directory. An existing file is left untouched.
func InitializeDefaultConfig() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".portbridge")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	}

	if err := os.WriteFile(configPath, []byte(defaultConfigContent), 0600); err != nil {
		return "", fmt.Errorf("failed to create default config: %w", err)
	}
	return configPath, nil
}

const defaultConfigContent = `# PortBridge Configuration
# Loaded from ~/.portbridge/config.yaml by default; command-line flags
# override anything set here.

# SSH connection configuration
ssh:
  # Remote host to tunnel through
  hostname: ""

  # SSH port
  port: 22

  # Login user (defaults to the invoking user)
  user: ""

  # Password (can also be set via PORTBRIDGE_SSH_PASSWORD env var)
  password: ""

  # Path to the private key
  key_path: "~/.ssh/id_rsa"

  # Connection timeout
  timeout: "10s"

  # Interval between keepalive requests
  keepalive_interval: "30s"

# Forwarding rules, activated in order (local before remote).
# Token grammar: port | host:port | bindport:host:port | bindhost:bindport:host:port
forwards:
  local: []
  remote: []

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Colorize log levels on terminals
  use_colors: true
`
