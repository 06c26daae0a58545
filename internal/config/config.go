// Package config loads portbridge configuration from file, environment and
// defaults. Command-line flags are layered on top by the CLI.
package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Manager handles configuration loading and validation
type Manager struct {
	viper  *viper.Viper
	config *Config
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{
		viper:  viper.New(),
		config: &Config{},
	}
}

// Load loads configuration from file, environment variables, and defaults.
// A missing config file is not an error; flags and defaults carry the run.
func (m *Manager) Load(configPath string) error {
	m.setupViper(configPath)
	m.setDefaults()

	if err := m.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := m.viper.Unmarshal(m.config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

// GetConfig returns the loaded configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// setupViper configures the search paths and environment binding
func (m *Manager) setupViper(configPath string) {
	if configPath != "" {
		m.viper.SetConfigFile(configPath)
	} else {
		m.viper.SetConfigName("config")
		m.viper.SetConfigType("yaml")

		if homeDir, err := os.UserHomeDir(); err == nil {
			m.viper.AddConfigPath(filepath.Join(homeDir, ".portbridge"))
		}
		m.viper.AddConfigPath(".")
	}

	m.viper.SetEnvPrefix("PORTBRIDGE")
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.AutomaticEnv()

	m.viper.BindEnv("ssh.password", "PORTBRIDGE_SSH_PASSWORD")
	m.viper.BindEnv("logging.level", "LOG_LEVEL")
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	m.viper.SetDefault("ssh.port", 22)
	m.viper.SetDefault("ssh.user", currentUsername())
	m.viper.SetDefault("ssh.key_path", "~/.ssh/id_rsa")
	m.viper.SetDefault("ssh.timeout", "10s")
	m.viper.SetDefault("ssh.keepalive_interval", "30s")

	m.viper.SetDefault("logging.level", "info")
	m.viper.SetDefault("logging.use_colors", true)
}

// currentUsername returns the invoking user's name, or empty if unknown
func currentUsername() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}
