package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete portbridge configuration
type Config struct {
	SSH      SSHConfig      `yaml:"ssh" mapstructure:"ssh"`
	Forwards ForwardsConfig `yaml:"forwards" mapstructure:"forwards"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// SSHConfig contains SSH connection configuration
type SSHConfig struct {
	Hostname          string        `yaml:"hostname" mapstructure:"hostname"`
	Port              int           `yaml:"port" mapstructure:"port"`
	User              string        `yaml:"user" mapstructure:"user"`
	Password          string        `yaml:"password" mapstructure:"password" env:"PORTBRIDGE_SSH_PASSWORD"`
	KeyPath           string        `yaml:"key_path" mapstructure:"key_path"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	KeepAliveInterval time.Duration `yaml:"keepalive_interval" mapstructure:"keepalive_interval"`
}

// ForwardsConfig contains the forwarding tokens, in activation order
type ForwardsConfig struct {
	Local  []string `yaml:"local" mapstructure:"local"`
	Remote []string `yaml:"remote" mapstructure:"remote"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level     string `yaml:"level" mapstructure:"level"`
	UseColors bool   `yaml:"use_colors" mapstructure:"use_colors"`
}

// Validate checks the configuration for errors. Hostname presence is checked
// here because it can arrive from the config file, the environment or a flag.
func (c *Config) Validate() error {
	if c.SSH.Hostname == "" {
		return fmt.Errorf("hostname is required")
	}
	if c.SSH.Port < 1 || c.SSH.Port > 65535 {
		return fmt.Errorf("invalid SSH port: %d", c.SSH.Port)
	}
	if c.SSH.User == "" {
		return fmt.Errorf("user is required")
	}
	if c.SSH.Timeout <= 0 {
		return fmt.Errorf("invalid SSH timeout: %s", c.SSH.Timeout)
	}
	return nil
}

// Render returns the configuration as YAML with the password masked,
// suitable for `portbridge config view`.
func (c *Config) Render() (string, error) {
	shown := *c
	if shown.SSH.Password != "" {
		shown.SSH.Password = "****"
	}

	out, err := yaml.Marshal(&shown)
	if err != nil {
		return "", fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}
	return string(out), nil
}
