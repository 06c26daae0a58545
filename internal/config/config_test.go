package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	manager := NewManager()
	require.NoError(t, manager.Load(""))
	cfg := manager.GetConfig()

	assert.Equal(t, 22, cfg.SSH.Port)
	assert.Equal(t, "~/.ssh/id_rsa", cfg.SSH.KeyPath)
	assert.Equal(t, 10*time.Second, cfg.SSH.Timeout)
	assert.Equal(t, 30*time.Second, cfg.SSH.KeepAliveInterval)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.UseColors)
	assert.Empty(t, cfg.Forwards.Local)
	assert.Empty(t, cfg.Forwards.Remote)
}

func TestManager_LoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `ssh:
  hostname: bastion.example.com
  port: 2222
  user: deploy
  timeout: 5s
forwards:
  local:
    - "8080:10.0.0.42:80"
    - "5432"
  remote:
    - "9000"
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

	manager := NewManager()
	require.NoError(t, manager.Load(configPath))
	cfg := manager.GetConfig()

	assert.Equal(t, "bastion.example.com", cfg.SSH.Hostname)
	assert.Equal(t, 2222, cfg.SSH.Port)
	assert.Equal(t, "deploy", cfg.SSH.User)
	assert.Equal(t, 5*time.Second, cfg.SSH.Timeout)
	assert.Equal(t, []string{"8080:10.0.0.42:80", "5432"}, cfg.Forwards.Local)
	assert.Equal(t, []string{"9000"}, cfg.Forwards.Remote)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestManager_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	manager := NewManager()
	require.NoError(t, manager.Load(""))
	assert.Equal(t, 22, manager.GetConfig().SSH.Port)
}

func TestManager_PasswordFromEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PORTBRIDGE_SSH_PASSWORD", "s3cret")

	manager := NewManager()
	require.NoError(t, manager.Load(""))
	assert.Equal(t, "s3cret", manager.GetConfig().SSH.Password)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			SSH: SSHConfig{
				Hostname: "bastion.example.com",
				Port:     22,
				User:     "deploy",
				Timeout:  10 * time.Second,
			},
		}
	}

	assert.NoError(t, valid().Validate())

	noHost := valid()
	noHost.SSH.Hostname = ""
	assert.ErrorContains(t, noHost.Validate(), "hostname is required")

	badPort := valid()
	badPort.SSH.Port = 70000
	assert.ErrorContains(t, badPort.Validate(), "invalid SSH port")

	noUser := valid()
	noUser.SSH.User = ""
	assert.ErrorContains(t, noUser.Validate(), "user is required")
}

func TestConfig_RenderMasksPassword(t *testing.T) {
	cfg := &Config{
		SSH: SSHConfig{Hostname: "bastion.example.com", Password: "hunter2"},
	}

	rendered, err := cfg.Render()
	require.NoError(t, err)
	assert.Contains(t, rendered, "bastion.example.com")
	assert.Contains(t, rendered, "****")
	assert.NotContains(t, rendered, "hunter2")

	// The original is untouched.
	assert.Equal(t, "hunter2", cfg.SSH.Password)
}

func TestInitializeDefaultConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := InitializeDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".portbridge", "config.yaml"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "keepalive_interval")

	// An existing file is left untouched.
	require.NoError(t, os.WriteFile(path, []byte("hostname: kept"), 0600))
	path2, err := InitializeDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, path, path2)

	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hostname: kept", string(content))
}
