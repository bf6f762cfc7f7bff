package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 8090, cfg.Server.ToolPort)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Server.Debug)

	assert.Equal(t, "ansible-lint", cfg.Lint.Command)
	assert.Equal(t, 60*time.Second, cfg.Lint.Timeout)
	assert.Equal(t, 1024*1024, cfg.Lint.MaxUploadBytes)

	assert.Equal(t, 10, cfg.Governor.Capacity)
	assert.False(t, cfg.Governor.Wait)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  tool_port: 9010
  debug: true
lint:
  command: /usr/local/bin/ansible-lint
  timeout: 90s
governor:
  capacity: 4
  wait: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 9010, cfg.Server.ToolPort)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, "/usr/local/bin/ansible-lint", cfg.Lint.Command)
	assert.Equal(t, 90*time.Second, cfg.Lint.Timeout)
	assert.Equal(t, 4, cfg.Governor.Capacity)
	assert.True(t, cfg.Governor.Wait)

	// Unset keys keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 1024*1024, cfg.Lint.MaxUploadBytes)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PL_SERVER_PORT", "7777")
	t.Setenv("PL_LINT_TIMEOUT", "15s")
	t.Setenv("PL_GOVERNOR_CAPACITY", "3")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Lint.Timeout)
	assert.Equal(t, 3, cfg.Governor.Capacity)
}

func TestLoad_EnvOverridesConfigFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv("PL_SERVER_PORT", "9001")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Server.Port)
}

func TestLoad_InvalidPort(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 0\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}

func TestLoad_InvalidGovernorCapacity(t *testing.T) {
	path := writeConfig(t, "governor:\n  capacity: 0\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "governor capacity")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestGet_ReturnsLastLoaded(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9100\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Same(t, cfg, Get())
}
