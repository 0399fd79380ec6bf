package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, ":9091", cfg.Server.MetricsAddr)
	assert.Equal(t, "http://localhost:8080", cfg.Client.AgentURL)
	assert.Equal(t, 2*time.Second, cfg.Poll.Interval)
	assert.Equal(t, 30, cfg.Poll.MaxPolls)
	assert.Equal(t, 5, cfg.Poll.HistoryLength)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoader_LoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  listen_addr: ":9000"
  agent_name: "test agent"
client:
  agent_url: "http://agent.internal:9000"
  timeout: 10s
poll:
  interval: 500ms
  max_polls: 12
log:
  level: debug
  format: console
`), 0o600))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.ListenAddr)
	assert.Equal(t, "test agent", cfg.Server.AgentName)
	assert.Equal(t, "http://agent.internal:9000", cfg.Client.AgentURL)
	assert.Equal(t, 10*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, 12, cfg.Poll.MaxPolls)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched fields keep their defaults.
	assert.Equal(t, ":9091", cfg.Server.MetricsAddr)
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/no/such/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Setenv("A2AFLOW_SERVER_LISTEN_ADDR", ":7070")
	t.Setenv("A2AFLOW_CLIENT_AGENT_URL", "http://env.agent:7070")
	t.Setenv("A2AFLOW_POLL_MAX_POLLS", "7")
	t.Setenv("A2AFLOW_POLL_INTERVAL", "250ms")
	t.Setenv("A2AFLOW_SERVER_RATE_LIMIT_RPS", "12.5")
	t.Setenv("A2AFLOW_LOG_OUTPUT_PATHS", "stdout, stderr")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.ListenAddr)
	assert.Equal(t, "http://env.agent:7070", cfg.Client.AgentURL)
	assert.Equal(t, 7, cfg.Poll.MaxPolls)
	assert.Equal(t, 250*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, 12.5, cfg.Server.RateLimitRPS)
	assert.Equal(t, []string{"stdout", "stderr"}, cfg.Log.OutputPaths)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  listen_addr: \":9000\"\n"), 0o600))
	t.Setenv("A2AFLOW_SERVER_LISTEN_ADDR", ":7070")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.ListenAddr)
}

func TestLoader_InvalidEnvValue(t *testing.T) {
	t.Setenv("A2AFLOW_POLL_MAX_POLLS", "not-a-number")

	_, err := NewLoader().Load()
	assert.Error(t, err)
}

func TestLoader_Validator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("poll:\n  max_polls: -1\n"), 0o600))

	_, err := NewLoader().
		WithConfigPath(path).
		WithValidator(func(c *Config) error { return c.Validate() }).
		Load()
	assert.ErrorContains(t, err, "max_polls")
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.ListenAddr = ""
	cfg.Poll.Interval = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "listen_addr")
	assert.ErrorContains(t, err, "interval")
}

func TestBuildLogger(t *testing.T) {
	logger := BuildLogger(LogConfig{Level: "debug", Format: "json"})
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger = BuildLogger(LogConfig{Level: "warn", Format: "console"})
	require.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	// Unknown level falls back to info.
	logger = BuildLogger(LogConfig{Level: "loud"})
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
