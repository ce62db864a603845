package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/anggasct/tjunction"
	"github.com/anggasct/tjunction/pkg/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, tjunction.DefaultName, cfg.Name)
	assert.False(t, cfg.ParallelDispatch)
	assert.False(t, cfg.WaitNotices)
	assert.Equal(t, 64, cfg.MaxSettleCycles)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junction.yaml")
	content := `
name: main-street
parallel_dispatch: true
wait_notices: true
max_settle_cycles: 10
log:
  level: debug
  format: json
metrics:
  enabled: true
  namespace: town
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "main-street", cfg.Name)
	assert.True(t, cfg.ParallelDispatch)
	assert.True(t, cfg.WaitNotices)
	assert.Equal(t, 10, cfg.MaxSettleCycles)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "town", cfg.Metrics.Namespace)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junction.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wait_notices: true\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.WaitNotices)
	assert.Equal(t, tjunction.DefaultName, cfg.Name)
	assert.Equal(t, 64, cfg.MaxSettleCycles)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junction.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: from-file\nmax_settle_cycles: 5\n"), 0o600))

	t.Setenv("TJUNCTION_NAME", "from-env")
	t.Setenv("TJUNCTION_PARALLEL_DISPATCH", "true")
	t.Setenv("TJUNCTION_LOG_LEVEL", "WARN")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Name)
	assert.True(t, cfg.ParallelDispatch)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 5, cfg.MaxSettleCycles)
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("TJUNCTION_WAIT_NOTICES", "sometimes")
	_, err := Load("")
	require.Error(t, err)
	assert.True(t, tjunction.IsConfigurationError(err))

	t.Setenv("TJUNCTION_WAIT_NOTICES", "")
	t.Setenv("TJUNCTION_MAX_SETTLE_CYCLES", "many")
	_, err = Load("")
	require.Error(t, err)
}

func TestLoad_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junction.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nmae: typo\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty name", func(c *Config) { c.Name = "" }, "Config.Name"},
		{"zero settle cycles", func(c *Config) { c.MaxSettleCycles = 0 }, "Config.MaxSettleCycles"},
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }, "Config.Log.Level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "Config.Log.Format"},
		{"metrics without namespace", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Namespace = ""
		}, "Config.Metrics.Namespace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, tjunction.IsConfigurationError(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "approach", "WEST")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"approach":"WEST"`)
}

func TestConfig_Builder(t *testing.T) {
	cfg := Default()
	cfg.Name = "configured"
	cfg.WaitNotices = true

	j, err := cfg.Builder().WithHost(host.NewLocal()).Build()
	require.NoError(t, err)
	assert.Equal(t, "configured", j.Name())
}
