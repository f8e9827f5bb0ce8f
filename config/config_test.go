package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, "tcp://localhost:6888", cfg.ReqAddr())
	assert.Equal(t, "tcp://localhost:8666", cfg.SubAddr())
	assert.NoError(t, cfg.Validate())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Shanghai", loc.String())
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "bridge.yaml", `
server:
  host: 10.0.0.5
  req_port: 7000
  sub_port: 7001
  timezone: UTC
symbols:
  - EURUSD
  - XAUUSD-p
journal:
  type: sqlite
  db_path: ./bridge.sqlite
log:
  level: debug
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp://10.0.0.5:7000", cfg.ReqAddr())
	assert.Equal(t, []string{"EURUSD", "XAUUSD-p"}, cfg.Symbols)
	assert.Equal(t, "sqlite", cfg.Journal.Type)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadJSONFallback(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "bridge.json",
		`{"server":{"host":"box","req_port":1,"sub_port":2,"timezone":"UTC"}}`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "box", cfg.Server.Host)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty host", func(c *Config) { c.Server.Host = "" }},
		{"bad port", func(c *Config) { c.Server.ReqPort = 0 }},
		{"bad timezone", func(c *Config) { c.Server.Timezone = "Mars/Olympus" }},
		{"bad journal", func(c *Config) { c.Journal.Type = "parquet" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
