package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Server.Port, cfg.Server.Port)
	assert.Equal(t, "mp3", cfg.Fetcher.Codec)
	assert.Equal(t, "192", cfg.Fetcher.Quality)
	assert.Equal(t, EngineCLI, cfg.Whisper.Engine)
	assert.Equal(t, 100, cfg.Limits.MaxURLs)
	assert.False(t, cfg.Archive.IncludeManifest)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9100
fetcher:
  codec: ".M4A"
  quality: "5"
  timeout: 2m
whisper:
  engine: server
  endpoint: http://localhost:9000/asr
  timeout: 10m
archive:
  include_manifest: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "unset keys keep defaults")
	assert.Equal(t, "m4a", cfg.Fetcher.Codec)
	assert.Equal(t, 2*time.Minute, cfg.Fetcher.Timeout)
	assert.Equal(t, EngineServer, cfg.Whisper.Engine)
	assert.Equal(t, 10*time.Minute, cfg.Whisper.Timeout)
	assert.True(t, cfg.Archive.IncludeManifest)
	assert.Equal(t, "0.0.0.0:9100", cfg.Addr())
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, "server: [unterminated")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadEnvOverrides(t *testing.T) {
	root := t.TempDir()
	t.Setenv("TRANSCRIBER_PORT", "8123")
	t.Setenv("TRANSCRIBER_LOG_LEVEL", "DEBUG")
	t.Setenv("TRANSCRIBER_WORKSPACE_ROOT", root)
	t.Setenv("TRANSCRIBER_WHISPER_MODEL", "small")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8123, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, root, cfg.Workspace.Root)
	assert.Equal(t, "small", cfg.Whisper.Model)
}

func TestLoadRejectsBadEnvPort(t *testing.T) {
	t.Setenv("TRANSCRIBER_PORT", "eighty")
	_, err := Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"codec", func(c *Config) { c.Fetcher.Codec = "exe" }, "fetcher.codec"},
		{"quality", func(c *Config) { c.Fetcher.Quality = "high" }, "fetcher.quality"},
		{"zero quality", func(c *Config) { c.Fetcher.Quality = "0K" }, "fetcher.quality"},
		{"engine", func(c *Config) { c.Whisper.Engine = "magic" }, "whisper.engine"},
		{"endpoint", func(c *Config) { c.Whisper.Engine = EngineServer }, "whisper.endpoint"},
		{"timeout", func(c *Config) { c.Fetcher.Timeout = -time.Second }, "fetcher.timeout"},
		{"root", func(c *Config) { c.Workspace.Root = "" }, "workspace.root"},
		{"max urls", func(c *Config) { c.Limits.MaxURLs = -1 }, "limits.max_urls"},
		{"level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	require.NoError(t, Default().Validate())
}
